package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"orangefrog/internal/models"
	"orangefrog/internal/security"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client       *sesv2.Client
	fromEmail    string
	fromName     string
	supportEmail string
	appBaseURL   string
	tokens       *security.InviteTokens
	enabled      bool
	debug        bool
}

// NewEmailService creates a new email service
func NewEmailService(awsRegion, fromEmail, fromName, supportEmail, appBaseURL string, tokens *security.InviteTokens, debug bool) (*EmailService, error) {
	// If fromEmail is empty, create a disabled service
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		if debug {
			log.Println("[DEBUG] Email service will skip sending all emails")
		}
		return &EmailService{
			supportEmail: supportEmail,
			appBaseURL:   appBaseURL,
			tokens:       tokens,
			enabled:      false,
			debug:        debug,
		}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From Email: %s", fromEmail)
		log.Printf("[DEBUG] From Name: %s", fromName)
		log.Printf("[DEBUG] App Base URL: %s", appBaseURL)
	}

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		if debug {
			log.Printf("[DEBUG] Failed to load AWS config: %v", err)
		}
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if debug {
		log.Println("[DEBUG] AWS config loaded successfully")
	}

	// Create SES client
	client := sesv2.NewFromConfig(cfg)

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	if debug {
		log.Println("[DEBUG] SES client created successfully")
	}

	return &EmailService{
		client:       client,
		fromEmail:    fromEmail,
		fromName:     fromName,
		supportEmail: supportEmail,
		appBaseURL:   appBaseURL,
		tokens:       tokens,
		enabled:      true,
		debug:        debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

const emailStyle = `
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #f07e26; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #f07e26; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
`

// SendInviteEmail tells a contractor about a new job with a signed accept link
func (s *EmailService) SendInviteEmail(ctx context.Context, contractor models.Contractor, ev *models.Event) error {
	if s.debug {
		log.Printf("[DEBUG] SendInviteEmail called: to=%s, event=%s", contractor.Email, ev.ID)
	}

	if !s.enabled {
		log.Printf("Skipping email send (service disabled): invite for event %s to %s", ev.ID, contractor.Email)
		return nil
	}

	subject, htmlBody, textBody, err := s.inviteMessage(contractor, ev)
	if err != nil {
		return err
	}

	if s.debug {
		log.Printf("[DEBUG] Sending invite email: subject=%s, to=%s", subject, contractor.Email)
	}

	return s.sendEmail(ctx, contractor.Email, subject, htmlBody, textBody)
}

// AcceptLink returns the one-click apply link for contractorID on ev
func (s *EmailService) AcceptLink(ev *models.Event, contractorID int64) (string, error) {
	token, err := s.tokens.Sign(ev.ID, contractorID, ev.LoadIn)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/invites/accept?token=%s", s.appBaseURL, url.QueryEscape(token)), nil
}

func (s *EmailService) inviteMessage(contractor models.Contractor, ev *models.Event) (subject, htmlBody, textBody string, err error) {
	acceptLink, err := s.AcceptLink(ev, contractor.ID)
	if err != nil {
		return "", "", "", err
	}
	jobsLink := s.appBaseURL + "/jobs"
	loadIn := ev.LoadIn.Format(time.RFC1123)
	loadOut := ev.LoadOut.Format(time.RFC1123)

	subject = fmt.Sprintf("New job: %s", ev.Name)
	htmlBody = fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>%s</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>You're invited to a job</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>You have been invited to work <strong>%s</strong> at %s.</p>
			<p>Load in: %s<br>Load out: %s<br>Hours: %.1f</p>
			<p style="text-align: center;">
				<a href="%s" class="button">Accept Job</a>
			</p>
			<p>Or review all of your invitations at <a href="%s">%s</a>.</p>
		</div>
		<div class="footer">
			<p>This is an automated email from Orange Frog. Please do not reply.</p>
			%s
		</div>
	</div>
</body>
</html>
`, emailStyle, contractor.Name, ev.Name, ev.Location, loadIn, loadOut, ev.Hours, acceptLink, jobsLink, jobsLink, s.supportHTML())

	textBody = fmt.Sprintf(`Hi %s,

You have been invited to work %s at %s.

Load in: %s
Load out: %s
Hours: %.1f

Accept the job: %s
Review your invitations: %s

---
This is an automated email from Orange Frog. Please do not reply.
%s`, contractor.Name, ev.Name, ev.Location, loadIn, loadOut, ev.Hours, acceptLink, jobsLink, s.supportText())

	return subject, htmlBody, textBody, nil
}

// SendWelcomeEmail sends a new contractor their temporary password
func (s *EmailService) SendWelcomeEmail(ctx context.Context, contractor models.Contractor, tempPassword string) error {
	if s.debug {
		log.Printf("[DEBUG] SendWelcomeEmail called: to=%s, name=%s", contractor.Email, contractor.Name)
	}

	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", contractor.Email)
		return nil
	}

	subject, htmlBody, textBody := s.welcomeMessage(contractor, tempPassword)
	return s.sendEmail(ctx, contractor.Email, subject, htmlBody, textBody)
}

func (s *EmailService) welcomeMessage(contractor models.Contractor, tempPassword string) (subject, htmlBody, textBody string) {
	subject = "Welcome to Orange Frog"
	htmlBody = fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>%s</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Welcome to Orange Frog</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>An account has been created for you. Sign in with this email address and the temporary password below, then choose a new one.</p>
			<p style="text-align: center; font-size: 20px;"><strong>%s</strong></p>
			<p style="text-align: center;">
				<a href="%s/login" class="button">Sign In</a>
			</p>
		</div>
		<div class="footer">
			<p>This is an automated email from Orange Frog. Please do not reply.</p>
			%s
		</div>
	</div>
</body>
</html>
`, emailStyle, contractor.Name, tempPassword, s.appBaseURL, s.supportHTML())

	textBody = fmt.Sprintf(`Hi %s,

An account has been created for you. Sign in with this email address and the temporary password below, then choose a new one.

Temporary password: %s

Sign in: %s/login

---
This is an automated email from Orange Frog. Please do not reply.
%s`, contractor.Name, tempPassword, s.appBaseURL, s.supportText())

	return subject, htmlBody, textBody
}

func (s *EmailService) supportHTML() string {
	if s.supportEmail == "" {
		return ""
	}
	return fmt.Sprintf(`<p>Questions? Contact <a href="mailto:%s">%s</a>.</p>`, s.supportEmail, s.supportEmail)
}

func (s *EmailService) supportText() string {
	if s.supportEmail == "" {
		return ""
	}
	return fmt.Sprintf("Questions? Contact %s.\n", s.supportEmail)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	if s.debug {
		log.Printf("[DEBUG] sendEmail called: to=%s, subject=%s", toEmail, subject)
	}

	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] From address: %s", fromAddress)
		log.Printf("[DEBUG] To address: %s", toEmail)
		log.Printf("[DEBUG] Subject: %s", subject)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if s.debug {
		log.Printf("[DEBUG] Calling SES SendEmail API...")
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		if s.debug {
			log.Printf("[DEBUG] SES SendEmail failed: %v", err)
		}
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug {
		log.Printf("[DEBUG] SES SendEmail succeeded")
		if result.MessageId != nil {
			log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
		}
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
