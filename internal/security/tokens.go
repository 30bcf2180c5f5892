package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid invite token")

// InviteClaims identify the event and contractor an accept link was issued for
type InviteClaims struct {
	jwt.RegisteredClaims
	EventID      string `json:"eid"`
	ContractorID int64  `json:"cid"`
}

// InviteTokens signs and verifies HS256 invite accept tokens
type InviteTokens struct {
	secret []byte
	now    func() time.Time
}

func NewInviteTokens(secret string) *InviteTokens {
	return &InviteTokens{secret: []byte(secret), now: time.Now}
}

// Sign issues a token for contractorID on eventID that expires at expiresAt
func (t *InviteTokens) Sign(eventID string, contractorID int64, expiresAt time.Time) (string, error) {
	claims := InviteClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(t.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		EventID:      eventID,
		ContractorID: contractorID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign invite token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns its claims
func (t *InviteTokens) Parse(token string) (*InviteClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	claims := &InviteClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.EventID == "" || claims.ContractorID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
