package handlers

import (
	"time"

	"orangefrog/internal/lifecycle"
	"orangefrog/internal/models"
	"orangefrog/internal/service"
)

type eventRequest struct {
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	LoadIn      time.Time `json:"loadIn"`
	LoadOut     time.Time `json:"loadOut"`
	Hours       float64   `json:"hours"`
	Description string    `json:"description"`
	Contractors []int64   `json:"contractors"`
}

func (r eventRequest) input() service.EventInput {
	return service.EventInput{
		Name:          r.Name,
		Location:      r.Location,
		LoadIn:        r.LoadIn,
		LoadOut:       r.LoadOut,
		Hours:         r.Hours,
		Description:   r.Description,
		ContractorIDs: r.Contractors,
	}
}

type emailRequest struct {
	Email string `json:"email"`
}

type decisionRequest struct {
	ContractorID int64 `json:"contractorId"`
	Approved     bool  `json:"approved"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type contractorRequest struct {
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	HourlyRate   float64  `json:"hourlyRate"`
	Address      string   `json:"address"`
	Phone        string   `json:"phone"`
	ShirtSize    string   `json:"shirtSize"`
	FirstAidCert string   `json:"firstAidCert"`
	Allergies    []string `json:"allergies"`
}

type incidentRequest struct {
	Name        string    `json:"name"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Request     string    `json:"request"`
	Description string    `json:"description"`
}

// ContractorRef is a contractor as listed on an event
type ContractorRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EventView is the JSON shape of an event
type EventView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Location    string          `json:"location"`
	LoadIn      time.Time       `json:"loadIn"`
	LoadOut     time.Time       `json:"loadOut"`
	Hours       float64         `json:"hours"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Version     int64           `json:"version"`
	Invited     []ContractorRef `json:"invited"`
	Pending     []ContractorRef `json:"pending"`
	Applied     []ContractorRef `json:"applied"`
	Approved    []ContractorRef `json:"approved"`
	Declined    []ContractorRef `json:"declined"`
}

// JobView is an event from a contractor's point of view
type JobView struct {
	EventID   string     `json:"eventId"`
	Name      string     `json:"name"`
	Location  string     `json:"location"`
	LoadIn    time.Time  `json:"loadIn"`
	LoadOut   time.Time  `json:"loadOut"`
	Hours     float64    `json:"hours"`
	Status    string     `json:"status"`
	DecidedAt *time.Time `json:"decidedAt,omitempty"`
}

// ContractorView is the JSON shape of a contractor account
type ContractorView struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	HourlyRate        float64   `json:"hourlyRate"`
	Status            string    `json:"status"`
	TemporaryPassword bool      `json:"temporaryPassword"`
	Address           string    `json:"address"`
	Phone             string    `json:"phone"`
	ShirtSize         string    `json:"shirtSize"`
	FirstAidCert      string    `json:"firstAidCert"`
	Allergies         []string  `json:"allergies"`
	CreatedAt         time.Time `json:"createdAt"`
}

// IncidentView is the JSON shape of an incident report
type IncidentView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Request     string    `json:"request"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func refs(contractors []models.Contractor) []ContractorRef {
	out := make([]ContractorRef, 0, len(contractors))
	for _, c := range contractors {
		out = append(out, ContractorRef{ID: c.ID, Name: c.Name, Email: c.Email})
	}
	return out
}

func newEventView(d service.EventDetail) EventView {
	return EventView{
		ID:          d.Event.ID,
		Name:        d.Event.Name,
		Location:    d.Event.Location,
		LoadIn:      d.Event.LoadIn,
		LoadOut:     d.Event.LoadOut,
		Hours:       d.Event.Hours,
		Description: d.Event.Description,
		Status:      string(d.Event.Status),
		Version:     d.Event.Version,
		Invited:     refs(d.Invited),
		Pending:     refs(d.Pending),
		Applied:     refs(d.Applied),
		Approved:    refs(d.Approved),
		Declined:    refs(d.Declined),
	}
}

func newJobViews(jobs []lifecycle.JobView) []JobView {
	out := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, JobView{
			EventID:   j.Event.ID,
			Name:      j.Event.Name,
			Location:  j.Event.Location,
			LoadIn:    j.Event.LoadIn,
			LoadOut:   j.Event.LoadOut,
			Hours:     j.Event.Hours,
			Status:    string(j.Status),
			DecidedAt: j.DecidedAt,
		})
	}
	return out
}

func newContractorView(c models.Contractor) ContractorView {
	allergies := c.Allergies
	if allergies == nil {
		allergies = []string{}
	}
	return ContractorView{
		ID:                c.ID,
		Email:             c.Email,
		Name:              c.Name,
		HourlyRate:        c.HourlyRate,
		Status:            string(c.Status),
		TemporaryPassword: c.TemporaryPassword,
		Address:           c.Address,
		Phone:             c.Phone,
		ShirtSize:         c.ShirtSize,
		FirstAidCert:      c.FirstAidCert,
		Allergies:         allergies,
		CreatedAt:         c.CreatedAt,
	}
}

func newIncidentView(inc models.Incident) IncidentView {
	return IncidentView{
		ID:          inc.ID,
		Name:        inc.Name,
		StartDate:   inc.StartDate,
		EndDate:     inc.EndDate,
		Request:     inc.Request,
		Description: inc.Description,
		CreatedAt:   inc.CreatedAt,
	}
}
