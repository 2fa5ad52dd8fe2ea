package types

import (
	"time"

	"github.com/google/uuid"

	"rfp-agent/bidform"
)

// RFP is a Request for Proposal record, stored in the DB.
type RFP struct {
	ID            uuid.UUID           `json:"id"`
	Title         string              `json:"title"`
	Scope         string              `json:"scope"`
	Requirements  []string            `json:"requirements"`
	Budget        string              `json:"budget"`
	Currency      string              `json:"currency"`
	TimelineStart string              `json:"timeline_start"`
	TimelineEnd   string              `json:"timeline_end"`
	Status        string              `json:"status"`
	FormSchema    *bidform.FormSchema `json:"proposal_form_schema,omitempty"`
	FormRows      []bidform.FilledRow `json:"proposal_form_rows,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Proposal is a vendor's bid against an RFP.
type Proposal struct {
	ID              uuid.UUID           `json:"id"`
	RFPID           uuid.UUID           `json:"rfp_id"`
	Contractor      string              `json:"contractor"`
	ContractorEmail string              `json:"contractor_email,omitempty"`
	Price           *float64            `json:"price,omitempty"`
	Currency        string              `json:"currency"`
	StartDate       string              `json:"start_date,omitempty"`
	Summary         string              `json:"summary,omitempty"`
	Experience      []string            `json:"experience,omitempty"`
	Methodology     []string            `json:"methodology,omitempty"`
	Warranties      []string            `json:"warranties,omitempty"`
	TimelineDetails []string            `json:"timeline_details,omitempty"`
	Status          string              `json:"status"`
	ExtractedText   string              `json:"-"`
	FormData        []bidform.FilledRow `json:"proposal_form_data,omitempty"`
	GrandTotal      *float64            `json:"grand_total,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// Proposal lifecycle states.
const (
	ProposalStatusPending  = "pending"
	ProposalStatusApproved = "approved"
	ProposalStatusRejected = "rejected"
)

// ConsultMessage is one turn of the RFP consultant conversation.
type ConsultMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// RFPDraft is the consultant's working state for a not-yet-created RFP.
type RFPDraft struct {
	Title        string   `json:"title"`
	Scope        string   `json:"scope"`
	Requirements []string `json:"requirements"`
	Budget       string   `json:"budget"`
	TimelineEnd  string   `json:"timeline_end"`
}
