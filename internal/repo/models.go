package repo

import "time"

// CodeType classifies what a stored USSD code does.
type CodeType string

const (
	CodeTypeTopup      CodeType = "TOPUP"
	CodeTypeActivation CodeType = "ACTIVATION"
)

// CodeStatus tracks the execution lifecycle of a stored code.
type CodeStatus string

const (
	StatusPending CodeStatus = "pending"
	StatusDone    CodeStatus = "done"
	StatusFailed  CodeStatus = "failed"
)

// Operator identifies the mobile network operator a code targets.
type Operator string

const (
	OperatorOrange Operator = "ORANGE"
	OperatorInwi   Operator = "INWI"
	OperatorIAM    Operator = "IAM"
)

// USSDCode represents a row in the ussd_codes table.
type USSDCode struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Name         string     `json:"name"`
	Code         string     `json:"code"`
	Type         CodeType   `json:"type"`
	SIM          int        `json:"sim"`
	Operator     Operator   `json:"operator"`
	Device       string     `json:"device"`
	Status       CodeStatus `json:"status"`
	Category     *string    `json:"category,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Result       *string    `json:"result,omitempty"`
	LastExecuted *time.Time `json:"last_executed,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewCode carries the fields needed to create a code record. ID, status
// and timestamps are assigned by the store.
type NewCode struct {
	UserID      string
	Name        string
	Code        string
	Type        CodeType
	SIM         int
	Operator    Operator
	Device      string
	Category    *string
	Description *string
}

// CodeUpdate merges non-nil fields into an existing record.
type CodeUpdate struct {
	Name        *string
	Code        *string
	Type        *CodeType
	SIM         *int
	Operator    *Operator
	Device      *string
	Category    *string
	Description *string
	Status      *CodeStatus
}

// APIToken represents a bearer credential in the api_tokens table.
type APIToken struct {
	ID        string
	Token     string
	UserID    string
	Active    bool
	ExpiresAt *time.Time
	CreatedAt time.Time
}
