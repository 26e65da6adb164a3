package models

import "time"

// Lead statuses. CONVERTED is terminal and set only by the conversion path.
const (
	LeadStatusNew       = "NEW"
	LeadStatusContacted = "CONTACTED"
	LeadStatusQualified = "QUALIFIED"
	LeadStatusConverted = "CONVERTED"
	LeadStatusLost      = "LOST"
)

type Lead struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Contact     string     `json:"contact"`
	Email       string     `json:"email"`
	Address     string     `json:"address"`
	Source      string     `json:"source"`
	Status      string     `json:"status"`
	OwnerID     int        `json:"owner_id"`
	CustomerID  *int       `json:"customer_id,omitempty"`
	ConvertedAt *time.Time `json:"converted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
