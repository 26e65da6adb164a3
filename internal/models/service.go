package models

import "time"

const (
	ServiceStatusActive    = "ACTIVE"
	ServiceStatusSuspended = "SUSPENDED"
	ServiceStatusStopped   = "STOPPED"
)

// Service is a recurring subscription instantiated from an approved deal's
// line item.
type Service struct {
	ID                  int       `json:"id"`
	CustomerID          int       `json:"customer_id"`
	ProductID           int       `json:"product_id"`
	MonthlyFee          float64   `json:"monthly_fee"`
	Status              string    `json:"status"`
	StartDate           time.Time `json:"start_date"`
	InstallationAddress string    `json:"installation_address"`
	Notes               string    `json:"notes"`
	CreatedAt           time.Time `json:"created_at"`
}
