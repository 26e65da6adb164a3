package models

import "time"

// Customer is a converted lead (or a directly registered counterparty).
type Customer struct {
	ID           int       `json:"id"`
	CustomerCode string    `json:"customer_code"`
	Name         string    `json:"name"`
	Contact      string    `json:"contact"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
}
