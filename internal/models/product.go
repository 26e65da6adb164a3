package models

import "time"

// Product is an internet package. SellingPrice is the standard price the
// pricing evaluator compares agreed prices against.
type Product struct {
	ID            int       `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	HPP           float64   `json:"hpp"` // cost of goods sold
	MarginPercent float64   `json:"margin_percent"`
	SellingPrice  float64   `json:"selling_price"`
	SpeedMbps     int       `json:"speed_mbps"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}
