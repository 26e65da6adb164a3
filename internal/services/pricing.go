package services

import (
	"fmt"

	"ispcrm/internal/apperr"
)

// EvaluatedItem is the result of pricing one requested deal line against the
// catalog standard price.
type EvaluatedItem struct {
	ProductID     int
	Quantity      int
	AgreedPrice   float64
	StandardPrice float64
	Subtotal      float64
	NeedsApproval bool
}

// EvaluateItem computes the subtotal and whether the agreed price needs
// manager approval. Approval is required only when the agreed price is
// strictly below the standard price.
func EvaluateItem(productID int, standardPrice, agreedPrice float64, quantity int) (EvaluatedItem, error) {
	if quantity <= 0 {
		return EvaluatedItem{}, apperr.InvalidRequest("Quantity must be greater than 0")
	}
	if agreedPrice <= 0 {
		return EvaluatedItem{}, apperr.InvalidRequest("Agreed price must be greater than 0")
	}
	return EvaluatedItem{
		ProductID:     productID,
		Quantity:      quantity,
		AgreedPrice:   agreedPrice,
		StandardPrice: standardPrice,
		Subtotal:      agreedPrice * float64(quantity),
		NeedsApproval: agreedPrice < standardPrice,
	}, nil
}

// validateItemShape checks the parts of an item request that need no catalog
// lookup, so malformed input fails before any storage round-trip.
func validateItemShape(productID, quantity int, agreedPrice float64) error {
	if productID <= 0 {
		return apperr.InvalidRequest(fmt.Sprintf("Invalid product id %d", productID))
	}
	if quantity <= 0 {
		return apperr.InvalidRequest("Quantity must be greater than 0")
	}
	if agreedPrice <= 0 {
		return apperr.InvalidRequest("Agreed price must be greater than 0")
	}
	return nil
}
