package movement

import (
	domainMovement "almacen-front/internal/domain/movement"
)

// SubmitRequest is a single-line movement as the front panel sends it.
// OrderRef only applies to salidas; Note only to entradas.
type SubmitRequest struct {
	SKU      string  `json:"sku" validate:"required"`
	Qty      float64 `json:"qty" validate:"gt=0"`
	Unit     string  `json:"unit" validate:"required"`
	Note     string  `json:"note"`
	OrderRef string  `json:"order_ref"`
}

// SubmitResult reports a registered movement; Lot is set for entradas.
type SubmitResult struct {
	Lot *domainMovement.Lot `json:"lot,omitempty"`
}
