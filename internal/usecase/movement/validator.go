package movement

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"almacen-front/internal/domain/product"
	appErrors "almacen-front/pkg/errors"
)

var validate = validator.New()

// ValidateSubmit checks a movement line against the catalog before any
// network call: the SKU must exist, the unit must be the product's
// canonical unit, and the quantity must fit the unit's integrality rule.
func ValidateSubmit(req *SubmitRequest, catalog product.Catalog) (product.Product, error) {
	if err := validate.Struct(req); err != nil {
		return product.Product{}, appErrors.NewAppError("INVALID_INPUT", "invalid movement line", err)
	}

	p, ok := catalog.FindBySKU(req.SKU)
	if !ok {
		return product.Product{}, appErrors.NewAppError("UNKNOWN_SKU",
			fmt.Sprintf("product %s is not in the catalog", req.SKU), appErrors.ErrProductNotFound)
	}

	if product.Unit(req.Unit) != p.Unit {
		return product.Product{}, appErrors.NewAppError("WRONG_UNIT",
			fmt.Sprintf("invalid unit, expected %s", p.Unit), appErrors.ErrWrongUnit)
	}

	if err := ValidateQty(product.Unit(req.Unit), req.Qty); err != nil {
		return product.Product{}, err
	}

	return p, nil
}

// ValidateQty enforces the unit's quantity rule: positive always, integer
// when the unit counts discrete pieces.
func ValidateQty(unit product.Unit, qty float64) error {
	if math.IsNaN(qty) || math.IsInf(qty, 0) || qty <= 0 {
		return appErrors.NewAppError("INVALID_QTY", "quantity must be greater than zero",
			appErrors.ErrInvalidQuantity)
	}
	if product.IntegerOnly(unit) && qty != math.Trunc(qty) {
		return appErrors.NewAppError("INVALID_QTY", "quantity must be an integer for unit 'unidad'",
			appErrors.ErrFractionalUnits)
	}
	return nil
}
