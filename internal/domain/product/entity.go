package product

import "strings"

// Unit is a product's measurement unit. The unit "unidad" counts discrete
// pieces and only admits integer quantities; every other unit is weighed or
// measured and admits fractional quantities.
type Unit string

const (
	UnitUnidad Unit = "unidad"
	UnitKg     Unit = "kg"
	UnitGramo  Unit = "g"
	UnitLitro  Unit = "l"
	UnitMl     Unit = "ml"
	UnitCaja   Unit = "caja"
)

// Units lists the selector options offered by the front panel.
var Units = []Unit{UnitUnidad, UnitKg, UnitGramo, UnitLitro, UnitMl, UnitCaja}

// IntegerOnly reports whether the unit requires whole quantities.
func IntegerOnly(u Unit) bool {
	return u == UnitUnidad
}

// IsValidUnit reports whether u is one of the known selector units.
func IsValidUnit(u Unit) bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

// Product is a catalog entry. Unit is the canonical unit every submitted
// line for this SKU must carry.
type Product struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
	Unit Unit   `json:"unit"`
}

// Catalog is the full product list fetched from the backend.
type Catalog []Product

// FindBySKU returns the catalog entry with the given SKU.
func (c Catalog) FindBySKU(sku string) (Product, bool) {
	for _, p := range c {
		if p.SKU == sku {
			return p, true
		}
	}
	return Product{}, false
}

// MatchName returns every catalog entry whose name contains the given
// free-text name, or is contained by it, case-insensitively. The matcher is
// deliberately permissive: the operator reviews every suggested match
// before anything is committed.
func (c Catalog) MatchName(name string) []Product {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return nil
	}

	var hits []Product
	for _, p := range c {
		pn := strings.ToLower(p.Name)
		if strings.Contains(pn, n) || strings.Contains(n, pn) {
			hits = append(hits, p)
		}
	}
	return hits
}
