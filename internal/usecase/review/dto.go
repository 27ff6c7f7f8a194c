package review

import (
	"almacen-front/internal/domain/albaran"
)

// Line is one editable row of the review screen, seeded from OCR output
// and corrected by the operator before commit.
type Line struct {
	SKU  string  `json:"sku"`
	Name string  `json:"name"`
	Qty  float64 `json:"qty"`
	Unit string  `json:"unit"`
	Note string  `json:"note"`
}

// LinePatch updates a subset of a line's fields; nil fields are untouched.
type LinePatch struct {
	SKU  *string  `json:"sku"`
	Name *string  `json:"name"`
	Qty  *float64 `json:"qty"`
	Unit *string  `json:"unit"`
	Note *string  `json:"note"`
}

// Review is the editable state for one uploaded document. AlbaranID is set
// when the extraction step already created a provisional note; commit then
// assigns the resolved lines to it instead of creating a new one.
type Review struct {
	ID              string       `json:"id"`
	Type            albaran.Type `json:"type"`
	SourceImageName string       `json:"source_image_name"`
	AlbaranID       *int64       `json:"albaran_id,omitempty"`
	Lines           []Line       `json:"lines"`
}

// Resolution is the outcome of matching one retained line against the
// catalog. Ambiguous lists competing SKUs when more than one catalog entry
// qualified; the first hit is still used, but the operator is warned.
type Resolution struct {
	Index     int      `json:"index"`
	SKU       string   `json:"sku"`
	Resolved  bool     `json:"resolved"`
	Ambiguous []string `json:"ambiguous,omitempty"`
}

// CommitRequest finalizes the review: the chosen movement type and the
// operator's last word on the lines.
type CommitRequest struct {
	Type            albaran.Type `json:"type"`
	SourceImageName string       `json:"source_image_name"`
	Lines           []Line       `json:"lines"`
}

// CommitOutcome reports a successful commit.
type CommitOutcome struct {
	Albaran  *albaran.Albaran `json:"albaran,omitempty"`
	Assigned bool             `json:"assigned"`
	Warnings []string         `json:"warnings,omitempty"`
}
