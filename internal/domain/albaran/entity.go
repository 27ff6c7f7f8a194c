package albaran

import (
	"encoding/json"
	"time"
)

// Type distinguishes purchase (incoming) from sale (outgoing) albaranes.
type Type string

const (
	TypeIncoming Type = "incoming"
	TypeOutgoing Type = "outgoing"
)

// IsValidType reports whether t is a known albaran type.
func IsValidType(t Type) bool {
	return t == TypeIncoming || t == TypeOutgoing
}

// Status is the albaran lifecycle state. An albaran moves from pending to
// completed exactly once, on explicit operator confirmation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Line is one SKU/quantity/unit entry within an albaran.
type Line struct {
	SKU  string  `json:"sku"`
	Qty  float64 `json:"qty"`
	Unit string  `json:"unit"`
	Note *string `json:"note,omitempty"`
}

// Albaran is a delivery note owned by the backend; the client only ever
// holds transient read-only copies.
type Albaran struct {
	ID              int64      `json:"id"`
	Type            Type       `json:"type"`
	Origin          *string    `json:"origin,omitempty"`
	SourceImageName *string    `json:"source_image_name,omitempty"`
	Status          Status     `json:"status,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Lines           []Line     `json:"lines"`
}

// UnmarshalJSON accepts both source_image_name and sourceImageName; the
// backend emits either depending on the endpoint.
func (a *Albaran) UnmarshalJSON(data []byte) error {
	type alias Albaran
	aux := struct {
		*alias
		SourceImageCamel *string `json:"sourceImageName"`
	}{alias: (*alias)(a)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if a.SourceImageName == nil && aux.SourceImageCamel != nil {
		a.SourceImageName = aux.SourceImageCamel
	}
	if a.Lines == nil {
		a.Lines = []Line{}
	}
	return nil
}

// OcrItem is a provisional, unvalidated candidate line produced by the OCR
// extraction step. It must be resolved to a concrete SKU before commit.
type OcrItem struct {
	SKU    string   `json:"sku,omitempty"`
	Name   string   `json:"name"`
	Qty    float64  `json:"qty"`
	Unit   string   `json:"unit,omitempty"`
	Note   string   `json:"note,omitempty"`
	Score  *float64 `json:"score,omitempty"`
	Source string   `json:"source,omitempty"`
}

// OcrResult is the extraction response for one uploaded document.
type OcrResult struct {
	Items []OcrItem `json:"items"`
}
