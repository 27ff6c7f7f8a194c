package backend

import (
	"context"
	"net/http"

	"almacen-front/internal/domain/movement"
)

// IncomingInput is a single-line stock entry.
type IncomingInput struct {
	SKU  string  `json:"sku"`
	Qty  float64 `json:"qty"`
	Unit string  `json:"unit"`
	Note string  `json:"note,omitempty"`
}

// IncomingResult carries the lot the backend assigned to the entry.
type IncomingResult struct {
	Lot *movement.Lot `json:"lot,omitempty"`
}

// Allocation pins part of an outgoing quantity to a concrete lot. Absent
// allocations mean the backend allocates FIFO.
type Allocation struct {
	LotID int64   `json:"lot_id"`
	Qty   float64 `json:"qty"`
}

// OutgoingInput is a single-line stock exit.
type OutgoingInput struct {
	SKU         string       `json:"sku"`
	Qty         float64      `json:"qty"`
	Unit        string       `json:"unit"`
	OrderRef    string       `json:"order_ref,omitempty"`
	Allocations []Allocation `json:"allocations,omitempty"`
}

// CreateIncoming registers one incoming movement.
func (c *Client) CreateIncoming(ctx context.Context, input IncomingInput) (*IncomingResult, error) {
	var out IncomingResult
	if err := c.doJSON(ctx, http.MethodPost, "/incoming", nil, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateOutgoing registers one outgoing movement.
func (c *Client) CreateOutgoing(ctx context.Context, input OutgoingInput) error {
	return c.doJSON(ctx, http.MethodPost, "/outgoing", nil, input, nil)
}

// Movements fetches the unified history, raw as the backend sends it.
func (c *Client) Movements(ctx context.Context) ([]movement.Movement, error) {
	var list []movement.Movement
	if err := c.doJSON(ctx, http.MethodGet, "/movements", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}
