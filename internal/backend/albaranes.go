package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"almacen-front/internal/domain/albaran"
	"almacen-front/internal/domain/product"
)

// CommitLine is one fully-resolved line of an OCR batch.
type CommitLine struct {
	SKU  string  `json:"sku"`
	Qty  float64 `json:"qty"`
	Unit string  `json:"unit"`
	Note *string `json:"note"`
}

// CommitPayload creates a new pending albaran from a reviewed OCR batch in
// a single atomic request.
type CommitPayload struct {
	Type            albaran.Type `json:"type"`
	Origin          string       `json:"origin,omitempty"`
	SourceImageName string       `json:"sourceImageName,omitempty"`
	Items           []CommitLine `json:"items"`
}

// AssignPayload resolves an existing provisional albaran's lines and
// completes it.
type AssignPayload struct {
	Type  albaran.Type `json:"type"`
	Items []CommitLine `json:"items"`
}

// CompleteResult acknowledges a completion.
type CompleteResult struct {
	OK     bool           `json:"ok"`
	ID     int64          `json:"id"`
	Status albaran.Status `json:"status"`
}

// PendingAlbaranes lists this client's pending notes of one type, scoped
// by the session key so concurrent front-ends do not see each other's work.
func (c *Client) PendingAlbaranes(ctx context.Context, typ albaran.Type, sessionKey string) ([]albaran.Albaran, error) {
	query := url.Values{}
	query.Set("type", string(typ))
	if sessionKey != "" {
		query.Set("session_key", sessionKey)
	}

	var list []albaran.Albaran
	if err := c.doJSON(ctx, http.MethodGet, "/albaranes/pending", query, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Albaran fetches one note's detail.
func (c *Client) Albaran(ctx context.Context, id int64) (*albaran.Albaran, error) {
	var out albaran.Albaran
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/albaranes/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteAlbaran marks a pending note completed. The transition happens
// exactly once, server-side.
func (c *Client) CompleteAlbaran(ctx context.Context, id int64) (*CompleteResult, error) {
	var out CompleteResult
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/albaranes/%d/complete", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AssignOCR assigns resolved lines to a provisional note and completes it.
func (c *Client) AssignOCR(ctx context.Context, id int64, payload AssignPayload) error {
	return c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/albaranes/%d/complete", id), nil, payload, nil)
}

// CommitOCR commits a reviewed batch as a new pending note.
func (c *Client) CommitOCR(ctx context.Context, payload CommitPayload) (*albaran.Albaran, error) {
	var out albaran.Albaran
	if err := c.doJSON(ctx, http.MethodPost, "/albaranes/commit", nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PanelData fetches the catalog and the pending list in parallel; the
// review screen and the pending panel need both to render.
func (c *Client) PanelData(ctx context.Context, typ albaran.Type, sessionKey string) (product.Catalog, []albaran.Albaran, error) {
	var (
		catalog product.Catalog
		pending []albaran.Albaran
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		catalog, err = c.Products(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = c.PendingAlbaranes(gctx, typ, sessionKey)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return catalog, pending, nil
}
