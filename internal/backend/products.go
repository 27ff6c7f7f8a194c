package backend

import (
	"context"
	"net/http"

	"almacen-front/internal/domain/product"
)

// Products fetches the full catalog.
func (c *Client) Products(ctx context.Context) (product.Catalog, error) {
	var catalog product.Catalog
	if err := c.doJSON(ctx, http.MethodGet, "/products", nil, nil, &catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}
