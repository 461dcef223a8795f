package warehouse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shelfsync/shelfsync/internal/common"
	"github.com/shelfsync/shelfsync/internal/model"
)

// ProductSearchResult carries the products found for a name list, plus the
// names nothing matched.
type ProductSearchResult struct {
	Products []model.Product
	NotFound []string
}

type productRow struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Things        []string `json:"things"`
	PurchasePrice *struct {
		Value float64 `json:"value"`
	} `json:"buyPrice"`
}

func (r productRow) toModel() model.Product {
	p := model.Product{
		ID:     r.ID,
		Name:   r.Name,
		Things: r.Things,
	}
	if r.PurchasePrice != nil {
		value := r.PurchasePrice.Value
		p.PurchasePrice = &value
	}
	return p
}

// SearchProduct searches the warehouse catalogue for a single product name.
func (c *Client) SearchProduct(ctx context.Context, name string) ([]model.Product, error) {
	params := url.Values{}
	params.Set("search", name)

	body, err := c.doRequest(ctx, http.MethodGet, "entity/product/", params, nil)
	if err != nil {
		return nil, fmt.Errorf("product search failed: %w", err)
	}

	var response struct {
		Rows []productRow `json:"rows"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: malformed product payload: %v", common.ErrUpstreamUnavailable, err)
	}

	if len(response.Rows) == 0 {
		c.logger.Warn("Product not found", "product_name", name)
		return nil, fmt.Errorf("%w: product %q", common.ErrNotFound, name)
	}

	products := make([]model.Product, 0, len(response.Rows))
	for _, row := range response.Rows {
		products = append(products, row.toModel())
	}

	return products, nil
}

// SearchProducts looks up multiple product names. Lookups run one by one
// because the warehouse rate limits aggressively; a name that fails or
// matches nothing lands in NotFound instead of failing the batch.
func (c *Client) SearchProducts(ctx context.Context, names []string) (ProductSearchResult, error) {
	c.logger.Debug("Searching for multiple products", "product_count", len(names))

	var result ProductSearchResult
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		products, err := c.SearchProduct(ctx, name)
		if err != nil {
			if !errors.Is(err, common.ErrNotFound) {
				c.logger.Warn("Error searching for product",
					"product_name", name,
					"error", err)
			}
			result.NotFound = append(result.NotFound, name)
			continue
		}
		result.Products = append(result.Products, products...)
	}

	c.logger.Info("Product search completed",
		"product_count", len(result.Products),
		"not_found", len(result.NotFound))

	return result, nil
}
