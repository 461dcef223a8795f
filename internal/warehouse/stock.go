package warehouse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shelfsync/shelfsync/internal/common"
	"github.com/shelfsync/shelfsync/internal/model"
	"github.com/shelfsync/shelfsync/internal/service"
)

var _ service.StockReader = (*Client)(nil)

// stockResponse is the wire shape of the stock report endpoint.
type stockResponse struct {
	Meta struct {
		Size int `json:"size"`
	} `json:"meta"`
	Rows []stockRow `json:"rows"`
}

type stockRow struct {
	Meta struct {
		Href string `json:"href"`
	} `json:"meta"`
	Name  string   `json:"name"`
	Code  string   `json:"code"`
	Stock float64  `json:"stock"`
	Price *float64 `json:"price"`
}

// SearchStock fetches current stock records, optionally scoped to one store,
// product group, or name subset. An unreachable warehouse is fatal for a
// reconciliation run.
func (c *Client) SearchStock(ctx context.Context, filter service.StockFilter) ([]model.StockItem, error) {
	params := url.Values{}

	var filters []string
	if filter.StoreID != "" {
		filters = append(filters, fmt.Sprintf("store=%sentity/store/%s", c.baseURL, filter.StoreID))
	}
	if filter.ProductGroupID != "" {
		filters = append(filters, fmt.Sprintf("productFolder=%sentity/productfolder/%s", c.baseURL, filter.ProductGroupID))
	}
	if len(filters) > 0 {
		params.Set("filter", strings.Join(filters, ";")+";")
	}
	if filter.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", filter.Limit))
	}

	c.logger.Debug("Searching warehouse stock",
		"store_id", filter.StoreID,
		"product_group_id", filter.ProductGroupID)

	body, err := c.doRequest(ctx, http.MethodGet, "report/stock/all", params, nil)
	if err != nil {
		return nil, fmt.Errorf("stock search failed: %w", err)
	}

	var response stockResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: malformed stock payload: %v", common.ErrUpstreamUnavailable, err)
	}

	wanted := nameSet(filter.Names)

	items := make([]model.StockItem, 0, len(response.Rows))
	for _, row := range response.Rows {
		if len(wanted) > 0 && !wanted[strings.ToLower(strings.TrimSpace(row.Name))] {
			continue
		}

		id := idFromHref(row.Meta.Href)
		if id == "" {
			id = row.Code
		}

		items = append(items, model.StockItem{
			ID:           id,
			Name:         row.Name,
			SerialNumber: row.Code,
			Quantity:     row.Stock,
			UnitPrice:    row.Price,
		})
	}

	c.logger.Info("Stock search completed",
		"total_rows", response.Meta.Size,
		"returned_items", len(items))

	return items, nil
}

// ProductGroups lists the warehouse product folders.
func (c *Client) ProductGroups(ctx context.Context) ([]model.ProductGroup, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "entity/productfolder", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("product group listing failed: %w", err)
	}

	var response struct {
		Rows []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Archived bool   `json:"archived"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: malformed product folder payload: %v", common.ErrUpstreamUnavailable, err)
	}

	groups := make([]model.ProductGroup, 0, len(response.Rows))
	for _, row := range response.Rows {
		groups = append(groups, model.ProductGroup{
			ID:       row.ID,
			Name:     row.Name,
			Archived: row.Archived,
		})
	}

	c.logger.Debug("Product folders received", "folder_count", len(groups))
	return groups, nil
}

func nameSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[strings.ToLower(strings.TrimSpace(name))] = true
	}
	return set
}
