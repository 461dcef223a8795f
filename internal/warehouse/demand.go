package warehouse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shelfsync/shelfsync/internal/common"
	"github.com/shelfsync/shelfsync/internal/model"
)

// DemandRefs identifies the warehouse entities a demand is created under.
type DemandRefs struct {
	OrganizationID string
	CounterpartyID string
	StoreID        string
}

// Validate ensures all entity references are present.
func (r DemandRefs) Validate() error {
	if r.OrganizationID == "" || r.CounterpartyID == "" || r.StoreID == "" {
		return fmt.Errorf("%w: demand requires organization, counterparty and store IDs", common.ErrMissingConfig)
	}
	return nil
}

// CreateDemand creates a draft demand with the given products as positions.
func (c *Client) CreateDemand(ctx context.Context, refs DemandRefs, products []model.Product) (model.Demand, error) {
	if err := refs.Validate(); err != nil {
		return model.Demand{}, err
	}
	if len(products) == 0 {
		return model.Demand{}, fmt.Errorf("no products to create demand for")
	}

	c.logger.Debug("Creating demand", "product_count", len(products))

	positions := make([]map[string]any, 0, len(products))
	for _, product := range products {
		position := map[string]any{
			"assortment": c.entityHref("product", product.ID),
			"things":     product.Things,
			"quantity":   1,
		}
		if product.PurchasePrice != nil {
			position["price"] = *product.PurchasePrice
		}
		positions = append(positions, position)
	}

	payload := map[string]any{
		// Draft until a storekeeper approves it
		"applicable":   false,
		"organization": c.entityHref("organization", refs.OrganizationID),
		"agent":        c.entityHref("counterparty", refs.CounterpartyID),
		"store":        c.entityHref("store", refs.StoreID),
		"positions":    positions,
	}

	body, err := c.doRequest(ctx, http.MethodPost, "entity/demand", nil, payload)
	if err != nil {
		return model.Demand{}, fmt.Errorf("demand creation failed: %w", err)
	}

	var response struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return model.Demand{}, fmt.Errorf("%w: malformed demand payload: %v", common.ErrUpstreamUnavailable, err)
	}

	demand := model.Demand{
		ID:       response.ID,
		Products: products,
	}

	c.logger.Info("Demand created successfully",
		"demand_id", demand.ID,
		"product_count", len(products))

	return demand, nil
}
