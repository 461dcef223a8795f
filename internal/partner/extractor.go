package partner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shelfsync/shelfsync/internal/common"
	"github.com/shelfsync/shelfsync/internal/llm"
	"github.com/shelfsync/shelfsync/internal/model"
)

// maxExtractionHTML caps how much scraped HTML is shipped to the model.
const maxExtractionHTML = 100_000

// LLMExtractor asks a language model to read listings out of search result
// HTML the structural parser could not handle.
type LLMExtractor struct {
	client llm.Client
	logger *slog.Logger
}

// NewLLMExtractor creates an extractor backed by the given model client.
func NewLLMExtractor(client llm.Client) *LLMExtractor {
	return &LLMExtractor{
		client: client,
		logger: slog.Default().With("component", "partner_extractor"),
	}
}

// Extract parses listings from HTML via the model. Unparseable model output
// degrades to an empty result; downstream scoring is the real safety net.
func (e *LLMExtractor) Extract(ctx context.Context, term, page string) ([]model.PartnerListing, error) {
	if strings.TrimSpace(page) == "" {
		return nil, nil
	}
	if len(page) > maxExtractionHTML {
		page = page[:maxExtractionHTML]
	}

	content, err := e.client.Complete(ctx, e.buildPrompt(term, page))
	if err != nil {
		return nil, fmt.Errorf("listing extraction failed: %w", err)
	}

	listings, err := parseExtraction(content, term)
	if err != nil {
		e.logger.Warn("Unparseable extraction response",
			"term", term,
			"response_length", len(content))
		return nil, nil
	}

	return listings, nil
}

func (e *LLMExtractor) buildPrompt(term, page string) string {
	return fmt.Sprintf(`You are given the HTML of a product search results page.

Find products matching %q. Product names might be slightly different from the search term.

Respond with JSON in this exact shape, omitting price or quantity when the page does not show them:
{
  "listings": [
    {"title": "Apple iPhone 14 128GB, purple", "price": 16000, "quantity": 5}
  ]
}

HTML page:
%s`, term, page)
}

func parseExtraction(content, term string) ([]model.PartnerListing, error) {
	// Models wrap JSON in fences or prose; keep the outermost object only.
	content = strings.TrimSpace(content)
	if idx := strings.Index(content, "{"); idx > 0 {
		content = content[idx:]
	}
	if end := strings.LastIndex(content, "}"); end >= 0 {
		content = content[:end+1]
	}

	var jsonResp struct {
		Listings []struct {
			Title    string   `json:"title"`
			Price    *float64 `json:"price"`
			Quantity *float64 `json:"quantity"`
		} `json:"listings"`
	}
	if err := json.Unmarshal([]byte(content), &jsonResp); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrParseFailure, err)
	}

	listings := make([]model.PartnerListing, 0, len(jsonResp.Listings))
	for _, l := range jsonResp.Listings {
		title := strings.TrimSpace(l.Title)
		if title == "" {
			continue
		}
		listings = append(listings, model.PartnerListing{
			Title:             title,
			Price:             l.Price,
			AvailableQuantity: l.Quantity,
			MatchTerm:         term,
		})
	}

	return listings, nil
}
