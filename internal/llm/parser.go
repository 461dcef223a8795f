package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shelfsync/shelfsync/internal/common"
	"github.com/shelfsync/shelfsync/internal/model"
)

// parsePredictions converts a model reply into predicted queries. The reply
// is expected to be a JSON object of the shape
//
//	{"queries": [{"terms": ["iphone 14 128"], "confidence": 0.9}]}
//
// but free-text replies are common enough that a line-based fallback is
// kept: each non-empty line becomes a single-term query. Returns
// ErrParseFailure only when nothing usable could be extracted.
func parsePredictions(content string) ([]model.PredictedQuery, error) {
	content = cleanMarkdownWrapper(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty response", common.ErrParseFailure)
	}

	if queries, ok := parseJSONPredictions(content); ok {
		return queries, nil
	}

	// JSON-looking content that did not yield queries must not leak into
	// the line fallback as literal search terms.
	if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
		return nil, fmt.Errorf("%w: no usable queries in JSON response", common.ErrParseFailure)
	}

	queries := parseLinePredictions(content)
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: no usable terms in response", common.ErrParseFailure)
	}

	return queries, nil
}

func parseJSONPredictions(content string) ([]model.PredictedQuery, bool) {
	var jsonResp struct {
		Queries []struct {
			Terms      []string `json:"terms"`
			Confidence float64  `json:"confidence"`
		} `json:"queries"`
	}

	if err := json.Unmarshal([]byte(content), &jsonResp); err != nil {
		return nil, false
	}

	var queries []model.PredictedQuery
	for _, q := range jsonResp.Queries {
		terms := cleanTerms(q.Terms)
		if len(terms) == 0 {
			continue
		}

		confidence := q.Confidence
		if confidence < 0 {
			confidence = 0
		} else if confidence > 1 {
			confidence = 1
		}

		queries = append(queries, model.PredictedQuery{
			Terms:      terms,
			Confidence: confidence,
		})
	}

	if len(queries) == 0 {
		return nil, false
	}

	return queries, true
}

func parseLinePredictions(content string) []model.PredictedQuery {
	var queries []model.PredictedQuery
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*0123456789. "))
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}
		queries = append(queries, model.PredictedQuery{
			Terms:      []string{line},
			Confidence: 0,
		})
	}
	return queries
}

// cleanTerms drops empty and duplicate terms while preserving order.
func cleanTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	cleaned := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		cleaned = append(cleaned, term)
	}
	return cleaned
}

// cleanMarkdownWrapper strips markdown code fences models like to wrap JSON in.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx >= 0 {
			content = content[idx+1:]
		} else {
			content = strings.TrimPrefix(content, "```")
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	return strings.TrimSpace(content)
}
