package partner

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/shelfsync/shelfsync/internal/model"
)

// parseListings extracts catalog items from partner search result HTML.
// The expected markup is div.catalog-item with a title link and optional
// price/stock nodes, but anything missing is simply left nil.
func parseListings(page, term string) []model.PartnerListing {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil
	}

	var listings []model.PartnerListing
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "catalog-item") {
			if listing, ok := parseCatalogItem(n, term); ok {
				listings = append(listings, listing)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return listings
}

// parseCatalogItem pulls title, price and quantity out of one catalog item
// node. The title is mandatory; a nameless item is skipped.
func parseCatalogItem(item *html.Node, term string) (model.PartnerListing, bool) {
	listing := model.PartnerListing{MatchTerm: term}

	if title := findByClass(item, "catalog-item__title"); title != nil {
		listing.Title = strings.TrimSpace(nodeText(title))
	}
	if listing.Title == "" {
		return model.PartnerListing{}, false
	}

	if price := findByClass(item, "catalog-item__price"); price != nil {
		if v, ok := parseNumber(nodeText(price)); ok {
			listing.Price = &v
		}
	}

	if stock := findByClass(item, "catalog-item__stock"); stock != nil {
		if v, ok := parseNumber(nodeText(stock)); ok {
			listing.AvailableQuantity = &v
		}
	}

	return listing, true
}

// parseNumber extracts the first numeric value from scraped text like
// "16 990 ₽" or "5 pcs in stock". Spaces inside a digit run are treated as
// thousands separators.
func parseNumber(text string) (float64, bool) {
	var b strings.Builder
	seenDigit := false
	pendingSpace := false

	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			seenDigit = true
			pendingSpace = false
		case (r == '.' || r == ',') && seenDigit && !pendingSpace:
			b.WriteRune('.')
		case unicode.IsSpace(r) && seenDigit:
			pendingSpace = true
		case seenDigit:
			// First non-numeric rune ends the number
			v, err := strconv.ParseFloat(strings.TrimSuffix(b.String(), "."), 64)
			return v, err == nil
		}
	}

	if !seenDigit {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(b.String(), "."), 64)
	return v, err == nil
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode && hasClass(n, class) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findByClass(child, class); found != nil {
			return found
		}
	}
	return nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}
