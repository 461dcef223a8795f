package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchResultPage = `<!DOCTYPE html>
<html>
<body>
  <div class="catalog">
    <div class="catalog-item">
      <a class="catalog-item__title" href="/product/1">Apple iPhone 14 128GB Purple</a>
      <span class="catalog-item__price">69 990 &#8381;</span>
      <span class="catalog-item__stock">5 pcs in stock</span>
    </div>
    <div class="catalog-item featured">
      <a class="catalog-item__title" href="/product/2">
        Apple iPhone 14 Plus 256GB
      </a>
      <span class="catalog-item__price">84&nbsp;990.50</span>
    </div>
    <div class="catalog-item">
      <span class="catalog-item__price">1 000</span>
    </div>
  </div>
</body>
</html>`

func TestParseListings(t *testing.T) {
	listings := parseListings(searchResultPage, "iphone 14")

	require.Len(t, listings, 2, "the nameless item must be skipped")

	first := listings[0]
	assert.Equal(t, "Apple iPhone 14 128GB Purple", first.Title)
	assert.Equal(t, "iphone 14", first.MatchTerm)
	require.NotNil(t, first.Price)
	assert.Equal(t, 69990.0, *first.Price)
	require.NotNil(t, first.AvailableQuantity)
	assert.Equal(t, 5.0, *first.AvailableQuantity)

	second := listings[1]
	assert.Equal(t, "Apple iPhone 14 Plus 256GB", second.Title)
	require.NotNil(t, second.Price)
	assert.Equal(t, 84990.50, *second.Price)
	assert.Nil(t, second.AvailableQuantity)
}

func TestParseListings_NoItems(t *testing.T) {
	assert.Empty(t, parseListings("<html><body><p>Nothing found</p></body></html>", "x"))
	assert.Empty(t, parseListings("", "x"))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   float64
		wantOK bool
	}{
		{name: "plain integer", text: "5", want: 5, wantOK: true},
		{name: "currency suffix", text: "16 990 ₽", want: 16990, wantOK: true},
		{name: "unit suffix", text: "5 pcs in stock", want: 5, wantOK: true},
		{name: "decimal point", text: "84990.50", want: 84990.50, wantOK: true},
		{name: "decimal comma", text: "1 234,50", want: 1234.50, wantOK: true},
		{name: "non-breaking thousands separator", text: "84 990.50", want: 84990.50, wantOK: true},
		{name: "leading text", text: "Price: 300", want: 300, wantOK: true},
		{name: "trailing dot", text: "12. ", want: 12, wantOK: true},
		{name: "no digits", text: "out of stock", wantOK: false},
		{name: "empty", text: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseNumber(tt.text)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
