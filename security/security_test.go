package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeMarketStripsScriptFromTitle(t *testing.T) {
	svc := NewService()

	out, err := svc.SanitizeMarket(MarketInput{
		Title: `Will BTC close above 100k? <script>alert(1)</script>`,
	})
	require.NoError(t, err)

	assert.NotContains(t, out.Title, "<script>")
	assert.Contains(t, out.Title, "Will BTC close above 100k?")
}

func TestSanitizeMarketRendersMarkdownDescription(t *testing.T) {
	svc := NewService()

	out, err := svc.SanitizeMarket(MarketInput{
		Title:       "Test market",
		Description: "Resolution criteria:\n\n- **official** close price\n- UTC midnight",
	})
	require.NoError(t, err)

	assert.Contains(t, out.DescriptionHTML, "<strong>official</strong>")
	assert.Contains(t, out.DescriptionHTML, "<li>")
	// Plain-text copy keeps no markup at all.
	assert.NotContains(t, out.Description, "<")
}

func TestSanitizeMarketBlocksRawHTMLInDescription(t *testing.T) {
	svc := NewService()

	out, err := svc.SanitizeMarket(MarketInput{
		Title:       "Test market",
		Description: `<img src=x onerror=alert(1)> details`,
	})
	require.NoError(t, err)

	assert.NotContains(t, out.DescriptionHTML, "onerror")
}

func TestSanitizeMarketValidation(t *testing.T) {
	svc := NewService()

	cases := []struct {
		name  string
		input MarketInput
	}{
		{"empty title", MarketInput{Title: "   "}},
		{"title too long", MarketInput{Title: strings.Repeat("x", 161)}},
		{"description too long", MarketInput{Title: "ok", Description: strings.Repeat("d", 2001)}},
		{"label too long", MarketInput{Title: "ok", YesLabel: strings.Repeat("y", 21)}},
		{"markup-only title", MarketInput{Title: "<b></b>"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SanitizeMarket(tc.input)
			assert.Error(t, err)
		})
	}
}
