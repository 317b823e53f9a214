package textnorm

import (
	"regexp"
	"strings"
	"testing"
)

// TestNormalize tests the cleaning steps.
func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "empty",
			raw:  "",
			want: "",
		},
		{
			name: "collapses whitespace",
			raw:  "supply   chain\t\tdisruption",
			want: "supply chain disruption",
		},
		{
			name: "breaks after sentence punctuation",
			raw:  "Demand may fall. Costs may rise! Will margins hold? Unknown.",
			want: "Demand may fall.\nCosts may rise!\nWill margins hold?\nUnknown.",
		},
		{
			name: "keeps lowercase continuation",
			raw:  "Approx. ten percent of sales",
			want: "Approx. ten percent of sales",
		},
		{
			name: "splits ligatures",
			raw:  "signiﬁcant ﬁnancial eﬀects",
			want: "significant financial effects",
		},
		{
			name: "drops running header",
			raw:  "Net sales declined. Apple Inc. | 2024 Form 10-K | 17 The Company depends on suppliers.",
			want: "Net sales declined.\nThe Company depends on suppliers.",
		},
		{
			name: "keeps text around a header inside a sentence",
			raw:  "We depend on suppliers in the region Apple Inc. | 2024 Form 10-K | 17 for most of our products.",
			want: "We depend on suppliers in the region for most of our products.",
		},
		{
			name: "drops header on its own line",
			raw:  "We depend on Foxconn and other suppliers in Asia\nApple Inc. | 2024 Form 10-K | 17\nfor most of our products.",
			want: "We depend on Foxconn and other suppliers in Asia for most of our products.",
		},
		{
			name: "drops long company name on its own line",
			raw:  "Rates may rise.\nThe Goldman Sachs Group, Inc. | 2023 Form 10-K | 42\nSpreads may widen.",
			want: "Rates may rise.\nSpreads may widen.",
		},
		{
			name: "keeps short prose line ending in a header",
			raw:  "Our suppliers in Asia remain critical Apple Inc. | 2024 Form 10-K | 9\nfor our products.",
			want: "Our suppliers in Asia remain critical for our products.",
		},
		{
			name: "drops page number lines",
			raw:  "Supply chain risk.\n\n17\n\nDemand may fall.",
			want: "Supply chain risk.\nDemand may fall.",
		},
		{
			name: "keeps numbers inside a line",
			raw:  "Sales fell 17\npercent in 2024.",
			want: "Sales fell 17 percent in 2024.",
		},
		{
			name: "trims",
			raw:  "   text   ",
			want: "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestNormalize_InlineHeaderKeepsProse tests that a flattened header only
// removes the company name next to it, never the sentence before it.
func TestNormalize_InlineHeaderKeepsProse(t *testing.T) {
	t.Parallel()

	raw := "We depend on Foxconn and other suppliers in Asia Apple Inc. | 2024 Form 10-K | 17 for most of our products."
	got := Normalize(raw)

	if strings.Contains(got, "Form 10-K") {
		t.Errorf("header should have been removed: %q", got)
	}
	if !strings.HasPrefix(got, "We depend on Foxconn and other suppliers in") {
		t.Errorf("text before the header was removed: %q", got)
	}
	if !strings.HasSuffix(got, "for most of our products.") {
		t.Errorf("text after the header was removed: %q", got)
	}
}

// TestNormalize_Deterministic tests that normalization is idempotent on its output.
func TestNormalize_Deterministic(t *testing.T) {
	t.Parallel()

	raw := "Item 1A.   Risk Factors. The Company faces risk.  Acme Corp | 2023 Form 10-K | 4 More risk."
	first := Normalize(raw)
	second := Normalize(raw)

	if first != second {
		t.Error("Normalize should be deterministic")
	}
	if strings.Contains(first, "Form 10-K") {
		t.Errorf("header should have been removed: %q", first)
	}
	if Normalize(first) != first {
		t.Errorf("Normalize should be stable on normalized text: %q", first)
	}
}

// TestWithHeaderPattern tests a custom running header.
func TestWithHeaderPattern(t *testing.T) {
	t.Parallel()

	n := New(WithHeaderPattern(regexp.MustCompile(`ACME ANNUAL REPORT \d+\s*`)))
	got := n.Normalize("Prices rose. ACME ANNUAL REPORT 12 Demand fell.")
	want := "Prices rose.\nDemand fell."

	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}

	// nil keeps the default
	n = New(WithHeaderPattern(nil))
	if n.header != defaultHeaderRe {
		t.Error("nil pattern should keep the default header")
	}
}
