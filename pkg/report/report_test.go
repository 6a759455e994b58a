package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/hedamo/transparency/pkg/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func testDocument() *Document {
	return &Document{
		Product: Product{
			Name:     "Organic Tee",
			Brand:    "Acme",
			Category: "Apparel",
			Scores:   &Ratings{Health: ptr(7), Overall: ptr(6.5)},
		},
		Score: score.Score([]score.QAPair{{
			Question: "Where do you source materials?",
			Answer:   "We source certified organic cotton from audited fair trade farms in India, fully traceable and documented.",
		}}),
		GeneratedAt: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, testDocument()))

	b := buf.Bytes()
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
	assert.Contains(t, string(bytes.TrimSpace(b[len(b)-16:])), "%%EOF")
}

func TestRender_Content(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, testDocument(), false))

	out := buf.String()
	for _, want := range []string{
		"Product Transparency Report",
		"Product: Organic Tee",
		"Brand: Acme",
		"Health Score: 7/10",
		"Ethical Score: N/A/10",
		"Overall Score: 6.5/10",
		"Transparency Assessment: 11.67/100",
		"sourcing ethics: 70",
		"Well-documented sourcing",
		"Improve supply chain",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRender_WithoutScore(t *testing.T) {
	d := &Document{Product: Product{Name: "Tee"}}

	var buf bytes.Buffer
	require.NoError(t, render(&buf, d, false))

	out := buf.String()
	assert.Contains(t, out, "Brand: N/A")
	assert.Contains(t, out, "Transparency Score: N/A/10")
	assert.NotContains(t, out, "Transparency Assessment")
	assert.NotContains(t, out, "Recommendations:")
}

func TestRender_NoProduct(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Render(&buf, nil), ErrNoProduct)
	assert.ErrorIs(t, Render(&buf, &Document{Product: Product{Name: "  "}}), ErrNoProduct)
	assert.Zero(t, buf.Len())
}

func TestFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Organic Tee", "Organic-Tee-report.pdf"},
		{"../../etc/passwd", "etc-passwd-report.pdf"},
		{`a"b;c`, "a-b-c-report.pdf"},
		{"", "product-report.pdf"},
		{"///", "product-report.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.in))
		})
	}
}
