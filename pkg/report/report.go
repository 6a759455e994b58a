// Package report renders a product transparency report as a PDF document.
package report

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/hedamo/transparency/pkg/score"
)

const (
	title   = "Product Transparency Report"
	creator = "transparency"
	font    = "Helvetica"

	titleSize   = 20
	productSize = 16
	sectionSize = 13
	bodySize    = 11

	lineHeight   = 6
	bulletIndent = 8
	sectionGap   = 4

	notAvailable = "N/A"
)

// ErrNoProduct is returned when the document has no product name.
var ErrNoProduct = errors.New("product name is required")

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Ratings are optional external product ratings on a 0-10 scale.
type Ratings struct {
	Health       *float64 `json:"health,omitempty" yaml:"health,omitempty"`
	Ethical      *float64 `json:"ethical,omitempty" yaml:"ethical,omitempty"`
	Transparency *float64 `json:"transparency,omitempty" yaml:"transparency,omitempty"`
	Overall      *float64 `json:"overall,omitempty" yaml:"overall,omitempty"`
}

// Product identifies what the report is about.
type Product struct {
	Name     string   `json:"name" yaml:"name"`
	Brand    string   `json:"brand" yaml:"brand"`
	Category string   `json:"category" yaml:"category"`
	Scores   *Ratings `json:"scores,omitempty" yaml:"scores,omitempty"`
}

// Document is the content of one report. Score is optional.
type Document struct {
	Product     Product
	Score       *score.Report
	GeneratedAt time.Time
}

// FileName returns a download-safe file name for the product report.
func FileName(product string) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(strings.TrimSpace(product), "-"), "-.")
	if name == "" {
		name = "product"
	}
	return name + "-report.pdf"
}

// Render writes d as a PDF to w.
func Render(w io.Writer, d *Document) error {
	return render(w, d, true)
}

func render(w io.Writer, d *Document, compress bool) error {
	if d == nil || strings.TrimSpace(d.Product.Name) == "" {
		return ErrNoProduct
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetTitle(title, true)
	pdf.SetCreator(creator, true)
	if !d.GeneratedAt.IsZero() {
		pdf.SetCreationDate(d.GeneratedAt)
	}

	p := &page{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.AddPage()

	p.heading(titleSize, title)
	p.heading(productSize, "Product: "+d.Product.Name)
	p.text("Brand: " + orNA(d.Product.Brand))
	p.text("Category: " + orNA(d.Product.Category))
	if !d.GeneratedAt.IsZero() {
		p.text("Generated: " + d.GeneratedAt.UTC().Format(time.RFC3339))
	}

	r := d.Product.Scores
	if r == nil {
		r = &Ratings{}
	}
	p.heading(sectionSize, "Scores:")
	p.bullet("Health Score: " + rating(r.Health) + "/10")
	p.bullet("Ethical Score: " + rating(r.Ethical) + "/10")
	p.bullet("Transparency Score: " + rating(r.Transparency) + "/10")
	p.bullet("Overall Score: " + rating(r.Overall) + "/10")

	if s := d.Score; s != nil {
		p.heading(sectionSize, fmt.Sprintf("Transparency Assessment: %s/100", number(s.OverallScore)))
		for _, c := range score.Categories() {
			p.bullet(fmt.Sprintf("%s: %s", c.DisplayName(), number(s.CategoryScores.Get(c))))
		}
		p.list("Strengths:", s.Strengths)
		p.list("Weaknesses:", s.Weaknesses)
		p.list("Recommendations:", s.Recommendations)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("error writing pdf: %w", err)
	}
	return nil
}

// page wraps the layout primitives used by the report.
type page struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (p *page) heading(size float64, s string) {
	p.pdf.Ln(sectionGap)
	p.pdf.SetFont(font, "B", size)
	p.pdf.MultiCell(0, size/2, p.tr(s), "", "L", false)
}

func (p *page) text(s string) {
	p.pdf.SetFont(font, "", bodySize)
	p.pdf.MultiCell(0, lineHeight, p.tr(s), "", "L", false)
}

func (p *page) bullet(s string) {
	left, _, _, _ := p.pdf.GetMargins()
	p.pdf.SetFont(font, "", bodySize)
	p.pdf.SetX(left + bulletIndent)
	p.pdf.MultiCell(0, lineHeight, p.tr("• "+s), "", "L", false)
}

func (p *page) list(heading string, items []string) {
	if len(items) == 0 {
		return
	}
	p.heading(sectionSize, heading)
	for _, it := range items {
		p.bullet(it)
	}
}

func rating(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return number(*v)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}
