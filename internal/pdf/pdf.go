// Package pdf renders recipe cards and meal plans as downloadable PDFs.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"

	"fitmeal/platform/internal/domain"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin   = 15.0
	footerHeight = 12.0
	lineHeight   = 5.0
	titleHeight  = 8.0
	cardPadding  = 4.0
	cardGap      = 6.0
)

// Document is a rendered PDF.
type Document struct {
	Data  []byte
	Pages int
}

type renderer struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	width float64 // usable width between margins
}

func newRenderer(title string, created time.Time) *renderer {
	p := fpdf.New("P", "mm", "A4", "")
	p.SetMargins(pageMargin, pageMargin, pageMargin)
	p.SetAutoPageBreak(true, pageMargin+footerHeight)
	p.SetTitle(title, true)
	p.SetCreator("fitmeal", true)
	p.SetCreationDate(created)
	p.AliasNbPages("")

	r := &renderer{
		pdf: p,
		tr:  p.UnicodeTranslatorFromDescriptor(""),
	}
	pageW, _ := p.GetPageSize()
	r.width = pageW - 2*pageMargin

	p.SetFooterFunc(func() {
		p.SetY(-pageMargin)
		p.SetFont("Helvetica", "I", 8)
		p.SetTextColor(120, 120, 120)
		p.CellFormat(0, 6, fmt.Sprintf("Page %d of {nb}", p.PageNo()), "", 0, "C", false, 0, "")
	})
	return r
}

func (r *renderer) heading(text string, size float64) {
	r.pdf.SetFont("Helvetica", "B", size)
	r.pdf.SetTextColor(33, 37, 41)
	r.pdf.MultiCell(0, titleHeight, r.tr(text), "", "L", false)
}

func (r *renderer) paragraph(text string) {
	r.pdf.SetFont("Helvetica", "", 10)
	r.pdf.SetTextColor(60, 60, 60)
	r.pdf.MultiCell(0, lineHeight, r.tr(text), "", "L", false)
}

func (r *renderer) finish() (*Document, error) {
	var buf bytes.Buffer
	pages := r.pdf.PageCount()
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return &Document{Data: buf.Bytes(), Pages: pages}, nil
}

// Slug turns a display name into a lowercase filename fragment.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if r < unicode.MaxASCII {
				b.WriteRune(r)
				dash = false
				continue
			}
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "untitled"
	}
	return s
}

// MealPlanFilename is the attachment name for an exported meal plan.
func MealPlanFilename(plan *domain.MealPlan, at time.Time) string {
	return fmt.Sprintf("meal-plan-%s-%s.pdf", Slug(plan.PlanName), at.Format("20060102"))
}

// RecipesFilename is the attachment name for exported recipe cards.
func RecipesFilename(at time.Time) string {
	return fmt.Sprintf("recipes-%s.pdf", at.Format("20060102"))
}
