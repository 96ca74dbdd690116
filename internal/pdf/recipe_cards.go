package pdf

import (
	"fmt"
	"strings"
	"time"

	"fitmeal/platform/internal/domain"
)

// RenderRecipeCards lays recipes out as stacked cards. A card that does not
// fit in the space left on the page starts on a new page.
func RenderRecipeCards(title string, recipes []domain.Recipe, created time.Time) (*Document, error) {
	r := newRenderer(title, created)
	r.pdf.AddPage()
	r.heading(title, 18)
	r.pdf.Ln(2)

	for i := range recipes {
		r.recipeCard(&recipes[i])
	}
	return r.finish()
}

func (r *renderer) recipeCard(rec *domain.Recipe) {
	inner := r.width - 2*cardPadding
	ingredients := ingredientLines(rec.Ingredients)

	r.pdf.SetFont("Helvetica", "", 10)
	ingLines := 0
	for _, l := range ingredients {
		ingLines += len(r.pdf.SplitText(r.tr(l), inner))
	}
	instrLines := 0
	if rec.Instructions != "" {
		instrLines = len(r.pdf.SplitText(r.tr(rec.Instructions), inner))
	}

	// title + meta + nutrition + section labels
	height := 2*cardPadding + titleHeight + 2*lineHeight +
		float64(ingLines+instrLines)*lineHeight + 2*lineHeight

	_, pageH := r.pdf.GetPageSize()
	bottom := pageH - pageMargin - footerHeight
	if r.pdf.GetY()+height > bottom && height <= bottom-pageMargin {
		r.pdf.AddPage()
	}

	x, y := pageMargin, r.pdf.GetY()
	r.pdf.SetDrawColor(200, 200, 200)
	if r.pdf.GetY()+height <= bottom {
		r.pdf.Rect(x, y, r.width, height, "D")
	}

	r.pdf.SetLeftMargin(pageMargin + cardPadding)
	r.pdf.SetRightMargin(pageMargin + cardPadding)
	r.pdf.SetXY(x+cardPadding, y+cardPadding)

	r.heading(rec.Name, 13)

	r.pdf.SetFont("Helvetica", "", 9)
	r.pdf.SetTextColor(100, 100, 100)
	meta := fmt.Sprintf("Prep %d min | Cook %d min | Serves %d", rec.PrepTimeMinutes, rec.CookTimeMinutes, rec.Servings)
	r.pdf.CellFormat(0, lineHeight, meta, "", 1, "L", false, 0, "")
	n := rec.Nutrition
	macro := fmt.Sprintf("%d kcal | Protein %.0fg | Carbs %.0fg | Fat %.0fg", n.Calories, n.ProteinGrams, n.CarbsGrams, n.FatGrams)
	r.pdf.CellFormat(0, lineHeight, macro, "", 1, "L", false, 0, "")

	if len(ingredients) > 0 {
		r.pdf.SetFont("Helvetica", "B", 10)
		r.pdf.CellFormat(0, lineHeight, "Ingredients", "", 1, "L", false, 0, "")
		r.paragraph(strings.Join(ingredients, "\n"))
	}
	if rec.Instructions != "" {
		r.pdf.SetFont("Helvetica", "B", 10)
		r.pdf.CellFormat(0, lineHeight, "Instructions", "", 1, "L", false, 0, "")
		r.paragraph(rec.Instructions)
	}

	r.pdf.SetLeftMargin(pageMargin)
	r.pdf.SetRightMargin(pageMargin)
	r.pdf.SetXY(pageMargin, y+height+cardGap)
}

func ingredientLines(ings []domain.Ingredient) []string {
	lines := make([]string, 0, len(ings))
	for _, ing := range ings {
		qty := strings.TrimSpace(ing.Amount + " " + ing.Unit)
		if qty == "" {
			lines = append(lines, "- "+ing.Name)
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s %s", qty, ing.Name))
	}
	return lines
}
