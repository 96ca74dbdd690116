package pdf

import (
	"fmt"
	"time"

	"fitmeal/platform/internal/domain"
)

// RenderMealPlan prints a plan summary followed by one table per day.
func RenderMealPlan(plan *domain.MealPlan, created time.Time) (*Document, error) {
	r := newRenderer(plan.PlanName, created)
	r.pdf.AddPage()
	r.heading(plan.PlanName, 18)

	summary := fmt.Sprintf("%d days | %d meals per day | target %d kcal/day", plan.Days, plan.MealsPerDay, plan.DailyCalorieTarget)
	if plan.FitnessGoal != "" {
		summary += " | goal: " + plan.FitnessGoal
	}
	r.paragraph(summary)
	if plan.Description != "" {
		r.paragraph(plan.Description)
	}
	r.pdf.Ln(4)

	cols := []struct {
		title string
		width float64
	}{
		{"Meal", 0.18},
		{"Recipe", 0.42},
		{"kcal", 0.10},
		{"Protein", 0.10},
		{"Carbs", 0.10},
		{"Fat", 0.10},
	}

	for day := 1; day <= plan.Days; day++ {
		meals := plan.MealsForDay(day)
		if len(meals) == 0 {
			continue
		}

		// Keep a day's header together with its rows.
		_, pageH := r.pdf.GetPageSize()
		need := titleHeight + float64(len(meals)+1)*lineHeight + 4
		if r.pdf.GetY()+need > pageH-pageMargin-footerHeight {
			r.pdf.AddPage()
		}

		r.heading(fmt.Sprintf("Day %d", day), 12)

		r.pdf.SetFont("Helvetica", "B", 9)
		r.pdf.SetFillColor(235, 240, 245)
		for _, c := range cols {
			r.pdf.CellFormat(r.width*c.width, lineHeight+1, c.title, "1", 0, "L", true, 0, "")
		}
		r.pdf.Ln(-1)

		r.pdf.SetFont("Helvetica", "", 9)
		dayCalories := 0
		for _, m := range meals {
			rec := m.Recipe
			dayCalories += rec.Calories
			cells := []string{
				m.MealType,
				rec.Name,
				fmt.Sprintf("%d", rec.Calories),
				fmt.Sprintf("%.0fg", rec.ProteinGrams),
				fmt.Sprintf("%.0fg", rec.CarbsGrams),
				fmt.Sprintf("%.0fg", rec.FatGrams),
			}
			for i, c := range cols {
				r.pdf.CellFormat(r.width*c.width, lineHeight+1, r.tr(cells[i]), "1", 0, "L", false, 0, "")
			}
			r.pdf.Ln(-1)
		}

		r.pdf.SetFont("Helvetica", "I", 9)
		r.pdf.CellFormat(0, lineHeight+1, fmt.Sprintf("Total: %d kcal", dayCalories), "", 1, "R", false, 0, "")
		r.pdf.Ln(3)
	}
	return r.finish()
}
