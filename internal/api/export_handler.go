package api

import (
	"fmt"
	"net/http"

	"fitmeal/platform/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const pdfContentType = "application/pdf"

type ExportHandler struct {
	exportService service.ExportService
	log           *zap.Logger
}

func NewExportHandler(exportService service.ExportService, log *zap.Logger) *ExportHandler {
	return &ExportHandler{exportService: exportService, log: log}
}

// ExportRequest names either an assigned meal plan or a list of recipes.
type ExportRequest struct {
	MealPlanID string   `json:"mealPlanId"`
	RecipeIDs  []string `json:"recipeIds"`
}

// ExportPDF godoc
// @Summary Download a meal plan or recipe cards as PDF
// @Tags Export
// @Accept json
// @Produce application/pdf
// @Security BearerAuth
// @Param body body ExportRequest true "mealPlanId or recipeIds"
// @Success 200 {file} file
// @Router /pdf/export [post]
func (h *ExportHandler) ExportPDF(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	if (req.MealPlanID == "") == (len(req.RecipeIDs) == 0) {
		abortWithError(c, http.StatusBadRequest, "Exactly one of mealPlanId or recipeIds is required")
		return
	}

	var (
		export *service.Export
		err    error
	)
	if req.MealPlanID != "" {
		id, perr := primitive.ObjectIDFromHex(req.MealPlanID)
		if perr != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid mealPlanId format")
			return
		}
		export, err = h.exportService.ExportMealPlan(c.Request.Context(), actor, id)
	} else {
		ids := make([]primitive.ObjectID, 0, len(req.RecipeIDs))
		for _, hex := range req.RecipeIDs {
			id, perr := primitive.ObjectIDFromHex(hex)
			if perr != nil {
				abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid recipe ID %q", hex))
				return
			}
			ids = append(ids, id)
		}
		export, err = h.exportService.ExportRecipes(c.Request.Context(), actor, ids)
	}
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	c.Data(http.StatusOK, pdfContentType, export.Document.Data)
}
