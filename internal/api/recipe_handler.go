package api

import (
	"fmt"
	"net/http"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type RecipeHandler struct {
	recipeService service.RecipeService
	log           *zap.Logger
}

func NewRecipeHandler(recipeService service.RecipeService, log *zap.Logger) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService, log: log}
}

type RecipeRequest struct {
	Name            string              `json:"name" binding:"required"`
	Description     string              `json:"description"`
	MealTypes       []string            `json:"mealTypes"`
	Ingredients     []domain.Ingredient `json:"ingredients"`
	Instructions    string              `json:"instructions"`
	PrepTimeMinutes int                 `json:"prepTimeMinutes"`
	CookTimeMinutes int                 `json:"cookTimeMinutes"`
	Servings        int                 `json:"servings"`
	Nutrition       domain.Nutrition    `json:"nutrition"`
	ImageURL        string              `json:"imageUrl"`
	IsApproved      bool                `json:"isApproved"`
}

func (r *RecipeRequest) toDomain() domain.Recipe {
	return domain.Recipe{
		Name:            r.Name,
		Description:     r.Description,
		MealTypes:       r.MealTypes,
		Ingredients:     r.Ingredients,
		Instructions:    r.Instructions,
		PrepTimeMinutes: r.PrepTimeMinutes,
		CookTimeMinutes: r.CookTimeMinutes,
		Servings:        r.Servings,
		Nutrition:       r.Nutrition,
		ImageURL:        r.ImageURL,
		IsApproved:      r.IsApproved,
	}
}

type AssignRecipeRequest struct {
	RecipeID    string   `json:"recipeId" binding:"required"`
	CustomerIDs []string `json:"customerIds" binding:"required,min=1"`
}

// ListRecipes serves /recipes (approved only) and /admin/recipes (all).
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	recipes, err := h.recipeService.List(c.Request.Context(), actor)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// GetRecipe godoc
// @Summary Get a recipe
// @Description Non-admins get 404 for unapproved recipes.
// @Tags Recipes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recipe ObjectID hex"
// @Success 200 {object} domain.Recipe
// @Router /recipes/{id} [get]
// @Router /admin/recipes/{id} [get]
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	recipe, err := h.recipeService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	recipe, err := h.recipeService.Create(c.Request.Context(), actor, req.toDomain())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	recipe, err := h.recipeService.Update(c.Request.Context(), actor, id, req.toDomain())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.recipeService.Delete(c.Request.Context(), actor, id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignRecipe godoc
// @Summary Assign a recipe to customers
// @Description Idempotent; "assigned" counts only new links.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AssignRecipeRequest true "Recipe and customers"
// @Success 200 {object} gin.H "{assigned: n}"
// @Router /admin/assign-recipe [post]
func (h *RecipeHandler) AssignRecipe(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req AssignRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	recipeID, err := primitive.ObjectIDFromHex(req.RecipeID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid recipeId format")
		return
	}
	customerIDs := make([]primitive.ObjectID, 0, len(req.CustomerIDs))
	for _, hex := range req.CustomerIDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid customer ID %q", hex))
			return
		}
		customerIDs = append(customerIDs, id)
	}

	n, err := h.recipeService.AssignToCustomers(c.Request.Context(), actor, recipeID, customerIDs)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned": n})
}

// ListCustomerRecipes returns the recipes assigned to the calling customer.
func (h *RecipeHandler) ListCustomerRecipes(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	recipes, err := h.recipeService.ListForCustomer(c.Request.Context(), actor, actor.ID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}
