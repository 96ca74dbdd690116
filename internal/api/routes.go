package api

import (
	"net/http"
	"time"

	"fitmeal/platform/internal/domain"
	"fitmeal/platform/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth      service.AuthService
	Users     service.UserService
	Trainer   service.TrainerService
	Overview  service.OverviewService
	MealPlans service.MealPlanService
	Progress  service.ProgressService
	Protocols service.ProtocolService
	Recipes   service.RecipeService
	Export    service.ExportService
}

// Options tunes cookie handling.
type Options struct {
	RefreshTTL    time.Duration
	SecureCookies bool
}

func SetupRoutes(router *gin.Engine, svc Services, log *zap.Logger, opts Options) {
	authHandler := NewAuthHandler(svc.Auth, log, opts.RefreshTTL, opts.SecureCookies)
	userHandler := NewUserHandler(svc.Users, log)
	trainerHandler := NewTrainerHandler(svc.Trainer, svc.Overview, log)
	mealPlanHandler := NewMealPlanHandler(svc.MealPlans, log)
	progressHandler := NewProgressHandler(svc.Progress, log)
	protocolHandler := NewProtocolHandler(svc.Protocols, log)
	recipeHandler := NewRecipeHandler(svc.Recipes, log)
	exportHandler := NewExportHandler(svc.Export, log)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh_token", authHandler.RefreshToken)
		authGroup.POST("/logout", authHandler.Logout)
	}

	protected := api.Group("")
	protected.Use(AuthMiddleware(svc.Auth))
	{
		protected.GET("/me", userHandler.Me)
		protected.POST("/profile/upload-image", userHandler.UploadProfileImage)
		protected.GET("/recipes", recipeHandler.ListRecipes)
		protected.GET("/recipes/:id", recipeHandler.GetRecipe)
		protected.POST("/pdf/export", exportHandler.ExportPDF)
		protected.GET("/protocols/wizard/steps", RoleMiddleware(domain.RoleAdmin, domain.RoleTrainer), protocolHandler.WizardSteps)
	}

	trainerGroup := protected.Group("/trainer")
	trainerGroup.Use(RoleMiddleware(domain.RoleTrainer))
	{
		trainerGroup.GET("/customers", trainerHandler.ListCustomers)
		trainerGroup.POST("/customers", trainerHandler.AddCustomerByEmail)

		customer := trainerGroup.Group("/customers/:customerId")
		customer.GET("/overview", trainerHandler.CustomerOverview)
		customer.GET("/meal-plans", mealPlanHandler.ListMealPlans)
		customer.POST("/meal-plans", mealPlanHandler.AssignMealPlan)
		customer.DELETE("/meal-plans/:planId", mealPlanHandler.RemoveMealPlan)
		customer.GET("/protocols", protocolHandler.ListCustomerProtocols)
		customer.POST("/protocols", protocolHandler.AssignProtocol)
		customer.GET("/measurements", progressHandler.ListMeasurements)
		customer.POST("/measurements", progressHandler.RecordMeasurement)
		customer.GET("/goals", progressHandler.ListGoals)
		customer.POST("/goals", progressHandler.CreateGoal)
		customer.PUT("/goals/:goalId", progressHandler.UpdateGoal)
		customer.DELETE("/goals/:goalId", progressHandler.DeleteGoal)

		trainerGroup.POST("/protocols/wizard", protocolHandler.RunWizard)
		trainerGroup.GET("/protocols", protocolHandler.ListProtocols)
		trainerGroup.GET("/protocol-templates", protocolHandler.ListTemplates)
	}

	customerGroup := protected.Group("/customer")
	customerGroup.Use(RoleMiddleware(domain.RoleCustomer))
	{
		customerGroup.GET("/overview", trainerHandler.CustomerOverview)
		customerGroup.GET("/meal-plans", mealPlanHandler.ListMealPlans)
		customerGroup.GET("/protocols", protocolHandler.ListCustomerProtocols)
		customerGroup.GET("/recipes", recipeHandler.ListCustomerRecipes)
		customerGroup.GET("/measurements", progressHandler.ListMeasurements)
		customerGroup.POST("/measurements", progressHandler.RecordMeasurement)
		customerGroup.GET("/goals", progressHandler.ListGoals)
		customerGroup.POST("/goals", progressHandler.CreateGoal)
		customerGroup.PUT("/goals/:goalId", progressHandler.UpdateGoal)
	}

	adminGroup := protected.Group("/admin")
	adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
	{
		adminGroup.GET("/recipes", recipeHandler.ListRecipes)
		adminGroup.POST("/recipes", recipeHandler.CreateRecipe)
		adminGroup.GET("/recipes/:id", recipeHandler.GetRecipe)
		adminGroup.PUT("/recipes/:id", recipeHandler.UpdateRecipe)
		adminGroup.DELETE("/recipes/:id", recipeHandler.DeleteRecipe)
		adminGroup.POST("/assign-recipe", recipeHandler.AssignRecipe)
		adminGroup.GET("/users", userHandler.ListUsers)
		adminGroup.GET("/protocol-templates", protocolHandler.ListTemplates)
		adminGroup.POST("/protocol-templates", protocolHandler.CreateTemplate)
		adminGroup.POST("/protocols/wizard", protocolHandler.RunWizard)
	}
}
