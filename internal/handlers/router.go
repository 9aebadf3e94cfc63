package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "kasa/internal/docs" // Import swagger docs
	"kasa/internal/engine"
	"kasa/internal/middleware"
)

// RouterConfig carries what the router needs beyond the engine.
type RouterConfig struct {
	CORSOrigins []string
	Now         func() time.Time
}

// NewRouter mounts every endpoint over eng.
func NewRouter(eng *engine.Engine, cfg RouterConfig) *gin.Engine {
	categoryHandler := NewCategoryHandler(eng.Categories())
	transactionHandler := NewTransactionHandler(eng.Ledger())
	budgetHandler := NewBudgetHandler(eng.Budgets(), cfg.Now)
	analysisHandler := NewAnalysisHandler(eng.Analysis())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "pending_writes": eng.Pending()})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.SerializeWrites())

	// Category routes
	categories := v1.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/totals", categoryHandler.GetCategoryTotals)
	categories.PUT("/income/named", categoryHandler.SetNamedIncome)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Transaction routes
	transactions := v1.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/totals", transactionHandler.GetTotals)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Budget routes
	budgets := v1.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/active", budgetHandler.GetActiveBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	// Analysis routes
	analysis := v1.Group("/analysis")
	analysis.GET("", analysisHandler.GetAnalysis)
	analysis.POST("/next", analysisHandler.NextPeriod)
	analysis.POST("/previous", analysisHandler.PreviousPeriod)

	return router
}
