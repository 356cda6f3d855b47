package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rfranzoia/cloud-ready-stock/internal/application/inventory"
	"github.com/rfranzoia/cloud-ready-stock/pkg/jwt"
	"github.com/rfranzoia/cloud-ready-stock/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Transactions *inventory.TransactionLedger
	Stocks       *inventory.StockLedger
	JWTSecret    string // vacío = escrituras sin autenticación
	Log          *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api/v1", RequestLogger(log.WithComponent("http")))

	// Las escrituras exigen Bearer Token con rol operator o admin cuando hay secret configurado.
	write := func(h fiber.Handler) []fiber.Handler {
		if deps.JWTSecret == "" {
			return []fiber.Handler{h}
		}
		return []fiber.Handler{AuthMiddleware(deps.JWTSecret), RequireRole(jwt.RoleAdmin, jwt.RoleOperator), h}
	}

	// Transactions (las rutas fijas van antes de /:id)
	txHandler := NewTransactionHandler(deps.Transactions, log.WithComponent("transactions"))
	transactions := api.Group("/transactions")
	transactions.Get("/", txHandler.List)
	transactions.Get("/dates", txHandler.ListByDates)
	transactions.Get("/datesAndProduct/:productId", txHandler.ListByDatesAndProduct)
	transactions.Get("/type/:type", txHandler.ListByType)
	transactions.Get("/:id", txHandler.GetByID)
	transactions.Post("/", write(txHandler.Create)...)
	transactions.Delete("/:id", write(txHandler.Delete)...)

	// Stocks
	stockHandler := NewStockHandler(deps.Stocks, log.WithComponent("stocks"))
	stocks := api.Group("/stocks")
	stocks.Get("/", stockHandler.List)
	stocks.Get("/yearMonth/:yearMonth", stockHandler.ListByPeriod)
	stocks.Get("/yearMonth/:yearMonth/product/:productId", stockHandler.GetByPeriodAndProduct)
	stocks.Get("/product/:productId", stockHandler.ListByProduct)
	stocks.Get("/product/:productId/report", stockHandler.Report)
	stocks.Post("/", write(stockHandler.Update)...)
}
