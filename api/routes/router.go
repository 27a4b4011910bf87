package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rjnat/cursorpos-backend/api/controllers"
	"github.com/rjnat/cursorpos-backend/api/middleware"
	"github.com/rjnat/cursorpos-backend/internal/inventory"
	"github.com/rjnat/cursorpos-backend/internal/receipts"
	"github.com/rjnat/cursorpos-backend/internal/sales"
	"github.com/rjnat/cursorpos-backend/internal/transactions"
	"github.com/rjnat/cursorpos-backend/pkg/config"
	"github.com/rjnat/cursorpos-backend/pkg/db"
	"github.com/rjnat/cursorpos-backend/pkg/logger"
	"github.com/rjnat/cursorpos-backend/pkg/metrics"
	pkgredis "github.com/rjnat/cursorpos-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. The redis client and the
// metrics registry may be nil; the matching middleware then degrades to a
// pass-through.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *db.Client
	Redis        *pkgredis.Client
	HTTPMetrics  *metrics.HTTPMetrics
	Gatherer     prometheus.Gatherer
	Transactions *transactions.Service
	Inventory    *inventory.Service
	Receipts     *receipts.Service
	Sales        *sales.Orchestrator
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		var store pkgredis.IdempotencyStore
		if deps.Redis != nil {
			store = deps.Redis
		}
		r.Use(middleware.Idempotency(store, logg))

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", controllers.TransactionCreate(deps.Transactions, logg))
			r.Get("/", controllers.TransactionList(deps.Transactions, logg))
			r.Get("/date-range", controllers.TransactionListByDateRange(deps.Transactions, logg))
			r.Get("/number/{number}", controllers.TransactionGetByNumber(deps.Transactions, logg))
			r.Get("/branch/{branchId}", controllers.TransactionListByBranch(deps.Transactions, logg))
			r.Get("/customer/{customerId}", controllers.TransactionListByCustomer(deps.Transactions, logg))
			r.Get("/status/{status}", controllers.TransactionListByStatus(deps.Transactions, logg))
			r.Get("/{id}", controllers.TransactionGetByID(deps.Transactions, logg))
			r.Put("/{id}/cancel", controllers.TransactionCancel(deps.Transactions, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Post("/", controllers.InventoryCreateOrUpdate(deps.Inventory, logg))
			r.Post("/adjust", controllers.InventoryAdjust(deps.Inventory, logg))
			r.Post("/reserve", controllers.InventoryReserve(deps.Inventory, logg))
			r.Post("/release", controllers.InventoryRelease(deps.Inventory, logg))
			r.Get("/low-stock", controllers.InventoryLowStock(deps.Inventory, logg))
			r.Get("/low-stock/branch/{branchId}", controllers.InventoryLowStock(deps.Inventory, logg))
			r.Get("/product/{productId}/branch/{branchId}", controllers.InventoryGetByProductAndBranch(deps.Inventory, logg))
			r.Get("/product/{productId}", controllers.InventoryListByProduct(deps.Inventory, logg))
			r.Get("/branch/{branchId}", controllers.InventoryListByBranch(deps.Inventory, logg))
			r.Get("/{id}", controllers.InventoryGetByID(deps.Inventory, logg))
		})

		r.Route("/receipts", func(r chi.Router) {
			r.Post("/transaction/{transactionId}", controllers.ReceiptGenerate(deps.Receipts, logg))
			r.Get("/transaction/{transactionId}", controllers.ReceiptGetByTransaction(deps.Receipts, logg))
			r.Get("/{id}", controllers.ReceiptGetByID(deps.Receipts, logg))
			r.Put("/{id}/print", controllers.ReceiptPrint(deps.Receipts, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Post("/", controllers.SaleComplete(deps.Sales, logg))
			r.Put("/{transactionId}/cancel", controllers.SaleCancel(deps.Sales, logg))
		})
	})

	return r
}
