package http

import (
	"strconv"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-ledger/internal/application/billing"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC   *usecase.WarehouseUseCase
	ItemUC        *usecase.ItemUseCase
	OrderUC       *usecase.OrderUseCase
	Reservations  *inventory.ReservationUseCase
	Documents     DocumentEngines
	Availability  *inventory.AvailabilityUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Sequencer     *inventory.SequencerUseCase
	Invoices      *billing.InvoiceUseCase

	// Metrics nil = sin /metrics ni métricas HTTP.
	Metrics *metrics.Metrics
	// HealthCheck nil = siempre ok.
	HealthCheck func() error
	Logger      *logger.Logger

	JWTSecret string
	JWTIssuer string
	// PostingRoles roles que pueden contabilizar documentos; vacío = cualquiera autenticado.
	PostingRoles []string
	// SwaggerFile ruta del swagger.json servido en /docs; vacío = no se sirve.
	SwaggerFile string
	AppName     string
}

// NewApp crea la aplicación fiber con el manejador de errores del ledger y registra las rutas.
func NewApp(deps RouterDeps, readTimeout, writeTimeout time.Duration) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      deps.AppName,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: ErrorHandler,
	})
	app.Use(recover.New())
	Router(app, deps)
	return app
}

// requestMetrics registra cada petición con la ruta registrada (no la URL cruda).
func requestMetrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		m.ObserveHTTP(c.Method(), c.Route().Path, strconv.Itoa(status), time.Since(start))
		return err
	}
}

func requestLog(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Debug().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("elapsed", time.Since(start)).
			Msg("http")
		return err
	}
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Logger != nil {
		app.Use(requestLog(deps.Logger.Named("http")))
	}
	if deps.Metrics != nil {
		app.Use(requestMetrics(deps.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}
	if deps.SwaggerFile != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: deps.SwaggerFile,
			Path:     "docs",
			Title:    "Inventario Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.HealthCheck != nil {
			if err := deps.HealthCheck(); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "error": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	canPost := RequireRole(deps.PostingRoles...)

	catalog := NewCatalogHandler(deps.WarehouseUC, deps.ItemUC)
	api.Post("/warehouses", catalog.CreateWarehouse)
	api.Get("/warehouses", catalog.ListWarehouses)
	api.Get("/warehouses/:id", catalog.GetWarehouse)
	api.Post("/items", catalog.CreateItem)
	api.Get("/items", catalog.ListItems)
	api.Get("/items/:id", catalog.GetItem)

	orders := NewOrderHandler(deps.OrderUC, deps.Reservations)
	api.Post("/sales-orders", orders.CreateSalesOrder)
	api.Get("/sales-orders/:id", orders.GetSalesOrder)
	api.Post("/purchase-orders", orders.CreatePurchaseOrder)
	api.Get("/purchase-orders/:id", orders.GetPurchaseOrder)
	api.Post("/purchase-orders/:id/confirm", orders.ConfirmPurchaseOrder)
	api.Post("/orders/:id/reservations", orders.ReserveStock)
	api.Delete("/orders/:id/reservations", orders.ReleaseReservations)
	api.Post("/orders/:id/cancel", orders.CancelSalesOrder)

	docs := NewDocumentHandler(deps.Documents)
	api.Post("/shipments", docs.CreateShipment)
	api.Post("/shipments/:id/post", canPost, docs.PostShipment)
	api.Post("/receipts", docs.CreateReceipt)
	api.Post("/receipts/:id/post", canPost, docs.PostReceipt)
	api.Post("/transfers", docs.CreateTransfer)
	api.Post("/transfers/:id/post", canPost, docs.PostTransfer)
	api.Post("/adjustments", docs.CreateAdjustment)
	api.Post("/adjustments/:id/post", canPost, docs.PostAdjustment)

	if deps.Invoices != nil {
		invoices := NewInvoiceHandler(deps.Invoices)
		api.Get("/invoices/:id", invoices.GetInvoice)
		api.Get("/invoices/:id/pdf", invoices.DownloadPDF)
	}

	inv := NewInventoryHandler(deps.Availability, deps.Replenishment, deps.Sequencer)
	api.Get("/availability/:item_id", inv.GetAvailability)
	api.Get("/ledger", inv.ListLedger)
	api.Get("/ledger/on-hand", inv.OnHandAt)
	api.Get("/inventory/replenishment-list", inv.GetReplenishmentList)
	api.Post("/sequences/:doc_type/next", inv.NextDocumentNumber)
}
