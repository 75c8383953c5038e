package http

import (
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/stock-transfer-api/pkg/jwt"
	"github.com/jhoicas/stock-transfer-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Transfers   Transferer
	Alerts      AlertLister
	Movements   MovementReader
	Products    ProductService
	Locations   LocationService
	DB          Pinger
	ServiceName string
	JWTSecret   string // vacío = rutas de escritura abiertas
}

// AppConfig opciones del servidor Fiber.
type AppConfig struct {
	Name        string
	SwaggerFile string // se monta /docs solo si el archivo existe
	Log         *logger.Logger
}

// NewApp crea la aplicación Fiber con recover, request id y log de peticiones.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: ErrorHandler,
	})
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(RequestLogger(log))

	if cfg.SwaggerFile != "" {
		if _, err := os.Stat(cfg.SwaggerFile); err == nil {
			// Swagger UI en local: http://localhost:<port>/docs
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.SwaggerFile,
				Path:     "docs",
				Title:    cfg.Name,
			}))
		}
	}
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	health := NewHealthHandler(deps.DB, deps.ServiceName)
	app.Get("/health", health.Health)

	api := app.Group("/api")

	// Solo escritura exige token: admin para catálogo, admin u operator para traslados.
	asAdmin := guard(deps.JWTSecret, jwt.RoleAdmin)
	asOperator := guard(deps.JWTSecret, jwt.RoleAdmin, jwt.RoleOperator)

	inventoryHandler := NewInventoryHandler(deps.Transfers, deps.Alerts)
	inv := api.Group("/inventory")
	inv.Post("/transfer", with(asOperator, inventoryHandler.Transfer)...)
	inv.Get("/alerts", inventoryHandler.ListAlerts)

	movementHandler := NewMovementHandler(deps.Movements)
	movements := api.Group("/movements")
	movements.Get("/", movementHandler.List)
	movements.Get("/:transfer_id", movementHandler.GetByTransferID)

	productHandler := NewProductHandler(deps.Products)
	products := api.Group("/products")
	products.Post("/", with(asAdmin, productHandler.Create)...)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", with(asAdmin, productHandler.Update)...)
	products.Delete("/:id", with(asAdmin, productHandler.Delete)...)

	locationHandler := NewLocationHandler(deps.Locations)
	locations := api.Group("/locations")
	locations.Post("/", with(asAdmin, locationHandler.Create)...)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Put("/:id", with(asAdmin, locationHandler.Update)...)
	locations.Get("/:id/inventory", locationHandler.Inventory)
	locations.Put("/:id/inventory/:product_id/threshold", with(asAdmin, locationHandler.UpdateThreshold)...)
}

func with(middleware []fiber.Handler, h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(middleware)+1)
	out = append(out, middleware...)
	return append(out, h)
}
