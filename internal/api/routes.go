package api

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type AppConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins string
}

// NewApp creates the fiber app with the JSON codec and error envelope used
// by every route.
func NewApp(cfg AppConfig, log *zap.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "Weather Storefront",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		UnescapePath: true,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: ErrorHandler(log),
		// Params and body values outlive the request in the store.
		Immutable: true,
	})
}

func SetupRoutes(app *fiber.App, handler *Handler, cfg AppConfig, log *zap.Logger) {
	allowOrigins := cfg.AllowedOrigins
	if allowOrigins == "" {
		allowOrigins = "*"
	}

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} ${pid} ${locals:requestid} ${status} - ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	api.Get("/health", handler.GetHealth)

	admin := api.Group("/admin/products")
	admin.Post("/add", handler.AddProduct)
	admin.Get("/get", handler.FetchAllProducts)
	admin.Put("/edit/:id", handler.EditProduct)
	admin.Delete("/delete/:id", handler.DeleteProduct)

	shop := api.Group("/shop")

	products := shop.Group("/products")
	products.Get("/get", handler.GetFilteredProducts)
	products.Get("/get/:id", handler.GetProductDetails)

	search := shop.Group("/search")
	search.Get("/category/:category", handler.SearchByCategory)
	search.Get("/brand/:brand", handler.SearchByBrand)
	search.Get("/:keyword", handler.SearchProducts)

	// clear/:userId is registered before the generic two-segment delete.
	cart := shop.Group("/cart")
	cart.Post("/add", handler.AddToCart)
	cart.Get("/get/:userId", handler.FetchCartItems)
	cart.Put("/update-cart", handler.UpdateCartItemQty)
	cart.Delete("/clear/:userId", handler.ClearCart)
	cart.Delete("/:userId/:productId", handler.DeleteCartItem)

	order := shop.Group("/order")
	order.Post("/create", handler.CreateOrder)
	order.Post("/capture", handler.CapturePayment)
	order.Get("/list/:userId", handler.GetAllOrdersByUser)
	order.Get("/details/:id", handler.GetOrderDetails)

	shop.Post("/discount/weather", handler.GetWeatherDiscount)

	rec := shop.Group("/recommendation")
	rec.Post("/track-view", handler.TrackProductView)
	rec.Post("/track-search", handler.TrackSearchQuery)
	rec.Get("/user/:userId", handler.GetRecommendations)
	rec.Get("/trending", handler.GetTrendingProducts)
	rec.Get("/similar/:productId", handler.GetSimilarProducts)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Endpoint not found",
			"path":    c.Path(),
		})
	})

	log.Info("Routes registered")
}
