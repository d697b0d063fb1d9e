package api

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-storefront/internal/models"
	"github.com/bobby-s-dev/weather-storefront/internal/services"
	"github.com/bobby-s-dev/weather-storefront/internal/store"
)

const maxLimit = 50

var validate = validator.New()

// Services bundles the domain services the handlers call into.
type Services struct {
	Catalog     *services.CatalogService
	Carts       *services.CartService
	Orders      *services.OrderService
	Tracker     *services.PreferenceTracker
	Recommender *services.Recommender
	Weather     *services.WeatherService
	// Maintenance is optional.
	Maintenance interface{ GetStatus() map[string]interface{} }
}

type Handler struct {
	svc         Services
	storeDriver string
	logger      *zap.Logger
}

func NewHandler(svc Services, storeDriver string, logger *zap.Logger) *Handler {
	return &Handler{
		svc:         svc,
		storeDriver: storeDriver,
		logger:      logger,
	}
}

// GetHealth handles GET /api/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	provider := h.svc.Weather.Provider()
	weather := fiber.Map{"provider": provider.Name()}
	if b, ok := provider.(interface{ BreakerState() string }); ok {
		weather["circuit_breaker"] = b.BreakerState()
	}

	resp := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
		"store":     h.storeDriver,
		"weather":   weather,
	}
	if h.svc.Maintenance != nil {
		resp["maintenance"] = h.svc.Maintenance.GetStatus()
	}
	return c.JSON(resp)
}

// weatherFor looks up weather for the latitude/longitude query parameters.
// No coordinates means no weather.
func (h *Handler) weatherFor(c *fiber.Ctx) (*models.WeatherSnapshot, error) {
	lat, lon, ok, err := parseCoordinates(c.Query("latitude"), c.Query("longitude"))
	if err != nil || !ok {
		return nil, err
	}
	return h.svc.Weather.Lookup(c.Context(), lat, lon), nil
}

func parseCoordinates(latStr, lonStr string) (lat, lon float64, ok bool, err error) {
	latStr, lonStr = strings.TrimSpace(latStr), strings.TrimSpace(lonStr)
	if latStr == "" && lonStr == "" {
		return 0, 0, false, nil
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil || !finite(lat) || !finite(lon) {
		return 0, 0, false, errInvalidCoordinates
	}
	return lat, lon, true, nil
}

var errInvalidCoordinates = fmt.Errorf("%w: valid location coordinates are required", services.ErrInvalidInput)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func parseLimit(c *fiber.Ctx, def int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxLimit {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", services.ErrInvalidInput, maxLimit)
	}
	return limit, nil
}

// splitQuery reads a comma separated query parameter.
func splitQuery(c *fiber.Ctx, key string) []string {
	var out []string
	for _, v := range strings.Split(c.Query(key), ",") {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// bind decodes and validates the request body.
func bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fmt.Errorf("%w: malformed request body", services.ErrInvalidInput)
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: field %s failed on %q", services.ErrInvalidInput, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", services.ErrInvalidInput, err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrEmptyCart):
		return fiber.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, store.ErrInsufficientStock):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// fail renders err as an unsuccessful response. notFound is the message
// used for missing resources; server errors are logged and hidden.
func (h *Handler) fail(c *fiber.Ctx, err error, notFound string) error {
	status := statusFor(err)
	message := err.Error()
	switch status {
	case fiber.StatusNotFound:
		message = notFound
	case fiber.StatusInternalServerError:
		h.logger.Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		message = "Internal server error"
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// ErrorHandler renders errors that escape a handler in the standard
// unsuccessful envelope.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("Unhandled error",
				zap.String("path", c.Path()),
				zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}

var startTime = time.Now()
