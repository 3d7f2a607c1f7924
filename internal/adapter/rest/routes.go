package rest

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/kamalsai369/EcoMind/internal/domain"
	"github.com/kamalsai369/EcoMind/internal/forest"
)

// minLocationLen is the shortest accepted location name after trimming.
const minLocationLen = 2

var validate = validator.New()

// handlers carries the service and the request-validation bounds.
type handlers struct {
	svc *forest.Service
	cfg Config
}

func (h *handlers) register(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/health", h.liveness)
	api.Get("/health/analysis", h.healthAnalysis)
	api.Get("/carbon/analysis", h.carbonAnalysis)
	api.Get("/trends", h.trends)
	api.Get("/locations", h.listLocations)
	api.Post("/locations", h.addLocation)
	api.Get("/locations/search", h.searchLocations)
	api.Get("/metrics/overview", h.overview)
	api.Get("/ndvi/analysis", h.ndviAnalysis)
	api.Get("/changes", h.changes)
	api.Get("/training/status", h.trainingStatus)
}

func (h *handlers) liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": domain.Now(),
	})
}

func (h *handlers) healthAnalysis(c *fiber.Ctx) error {
	name, err := h.locationQuery(c)
	if err != nil {
		return err
	}

	snap, err := h.svc.Health(c.Context(), name)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to analyze forest health")
	}
	return c.JSON(snap)
}

func (h *handlers) carbonAnalysis(c *fiber.Ctx) error {
	name, err := h.locationQuery(c)
	if err != nil {
		return err
	}

	carbon, err := h.svc.Carbon(c.Context(), name)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to analyze carbon sequestration")
	}
	return c.JSON(carbon)
}

func (h *handlers) trends(c *fiber.Ctx) error {
	name, err := h.locationQuery(c)
	if err != nil {
		return err
	}
	days, err := h.daysQuery(c)
	if err != nil {
		return err
	}

	series, err := h.svc.Trends(c.Context(), name, days)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to compute trends")
	}
	return c.JSON(series)
}

func (h *handlers) listLocations(c *fiber.Ctx) error {
	summaries, err := h.svc.Locations(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to list locations")
	}
	return c.JSON(summaries)
}

// addLocationRequest is the POST /api/locations body.
type addLocationRequest struct {
	Location string `json:"location" validate:"required,min=2"`
}

func (h *handlers) addLocation(c *fiber.Ctx) error {
	var req addLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "request body must be JSON with a location field")
	}
	req.Location = strings.TrimSpace(req.Location)
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "location must be at least 2 characters")
	}

	loc, snap, err := h.svc.Add(c.Context(), req.Location)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to add location")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "location registered",
		"location": loc,
		"snapshot": snap,
	})
}

func (h *handlers) searchLocations(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if err := validate.Var(query, "required,min=2"); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "q must be at least 2 characters")
	}

	matches, created, err := h.svc.Search(c.Context(), query)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to search locations")
	}
	return c.JSON(fiber.Map{
		"query":   query,
		"created": created,
		"matches": matches,
	})
}

func (h *handlers) overview(c *fiber.Ctx) error {
	// Unlike the analysis routes, no location means the whole estate.
	name := strings.TrimSpace(c.Query("location"))
	if name != "" && len(name) < minLocationLen {
		return fiber.NewError(fiber.StatusBadRequest, "location must be at least 2 characters")
	}

	ov, err := h.svc.Overview(c.Context(), name)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to build overview")
	}
	return c.JSON(ov)
}

func (h *handlers) ndviAnalysis(c *fiber.Ctx) error {
	name, err := h.locationQuery(c)
	if err != nil {
		return err
	}

	summary, err := h.svc.NDVI(c.Context(), name)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to analyze vegetation indices")
	}
	return c.JSON(summary)
}

func (h *handlers) changes(c *fiber.Ctx) error {
	name, err := h.locationQuery(c)
	if err != nil {
		return err
	}

	feed, err := h.svc.Changes(c.Context(), name)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to detect changes")
	}
	return c.JSON(feed)
}

func (h *handlers) trainingStatus(c *fiber.Ctx) error {
	return c.JSON(h.svc.TrainingStatus())
}

// locationQuery returns the validated location parameter, falling back to the
// configured default when the request names none.
func (h *handlers) locationQuery(c *fiber.Ctx) (string, error) {
	raw := c.Query("location")
	if raw == "" {
		return h.cfg.DefaultLocation, nil
	}
	name := strings.TrimSpace(raw)
	if len(name) < minLocationLen {
		return "", fiber.NewError(fiber.StatusBadRequest, "location must be at least 2 characters")
	}
	return name, nil
}

// daysQuery returns the validated trend window, bounded to [1, TrendMaxDays].
func (h *handlers) daysQuery(c *fiber.Ctx) (int, error) {
	raw := c.Query("days")
	if raw == "" {
		return h.cfg.TrendDefaultDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > h.cfg.TrendMaxDays {
		return 0, fiber.NewError(fiber.StatusBadRequest,
			"days must be an integer between 1 and "+strconv.Itoa(h.cfg.TrendMaxDays))
	}
	return days, nil
}
