// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"skycast/internal/delivery/http/response"
	"skycast/internal/domain/repository"
	"skycast/internal/errors"
	"skycast/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// DashboardHandler holds dependencies for the dashboard endpoints.
type DashboardHandler struct {
	uc     usecase.DashboardUsecase
	logger *slog.Logger
}

// NewDashboardHandler is the constructor for DashboardHandler, injected by Fx.
func NewDashboardHandler(uc usecase.DashboardUsecase, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		uc:     uc,
		logger: logger,
	}
}

type searchRequest struct {
	// Blank queries are accepted; the orchestrator answers them with an
	// informational notice and the default location.
	Query string `json:"query"`
}

type focusRequest struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	Span      float64 `json:"span" validate:"min=0"`
}

// GetState returns the full published dashboard state.
func (h *DashboardHandler) GetState(c echo.Context) error {
	return response.Success(c, http.StatusOK, h.uc.State(), "")
}

// Search submits a free-text location query.
func (h *DashboardHandler) Search(c echo.Context) error {
	var input searchRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid search input")
	}

	h.uc.SubmitQuery(c.Request().Context(), input.Query)

	return response.Success(c, http.StatusOK, h.uc.State(), "Search processed")
}

// LoadDefault loads the fallback location.
func (h *DashboardHandler) LoadDefault(c echo.Context) error {
	h.uc.LoadDefault(c.Request().Context())

	return response.Success(c, http.StatusOK, h.uc.State(), "Default location loaded")
}

// ListPlaces returns the visited list, most recently used first.
func (h *DashboardHandler) ListPlaces(c echo.Context) error {
	return response.Success(c, http.StatusOK, h.uc.VisitedPlaces(), "")
}

// LoadPlace reloads a saved place.
func (h *DashboardHandler) LoadPlace(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_PLACE_ID", "Place id must be a UUID")
	}

	if err := h.uc.LoadPlace(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return response.NotFound(c, "PLACE_NOT_FOUND", "No saved place with that id")
		}

		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, h.uc.State(), "Place loaded")
}

// DeletePlace removes a saved place.
func (h *DashboardHandler) DeletePlace(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_PLACE_ID", "Place id must be a UUID")
	}

	if err := h.uc.DeletePlace(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return response.NotFound(c, "PLACE_NOT_FOUND", "No saved place with that id")
		}

		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, h.uc.VisitedPlaces(), "Place deleted")
}

// Focus recenters the published map region without a reload.
func (h *DashboardHandler) Focus(c echo.Context) error {
	var input focusRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid focus input")
	}
	if err := c.Validate(&input); err != nil {
		return response.BadRequest(c, "INVALID_COORDINATES", "Coordinates out of range")
	}

	h.uc.Focus(input.Latitude, input.Longitude, input.Span)

	return response.Success(c, http.StatusOK, h.uc.State(), "Focus updated")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
