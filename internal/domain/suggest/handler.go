package suggest

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/soapnote/soapnote/internal/platform/auth"
)

// defaultLimit caps suggestion results per request.
const defaultLimit = 20

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "provider"))
	readGroup.GET("/suggestions/diagnoses", h.SuggestDiagnoses)
	readGroup.GET("/suggestions/medications", h.SuggestMedications)
}

func (h *Handler) SuggestDiagnoses(c echo.Context) error {
	out, err := h.repo.Diagnoses(c.Request().Context(), c.QueryParam("q"), defaultLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if out == nil {
		out = []Diagnosis{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) SuggestMedications(c echo.Context) error {
	out, err := h.repo.Medications(c.Request().Context(), c.QueryParam("q"), defaultLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if out == nil {
		out = []Medication{}
	}
	return c.JSON(http.StatusOK, out)
}
