package note

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/soapnote/soapnote/internal/domain/provider"
	"github.com/soapnote/soapnote/internal/platform/auth"
	"github.com/soapnote/soapnote/internal/platform/blobstore"
	"github.com/soapnote/soapnote/pkg/pagination"
)

type Handler struct {
	svc       *Service
	providers *provider.Service
	pipeline  *Pipeline
}

func NewHandler(svc *Service, providers *provider.Service, pipeline *Pipeline) *Handler {
	return &Handler{svc: svc, providers: providers, pipeline: pipeline}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "provider"))
	readGroup.GET("/soap-notes", h.ListNotes)
	readGroup.GET("/soap-notes/:id", h.GetNote)
	readGroup.GET("/templates", h.ListTemplates)
	readGroup.GET("/analytics/dashboard", h.Dashboard)

	writeGroup := api.Group("", auth.RequireRole("admin", "provider"))
	writeGroup.POST("/soap-notes", h.CreateNote)
	writeGroup.PUT("/soap-notes/:id", h.UpdateNote)
	writeGroup.POST("/soap-notes/:id/sign", h.SignNote)
	writeGroup.DELETE("/soap-notes/:id", h.DeleteNote)
	writeGroup.POST("/voice-to-soap", h.VoiceToSOAP)
}

// actor resolves the authenticated user to a note actor. Users without
// a provider record act with a nil provider id, which only matters for
// ownership checks.
func (h *Handler) actor(c echo.Context) Actor {
	ctx := c.Request().Context()
	a := Actor{Roles: auth.RolesFromContext(ctx)}
	if email := auth.UserIDFromContext(ctx); email != "" {
		if p, err := h.providers.GetProviderByEmail(ctx, email); err == nil {
			a.ProviderID = p.ID
		}
	}
	return a
}

func mapNoteError(err error) error {
	switch {
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, pgx.ErrNoRows):
		return echo.NewHTTPError(http.StatusNotFound, "note not found")
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func (h *Handler) CreateNote(c echo.Context) error {
	var n SOAPNote
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateNote(c.Request().Context(), &n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) GetNote(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	n, err := h.svc.GetNote(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "note not found")
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) ListNotes(c echo.Context) error {
	pg := pagination.FromContext(c)
	filter := ListFilter{
		ProviderEmail: c.QueryParam("provider_email"),
		PatientMRN:    c.QueryParam("patient_mrn"),
		Status:        c.QueryParam("status"),
	}
	notes, total, err := h.svc.ListNotes(c.Request().Context(), filter, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(notes, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateNote(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd SOAPNote
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	upd.ID = id

	n, err := h.svc.UpdateNote(c.Request().Context(), &upd, h.actor(c))
	if err != nil {
		return mapNoteError(err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) SignNote(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	n, err := h.svc.SignNote(c.Request().Context(), id, h.actor(c))
	if err != nil {
		return mapNoteError(err)
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) DeleteNote(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteNote(c.Request().Context(), id, h.actor(c)); err != nil {
		return mapNoteError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListTemplates(c echo.Context) error {
	return c.JSON(http.StatusOK, Templates(c.QueryParam("specialty")))
}

func (h *Handler) Dashboard(c echo.Context) error {
	actor := h.actor(c)
	dash, err := h.svc.BuildDashboard(c.Request().Context(), actor.ProviderID, time.Now().UTC())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dash)
}

func (h *Handler) VoiceToSOAP(c echo.Context) error {
	providerEmail := c.FormValue("provider_email")
	patientMRN := c.FormValue("patient_mrn")
	if providerEmail == "" || patientMRN == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "provider_email and patient_mrn are required")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.pipeline.Run(c.Request().Context(), Intake{
		ProviderEmail:    providerEmail,
		PatientMRN:       patientMRN,
		PatientFirstName: c.FormValue("patient_first_name"),
		PatientLastName:  c.FormValue("patient_last_name"),
		VisitType:        c.FormValue("visit_type"),
		Filename:         fh.Filename,
		ContentType:      fh.Header.Get(echo.HeaderContentType),
		Audio:            content,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrTranscriptionFailed):
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		case errors.Is(err, blobstore.ErrInvalidContentType),
			errors.Is(err, blobstore.ErrFileTooLarge),
			errors.Is(err, blobstore.ErrMissingFileName):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusCreated, result)
}
