package audio

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/soapnote/soapnote/internal/platform/auth"
	"github.com/soapnote/soapnote/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "provider"))
	readGroup.GET("/audio-files", h.ListAudioFiles)
	readGroup.GET("/audio-files/:id", h.GetAudioFile)
	readGroup.GET("/audio-files/:id/content", h.DownloadAudioFile)

	writeGroup := api.Group("", auth.RequireRole("admin", "provider"))
	writeGroup.POST("/audio-files", h.UploadAudioFile)
	writeGroup.PATCH("/audio-files/:id/status", h.UpdateStatus)
	writeGroup.DELETE("/audio-files/:id", h.DeleteAudioFile)
}

func (h *Handler) UploadAudioFile(c echo.Context) error {
	providerID, err := uuid.Parse(c.FormValue("provider_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid provider_id")
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

	a, err := h.svc.Upload(c.Request().Context(), providerID, fh.Filename,
		fh.Header.Get(echo.HeaderContentType), src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) GetAudioFile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "audio file not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DownloadAudioFile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rc, a, err := h.svc.Download(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "audio file not found")
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+a.OriginalFilename+`"`)
	return c.Stream(http.StatusOK, a.MimeType, rc)
}

func (h *Handler) ListAudioFiles(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	if pid := c.QueryParam("provider_id"); pid != "" {
		providerID, err := uuid.Parse(pid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid provider_id")
		}
		files, total, err := h.svc.ListByProvider(ctx, providerID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(files, total, pg.Limit, pg.Offset))
	}

	files, total, err := h.svc.List(ctx, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(files, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var body struct {
		Status     string  `json:"status"`
		Confidence *string `json:"confidence"`
		Error      *string `json:"error"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	a, err := h.svc.UpdateStatus(c.Request().Context(), id, body.Status, body.Confidence, body.Error)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAudioFile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "audio file not found")
	}
	return c.NoContent(http.StatusNoContent)
}
