package content

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"onlyu-media/internal/shared/server/middleware"
	"onlyu-media/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches content routes to an authenticated router group.
func (h *Handler) RegisterRoutes(rg gin.IRouter) {
	rg.PUT("/content/upload-complete", h.complete)
	rg.GET("/content", h.list)
	rg.DELETE("/content/:id", h.delete)
}

func (h *Handler) complete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}

	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	res, err := h.Svc.Complete(ctx, userID, CompleteInput{
		ObjectPath:  req.ObjectPath,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
		Visibility:  req.Visibility,
		Title:       req.Title,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "object not found", nil)
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "object is owned by another user or has no owner policy", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to complete upload", nil)
		}
		return
	}

	c.Set("objectPath", res.ObjectPath)
	if res.ContentID != "" {
		c.Set("contentId", res.ContentID)
	}
	message := "upload recorded"
	if res.ContentID == "" {
		message = "upload stored; content metadata not saved"
	}
	respond.JSON(c, http.StatusOK, completeResponse{
		ObjectPath: res.ObjectPath,
		ContentID:  res.ContentID,
		Message:    message,
		Warning:    res.Warning,
	})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}

	limit := defaultListLimit
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	recs, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list content", nil)
		}
		return
	}

	resp := make([]RecordResponse, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, toResponse(rec))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}

	id := c.Param("id")
	c.Set("contentId", id)
	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	if err := h.Svc.Delete(ctx, userID, id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "content not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete content", nil)
		}
		return
	}
	respond.NoContent(c)
}
