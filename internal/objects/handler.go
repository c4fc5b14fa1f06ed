package objects

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"onlyu-media/internal/shared/server/middleware"
	"onlyu-media/internal/shared/server/respond"
	"onlyu-media/internal/shared/telemetry"
	"onlyu-media/internal/shared/util"
)

// Handler wires object routes to the service.
type Handler struct {
	Svc            *Service
	Responder      *Responder
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{
		Svc:            svc,
		Responder:      &Responder{Store: svc.store},
		MaxUploadBytes: maxUploadBytes,
	}
}

// RegisterUploadRoutes attaches the authenticated upload route.
func (h *Handler) RegisterUploadRoutes(rg gin.IRouter) {
	rg.POST("/objects/upload", h.upload)
}

// RegisterReadRoutes attaches the object read routes.
func (h *Handler) RegisterReadRoutes(r gin.IRouter) {
	r.GET("/objects/*objectPath", h.serveObject)
	r.GET("/public-objects/*filePath", h.servePublic)
	r.GET("/api/proxy/:folder/:filename", h.proxy)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}

	if h.MaxUploadBytes > 0 {
		if c.Request.ContentLength > h.MaxUploadBytes {
			respond.Error(c, http.StatusRequestEntityTooLarge, "too_large", "file exceeds the upload size limit", nil)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "too_large", "file exceeds the upload size limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	fileName, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file name", nil)
		return
	}

	visibility, err := ParseVisibility(c.PostForm("visibility"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	res, err := h.Svc.Upload(c.Request.Context(), UploadInput{
		Data:        data,
		FileName:    fileName,
		OwnerID:     userID,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Visibility:  visibility,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrConfiguration):
			respond.Error(c, http.StatusInternalServerError, "configuration_error", "object storage is not configured", nil)
		default:
			telemetry.Error("objects.upload_failed", map[string]any{"error": err.Error(), "user_id": userID})
			respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to upload object", nil)
		}
		return
	}
	c.Set("objectPath", res.CanonicalPath)

	resp := gin.H{
		"objectPath":  res.CanonicalPath,
		"storageUri":  res.StoragePath,
		"fileName":    fileName,
		"contentType": res.ContentType,
		"size":        res.Size,
	}
	if res.ACLWarning != "" {
		resp["aclWarning"] = res.ACLWarning
	}
	respond.OK(c, resp)
}

func (h *Handler) serveObject(c *gin.Context) {
	canonical := "/objects" + c.Param("objectPath")
	c.Set("objectPath", canonical)

	handle, err := h.Svc.Locate(c.Request.Context(), canonical)
	if err != nil {
		h.locateError(c, err)
		return
	}

	if err := h.Svc.AuthorizeRead(c.Request.Context(), handle, middleware.UserIDFromContext(c)); err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
		default:
			h.locateError(c, err)
		}
		return
	}

	h.Responder.Serve(c, handle)
}

func (h *Handler) servePublic(c *gin.Context) {
	filePath := c.Param("filePath")
	c.Set("objectPath", filePath)

	handle, err := h.Svc.LocatePublic(c.Request.Context(), filePath)
	if err != nil {
		h.locateError(c, err)
		return
	}
	h.Responder.Serve(c, handle)
}

func (h *Handler) proxy(c *gin.Context) {
	folder := c.Param("folder")
	filename := c.Param("filename")
	c.Set("objectPath", folder+"/"+filename)

	handle, err := h.Svc.LocateProxy(c.Request.Context(), folder, filename)
	if err != nil {
		if errors.Is(err, ErrNotFound) && IsImageName(filename) {
			c.Header("Cache-Control", "no-cache")
			c.Header("X-Placeholder", "true")
			c.Data(http.StatusOK, "image/svg+xml", PlaceholderAvatar(strings.TrimSuffix(filename, "."+extension(filename))))
			return
		}
		h.locateError(c, err)
		return
	}
	h.Responder.Serve(c, handle)
}

func (h *Handler) locateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidPath):
		respond.Error(c, http.StatusNotFound, "not_found", "Object not found", nil)
	case errors.Is(err, ErrConfiguration):
		respond.Error(c, http.StatusInternalServerError, "configuration_error", "object storage is not configured", nil)
	default:
		telemetry.Error("objects.locate_failed", map[string]any{"error": err.Error(), "path": c.Request.URL.Path})
		respond.Error(c, http.StatusInternalServerError, "storage_error", "Error reading object", nil)
	}
}
