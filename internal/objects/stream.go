package objects

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"onlyu-media/internal/shared/metrics"
	"onlyu-media/internal/shared/server/respond"
	"onlyu-media/internal/shared/storage/object"
)

const (
	publicCacheControl  = "public, max-age=31536000, immutable"
	privateCacheControl = "private, max-age=3600"
)

var (
	errRangeMalformed     = errors.New("malformed range")
	errRangeUnsatisfiable = errors.New("range not satisfiable")
)

var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"avif": "image/avif",
	"heic": "image/heic",
	"mp4":  "video/mp4",
	"m4v":  "video/x-m4v",
	"mov":  "video/quicktime",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",
	"avi":  "video/x-msvideo",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"pdf":  "application/pdf",
}

// ContentTypeFor maps a file name's extension to a MIME type.
func ContentTypeFor(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// CacheControl is keyed on directory placement only.
func CacheControl(h Handle) string {
	if h.Public {
		return publicCacheControl
	}
	return privateCacheControl
}

// Responder writes located objects to HTTP clients.
type Responder struct {
	Store object.Store
}

// Serve buffers the whole object and writes it, honoring a single byte range.
func (r *Responder) Serve(c *gin.Context, h Handle) {
	data, err := r.read(c, h)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			metrics.RecordObjectRead(http.StatusNotFound)
			respond.Error(c, http.StatusNotFound, "not_found", "Object not found", nil)
			return
		}
		metrics.RecordObjectRead(http.StatusInternalServerError)
		respond.Error(c, http.StatusInternalServerError, "storage_error", "Error reading object", nil)
		return
	}

	size := int64(len(data))
	contentType := ContentTypeFor(h.Name())
	c.Header("Accept-Ranges", "bytes")
	c.Header("Cache-Control", CacheControl(h))

	if header := c.GetHeader("Range"); header != "" {
		start, end, err := parseRange(header, size)
		switch {
		case err == nil:
			c.Header("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
			c.Header("Content-Length", strconv.FormatInt(end-start+1, 10))
			metrics.RecordObjectRead(http.StatusPartialContent)
			c.Data(http.StatusPartialContent, contentType, data[start:end+1])
			return
		case errors.Is(err, errRangeUnsatisfiable):
			c.Header("Content-Range", fmt.Sprintf("bytes */%d", size))
			metrics.RecordObjectRead(http.StatusRequestedRangeNotSatisfiable)
			respond.Error(c, http.StatusRequestedRangeNotSatisfiable, "range_not_satisfiable", "Requested range not satisfiable", nil)
			return
		}
		// A malformed Range header is ignored and the full body is sent.
	}

	c.Header("Content-Length", strconv.FormatInt(size, 10))
	metrics.RecordObjectRead(http.StatusOK)
	c.Data(http.StatusOK, contentType, data)
}

func (r *Responder) read(c *gin.Context, h Handle) ([]byte, error) {
	rc, err := r.Store.Open(c.Request.Context(), h.Bucket, h.Key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// parseRange parses a single "bytes=" range against size and returns inclusive
// offsets. Multiple ranges are treated as malformed.
func parseRange(header string, size int64) (start, end int64, err error) {
	rangeSet, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !ok || strings.Contains(rangeSet, ",") {
		return 0, 0, errRangeMalformed
	}
	startStr, endStr, ok := strings.Cut(rangeSet, "-")
	if !ok {
		return 0, 0, errRangeMalformed
	}
	startStr, endStr = strings.TrimSpace(startStr), strings.TrimSpace(endStr)

	if startStr == "" {
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n < 0 {
			return 0, 0, errRangeMalformed
		}
		if n == 0 || size == 0 {
			return 0, 0, errRangeUnsatisfiable
		}
		if n > size {
			n = size
		}
		return size - n, size - 1, nil
	}

	start, err = strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return 0, 0, errRangeMalformed
	}
	if start >= size {
		return 0, 0, errRangeUnsatisfiable
	}
	end = size - 1
	if endStr != "" {
		e, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || e < 0 {
			return 0, 0, errRangeMalformed
		}
		if e < start {
			return 0, 0, errRangeUnsatisfiable
		}
		if e < end {
			end = e
		}
	}
	return start, end, nil
}
