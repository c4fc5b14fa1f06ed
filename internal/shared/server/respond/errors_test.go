package respond

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"onlyu-media/internal/shared/telemetry"
)

func TestErrorBodyShape(t *testing.T) {
	gin.SetMode(gin.TestMode)
	telemetry.SetOutput(io.Discard)

	r := gin.New()
	r.GET("/boom", func(c *gin.Context) {
		Error(c, http.StatusNotFound, "not_found", "Object not found", nil)
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Object not found" || body["code"] != "not_found" {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, ok := body["details"]; ok {
		t.Fatalf("details should be omitted when nil")
	}
}
