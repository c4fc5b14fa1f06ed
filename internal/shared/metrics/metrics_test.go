package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordUploadCountsBytesOnlyOnSuccess(t *testing.T) {
	before := testutil.ToFloat64(uploadBytesTotal.WithLabelValues("private"))

	RecordUpload("private", "success", 100)
	RecordUpload("private", "failed", 50)

	after := testutil.ToFloat64(uploadBytesTotal.WithLabelValues("private"))
	if after-before != 100 {
		t.Fatalf("expected 100 bytes recorded, got %v", after-before)
	}
}

func TestHandlerRendersPrometheusText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncBucketListing()

	r := gin.New()
	r.GET("/metrics", Handler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "media_bucket_listings_total") {
		t.Fatalf("expected bucket listing counter in output")
	}
}
