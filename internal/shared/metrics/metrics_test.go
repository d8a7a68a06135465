package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAddPurgedIgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(cvPurgedTotal.WithLabelValues(PurgeExpired))
	AddPurged(PurgeExpired, 0)
	AddPurged(PurgeExpired, -3)
	AddPurged(PurgeExpired, 2)
	after := testutil.ToFloat64(cvPurgedTotal.WithLabelValues(PurgeExpired))
	if after-before != 2 {
		t.Fatalf("expected +2, got %v", after-before)
	}
}

func TestHandlerServesExposition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncSaved()

	router := gin.New()
	router.GET("/metrics", Handler())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "cv_saved_total") {
		t.Fatalf("expected cv_saved_total in body")
	}
}
