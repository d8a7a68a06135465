package tier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTierRouter(svc *Service, used int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(svc, func(ctx context.Context, userID string) int { return used })
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	handler.RegisterDevRoutes(api.Group("/dev"))
	return router
}

func TestGetTierReportsUsage(t *testing.T) {
	router := newTierRouter(NewService(DefaultLimits(), 0), 2)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tier", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Tier string `json:"tier"`
		Max  int    `json:"max"`
		Used int    `json:"used"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Tier != "free" || body.Max != 3 || body.Used != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDevSubscription(t *testing.T) {
	svc := NewService(DefaultLimits(), 0)
	router := newTierRouter(svc, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dev/subscription", strings.NewReader(`{"plan":"premium"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if got := svc.TierFor(context.Background(), "user-1"); got != Premium {
		t.Fatalf("expected premium, got %q", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/dev/subscription", strings.NewReader(`{"plan":"gold"}`))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
