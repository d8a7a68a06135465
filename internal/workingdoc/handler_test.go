package workingdoc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"cv-builder/internal/cv"
	"cv-builder/internal/shared/storage/kv"
	"cv-builder/internal/shared/storage/kv/memory"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	mem := memory.New()
	handler := NewHandler(func(userID string) *Store {
		return NewStore(kv.ForUser(mem, userID))
	})
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", c.GetHeader("X-Test-User"))
		c.Next()
	})
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func do(router *gin.Engine, method, path, user, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Test-User", user)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHandlerSkillFlowIsPerUser(t *testing.T) {
	router := newTestRouter()

	resp := do(router, http.MethodPost, "/api/v1/working/skills", "user-1", `{"skill":"Welding"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = do(router, http.MethodGet, "/api/v1/working", "user-2", "")
	var other cv.Document
	if err := json.Unmarshal(resp.Body.Bytes(), &other); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(other.Skills) != 0 {
		t.Fatalf("skills leaked across users: %v", other.Skills)
	}

	resp = do(router, http.MethodDelete, "/api/v1/working/skills/Welding", "user-1", "")
	var doc cv.Document
	if err := json.Unmarshal(resp.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Skills) != 0 {
		t.Fatalf("expected skill removed, got %v", doc.Skills)
	}
}

func TestHandlerValidation(t *testing.T) {
	router := newTestRouter()

	if resp := do(router, http.MethodPatch, "/api/v1/working/template", "u", `{"template":""}`); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank template, got %d", resp.Code)
	}
	if resp := do(router, http.MethodDelete, "/api/v1/working/experience/abc", "u", ""); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad index, got %d", resp.Code)
	}
	if resp := do(router, http.MethodPut, "/api/v1/working", "u", `{"skills":`); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", resp.Code)
	}
}

func TestHandlerReplaceAndClear(t *testing.T) {
	router := newTestRouter()

	resp := do(router, http.MethodPut, "/api/v1/working", "u", `{"personal":{"fullName":"Lerato"},"template":"modern"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var doc cv.Document
	_ = json.Unmarshal(resp.Body.Bytes(), &doc)
	if doc.Personal.FullName != "Lerato" || doc.Template != "modern" {
		t.Fatalf("unexpected document %+v", doc)
	}

	if resp := do(router, http.MethodDelete, "/api/v1/working", "u", ""); resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	resp = do(router, http.MethodGet, "/api/v1/working", "u", "")
	doc = cv.Document{}
	_ = json.Unmarshal(resp.Body.Bytes(), &doc)
	if doc.Personal.FullName != "" || doc.Template != cv.DefaultTemplate {
		t.Fatalf("expected defaults after clear, got %+v", doc)
	}
}
