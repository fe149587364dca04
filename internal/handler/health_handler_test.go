package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

type stubCounter map[models.ReferenceKind]int

func (s stubCounter) CountByKind(context.Context) (map[models.ReferenceKind]int, error) {
	return s, nil
}

func serveHealth(h *HealthHandler) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/v1/health", h.GetHealth)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	return w
}

func TestHealthHealthy(t *testing.T) {
	ok := func(context.Context) error { return nil }
	w := serveHealth(NewHealthHandler(
		map[string]PingFunc{"database": ok, "redis": ok},
		stubCounter{models.ReferenceCategory: 3},
	))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Status     string         `json:"status"`
			References map[string]int `json:"references"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data.Status != "healthy" || body.Data.References["category"] != 3 {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestHealthDegraded(t *testing.T) {
	w := serveHealth(NewHealthHandler(map[string]PingFunc{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}, nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Data struct {
			Status       string                       `json:"status"`
			Dependencies map[string]map[string]string `json:"dependencies"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Status != "degraded" || body.Data.Dependencies["redis"]["status"] != "disconnected" {
		t.Errorf("body = %s", w.Body.String())
	}
}
