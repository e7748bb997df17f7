package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupSubscriptionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(nil, nil, nil, nil)
	r.PUT("/api/subscriptions", handler.PutSubscription)
	r.DELETE("/api/subscriptions", handler.DeleteSubscription)
	return r
}

func TestPutSubscriptionValidation(t *testing.T) {
	router := setupSubscriptionRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/subscriptions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestDeleteSubscriptionValidation(t *testing.T) {
	router := setupSubscriptionRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/subscriptions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRawQueryParam(t *testing.T) {
	tests := []struct {
		name     string
		rawQuery string
		key      string
		want     string
		found    bool
	}{
		{"plain value", "endpoint=https://push.example.com/abc", "endpoint", "https://push.example.com/abc", true},
		{"value kept encoded", "endpoint=https%3A%2F%2Fpush.example.com%2Fabc", "endpoint", "https%3A%2F%2Fpush.example.com%2Fabc", true},
		{"second parameter", "a=1&endpoint=xyz", "endpoint", "xyz", true},
		{"missing", "a=1&b=2", "endpoint", "", false},
		{"empty query", "", "endpoint", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := rawQueryParam(tt.rawQuery, tt.key)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}
