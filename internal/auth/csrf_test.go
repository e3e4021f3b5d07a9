package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

var testCSRFSecret = []byte("test-secret-key-32-bytes-long!!!")

func init() {
	gin.SetMode(gin.TestMode)
}

func newCSRFRouter(token *string) *gin.Engine {
	router := gin.New()
	router.Use(CSRFMiddleware(testCSRFSecret, false))
	router.GET("/settings", func(c *gin.Context) {
		if token != nil {
			*token = GetCSRFToken(c)
		}
		c.Status(http.StatusOK)
	})
	router.POST("/settings", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.PUT("/api/preferences", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestCSRFMiddleware_AllowsGET(t *testing.T) {
	router := newCSRFRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 for GET request, got %d", rr.Code)
	}
}

func TestCSRFMiddleware_BlocksPOSTWithoutToken(t *testing.T) {
	router := newCSRFRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/settings", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for POST without CSRF token, got %d", rr.Code)
	}
}

func TestCSRFMiddleware_BlocksAPIPutWithoutToken(t *testing.T) {
	router := newCSRFRouter(nil)

	req := httptest.NewRequest(http.MethodPut, "/api/preferences", strings.NewReader(`{"font_size":"large"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "CSRF token invalid or missing") {
		t.Errorf("Expected JSON CSRF error, got %s", rr.Body.String())
	}
}

func TestCSRFMiddleware_AcceptsTokenFromHeader(t *testing.T) {
	var token string
	router := newCSRFRouter(&token)

	get := httptest.NewRequest(http.MethodGet, "/settings", nil)
	getRR := httptest.NewRecorder()
	router.ServeHTTP(getRR, get)

	if token == "" {
		t.Fatal("Expected CSRF token to be set in context")
	}

	put := httptest.NewRequest(http.MethodPut, "/api/preferences", strings.NewReader(`{}`))
	put.Header.Set(CSRFTokenHeader, token)
	for _, cookie := range getRR.Result().Cookies() {
		put.AddCookie(cookie)
	}
	putRR := httptest.NewRecorder()
	router.ServeHTTP(putRR, put)

	if putRR.Code != http.StatusOK {
		t.Errorf("Expected 200 with a valid token, got %d: %s", putRR.Code, putRR.Body.String())
	}
}

func TestGetCSRFToken_NoToken(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if token := GetCSRFToken(c); token != "" {
		t.Errorf("Expected empty token, got %s", token)
	}
}

func TestGetCSRFToken_WithToken(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set("csrf_token", "test-token-123")

	if token := GetCSRFToken(c); token != "test-token-123" {
		t.Errorf("Expected 'test-token-123', got '%s'", token)
	}
}

func TestCSRFErrorHandler_JSON(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Accept", "application/json")

	csrfErrorHandler(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", ct)
	}
}

func TestCSRFErrorHandler_RedirectsToReferer(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/settings", nil)
	req.Header.Set("Referer", "http://localhost:8080/settings?saved=1")

	csrfErrorHandler(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d", rr.Code)
	}
	loc := rr.Header().Get("Location")
	if !strings.HasPrefix(loc, "http://localhost:8080/settings?saved=1&error=") {
		t.Errorf("Unexpected redirect target %s", loc)
	}
}

func TestCSRFErrorHandler_HTML(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Accept", "text/html")

	csrfErrorHandler(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rr.Code)
	}
}
