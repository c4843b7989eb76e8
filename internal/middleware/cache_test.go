package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newGetContext(target, routePath string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(routePath)
	return c
}

func TestCacheKeySeparatesParamRoutes(t *testing.T) {
	// Two shows resolved by the same :id route must not share an entry.
	a := cacheKey("cache", newGetContext("/v1/shows/1/seats", "/v1/shows/:id/seats"))
	b := cacheKey("cache", newGetContext("/v1/shows/2/seats", "/v1/shows/:id/seats"))
	assert.NotEqual(t, a, b)
}

func TestCacheKeyStablePerURL(t *testing.T) {
	a := cacheKey("cache", newGetContext("/v1/shows/1/seats", "/v1/shows/:id/seats"))
	b := cacheKey("cache", newGetContext("/v1/shows/1/seats", "/v1/shows/:id/seats"))
	assert.Equal(t, a, b)
}

func TestCacheKeySeparatesQueries(t *testing.T) {
	a := cacheKey("cache", newGetContext("/v1/shows?filter=all", "/v1/shows"))
	b := cacheKey("cache", newGetContext("/v1/shows?filter=upcoming", "/v1/shows"))
	c := cacheKey("cache", newGetContext("/v1/shows", "/v1/shows"))
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, b, c)
}
