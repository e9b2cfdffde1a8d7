package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering-assistant/internal/cache"
)

// CacheHandler exposes the catalog caches for maintenance.
type CacheHandler struct {
	Cache *cache.Service
}

// Stats handles GET /v1/admin/cache.
func (h *CacheHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Cache.Stats())
}

// Invalidate handles DELETE /v1/admin/cache/:kind.  Without a key query
// parameter the whole kind is cleared; "all" clears every kind.  key is
// either a stored key as listed by Stats or, together with prefix, the
// value it was built from, e.g. ?prefix=restaurant&key=Spice Hub.
func (h *CacheHandler) Invalidate(c echo.Context) error {
	if c.Param("kind") == "all" {
		h.Cache.InvalidateAll()
		return c.NoContent(http.StatusNoContent)
	}
	kind, err := cache.ParseKind(c.Param("kind"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	key := c.QueryParam("key")
	if prefix := c.QueryParam("prefix"); prefix != "" && key != "" {
		key = cache.Key(prefix, key)
	}
	if !h.Cache.Invalidate(kind, key) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no cached entry " + strconv.Quote(key)})
	}
	return c.NoContent(http.StatusNoContent)
}
