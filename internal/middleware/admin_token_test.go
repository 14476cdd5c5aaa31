package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func callProtected(t *testing.T, mw echo.MiddlewareFunc, target string, header string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	handler := mw(func(c echo.Context) error { return c.String(http.StatusOK, "data") })
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set("X-Admin-Token", header)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestRequireAdminTokenUnset(t *testing.T) {
	rec := callProtected(t, RequireAdminToken("", ""), "/", "whatever")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireAdminTokenHeader(t *testing.T) {
	mw := RequireAdminToken("s3cret", "")
	require.Equal(t, http.StatusOK, callProtected(t, mw, "/", "s3cret").Code)
	require.Equal(t, http.StatusUnauthorized, callProtected(t, mw, "/", "wrong").Code)
	require.Equal(t, http.StatusUnauthorized, callProtected(t, mw, "/", "").Code)
}

func TestRequireAdminTokenQueryFallback(t *testing.T) {
	// CSV downloads are opened from the browser, so the token may ride
	// the query string.
	mw := RequireAdminToken("s3cret", "")
	require.Equal(t, http.StatusOK, callProtected(t, mw, "/?token=s3cret", "").Code)
	require.Equal(t, http.StatusUnauthorized, callProtected(t, mw, "/?token=nope", "").Code)
}
