package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/iliyamo/shoe-workshop/internal/config"
	"github.com/iliyamo/shoe-workshop/internal/model"
	"github.com/iliyamo/shoe-workshop/internal/utils"
)

const secret = "middleware-secret"

func token(t *testing.T, id uint64, role model.Role, ttl time.Duration) string {
	t.Helper()
	at, err := utils.NewAccessToken(secret, id, role, ttl)
	require.NoError(t, err)
	return at.Token
}

func newServer(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/whoami", func(c echo.Context) error {
		id, _ := CurrentUserID(c)
		role, _ := CurrentRole(c)
		return c.JSON(http.StatusOK, echo.Map{"id": id, "role": role})
	}, mw...)
	return e
}

func do(e *echo.Echo, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := newServer(JWTAuth(secret))

	rec := do(e, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Access token required", gjson.Get(rec.Body.String(), "error").String())

	rec = do(e, "Basic abc")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, "Bearer garbage")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Invalid or expired token", gjson.Get(rec.Body.String(), "error").String())

	rec = do(e, "Bearer "+token(t, 7, model.RoleWorker, -time.Minute))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, "Bearer "+token(t, 7, model.RoleWorker, time.Minute))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(7), gjson.Get(rec.Body.String(), "id").Int())
	require.Equal(t, "worker", gjson.Get(rec.Body.String(), "role").String())
}

func TestRolePredicates(t *testing.T) {
	cases := []struct {
		name string
		mw   echo.MiddlewareFunc
		role model.Role
		want int
	}{
		{"admin only rejects sales", RequireAdmin(), model.RoleSales, http.StatusForbidden},
		{"admin only accepts admin", RequireAdmin(), model.RoleAdmin, http.StatusOK},
		{"worker or admin accepts worker", RequireWorkerOrAdmin(), model.RoleWorker, http.StatusOK},
		{"worker or admin rejects sales", RequireWorkerOrAdmin(), model.RoleSales, http.StatusForbidden},
		{"sales or admin accepts sales", RequireSalesOrAdmin(), model.RoleSales, http.StatusOK},
		{"sales or admin rejects worker", RequireSalesOrAdmin(), model.RoleWorker, http.StatusForbidden},
		{"role set", RequireRole(model.RoleWorker, model.RoleSales), model.RoleSales, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newServer(JWTAuth(secret), tc.mw)
			rec := do(e, "Bearer "+token(t, 1, tc.role, time.Minute))
			require.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	e := newServer(RequireAdmin())
	require.Equal(t, http.StatusForbidden, do(e, "").Code)
}

type table map[model.Role][]string

func (t table) Allowed(role model.Role, resource, action string) bool {
	for _, p := range t[role] {
		if p == resource+":"+action {
			return true
		}
	}
	return false
}

func TestRequirePermission(t *testing.T) {
	perms := table{model.RoleSales: {"sales:read"}}
	e := newServer(JWTAuth(secret), RequirePermission(perms, "sales", "read"))

	require.Equal(t, http.StatusOK, do(e, "Bearer "+token(t, 1, model.RoleSales, time.Minute)).Code)
	rec := do(e, "Bearer "+token(t, 1, model.RoleWorker, time.Minute))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Insufficient permissions", gjson.Get(rec.Body.String(), "error").String())
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	e := newServer(RateLimit(config.RateLimitConfig{Enabled: true}, nil))
	require.Equal(t, http.StatusOK, do(e, "").Code)
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/sales", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/sales")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}
	require.Equal(t, "rl:ip:10.0.0.1:user:anon:route:GET /api/sales", rateKey(cfg, c))

	c.Set(ctxUserID, uint64(9))
	cfg.KeyStrategy = "user"
	require.Equal(t, "rl:user:9", rateKey(cfg, c))
}
