package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/terreiro-erp-api/internal/models"
	"github.com/noah-isme/terreiro-erp-api/internal/service"
)

const testSecret = "middleware-secret"

func issueToken(t *testing.T, role models.UserRole) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, models.JWTClaims{
		UserID: 12,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func protectedRouter(roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := service.NewAuthService(nil, service.AuthConfig{AccessTokenSecret: testSecret})
	router := gin.New()
	router.GET("/members", JWT(auth, "erp_auth"), RBAC(roles...), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestJWTAcceptsBearerAndCookie(t *testing.T) {
	router := protectedRouter(ReadRoles...)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/members", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, models.RoleStandard))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/members", nil)
	req.AddCookie(&http.Cookie{Name: "erp_auth", Value: issueToken(t, models.RoleAdvanced)})
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestJWTRejectsMissingOrMalformedToken(t *testing.T) {
	router := protectedRouter(ReadRoles...)

	cases := map[string]string{
		"missing":  "",
		"scheme":   "Basic abc",
		"garbage":  "Bearer not-a-token",
		"no token": "Bearer ",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/members", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRBACForbidsInsufficientRole(t *testing.T) {
	router := protectedRouter(AdminRoles...)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/members", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, models.RoleAdvanced))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", RBAC(ReadRoles...), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuditLogsSuccessfulRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: 5, Role: models.RoleSuperuser})
	})
	router.PATCH("/members/:id", Audit(zap.New(core), "update", "member"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.DELETE("/members/:id", Audit(zap.New(core), "delete", "member"), func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, "/members/7", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/members/7", nil))

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "update", fields["action"])
	assert.Equal(t, "7", fields["resource_id"])
	assert.Equal(t, int64(5), fields["user_id"])
}

func TestMetricsMiddlewareObservesRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics, "/metrics"))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/unknown", nil))

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	routes := map[string]bool{}
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "path" {
					routes[label.GetValue()] = true
				}
			}
		}
	}
	assert.True(t, routes["/health"])
	assert.True(t, routes[UnmatchedRoute])
	assert.False(t, routes["/metrics"])
}
