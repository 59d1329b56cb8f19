package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func newRouter(audience string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", JWTMiddleware(testSecret, audience), func(c *gin.Context) {
		user, _ := GetUserID(c.Request.Context())
		token, _ := GetToken(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
	})
	return router
}

func TestJWTMiddleware(t *testing.T) {
	valid := jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}

	cases := []struct {
		name     string
		audience string
		header   string
		want     int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer  ", want: http.StatusUnauthorized},
		{name: "bad signature", header: "Bearer " + signToken(t, "other", valid), want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signToken(t, testSecret, jwt.RegisteredClaims{Subject: "u", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}), want: http.StatusUnauthorized},
		{name: "missing subject", header: "Bearer " + signToken(t, testSecret, jwt.RegisteredClaims{ExpiresAt: valid.ExpiresAt}), want: http.StatusUnauthorized},
		{name: "wrong audience", audience: "axpro", header: "Bearer " + signToken(t, testSecret, valid), want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + signToken(t, testSecret, valid), want: http.StatusOK},
		{name: "valid audience", audience: "axpro", header: "Bearer " + signToken(t, testSecret, jwt.RegisteredClaims{Subject: "user-1", Audience: jwt.ClaimStrings{"axpro"}}), want: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp := httptest.NewRecorder()
			newRouter(tc.audience).ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestGetTokenFromNilContext(t *testing.T) {
	if _, ok := GetToken(nil); ok {
		t.Fatal("expected no token")
	}
	if _, ok := GetUserID(nil); ok {
		t.Fatal("expected no user")
	}
}
