package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type seen struct {
	userID string
	admin  bool
}

func run(t *testing.T, mw echo.MiddlewareFunc, header, value string) (*seen, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var got *seen
	err := mw(func(c echo.Context) error {
		got = &seen{userID: UserID(c), admin: IsAdmin(c)}
		return nil
	})(c)
	return got, err
}

func sign(t *testing.T, key string, claims Claims) string {
	t.Helper()
	token, err := NewAuthenticator(key, "").Sign(claims)
	require.NoError(t, err)
	return token
}

func TestUser(t *testing.T) {
	auth := NewAuthenticator(secret, "admin@shop.test")
	userToken := sign(t, secret, Claims{ID: "u1"})
	adminToken := sign(t, secret, Claims{Email: "Admin@Shop.test", Role: "admin"})

	tests := []struct {
		name   string
		header string
		value  string
		want   *seen
	}{
		{"token header", "token", userToken, &seen{userID: "u1"}},
		{"bearer header", "Authorization", "Bearer " + userToken, &seen{userID: "u1"}},
		{"admin token", "token", adminToken, &seen{admin: true}},
		{"missing token", "", "", nil},
		{"garbage", "token", "not-a-jwt", nil},
		{"wrong key", "token", sign(t, "other", Claims{ID: "u1"}), nil},
		{"no identity", "token", sign(t, secret, Claims{Email: "x@y.z"}), nil},
		{"expired", "token", sign(t, secret, Claims{ID: "u1", RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		}}), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, auth.User(), tt.header, tt.value)
			if tt.want == nil {
				var he *echo.HTTPError
				require.ErrorAs(t, err, &he)
				assert.Equal(t, http.StatusUnauthorized, he.Code)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdmin(t *testing.T) {
	auth := NewAuthenticator(secret, "admin@shop.test")

	got, err := run(t, auth.Admin(), "token", sign(t, secret, Claims{Email: "admin@shop.test", Role: "admin"}))
	require.NoError(t, err)
	assert.True(t, got.admin)

	for name, claims := range map[string]Claims{
		"customer":      {ID: "u1"},
		"other email":   {Email: "intruder@shop.test", Role: "admin"},
		"missing role":  {Email: "admin@shop.test"},
		"customer role": {ID: "u1", Email: "admin@shop.test", Role: "user"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, auth.Admin(), "token", sign(t, secret, claims))
			assert.Error(t, err)
		})
	}
}

func TestAdmin_NoAdminConfigured(t *testing.T) {
	auth := NewAuthenticator(secret, "")

	_, err := run(t, auth.Admin(), "token", sign(t, secret, Claims{Role: "admin"}))
	assert.Error(t, err)
}
