package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	ctxUserID  = "user_id"
	ctxIsAdmin = "is_admin"

	roleAdmin = "admin"
)

var errNotAuthorized = echo.NewHTTPError(http.StatusUnauthorized, "Not Authorized Login Again")

// Claims are carried by storefront tokens. Customer tokens set ID, admin
// tokens set Email and Role.
type Claims struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret     []byte
	adminEmail string
}

func NewAuthenticator(secret, adminEmail string) *Authenticator {
	return &Authenticator{
		secret:     []byte(secret),
		adminEmail: adminEmail,
	}
}

// Sign issues an HS256 token for claims.
func (a *Authenticator) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// User admits customers and the admin. The customer id is stored on the
// context and wins over any id in the request body.
func (a *Authenticator) User() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := a.parse(c)
			if err != nil {
				return err
			}

			switch {
			case a.isAdmin(claims):
				c.Set(ctxIsAdmin, true)
			case claims.ID != "":
				c.Set(ctxUserID, claims.ID)
			default:
				return errNotAuthorized
			}

			return next(c)
		}
	}
}

// Admin admits only the configured admin account.
func (a *Authenticator) Admin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := a.parse(c)
			if err != nil {
				return err
			}
			if !a.isAdmin(claims) {
				return errNotAuthorized
			}

			c.Set(ctxIsAdmin, true)
			return next(c)
		}
	}
}

func (a *Authenticator) isAdmin(claims *Claims) bool {
	return claims.Role == roleAdmin &&
		a.adminEmail != "" &&
		strings.EqualFold(claims.Email, a.adminEmail)
}

func (a *Authenticator) parse(c echo.Context) (*Claims, error) {
	raw := c.Request().Header.Get("token")
	if raw == "" {
		if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
			raw = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
	}
	if raw == "" {
		return nil, errNotAuthorized
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errNotAuthorized
	}

	return &claims, nil
}

// UserID is the authenticated customer, or "" for the admin.
func UserID(c echo.Context) string {
	id, _ := c.Get(ctxUserID).(string)
	return id
}

func IsAdmin(c echo.Context) bool {
	admin, _ := c.Get(ctxIsAdmin).(bool)
	return admin
}
