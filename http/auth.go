package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"eventbooking/entity"
)

const identityKey = "identity"

type claims struct {
	Role     entity.Role `json:"role"`
	Username string      `json:"username"`
	jwt.RegisteredClaims
}

// NewToken signs an HS256 bearer token for identity.
func NewToken(secret string, identity entity.Identity, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role:     identity.Role,
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("could not sign token: %w", err)
	}

	return signed, nil
}

// authenticate accepts HS256 bearer tokens signed with secret and puts the
// caller's identity into the echo context.
func authenticate(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			var cl claims
			_, err := jwt.ParseWithClaims(
				strings.TrimPrefix(header, "Bearer "),
				&cl,
				func(t *jwt.Token) (any, error) {
					return []byte(secret), nil
				},
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			switch cl.Role {
			case entity.RoleStudent, entity.RoleOrganizer, entity.RoleAdmin:
			default:
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid role")
			}
			if cl.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing subject")
			}

			c.Set(identityKey, entity.Identity{
				UserID:   cl.Subject,
				Username: cl.Username,
				Role:     cl.Role,
			})

			return next(c)
		}
	}
}

// requireRole must be used after authenticate.
func requireRole(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := identity(c).RequireRole(roles...); err != nil {
				return err
			}

			return next(c)
		}
	}
}

func identity(c echo.Context) entity.Identity {
	id, _ := c.Get(identityKey).(entity.Identity)
	return id
}
