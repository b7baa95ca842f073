package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradewire/tradewire-api/internal/domain/entity"
	"github.com/tradewire/tradewire-api/internal/domain/policy"
	"github.com/tradewire/tradewire-api/internal/domain/repository"
	"github.com/tradewire/tradewire-api/pkg/helpers"
	"github.com/tradewire/tradewire-api/pkg/response"
)

const (
	CtxCallerKey = "caller"
	CtxEmailKey  = "userEmail"
)

// CallerFrom returns the authenticated caller, or nil for anonymous requests.
func CallerFrom(c *gin.Context) *policy.Caller {
	if v, ok := c.Get(CtxCallerKey); ok {
		if caller, ok := v.(*policy.Caller); ok {
			return caller
		}
	}
	return nil
}

func setCaller(c *gin.Context, caller *policy.Caller) {
	c.Set(CtxCallerKey, caller)
	c.Set(CtxEmailKey, caller.Email)
}

// Auth requires a valid session cookie and a live user record. The stored
// role is fetched fresh per request; roles changed after token issuance take
// effect immediately. A verified token whose user record has since vanished
// is 404, distinct from 401 (no/bad token).
func Auth(tokens *helpers.TokenManager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.SessionCookieName)
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "authentication required", nil)
			c.Abort()
			return
		}
		claims := tokens.Verify(token)
		if claims == nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid token", nil)
			c.Abort()
			return
		}
		u, err := users.GetByEmail(c.Request.Context(), claims.Email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				response.Error[any](c, http.StatusNotFound, "user not found", nil)
			} else {
				response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
			}
			c.Abort()
			return
		}
		setCaller(c, &policy.Caller{Email: u.Email, Name: u.Name, Role: u.Role})
		c.Next()
	}
}

// OptionalAuth resolves the caller when a valid session cookie is present
// and continues anonymously otherwise. Expired or forged tokens degrade to
// anonymous, never to an error. A valid token whose user record is missing
// yields a free-tier caller so premium checks deny with 403, matching the
// role a fresh lookup would assign.
func OptionalAuth(tokens *helpers.TokenManager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.SessionCookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}
		claims := tokens.Verify(token)
		if claims == nil {
			c.Next()
			return
		}
		caller := &policy.Caller{Email: claims.Email, Name: claims.Name, Role: entity.RoleFree}
		if u, err := users.GetByEmail(c.Request.Context(), claims.Email); err == nil {
			caller.Name = u.Name
			caller.Role = u.Role
		}
		setCaller(c, caller)
		c.Next()
	}
}
