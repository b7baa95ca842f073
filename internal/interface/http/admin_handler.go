package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tradewire/tradewire-api/internal/domain/policy"
	"github.com/tradewire/tradewire-api/internal/domain/repository"
	"github.com/tradewire/tradewire-api/internal/interface/middleware"
	"github.com/tradewire/tradewire-api/pkg/helpers"
	"github.com/tradewire/tradewire-api/pkg/response"
)

type AdminHandler struct {
	Users  repository.UserRepository
	Logger *logrus.Logger
}

func NewAdminHandler(users repository.UserRepository, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Users: users, Logger: logger}
}

// UpdateUserRoles POST /api/admin/update-user-roles backfills the free role
// onto user records that predate roles. Idempotent: a second run modifies
// nothing.
func (h *AdminHandler) UpdateUserRoles(c *gin.Context) {
	if d := policy.Evaluate(middleware.CallerFrom(c), policy.ManageUsers, nil); !d.Allow {
		response.Error[any](c, d.Status, d.Reason, nil)
		return
	}
	res, err := h.Users.BackfillRoles(c.Request.Context())
	if err != nil {
		helpers.LogError(h.Logger, "role backfill failed", err, nil)
		response.Error[any](c, http.StatusInternalServerError, "failed to update user roles", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"modified_count": res.Modified,
		"matched_count":  res.Matched,
	}, "user roles updated successfully", nil)
}

// ListUserRoles GET /api/admin/update-user-roles reports every user's role
// and how many records a backfill would still touch.
func (h *AdminHandler) ListUserRoles(c *gin.Context) {
	if d := policy.Evaluate(middleware.CallerFrom(c), policy.ManageUsers, nil); !d.Allow {
		response.Error[any](c, d.Status, d.Reason, nil)
		return
	}
	users, err := h.Users.ListAll(c.Request.Context())
	if err != nil {
		helpers.LogError(h.Logger, "user listing failed", err, nil)
		response.Error[any](c, http.StatusInternalServerError, "failed to fetch user roles", nil)
		return
	}
	missing, err := h.Users.CountMissingRole(c.Request.Context())
	if err != nil {
		helpers.LogError(h.Logger, "missing role count failed", err, nil)
		response.Error[any](c, http.StatusInternalServerError, "failed to fetch user roles", nil)
		return
	}

	type userRole struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	}
	out := make([]userRole, 0, len(users))
	for _, u := range users {
		out = append(out, userRole{Email: u.Email, Name: u.Name, Role: string(u.Role)})
	}
	response.Success(c, http.StatusOK, gin.H{
		"users":              out,
		"total_users":        len(out),
		"users_without_role": missing,
		"users_with_role":    int64(len(out)) - missing,
	}, "user roles", nil)
}
