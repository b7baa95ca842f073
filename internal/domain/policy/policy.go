// Package policy is the single place where access decisions are made.
// Every endpoint funnels through Evaluate so permission rules cannot drift
// between routes. Decisions are pure functions of (caller, action, post);
// nothing here touches the network or the store.
package policy

import (
	"net/http"

	"github.com/tradewire/tradewire-api/internal/domain/entity"
)

// Action is an operation a caller wants to perform.
type Action int

const (
	ReadPost Action = iota
	CreatePost
	UpdatePost
	DeletePost
	ManageUsers
)

// Caller is a verified identity plus the role fetched from the user store.
// A nil *Caller means anonymous.
type Caller struct {
	Email string
	Name  string
	Role  entity.Role
}

// Decision is the outcome of an access check. On deny, Status and Reason
// carry the HTTP status and message; 401 (authenticate), 403 (forbidden) and
// 404 (not found) stay distinct because clients branch on them.
type Decision struct {
	Allow  bool
	Status int
	Reason string
}

func allow() Decision { return Decision{Allow: true} }

func deny(status int, reason string) Decision {
	return Decision{Allow: false, Status: status, Reason: reason}
}

// Evaluate applies the access rules for action against post. The post
// argument is ignored for CreatePost and ManageUsers.
func Evaluate(caller *Caller, action Action, post *entity.Post) Decision {
	switch action {
	case ReadPost:
		return evaluateRead(caller, post)
	case CreatePost:
		if caller == nil {
			return deny(http.StatusUnauthorized, "authentication required")
		}
		if !caller.Role.CanAccessPremium() {
			return deny(http.StatusForbidden, "premium subscription required to create posts")
		}
		return allow()
	case UpdatePost, DeletePost:
		return evaluateMutate(caller, post)
	case ManageUsers:
		if caller == nil {
			return deny(http.StatusUnauthorized, "authentication required")
		}
		if caller.Role != entity.RoleAdmin {
			return deny(http.StatusForbidden, "admin access required")
		}
		return allow()
	default:
		return deny(http.StatusForbidden, "unknown action")
	}
}

func evaluateRead(caller *Caller, post *entity.Post) Decision {
	// Drafts are visible only to their author and admins; to everyone else
	// they do not exist.
	if !post.IsPublished {
		if caller != nil && (caller.Email == post.AuthorID || caller.Role == entity.RoleAdmin) {
			return allow()
		}
		return deny(http.StatusNotFound, "blog post not found")
	}
	if post.Visibility != entity.VisibilityPremium {
		return allow()
	}
	if caller == nil {
		return deny(http.StatusUnauthorized, "authentication required")
	}
	if !caller.Role.CanAccessPremium() {
		return deny(http.StatusForbidden, "premium content")
	}
	return allow()
}

func evaluateMutate(caller *Caller, post *entity.Post) Decision {
	if caller == nil {
		return deny(http.StatusUnauthorized, "authentication required")
	}
	if caller.Email == post.AuthorID {
		return allow()
	}
	if caller.Role == entity.RoleAdmin {
		return allow()
	}
	return deny(http.StatusForbidden, "you can only modify your own posts")
}
