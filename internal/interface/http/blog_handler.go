package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tradewire/tradewire-api/internal/application"
	"github.com/tradewire/tradewire-api/internal/domain/entity"
	"github.com/tradewire/tradewire-api/internal/domain/policy"
	"github.com/tradewire/tradewire-api/internal/interface/middleware"
	"github.com/tradewire/tradewire-api/pkg/helpers"
	"github.com/tradewire/tradewire-api/pkg/response"
	"github.com/tradewire/tradewire-api/pkg/validation"
)

type BlogHandler struct {
	Svc    *application.BlogService
	Logger *logrus.Logger
}

func NewBlogHandler(svc *application.BlogService, logger *logrus.Logger) *BlogHandler {
	return &BlogHandler{Svc: svc, Logger: logger}
}

type postRequest struct {
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description" binding:"required"`
	Content     []entity.PostBlock `json:"content" binding:"required,min=1"`
	Thumbnail   string             `json:"thumbnail"`
	Visibility  string             `json:"visibility" binding:"omitempty,oneof=public premium"`
	Keywords    []string           `json:"keywords"`
	IsDraft     bool               `json:"isDraft"`
}

func (r *postRequest) toInput() application.PostInput {
	return application.PostInput{
		Title:       r.Title,
		Description: r.Description,
		Content:     r.Content,
		Thumbnail:   r.Thumbnail,
		Visibility:  entity.Visibility(r.Visibility),
		Keywords:    r.Keywords,
		IsDraft:     r.IsDraft,
	}
}

// List GET /api/blog returns published posts, or the caller's drafts with
// ?drafts=true.
func (h *BlogHandler) List(c *gin.Context) {
	if c.Query("drafts") == "true" {
		caller := middleware.CallerFrom(c)
		if caller == nil {
			response.Error[any](c, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		drafts, err := h.Svc.ListDrafts(c.Request.Context(), caller.Email)
		if err != nil {
			helpers.LogError(h.Logger, "draft listing failed", err, logrus.Fields{"author": caller.Email})
			response.Error[any](c, http.StatusInternalServerError, "failed to fetch blog posts", nil)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"posts": drafts}, "drafts", nil)
		return
	}

	posts, err := h.Svc.ListPublished(c.Request.Context())
	if err != nil {
		helpers.LogError(h.Logger, "post listing failed", err, nil)
		response.Error[any](c, http.StatusInternalServerError, "failed to fetch blog posts", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"posts": posts}, "posts", nil)
}

// Get GET /api/blog/:id
func (h *BlogHandler) Get(c *gin.Context) {
	post, ok := h.fetchPost(c)
	if !ok {
		return
	}
	if d := policy.Evaluate(middleware.CallerFrom(c), policy.ReadPost, post); !d.Allow {
		response.Error[any](c, d.Status, d.Reason, nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"post": post}, "post", nil)
}

// Create POST /api/blog
func (h *BlogHandler) Create(c *gin.Context) {
	caller := middleware.CallerFrom(c)
	if d := policy.Evaluate(caller, policy.CreatePost, nil); !d.Allow {
		response.Error[any](c, d.Status, d.Reason, nil)
		return
	}
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	post, err := h.Svc.Create(c.Request.Context(), caller, req.toInput())
	if err != nil {
		helpers.LogError(h.Logger, "post creation failed", err, logrus.Fields{"author": caller.Email})
		response.Error[any](c, http.StatusInternalServerError, "failed to create blog post", nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"post": post}, "post created", nil)
}

// Update PUT /api/blog/:id
func (h *BlogHandler) Update(c *gin.Context) {
	post, ok := h.fetchPost(c)
	if !ok {
		return
	}
	if d := policy.Evaluate(middleware.CallerFrom(c), policy.UpdatePost, post); !d.Allow {
		response.Error[any](c, d.Status, d.Reason, nil)
		return
	}
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	updated, err := h.Svc.Update(c.Request.Context(), post, req.toInput())
	if err != nil {
		if errors.Is(err, application.ErrPostNotFound) {
			response.Error[any](c, http.StatusNotFound, "blog post not found", nil)
			return
		}
		helpers.LogError(h.Logger, "post update failed", err, logrus.Fields{"post_id": post.ID})
		response.Error[any](c, http.StatusInternalServerError, "failed to update blog post", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"post": updated}, "post updated", nil)
}

// Delete DELETE /api/blog/:id
func (h *BlogHandler) Delete(c *gin.Context) {
	post, ok := h.fetchPost(c)
	if !ok {
		return
	}
	if d := policy.Evaluate(middleware.CallerFrom(c), policy.DeletePost, post); !d.Allow {
		response.Error[any](c, d.Status, d.Reason, nil)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), post.ID); err != nil {
		if errors.Is(err, application.ErrPostNotFound) {
			response.Error[any](c, http.StatusNotFound, "blog post not found", nil)
			return
		}
		helpers.LogError(h.Logger, "post delete failed", err, logrus.Fields{"post_id": post.ID})
		response.Error[any](c, http.StatusInternalServerError, "failed to delete blog post", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "post deleted successfully", nil)
}

// Search GET /api/blog/search?q=
func (h *BlogHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.Error[any](c, http.StatusBadRequest, "search query is required", nil)
		return
	}
	posts, err := h.Svc.Search(c.Request.Context(), query)
	if err != nil {
		helpers.LogError(h.Logger, "post search failed", err, logrus.Fields{"query": query})
		response.Error[any](c, http.StatusInternalServerError, "failed to search blog posts", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"posts": posts}, "search results", nil)
}

// fetchPost resolves :id and writes the error response itself on failure.
func (h *BlogHandler) fetchPost(c *gin.Context) (*entity.Post, bool) {
	post, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidID):
			response.Error[any](c, http.StatusBadRequest, "invalid blog post id", nil)
		case errors.Is(err, application.ErrPostNotFound):
			response.Error[any](c, http.StatusNotFound, "blog post not found", nil)
		default:
			helpers.LogError(h.Logger, "post fetch failed", err, logrus.Fields{"post_id": c.Param("id")})
			response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
		}
		return nil, false
	}
	return post, true
}
