package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/tradewire/tradewire-api/internal/application"
	"github.com/tradewire/tradewire-api/internal/domain/entity"
	"github.com/tradewire/tradewire-api/internal/domain/repository"
	"github.com/tradewire/tradewire-api/internal/interface/middleware"
	"github.com/tradewire/tradewire-api/pkg/helpers"
	"github.com/tradewire/tradewire-api/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// --- fakes ---------------------------------------------------------------

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
	// emails whose stored document has no role field; BackfillRoles
	// normalizes exactly these.
	missingRole map[string]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}, missingRole: map[string]bool{}}
}

func (r *fakeUserRepo) add(email, name string, role entity.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[email] = &entity.User{Email: email, Name: name, Role: role}
}

func (r *fakeUserRepo) addLegacy(email, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[email] = &entity.User{Email: email, Name: name, Role: entity.RoleFree}
	r.missingRole[email] = true
}

func (r *fakeUserRepo) remove(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, email)
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return repository.ErrEmailTaken
	}
	cp := *u
	r.users[u.Email] = &cp
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) BackfillRoles(_ context.Context) (repository.BackfillResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.missingRole))
	for email := range r.missingRole {
		if u, ok := r.users[email]; ok {
			u.Role = entity.RoleFree
		}
	}
	r.missingRole = map[string]bool{}
	return repository.BackfillResult{Matched: n, Modified: n}, nil
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		cp.PasswordHash = ""
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *fakeUserRepo) CountMissingRole(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.missingRole)), nil
}

var hexID = regexp.MustCompile(`^[0-9a-f]{24}$`)

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[string]*entity.Post
	seq   int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[string]*entity.Post{}}
}

func (r *fakePostRepo) add(p entity.Post) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if p.ID == "" {
		p.ID = fmt.Sprintf("%024x", r.seq)
	}
	r.posts[p.ID] = &p
	return p.ID
}

func (r *fakePostRepo) ListPublished(_ context.Context) ([]entity.Post, error) {
	return r.filter(func(p *entity.Post) bool { return p.IsPublished }), nil
}

func (r *fakePostRepo) ListDrafts(_ context.Context, authorID string) ([]entity.Post, error) {
	return r.filter(func(p *entity.Post) bool { return !p.IsPublished && p.AuthorID == authorID }), nil
}

func (r *fakePostRepo) filter(keep func(*entity.Post) bool) []entity.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Post, 0)
	for _, p := range r.posts {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakePostRepo) GetByID(_ context.Context, id string) (*entity.Post, error) {
	if !hexID.MatchString(id) {
		return nil, repository.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePostRepo) Create(_ context.Context, p *entity.Post) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.ID = r.add(*p)
	return nil
}

func (r *fakePostRepo) Update(_ context.Context, p *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[p.ID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) Search(_ context.Context, query string) ([]entity.Post, error) {
	q := strings.ToLower(query)
	return r.filter(func(p *entity.Post) bool {
		if !p.IsPublished {
			return false
		}
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Description), q) {
			return true
		}
		for _, b := range p.Content {
			if strings.Contains(strings.ToLower(b.Content), q) {
				return true
			}
		}
		return false
	}), nil
}

type fakeNewsRepo struct {
	items []entity.NewsItem
}

func (r *fakeNewsRepo) Latest(_ context.Context, limit int) ([]entity.NewsItem, error) {
	if len(r.items) > limit {
		return r.items[:limit], nil
	}
	return r.items, nil
}

func (r *fakeNewsRepo) Upsert(_ context.Context, item *entity.NewsItem) error {
	for i := range r.items {
		if r.items[i].ID == item.ID {
			r.items[i] = *item
			return nil
		}
	}
	r.items = append(r.items, *item)
	return nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

// --- router under test ---------------------------------------------------

type testEnv struct {
	router *gin.Engine
	tokens *helpers.TokenManager
	users  *fakeUserRepo
	posts  *fakePostRepo
	news   *fakeNewsRepo
	emails *recordingPublisher
	cron   *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens, err := helpers.NewTokenManager("test-secret", 24*time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		tokens: tokens,
		users:  newFakeUserRepo(),
		posts:  newFakePostRepo(),
		news:   &fakeNewsRepo{},
		emails: &recordingPublisher{},
		cron:   &recordingPublisher{},
	}

	logger := helpers.NewLogger("test", "test")
	authSvc := application.NewAuthService(env.users, tokens, env.emails, logger, "tradewire", true)
	blogSvc := application.NewBlogService(env.posts, nil, "", logger)
	newsSvc := application.NewNewsService(env.news, nil, time.Minute, logger)

	authHandler := NewAuthHandler(authSvc, tokens, logger, "", false)
	blogHandler := NewBlogHandler(blogSvc, logger)
	newsHandler := NewNewsHandler(newsSvc, logger)
	adminHandler := NewAdminHandler(env.users, logger)
	cronHandler := NewCronHandler("cron-secret", env.cron, logger)

	r := gin.New()
	api := r.Group("/api")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/check", authHandler.Check)
	api.GET("/auth/user-role", authHandler.UserRole)

	optional := middleware.OptionalAuth(tokens, env.users)
	required := middleware.Auth(tokens, env.users)

	api.GET("/blog", optional, blogHandler.List)
	api.GET("/blog/search", blogHandler.Search)
	api.GET("/blog/:id", optional, blogHandler.Get)
	api.POST("/blog", required, blogHandler.Create)
	api.PUT("/blog/:id", required, blogHandler.Update)
	api.DELETE("/blog/:id", required, blogHandler.Delete)

	api.GET("/news", newsHandler.List)
	api.GET("/cron", cronHandler.Trigger)

	api.POST("/admin/update-user-roles", required, adminHandler.UpdateUserRoles)
	api.GET("/admin/update-user-roles", required, adminHandler.ListUserRoles)

	env.router = r
	return env
}

// cookieFor mints a session cookie for an already-stored user.
func (e *testEnv) cookieFor(t *testing.T, email, name string) *http.Cookie {
	t.Helper()
	token, _, err := e.tokens.Generate(email, name)
	require.NoError(t, err)
	return &http.Cookie{Name: helpers.SessionCookieName, Value: token}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(b))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	res := w.Result()
	for _, ck := range res.Cookies() {
		if ck.Name == helpers.SessionCookieName {
			return ck
		}
	}
	return nil
}
