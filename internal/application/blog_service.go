package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/tradewire/tradewire-api/internal/domain/entity"
	"github.com/tradewire/tradewire-api/internal/domain/policy"
	"github.com/tradewire/tradewire-api/internal/domain/repository"
)

var (
	ErrPostNotFound = errors.New("blog post not found")
	ErrInvalidID    = repository.ErrInvalidID
)

// BlogService owns blog post CRUD and the search index. Authorization stays
// in the policy package; this layer assumes the caller was already allowed.
type BlogService struct {
	Posts        repository.PostRepository
	ES           *elasticsearch.Client
	ESPostsIndex string
	Logger       *logrus.Logger
}

func NewBlogService(posts repository.PostRepository, es *elasticsearch.Client, esIndex string, logger *logrus.Logger) *BlogService {
	return &BlogService{Posts: posts, ES: es, ESPostsIndex: esIndex, Logger: logger}
}

// PostInput is the writable surface of a post.
type PostInput struct {
	Title       string
	Description string
	Content     []entity.PostBlock
	Thumbnail   string
	Visibility  entity.Visibility
	Keywords    []string
	IsDraft     bool
}

func (s *BlogService) ListPublished(ctx context.Context) ([]entity.Post, error) {
	return s.Posts.ListPublished(ctx)
}

func (s *BlogService) ListDrafts(ctx context.Context, authorID string) ([]entity.Post, error) {
	return s.Posts.ListDrafts(ctx, authorID)
}

func (s *BlogService) Get(ctx context.Context, id string) (*entity.Post, error) {
	p, err := s.Posts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	return p, err
}

func (s *BlogService) Create(ctx context.Context, author *policy.Caller, in PostInput) (*entity.Post, error) {
	vis := in.Visibility
	if vis != entity.VisibilityPremium {
		vis = entity.VisibilityPublic
	}
	authorName := author.Name
	if authorName == "" {
		authorName = author.Email
	}
	p := &entity.Post{
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		Author:      authorName,
		AuthorID:    author.Email,
		Thumbnail:   in.Thumbnail,
		Visibility:  vis,
		Keywords:    in.Keywords,
		IsPublished: !in.IsDraft,
	}
	if err := s.Posts.Create(ctx, p); err != nil {
		return nil, err
	}
	s.indexPost(ctx, p)
	return p, nil
}

func (s *BlogService) Update(ctx context.Context, post *entity.Post, in PostInput) (*entity.Post, error) {
	post.Title = in.Title
	post.Description = in.Description
	post.Content = in.Content
	post.Thumbnail = in.Thumbnail
	if in.Visibility == entity.VisibilityPremium {
		post.Visibility = entity.VisibilityPremium
	} else {
		post.Visibility = entity.VisibilityPublic
	}
	post.Keywords = in.Keywords
	post.IsPublished = !in.IsDraft
	if err := s.Posts.Update(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	s.indexPost(ctx, post)
	return post, nil
}

func (s *BlogService) Delete(ctx context.Context, id string) error {
	if err := s.Posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	s.deleteFromIndex(ctx, id)
	return nil
}

// Search prefers the Elasticsearch index and falls back to the store's regex
// scan when ES is unconfigured or unavailable.
func (s *BlogService) Search(ctx context.Context, query string) ([]entity.Post, error) {
	if s.ES != nil && s.ESPostsIndex != "" {
		posts, err := s.searchES(ctx, query)
		if err == nil {
			return posts, nil
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("es search failed, falling back to store scan")
		}
	}
	return s.Posts.Search(ctx, query)
}

func (s *BlogService) indexPost(ctx context.Context, p *entity.Post) {
	if s.ES == nil || s.ESPostsIndex == "" {
		return
	}
	var blocks []string
	for _, b := range p.Content {
		blocks = append(blocks, b.Content)
	}
	doc := map[string]any{
		"id":          p.ID,
		"title":       p.Title,
		"description": p.Description,
		"body":        strings.Join(blocks, "\n"),
		"author":      p.Author,
		"authorId":    p.AuthorID,
		"visibility":  string(p.Visibility),
		"isPublished": p.IsPublished,
		"keywords":    p.Keywords,
		"createdAt":   p.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESPostsIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("post_id", p.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("post_id", p.ID).Warn("es index response error")
	}
}

func (s *BlogService) deleteFromIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESPostsIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESPostsIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("post_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

func (s *BlogService) searchES(ctx context.Context, q string) ([]entity.Post, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^2", "description", "body", "keywords"},
					},
				},
				"filter": map[string]any{"term": map[string]any{"isPublished": true}},
			},
		},
		"size": 50,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESPostsIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, errors.New("es search: " + res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	// Hydrate from the store so responses always reflect current documents.
	posts := make([]entity.Post, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		p, err := s.Posts.GetByID(ctx, h.ID)
		if err != nil {
			continue // deleted since indexing
		}
		if p.IsPublished {
			posts = append(posts, *p)
		}
	}
	return posts, nil
}
