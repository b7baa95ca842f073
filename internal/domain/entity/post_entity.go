package entity

import "time"

// Visibility gates read access to a post.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPremium Visibility = "premium"
)

// Post is a community blog post. AuthorID is the author's email; ownership
// and visibility checks live in the policy package, not here.
type Post struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Content     []PostBlock `json:"content"`
	Author      string      `json:"author"`
	AuthorID    string      `json:"authorId"`
	Thumbnail   string      `json:"thumbnail,omitempty"`
	Visibility  Visibility  `json:"visibility"`
	Keywords    []string    `json:"keywords,omitempty"`
	IsPublished bool        `json:"isPublished"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// PostBlock is one ordered unit of post content.
type PostBlock struct {
	Type       string          `json:"type" bson:"type"` // paragraph, image, link
	Content    string          `json:"content" bson:"content"`
	Order      int             `json:"order" bson:"order"`
	Title      string          `json:"title,omitempty" bson:"title,omitempty"`
	Formatting *TextFormatting `json:"formatting,omitempty" bson:"formatting,omitempty"`
	ImageURL   string          `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
}

// TextFormatting carries optional presentation hints for a paragraph block.
type TextFormatting struct {
	Bold      bool   `json:"bold,omitempty" bson:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty" bson:"italic,omitempty"`
	FontSize  string `json:"fontSize,omitempty" bson:"fontSize,omitempty"`
	Color     string `json:"color,omitempty" bson:"color,omitempty"`
	Highlight bool   `json:"highlight,omitempty" bson:"highlight,omitempty"`
}
