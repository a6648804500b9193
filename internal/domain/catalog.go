package domain

import "time"

// Category groups articles.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Article is a piece of content listed under a category.
type Article struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"category_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Tags        []string  `json:"tags,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// APIClient is a registered consumer of the public API, identified by its key.
type APIClient struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	APIKey string `json:"api_key"`
	Active bool   `json:"active"`
}
