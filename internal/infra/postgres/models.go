package postgres

import (
	"time"

	"booking-service/internal/domain"

	"github.com/lib/pq"
)

// ResourceModel is the GORM model for the resources table.
type ResourceModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(200);not null;uniqueIndex"`
	Available bool      `gorm:"not null"`
	Version   int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for ResourceModel.
func (ResourceModel) TableName() string {
	return "resources"
}

// ToDomain converts ResourceModel to domain.Resource.
func (m *ResourceModel) ToDomain() *domain.Resource {
	return &domain.Resource{
		ID:        m.ID,
		Name:      m.Name,
		Available: m.Available,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ReservationModel is the GORM model for the reservations table.
type ReservationModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	UserID     int64     `gorm:"not null;index"`
	ResourceID int64     `gorm:"not null;index"`
	Strategy   string    `gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for ReservationModel.
func (ReservationModel) TableName() string {
	return "reservations"
}

// ToDomain converts ReservationModel to domain.Reservation.
func (m *ReservationModel) ToDomain() *domain.Reservation {
	return &domain.Reservation{
		ID:         m.ID,
		UserID:     m.UserID,
		ResourceID: m.ResourceID,
		Strategy:   domain.Strategy(m.Strategy),
		CreatedAt:  m.CreatedAt,
	}
}

// CategoryModel is the GORM model for the categories table.
type CategoryModel struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(200);not null;uniqueIndex"`
}

// TableName returns the table name for CategoryModel.
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts CategoryModel to domain.Category.
func (m *CategoryModel) ToDomain() *domain.Category {
	return &domain.Category{ID: m.ID, Name: m.Name}
}

// ArticleModel is the GORM model for the articles table.
type ArticleModel struct {
	ID          int64          `gorm:"primaryKey;autoIncrement"`
	CategoryID  int64          `gorm:"not null;index"`
	Title       string         `gorm:"type:varchar(500);not null"`
	Body        string         `gorm:"type:text"`
	Tags        pq.StringArray `gorm:"type:text[]"`
	PublishedAt time.Time      `gorm:"not null"`
}

// TableName returns the table name for ArticleModel.
func (ArticleModel) TableName() string {
	return "articles"
}

// ToDomain converts ArticleModel to domain.Article.
func (m *ArticleModel) ToDomain() *domain.Article {
	return &domain.Article{
		ID:          m.ID,
		CategoryID:  m.CategoryID,
		Title:       m.Title,
		Body:        m.Body,
		Tags:        m.Tags,
		PublishedAt: m.PublishedAt,
	}
}

// APIClientModel is the GORM model for the api_clients table.
type APIClientModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(200);not null"`
	APIKey    string    `gorm:"column:api_key;type:varchar(100);not null;uniqueIndex"`
	Active    bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for APIClientModel.
func (APIClientModel) TableName() string {
	return "api_clients"
}

// ToDomain converts APIClientModel to domain.APIClient.
func (m *APIClientModel) ToDomain() *domain.APIClient {
	return &domain.APIClient{
		ID:     m.ID,
		Name:   m.Name,
		APIKey: m.APIKey,
		Active: m.Active,
	}
}
