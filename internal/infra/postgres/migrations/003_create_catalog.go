package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createCatalogTables creates categories and articles.
func createCatalogTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "003_create_catalog",
		Migrate: func(tx *gorm.DB) error {
			statements := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(200) NOT NULL,
					CONSTRAINT uq_categories_name UNIQUE (name)
				);`,
				`CREATE TABLE IF NOT EXISTS articles (
					id BIGSERIAL PRIMARY KEY,
					category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
					title VARCHAR(500) NOT NULL,
					body TEXT,
					tags TEXT[],
					published_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				);`,
				"CREATE INDEX IF NOT EXISTS idx_articles_category_id ON articles(category_id);",
			}

			for _, stmt := range statements {
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			if err := tx.Exec("DROP TABLE IF EXISTS articles;").Error; err != nil {
				return err
			}

			return tx.Exec("DROP TABLE IF EXISTS categories;").Error
		},
	}
}
