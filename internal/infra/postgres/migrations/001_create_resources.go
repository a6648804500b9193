package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createResourcesTable creates the resources table.
// version is the optimistic-concurrency token bumped on every claim.
func createResourcesTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_resources",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS resources (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(200) NOT NULL,
					available BOOLEAN NOT NULL DEFAULT TRUE,
					version BIGINT NOT NULL DEFAULT 0,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,

					CONSTRAINT uq_resources_name UNIQUE (name),
					CONSTRAINT chk_resources_version CHECK (version >= 0)
				);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS resources;").Error
		},
	}
}
