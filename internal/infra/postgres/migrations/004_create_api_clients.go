package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createAPIClientsTable creates the api_clients table.
func createAPIClientsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "004_create_api_clients",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS api_clients (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(200) NOT NULL,
					api_key VARCHAR(100) NOT NULL,
					active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT uq_api_clients_api_key UNIQUE (api_key)
				);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS api_clients;").Error
		},
	}
}
