package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createReservationsTable creates the reservations table and its indexes.
func createReservationsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "002_create_reservations",
		Migrate: func(tx *gorm.DB) error {
			err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS reservations (
					id BIGSERIAL PRIMARY KEY,
					user_id BIGINT NOT NULL,
					resource_id BIGINT NOT NULL REFERENCES resources(id),
					strategy VARCHAR(20) NOT NULL,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				);
			`).Error
			if err != nil {
				return err
			}

			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_reservations_resource_id ON reservations(resource_id);",
				"CREATE INDEX IF NOT EXISTS idx_reservations_user_id ON reservations(user_id);",
			}
			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS reservations;").Error
		},
	}
}
