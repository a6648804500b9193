package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// seedResources inserts the demo resource. Other resources are created out of band.
func seedResources() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "005_seed_resources",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				INSERT INTO resources (name, available, version)
				VALUES ('R1', TRUE, 0)
				ON CONFLICT (name) DO NOTHING;
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DELETE FROM resources WHERE name = 'R1' AND version = 0;").Error
		},
	}
}
