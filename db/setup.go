package db

import (
	"github.com/tracklite-dev/tracklite/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.TicketType{},
		&models.Project{},
		&models.Ticket{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedTicketTypes inserts the reference ticket types if they are missing.
func SeedTicketTypes() error {
	defaults := []models.TicketType{
		{Name: "Bug", Icon: "bug", Color: "#e74c3c"},
		{Name: "Feature", Icon: "sparkles", Color: "#2ecc71"},
		{Name: "Task", Icon: "check", Color: "#3498db"},
		{Name: "Chore", Icon: "wrench", Color: "#95a5a6"},
	}

	for _, ticketType := range defaults {
		if err := DB.Where("name = ?", ticketType.Name).FirstOrCreate(&ticketType).Error; err != nil {
			return err
		}
	}

	return nil
}
