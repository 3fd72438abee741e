package main

import (
	"os"
	"strings"

	"fundocs-be/internal/config"
	"fundocs-be/internal/model"
	"fundocs-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	if cfg.Database.Connection == "" && !strings.EqualFold(cfg.Database.Driver, "sqlite") {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.Open(cfg.Database.Driver, cfg.Database.Connection)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Starting GORM migration (%s)...", cfg.Database.Driver)

	models := model.All()
	color.Yellow("Running AutoMigrate for %d tables...", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	color.Green("Success: database migration completed.")
}
