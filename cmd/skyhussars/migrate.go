package main

import (
	"fmt"
	"os"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skyhussars/engine/internal/config"
	"github.com/skyhussars/engine/internal/database"
	"github.com/skyhussars/engine/internal/model"
)

// migrateBackups copies every SQLite dump in the recordings directory into
// Postgres, one transaction per file, and renames migrated files.
func migrateBackups() error {
	storageCfg := config.GetStorageConfig()
	sqlitePaths, err := database.GetBackupDBPaths(storageCfg.Memory.OutputDir)
	if err != nil {
		return fmt.Errorf("error getting backup database paths: %w", err)
	}
	if len(sqlitePaths) == 0 {
		Logger.Info("No backups to migrate", "dir", storageCfg.Memory.OutputDir)
		return nil
	}

	postgres := database.NewManager(config.GetDBConfig(), Zerolog)
	postgresDB, err := postgres.GetPostgresDB()
	if err != nil {
		return fmt.Errorf("error getting postgres database: %w", err)
	}
	postgres.DB = postgresDB
	if postgres.SqlDB, err = postgresDB.DB(); err != nil {
		return fmt.Errorf("error getting postgres connection: %w", err)
	}
	return migrateInto(postgres, sqlitePaths)
}

// migrateInto sets up target, copies each backup into it and closes it,
// whether or not every backup made it.
func migrateInto(target *database.Manager, sqlitePaths []string) error {
	defer func() {
		if err := target.Close(); err != nil {
			Logger.Error("Error closing target database", "error", err)
		}
	}()
	if err := target.Setup(); err != nil {
		return err
	}

	successfulMigrations := make([]string, 0, len(sqlitePaths))
	for _, sqlitePath := range sqlitePaths {
		backup := database.NewManager(config.DBConfig{}, Zerolog)
		sqliteDB, err := backup.GetSqliteDB(sqlitePath)
		if err != nil {
			return fmt.Errorf("error getting sqlite database %s: %w", sqlitePath, err)
		}

		err = target.DB.Transaction(func(tx *gorm.DB) error {
			for _, m := range model.DatabaseModels {
				if err := migrateTable(sqliteDB, tx, m); err != nil {
					return err
				}
			}
			return nil
		})
		if sqlConnection, cerr := sqliteDB.DB(); cerr == nil {
			_ = sqlConnection.Close()
		}
		if err != nil {
			return fmt.Errorf("error migrating %s: %w", sqlitePath, err)
		}

		if err := os.Rename(sqlitePath, sqlitePath+".migrated"); err != nil {
			Logger.Error("Error renaming sqlite file", "error", err)
		}
		successfulMigrations = append(successfulMigrations, sqlitePath)
	}

	Logger.Info("Successfully migrated backups, it's recommended to delete these to avoid future data duplication",
		"count", len(successfulMigrations),
		"paths", successfulMigrations)
	return nil
}

// migrateTable copies all rows of one model. Rows whose primary key already
// exists in Postgres are skipped.
func migrateTable(sqliteDB, postgresDB *gorm.DB, m any) error {
	stmt := &gorm.Statement{DB: sqliteDB}
	if err := stmt.Parse(m); err != nil {
		return fmt.Errorf("error parsing model %T: %w", m, err)
	}
	tableName := stmt.Schema.Table

	var rows []map[string]any
	if err := sqliteDB.Model(m).Find(&rows).Error; err != nil {
		return fmt.Errorf("error reading %s: %w", tableName, err)
	}
	Logger.Info("Found records", "count", len(rows), "table", tableName)
	if len(rows) == 0 {
		return nil
	}

	result := postgresDB.Model(m).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if result.Error != nil {
		Logger.Error("Error migrating table", "error", result.Error, "database", sqliteDB.Name(), "table", tableName)
		return result.Error
	}
	Logger.Info("Inserted records", "count", result.RowsAffected, "table", tableName)
	return nil
}
