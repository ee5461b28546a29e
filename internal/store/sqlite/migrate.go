package sqlite

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/goliatone/go-formflow/pkg/schema"
)

//go:embed migrations
var dbMigrations embed.FS

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(dbMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("sqlite: open migrations: %w", err)
	}

	dst, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("sqlite: migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", src, "sqlite3", dst)
	if err != nil {
		return fmt.Errorf("sqlite: migrator: %w", err)
	}

	err = migrator.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

func marshalSubmission(sub *schema.Submission) (string, error) {
	doc, err := json.Marshal(sub)
	if err != nil {
		return "", fmt.Errorf("sqlite: encode submission: %w", err)
	}
	return string(doc), nil
}

func unmarshalSubmission(doc string) (schema.Submission, error) {
	var sub schema.Submission
	if err := json.Unmarshal([]byte(doc), &sub); err != nil {
		return schema.Submission{}, fmt.Errorf("sqlite: stored submission: %w", err)
	}
	return sub, nil
}
