// Package sqlite persists templates and submissions in SQLite. The template
// document is stored whole as its canonical JSON (the wire format is the
// storage format); a handful of lifted columns serve lookups and counters.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-formflow/internal/store"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// DB implements store.Templates and store.Submissions over SQLite.
type DB struct {
	db *sql.DB
}

var (
	_ store.Templates   = (*DB)(nil)
	_ store.Submissions = (*DB)(nil)
)

// Open opens (and creates when missing) the SQLite database at path and runs
// pending migrations.
func Open(path string) (*DB, error) {
	// The DSN parameter applies to every pooled connection; a plain PRAGMA
	// would only reach the connection it ran on.
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db}, nil
}

// Close releases the underlying pool.
func (d *DB) Close() error { return d.db.Close() }

func (d *DB) Create(ctx context.Context, tmpl *schema.Template) error {
	if tmpl.ID == "" {
		tmpl.ID = schema.NewID()
	}
	doc, err := schema.EncodeJSON(tmpl)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO template (id, project_id, name, slug, is_published, submission_count, view_count, document, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tmpl.ID, tmpl.ProjectID, tmpl.Name, nullable(tmpl.Slug), tmpl.Published,
		tmpl.SubmissionCount, tmpl.ViewCount, string(doc), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert template: %w", err)
	}
	return nil
}

func (d *DB) Get(ctx context.Context, id string) (*schema.Template, error) {
	return d.getTemplate(ctx, `SELECT document, submission_count, view_count FROM template WHERE id = ?`, id)
}

func (d *DB) GetBySlug(ctx context.Context, slug string) (*schema.Template, error) {
	return d.getTemplate(ctx, `SELECT document, submission_count, view_count FROM template WHERE slug = ? AND is_published = 1`, slug)
}

func (d *DB) getTemplate(ctx context.Context, query string, arg any) (*schema.Template, error) {
	var doc string
	var submissions, views int
	err := d.db.QueryRowContext(ctx, query, arg).Scan(&doc, &submissions, &views)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get template: %w", err)
	}
	tmpl, err := schema.DecodeJSON([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("sqlite: stored template: %w", err)
	}
	// Counters live in columns so concurrent bumps don't rewrite documents.
	tmpl.SubmissionCount = submissions
	tmpl.ViewCount = views
	return tmpl, nil
}

func (d *DB) Update(ctx context.Context, tmpl *schema.Template) error {
	doc, err := schema.EncodeJSON(tmpl)
	if err != nil {
		return err
	}
	res, err := d.db.ExecContext(ctx, `
		UPDATE template
		SET project_id = ?, name = ?, document = ?, updated_at = ?
		WHERE id = ?`,
		tmpl.ProjectID, tmpl.Name, string(doc), time.Now().UTC(), tmpl.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update template: %w", err)
	}
	return requireRow(res)
}

func (d *DB) Delete(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM template WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete template: %w", err)
	}
	return requireRow(res)
}

func (d *DB) List(ctx context.Context, projectID string) ([]*schema.Template, error) {
	query := `SELECT document, submission_count, view_count FROM template`
	args := []any{}
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY name`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list templates: %w", err)
	}
	defer rows.Close()

	var out []*schema.Template
	for rows.Next() {
		var doc string
		var submissions, views int
		if err := rows.Scan(&doc, &submissions, &views); err != nil {
			return nil, fmt.Errorf("sqlite: scan template: %w", err)
		}
		tmpl, err := schema.DecodeJSON([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("sqlite: stored template: %w", err)
		}
		tmpl.SubmissionCount = submissions
		tmpl.ViewCount = views
		out = append(out, tmpl)
	}
	return out, rows.Err()
}

func (d *DB) Publish(ctx context.Context, id, slug string) (*schema.Template, error) {
	var taken int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM template WHERE slug = ? AND is_published = 1 AND id != ?`,
		slug, id,
	).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("sqlite: check slug: %w", err)
	}
	if taken > 0 {
		return nil, store.ErrSlugTaken
	}
	if err := d.setPublished(ctx, id, true, slug); err != nil {
		return nil, err
	}
	return d.Get(ctx, id)
}

func (d *DB) Unpublish(ctx context.Context, id string) (*schema.Template, error) {
	tmpl, err := d.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.setPublished(ctx, id, false, tmpl.Slug); err != nil {
		return nil, err
	}
	return d.Get(ctx, id)
}

func (d *DB) setPublished(ctx context.Context, id string, published bool, slug string) error {
	tmpl, err := d.Get(ctx, id)
	if err != nil {
		return err
	}
	tmpl.Published = published
	tmpl.Slug = slug
	doc, err := schema.EncodeJSON(tmpl)
	if err != nil {
		return err
	}
	res, err := d.db.ExecContext(ctx, `
		UPDATE template
		SET is_published = ?, slug = ?, document = ?, updated_at = ?
		WHERE id = ?`,
		published, nullable(slug), string(doc), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: set published: %w", err)
	}
	return requireRow(res)
}

func (d *DB) IncrementViews(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `UPDATE template SET view_count = view_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: increment views: %w", err)
	}
	return requireRow(res)
}

func (d *DB) AddSubmission(ctx context.Context, sub *schema.Submission) error {
	if sub.ID == "" {
		sub.ID = schema.NewID()
	}
	doc, err := marshalSubmission(sub)
	if err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO submission (id, template_id, document, completed_at)
		VALUES (?, ?, ?, ?)`,
		sub.ID, sub.TemplateID, doc, sub.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert submission: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE template SET submission_count = submission_count + 1 WHERE id = ?`,
		sub.TemplateID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: bump submission count: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	return tx.Commit()
}

func (d *DB) ListSubmissions(ctx context.Context, templateID string) ([]schema.Submission, error) {
	var exists int
	err := d.db.QueryRowContext(ctx,
		`SELECT 1 FROM template WHERE id = ?`, templateID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: check template: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT document FROM submission
		WHERE template_id = ?
		ORDER BY completed_at DESC`,
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list submissions: %w", err)
	}
	defer rows.Close()

	var out []schema.Submission
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("sqlite: scan submission: %w", err)
		}
		sub, err := unmarshalSubmission(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (d *DB) DeleteSubmission(ctx context.Context, templateID, id string) error {
	res, err := d.db.ExecContext(ctx,
		`DELETE FROM submission WHERE template_id = ? AND id = ?`,
		templateID, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: delete submission: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
