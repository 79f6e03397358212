package docstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL,
		gender     TEXT NOT NULL,
		age        TEXT NOT NULL,
		zip        TEXT NOT NULL,
		state      TEXT NOT NULL,
		address    TEXT NOT NULL,
		country    TEXT NOT NULL,
		image_url  TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS blogs (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		content     TEXT NOT NULL,
		image_url   TEXT NOT NULL,
		owner_id    TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	// blog_id is deliberately not a foreign key: deleting a blog leaves
	// its comments behind (they stay visible in the my-comments view)
	`CREATE TABLE IF NOT EXISTS comments (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		blog_id     TEXT NOT NULL,
		author_id   TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_blogs_owner ON blogs (owner_id);`,
	`CREATE INDEX IF NOT EXISTS idx_comments_blog ON comments (blog_id);`,
	`CREATE INDEX IF NOT EXISTS idx_comments_author ON comments (author_id);`,
}

// EnsureSchema creates the collections if they do not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
