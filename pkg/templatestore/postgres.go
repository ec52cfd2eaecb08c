package templatestore

import (
	"cmp"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/courier/pkg/db"
	"github.com/dmitrymomot/courier/pkg/mailer"
	"github.com/dmitrymomot/courier/pkg/notify"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the schema migrations of the Postgres store, for db.Migrate.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Postgres is a Store backed by the email_templates and email_partials tables.
// Templates are looked up by title; translations carry the per-language bodies.
type Postgres struct {
	pool *pgxpool.Pool
	opts options
}

// NewPostgres creates a Postgres store. Run db.Migrate with Migrations first.
func NewPostgres(pool *pgxpool.Pool, opts ...Option) *Postgres {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Postgres{pool: pool, opts: o}
}

const selectTemplate = `
SELECT t.channel, tr.language_code, tr.body, t.status
FROM email_templates t
JOIN email_template_translations tr ON tr.template_id = t.id
WHERE t.title = $1 AND t.channel = ANY($2) AND t.deleted_at IS NULL`

// Template implements Store.
func (p *Postgres) Template(ctx context.Context, ref Ref) (string, error) {
	rows, err := p.pool.Query(ctx, selectTemplate, ref.Name, channels(ref.Channel))
	if err != nil {
		return "", fmt.Errorf("templatestore: query template %s: %w", ref.Name, err)
	}

	candidates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (candidate, error) {
		var c candidate
		err := row.Scan(&c.channel, &c.language, &c.body, &c.status)
		return c, err
	})
	if err != nil {
		return "", fmt.Errorf("templatestore: scan template %s: %w", ref.Name, err)
	}

	c, ok := pick(candidates, ref.Channel, ref.Language, p.opts.fallbackLanguage)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref.Name)
	}
	return c.body, nil
}

const selectPartials = `
SELECT tr.title, p.channel, tr.language_code, tr.body, p.status
FROM email_partials p
JOIN email_partial_translations tr ON tr.partial_id = p.id
WHERE p.channel = ANY($1) AND p.deleted_at IS NULL`

type partialRow struct {
	name string
	candidate
}

// Partials implements mailer.PartialLoader.
func (p *Postgres) Partials(ctx context.Context) ([]mailer.Partial, error) {
	rc, _ := notify.RequestContextFrom(ctx)

	rows, err := p.pool.Query(ctx, selectPartials, channels(rc.Channel))
	if err != nil {
		return nil, fmt.Errorf("templatestore: query partials: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (partialRow, error) {
		var r partialRow
		err := row.Scan(&r.name, &r.channel, &r.language, &r.body, &r.status)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("templatestore: scan partials: %w", err)
	}

	byName := make(map[string][]candidate)
	for _, r := range list {
		byName[r.name] = append(byName[r.name], r.candidate)
	}

	result := make([]mailer.Partial, 0, len(byName))
	for name, candidates := range byName {
		if c, ok := pick(candidates, rc.Channel, rc.LanguageCode, p.opts.fallbackLanguage); ok {
			result = append(result, mailer.Partial{Name: name, Body: c.body})
		}
	}
	slices.SortFunc(result, func(a, b mailer.Partial) int { return cmp.Compare(a.Name, b.Name) })
	return result, nil
}

// SaveTemplate creates or updates the template t.Name in t.Channel and its
// t.Language translation.
func (p *Postgres) SaveTemplate(ctx context.Context, t Template) error {
	t.Status = cmp.Or(t.Status, StatusActive)
	t.Channel = cmp.Or(t.Channel, DefaultChannel)
	if !t.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}

	return db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO email_templates (id, title, channel, status)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (title, channel) DO UPDATE
			SET status = EXCLUDED.status, updated_at = now(),
			    deleted_at = CASE WHEN EXCLUDED.status = 'deleted' THEN now() ELSE NULL END
			RETURNING id`,
			uuid.New(), t.Name, t.Channel, string(t.Status),
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("templatestore: save template %s: %w", t.Name, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO email_template_translations (template_id, language_code, body)
			VALUES ($1, $2, $3)
			ON CONFLICT (template_id, language_code) DO UPDATE
			SET body = EXCLUDED.body, updated_at = now()`,
			id, t.Language, t.Body,
		)
		if err != nil {
			return fmt.Errorf("templatestore: save translation %s/%s: %w", t.Name, t.Language, err)
		}
		return nil
	})
}

// SavePartial creates or updates the partial p.Name in p.Channel and its
// p.Language translation.
func (p *Postgres) SavePartial(ctx context.Context, part Partial) error {
	part.Status = cmp.Or(part.Status, StatusActive)
	part.Channel = cmp.Or(part.Channel, DefaultChannel)
	part.Kind = cmp.Or(part.Kind, PartialHeader)
	if !part.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, part.Status)
	}
	if !part.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, part.Kind)
	}

	return db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			SELECT p.id FROM email_partials p
			JOIN email_partial_translations tr ON tr.partial_id = p.id
			WHERE tr.title = $1 AND p.channel = $2
			LIMIT 1`,
			part.Name, part.Channel,
		).Scan(&id)

		switch {
		case errors.Is(err, pgx.ErrNoRows):
			id = uuid.New()
			_, err = tx.Exec(ctx, `
				INSERT INTO email_partials (id, channel, partial_type, status)
				VALUES ($1, $2, $3, $4)`,
				id, part.Channel, string(part.Kind), string(part.Status),
			)
		case err == nil:
			_, err = tx.Exec(ctx, `
				UPDATE email_partials
				SET partial_type = $2, status = $3, updated_at = now(),
				    deleted_at = CASE WHEN $3 = 'deleted' THEN now() ELSE NULL END
				WHERE id = $1`,
				id, string(part.Kind), string(part.Status),
			)
		}
		if err != nil {
			return fmt.Errorf("templatestore: save partial %s: %w", part.Name, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO email_partial_translations (partial_id, language_code, title, body)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (partial_id, language_code) DO UPDATE
			SET title = EXCLUDED.title, body = EXCLUDED.body, updated_at = now()`,
			id, part.Language, part.Name, part.Body,
		)
		if err != nil {
			return fmt.Errorf("templatestore: save partial translation %s/%s: %w", part.Name, part.Language, err)
		}
		return nil
	})
}

// DeleteTemplate marks every version of name in channel as deleted.
func (p *Postgres) DeleteTemplate(ctx context.Context, name, channel string) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE email_templates
		SET status = 'deleted', deleted_at = now(), updated_at = now()
		WHERE title = $1 AND channel = $2 AND deleted_at IS NULL`,
		name, cmp.Or(channel, DefaultChannel),
	)
	if err != nil {
		return fmt.Errorf("templatestore: delete template %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func channels(channel string) []string {
	if channel == "" || channel == DefaultChannel {
		return []string{DefaultChannel}
	}
	return []string{channel, DefaultChannel}
}

var _ Store = (*Postgres)(nil)
