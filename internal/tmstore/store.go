// Package tmstore keeps parsed translation units in a SQLite translation
// memory. Units are deduplicated by fingerprint and read back as equal
// tmx.Unit values.
package tmstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/tmxparser/core/errors"
	"github.com/FocuswithJustin/tmxparser/core/sqlite"
	"github.com/FocuswithJustin/tmxparser/core/tmx"
	"github.com/FocuswithJustin/tmxparser/internal/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	kindText        = "text"
	kindPlaceholder = "ph"
	kindBeginPair   = "bpt"
	kindEndPair     = "ept"
)

// Store is a translation memory backed by one SQLite database.
type Store struct {
	db *sql.DB
}

// ImportRecord describes one finished import.
type ImportRecord struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	StartedAt time.Time `json:"started_at"`
	Units     int       `json:"units"`
	Skipped   int       `json:"skipped"`
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens or creates the store at path and brings its schema up to date.
// Use sqlite.MemoryPath for a throwaway store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.NewIO("open store", path, err)
	}
	if err := sqlite.Migrate(ctx, db, migrationsFS, "migrations"); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Import streams every unit of doc into the store inside one transaction.
// Units whose fingerprint is already stored are counted as skipped. A parse
// failure rolls the whole import back.
func (s *Store) Import(ctx context.Context, doc *tmx.Document, source string) (*ImportRecord, error) {
	rec := &ImportRecord{
		ID:        uuid.NewString(),
		Source:    source,
		StartedAt: time.Now().UTC().Truncate(time.Second),
	}
	logging.With("import_id", rec.ID, "source", source).Debug("import_started")

	err := sqlite.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO imports (id, source, started_at) VALUES (?, ?, ?)`,
			rec.ID, rec.Source, rec.StartedAt.Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("tmstore: insert import: %w", err)
		}

		err := doc.Each(func(u *tmx.Unit) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			added, err := put(ctx, tx, rec.ID, u)
			if err != nil {
				return err
			}
			if added {
				rec.Units++
			} else {
				rec.Skipped++
			}
			return nil
		})
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE imports SET units = ?, skipped = ? WHERE id = ?`,
			rec.Units, rec.Skipped, rec.ID,
		); err != nil {
			return fmt.Errorf("tmstore: finish import: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.ImportDone(rec.ID, rec.Source, rec.Units, rec.Skipped)
	return rec, nil
}

// Put stores u outside any import. It reports false when an equal unit is
// already stored.
func (s *Store) Put(ctx context.Context, u *tmx.Unit) (bool, error) {
	var added bool
	err := sqlite.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		added, err = put(ctx, tx, "", u)
		return err
	})
	return added, err
}

func put(ctx context.Context, q querier, importID string, u *tmx.Unit) (bool, error) {
	var imp any
	if importID != "" {
		imp = importID
	}
	res, err := q.ExecContext(ctx,
		`INSERT INTO units (import_id, tuid, segtype, fingerprint) VALUES (?, ?, ?, ?)
		 ON CONFLICT (fingerprint) DO NOTHING`,
		imp, u.TUID, u.SegType, tmx.Fingerprint(u),
	)
	if err != nil {
		return false, fmt.Errorf("tmstore: insert unit %q: %w", u.TUID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, fmt.Errorf("tmstore: rows affected (unit %q): %w", u.TUID, err)
	} else if n == 0 {
		return false, nil
	}
	unitID, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("tmstore: unit id: %w", err)
	}

	pos := 0
	for name, pv := range u.Properties.All() {
		var value string
		if pv != nil {
			value = pv.Value
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO unit_properties (unit_id, position, name, value) VALUES (?, ?, ?, ?)`,
			unitID, pos, name, value,
		); err != nil {
			return false, fmt.Errorf("tmstore: insert property %q: %w", name, err)
		}
		pos++
	}

	for i, v := range u.Variants {
		var locale sql.NullString
		if v.Locale != nil {
			locale = sql.NullString{String: *v.Locale, Valid: true}
		}
		res, err := q.ExecContext(ctx,
			`INSERT INTO variants (unit_id, position, locale) VALUES (?, ?, ?)`,
			unitID, i, locale,
		)
		if err != nil {
			return false, fmt.Errorf("tmstore: insert variant: %w", err)
		}
		variantID, err := res.LastInsertId()
		if err != nil {
			return false, fmt.Errorf("tmstore: variant id: %w", err)
		}
		for j, e := range v.Elements {
			if err := putElement(ctx, q, variantID, j, e); err != nil {
				return false, err
			}
		}
	}
	return true, nil
}

func putElement(ctx context.Context, q querier, variantID int64, pos int, e tmx.Element) error {
	var (
		kind, typ, pairID, body string
		start, length           sql.NullInt64
	)
	switch e := e.(type) {
	case tmx.Text:
		kind, body = kindText, string(e)
	case *tmx.Placeholder:
		kind, typ, body = kindPlaceholder, e.Type, e.Text
		start = nullInt(e.Start)
		length = nullInt(e.Length)
	case *tmx.Pair:
		kind, pairID, body = kindEndPair, e.I, e.Text
		if e.Kind == tmx.PairBegin {
			kind = kindBeginPair
		}
	default:
		return errors.NewUnsupported("element", fmt.Sprintf("%T", e))
	}
	if _, err := q.ExecContext(ctx,
		`INSERT INTO elements (variant_id, position, kind, type, pair_id, body, start, length)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		variantID, pos, kind, typ, pairID, body, start, length,
	); err != nil {
		return fmt.Errorf("tmstore: insert element: %w", err)
	}
	return nil
}

// Get returns every stored unit with the given tuid, oldest first.
func (s *Store) Get(ctx context.Context, tuid string) ([]*tmx.Unit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, segtype FROM units WHERE tuid = ? ORDER BY id`, tuid)
	if err != nil {
		return nil, fmt.Errorf("tmstore: query units: %w", err)
	}
	type ref struct {
		id      int64
		segtype string
	}
	var refs []ref
	for rows.Next() {
		var r ref
		if err := rows.Scan(&r.id, &r.segtype); err != nil {
			rows.Close()
			return nil, fmt.Errorf("tmstore: scan unit: %w", err)
		}
		refs = append(refs, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tmstore: iterate units: %w", err)
	}
	if len(refs) == 0 {
		return nil, errors.NewNotFound("unit", tuid)
	}

	units := make([]*tmx.Unit, 0, len(refs))
	for _, r := range refs {
		u, err := s.load(ctx, r.id, tuid, r.segtype)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

func (s *Store) load(ctx context.Context, unitID int64, tuid, segtype string) (*tmx.Unit, error) {
	u := tmx.NewUnit(tuid, segtype)

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, value FROM unit_properties WHERE unit_id = ? ORDER BY position`, unitID)
	if err != nil {
		return nil, fmt.Errorf("tmstore: query properties: %w", err)
	}
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			rows.Close()
			return nil, fmt.Errorf("tmstore: scan property: %w", err)
		}
		u.Properties.Set(name, &tmx.PropertyValue{Value: value})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tmstore: iterate properties: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, locale FROM variants WHERE unit_id = ? ORDER BY position`, unitID)
	if err != nil {
		return nil, fmt.Errorf("tmstore: query variants: %w", err)
	}
	var variantIDs []int64
	for rows.Next() {
		var (
			id     int64
			locale sql.NullString
		)
		if err := rows.Scan(&id, &locale); err != nil {
			rows.Close()
			return nil, fmt.Errorf("tmstore: scan variant: %w", err)
		}
		var lp *string
		if locale.Valid {
			lp = &locale.String
		}
		variantIDs = append(variantIDs, id)
		u.Variants = append(u.Variants, tmx.NewVariant(lp))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tmstore: iterate variants: %w", err)
	}

	for i, id := range variantIDs {
		elems, err := s.loadElements(ctx, id)
		if err != nil {
			return nil, err
		}
		u.Variants[i].Elements = elems
	}
	return u, nil
}

func (s *Store) loadElements(ctx context.Context, variantID int64) ([]tmx.Element, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, type, pair_id, body, start, length FROM elements
		 WHERE variant_id = ? ORDER BY position`, variantID)
	if err != nil {
		return nil, fmt.Errorf("tmstore: query elements: %w", err)
	}
	defer rows.Close()

	var elems []tmx.Element
	for rows.Next() {
		var (
			kind, typ, pairID, body string
			start, length           sql.NullInt64
		)
		if err := rows.Scan(&kind, &typ, &pairID, &body, &start, &length); err != nil {
			return nil, fmt.Errorf("tmstore: scan element: %w", err)
		}
		switch kind {
		case kindText:
			elems = append(elems, tmx.Text(body))
		case kindPlaceholder:
			elems = append(elems, &tmx.Placeholder{
				Type:   typ,
				Text:   body,
				Start:  intPtr(start),
				Length: intPtr(length),
			})
		case kindBeginPair:
			elems = append(elems, &tmx.Pair{Kind: tmx.PairBegin, I: pairID, Text: body})
		case kindEndPair:
			elems = append(elems, &tmx.Pair{Kind: tmx.PairEnd, I: pairID, Text: body})
		default:
			return nil, errors.NewUnsupported("element kind", kind)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tmstore: iterate elements: %w", err)
	}
	return elems, nil
}

// Count returns the number of stored units.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM units`).Scan(&n); err != nil {
		return 0, fmt.Errorf("tmstore: count units: %w", err)
	}
	return n, nil
}

// Imports lists finished imports, oldest first.
func (s *Store) Imports(ctx context.Context) ([]ImportRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, started_at, units, skipped FROM imports ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("tmstore: query imports: %w", err)
	}
	defer rows.Close()

	var out []ImportRecord
	for rows.Next() {
		var (
			rec     ImportRecord
			started string
		)
		if err := rows.Scan(&rec.ID, &rec.Source, &started, &rec.Units, &rec.Skipped); err != nil {
			return nil, fmt.Errorf("tmstore: scan import: %w", err)
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("tmstore: import %s: bad timestamp %q: %w", rec.ID, started, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tmstore: iterate imports: %w", err)
	}
	return out, nil
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
