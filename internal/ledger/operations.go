package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Record inserts e. Ids are unique; recording the same id twice fails.
func (d *DB) Record(ctx context.Context, e Entry) error {
	_, err := d.db.ExecContext(ctx,
		"INSERT INTO payloads (id, fingerprint, ts, meta, width, height, bits) VALUES (?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.Fingerprint, e.Timestamp, e.Meta, e.Width, e.Height, e.Bits,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payload %s: %w", e.ID, err)
	}
	return nil
}

// Lookup returns the entry for id or ErrNotFound.
func (d *DB) Lookup(ctx context.Context, id string) (Entry, error) {
	var e Entry
	err := d.db.QueryRowContext(ctx,
		"SELECT id, fingerprint, ts, meta, width, height, bits FROM payloads WHERE id = ?",
		id,
	).Scan(&e.ID, &e.Fingerprint, &e.Timestamp, &e.Meta, &e.Width, &e.Height, &e.Bits)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to query payload: %w", err)
	}
	return e, nil
}

// ByFingerprint lists every payload issued for the same original bytes,
// newest first.
func (d *DB) ByFingerprint(ctx context.Context, fingerprint string) ([]Entry, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT id, fingerprint, ts, meta, width, height, bits FROM payloads WHERE fingerprint = ? ORDER BY ts DESC, id",
		fingerprint,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Fingerprint, &e.Timestamp, &e.Meta, &e.Width, &e.Height, &e.Bits); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return entries, nil
}
