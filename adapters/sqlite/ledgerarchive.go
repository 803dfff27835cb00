package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/paygate/domain/ledger"
	"github.com/artpar/paygate/ports"
	"github.com/shopspring/decimal"
)

// LedgerArchive implements ports.LedgerArchive using SQLite.
type LedgerArchive struct {
	db *DB
}

// NewLedgerArchive creates a new SQLite ledger archive.
func NewLedgerArchive(db *DB) *LedgerArchive {
	return &LedgerArchive{db: db}
}

// WriteBatch inserts entries in one transaction. Ids already archived are
// left untouched so a retried batch is harmless.
func (s *LedgerArchive) WriteBatch(ctx context.Context, entries []ledger.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO ledger_entries (
			id, client_address, endpoint, max_amount, amount_charged,
			status, created_at, completed_at, ip_address, user_agent
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx,
			e.ID, e.ClientAddress, e.Endpoint, e.MaxAmountAuthorized.String(), e.AmountCharged.String(),
			string(e.Status), e.CreatedAt.UTC(), utcOrNil(e.CompletedAt), e.IPAddress, e.UserAgent,
		)
		if err != nil {
			return fmt.Errorf("insert %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// UpdateStatus records a status transition of an archived entry.
func (s *LedgerArchive) UpdateStatus(ctx context.Context, id string, status ledger.Status, completedAt *time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ledger_entries SET status = ?, completed_at = ? WHERE id = ?`,
		string(status), utcOrNil(completedAt), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// Get returns an archived entry.
func (s *LedgerArchive) Get(ctx context.Context, id string) (ledger.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, client_address, endpoint, max_amount, amount_charged,
		       status, created_at, completed_at, ip_address, user_agent
		FROM ledger_entries WHERE id = ?
	`, id)

	var (
		e                 ledger.Entry
		maxAmount, amount string
		status            string
		completedAt       sql.NullTime
	)
	err := row.Scan(&e.ID, &e.ClientAddress, &e.Endpoint, &maxAmount, &amount,
		&status, &e.CreatedAt, &completedAt, &e.IPAddress, &e.UserAgent)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Entry{}, ledger.ErrNotFound
	}
	if err != nil {
		return ledger.Entry{}, err
	}

	if e.MaxAmountAuthorized, err = decimal.NewFromString(maxAmount); err != nil {
		return ledger.Entry{}, fmt.Errorf("entry %s max_amount: %w", id, err)
	}
	if e.AmountCharged, err = decimal.NewFromString(amount); err != nil {
		return ledger.Entry{}, fmt.Errorf("entry %s amount_charged: %w", id, err)
	}
	e.Status = ledger.Status(status)
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		e.CompletedAt = &t
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

// Summary returns archive-level totals. Amounts are summed exactly in Go
// because SQLite only has floating point arithmetic.
func (s *LedgerArchive) Summary(ctx context.Context) (ports.ArchiveSummary, error) {
	sum := ports.ArchiveSummary{Completed: decimal.Zero, Refunded: decimal.Zero}

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT CASE WHEN client_address = '' THEN 'anonymous' ELSE client_address END)
		FROM ledger_entries
	`)
	if err := row.Scan(&sum.Entries, &sum.Clients); err != nil {
		return sum, err
	}
	if sum.Entries == 0 {
		return sum, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, amount_charged, created_at FROM ledger_entries`)
	if err != nil {
		return sum, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status, amount string
			createdAt      time.Time
		)
		if err := rows.Scan(&status, &amount, &createdAt); err != nil {
			return sum, err
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return sum, fmt.Errorf("amount %q: %w", amount, err)
		}

		switch ledger.Status(status) {
		case ledger.StatusCompleted:
			sum.Completed = sum.Completed.Add(d)
		case ledger.StatusRefunded:
			sum.Refunded = sum.Refunded.Add(d)
		case ledger.StatusPending:
			sum.Pending++
		}

		createdAt = createdAt.UTC()
		if sum.FirstAt == nil || createdAt.Before(*sum.FirstAt) {
			t := createdAt
			sum.FirstAt = &t
		}
		if sum.LastAt == nil || createdAt.After(*sum.LastAt) {
			t := createdAt
			sum.LastAt = &t
		}
	}
	return sum, rows.Err()
}

func utcOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// Ensure interface compliance.
var _ ports.LedgerArchive = (*LedgerArchive)(nil)
