package rab

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Simplici0/rab.works/internal/db"
)

var (
	ErrNotFound     = errors.New("estimate not found")
	ErrTitleMissing = errors.New("estimate title is required")
)

// Estimate is a saved RAB: header fields, its line items and the totals
// snapshot taken when the items were last saved.
type Estimate struct {
	ID         int64
	Title      string
	ClientName string
	Location   string
	Notes      string
	OwnerEmail string
	Items      []LineItem
	ItemCount  int
	Totals     Totals
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Ledger returns a ledger holding the estimate's items.
func (e Estimate) Ledger() *Ledger {
	return NewLedger(e.Items...)
}

// ListFilter narrows List. An empty Owner lists every estimate.
type ListFilter struct {
	Owner string
	Query string
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create stores the estimate header and returns its id. Items are saved separately with SaveItems.
func (s *Store) Create(ctx context.Context, e Estimate) (int64, error) {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return 0, ErrTitleMissing
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO estimates (title, client_name, location, notes, owner_email, totals_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.Title, strings.TrimSpace(e.ClientName), strings.TrimSpace(e.Location), strings.TrimSpace(e.Notes), e.OwnerEmail, encodeTotals(Totals{}))
	if err != nil {
		return 0, fmt.Errorf("insert estimate: %w", err)
	}
	return result.LastInsertId()
}

func (s *Store) Get(ctx context.Context, id int64) (Estimate, error) {
	var e Estimate
	var totalsJSON, createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, COALESCE(client_name, ''), COALESCE(location, ''), COALESCE(notes, ''), owner_email, totals_json, created_at, updated_at
		FROM estimates
		WHERE id = ?
	`, id).Scan(&e.ID, &e.Title, &e.ClientName, &e.Location, &e.Notes, &e.OwnerEmail, &totalsJSON, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Estimate{}, ErrNotFound
	}
	if err != nil {
		return Estimate{}, fmt.Errorf("query estimate: %w", err)
	}
	e.Totals = decodeTotals(totalsJSON)
	e.CreatedAt, e.UpdatedAt = db.ParseTime(createdAt), db.ParseTime(updatedAt)

	items, err := s.items(ctx, id)
	if err != nil {
		return Estimate{}, err
	}
	e.Items = items
	e.ItemCount = len(items)
	return e, nil
}

func (s *Store) items(ctx context.Context, estimateID int64) ([]LineItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, category, sub_category, unit, volume, unit_price, amount
		FROM estimate_items
		WHERE estimate_id = ?
		ORDER BY position ASC
	`, estimateID)
	if err != nil {
		return nil, fmt.Errorf("query estimate items: %w", err)
	}
	defer rows.Close()

	items := make([]LineItem, 0)
	for rows.Next() {
		var item LineItem
		if err := rows.Scan(&item.ID, &item.Description, &item.Category, &item.SubCategory, &item.Unit, &item.Volume, &item.UnitPrice, &item.Amount); err != nil {
			return nil, fmt.Errorf("scan estimate item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimate items: %w", err)
	}
	return items, nil
}

// List returns estimate headers newest first. Items are not loaded; totals come from the stored snapshot.
func (s *Store) List(ctx context.Context, f ListFilter) ([]Estimate, error) {
	query := strings.TrimSpace(f.Query)
	search := db.ContainsPattern(query)
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			e.id,
			e.title,
			COALESCE(e.client_name, ''),
			COALESCE(e.location, ''),
			COALESCE(e.notes, ''),
			e.owner_email,
			e.totals_json,
			(SELECT COUNT(*) FROM estimate_items i WHERE i.estimate_id = e.id),
			e.created_at,
			e.updated_at
		FROM estimates e
		WHERE (? = '' OR e.owner_email = ?)
		  AND (? = '' OR LOWER(e.title) LIKE ? ESCAPE '\' OR LOWER(COALESCE(e.client_name, '')) LIKE ? ESCAPE '\' OR LOWER(COALESCE(e.notes, '')) LIKE ? ESCAPE '\')
		ORDER BY datetime(e.created_at) DESC, e.id DESC
	`, f.Owner, f.Owner, query, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("query estimates: %w", err)
	}
	defer rows.Close()

	estimates := make([]Estimate, 0)
	for rows.Next() {
		var e Estimate
		var totalsJSON, createdAt, updatedAt string
		if err := rows.Scan(&e.ID, &e.Title, &e.ClientName, &e.Location, &e.Notes, &e.OwnerEmail, &totalsJSON, &e.ItemCount, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan estimate: %w", err)
		}
		e.Totals = decodeTotals(totalsJSON)
		e.CreatedAt, e.UpdatedAt = db.ParseTime(createdAt), db.ParseTime(updatedAt)
		estimates = append(estimates, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate estimates: %w", err)
	}
	return estimates, nil
}

// SaveItems replaces every stored item of the estimate with the ledger's
// items and refreshes the totals snapshot in a single transaction.
func (s *Store) SaveItems(ctx context.Context, id int64, ledger *Ledger) (err error) {
	items := ledger.Items()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save items: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `
		UPDATE estimates
		SET totals_json = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, encodeTotals(ComputeTotals(items)), id)
	if err != nil {
		return fmt.Errorf("update estimate totals: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update estimate totals: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM estimate_items WHERE estimate_id = ?`, id); err != nil {
		return fmt.Errorf("clear estimate items: %w", err)
	}

	for i, item := range items {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO estimate_items (id, estimate_id, position, description, category, sub_category, unit, volume, unit_price, amount)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, item.ID, id, i, item.Description, item.Category, item.SubCategory, item.Unit, item.Volume, item.UnitPrice, item.Amount); err != nil {
			return fmt.Errorf("insert estimate item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save items: %w", err)
	}
	return nil
}

// Delete removes an estimate and, through the foreign key, its items.
func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM estimates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete estimate: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete estimate: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeTotals(t Totals) string {
	raw, err := json.Marshal(t)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// decodeTotals reads a totals snapshot. Malformed JSON yields zero totals.
func decodeTotals(raw string) Totals {
	var t Totals
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return Totals{}
	}
	return t
}
