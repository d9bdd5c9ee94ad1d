package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Simplici0/rab.works/internal/db"
)

// ErrNotFound is returned when a catalog row does not exist.
var ErrNotFound = errors.New("catalog row not found")

// Filter narrows admin list screens. Empty fields match everything.
type Filter struct {
	Query    string
	Category string
	Status   Status
}

// Store persists catalog rows in SQLite.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// LoadSnapshot reads both catalogs in stored order, which is the order
// first-match price lookups rely on.
func (s *Store) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	materials, err := s.ListMaterials(ctx, Filter{})
	if err != nil {
		return Snapshot{}, err
	}
	labor, err := s.ListLabor(ctx, Filter{})
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Materials: materials, Labor: labor}, nil
}

func (s *Store) ListMaterials(ctx context.Context, f Filter) ([]MaterialRate, error) {
	search := db.ContainsPattern(f.Query)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, unit, unit_price, COALESCE(supplier, ''), COALESCE(description, ''), status, created_at, updated_at
		FROM materials
		WHERE (? = '' OR LOWER(name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(supplier, '')) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\')
		  AND (? = '' OR category = ?)
		  AND (? = '' OR status = ?)
		ORDER BY id ASC
	`, strings.TrimSpace(f.Query), search, search, search, f.Category, f.Category, string(f.Status), string(f.Status))
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	materials := make([]MaterialRate, 0)
	for rows.Next() {
		var m MaterialRate
		var createdAt, updatedAt string
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.Unit, &m.UnitPrice, &m.Supplier, &m.Description, &m.Status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		m.CreatedAt, m.UpdatedAt = db.ParseTime(createdAt), db.ParseTime(updatedAt)
		materials = append(materials, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}

	return materials, nil
}

func (s *Store) GetMaterial(ctx context.Context, id int64) (MaterialRate, error) {
	var m MaterialRate
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, unit, unit_price, COALESCE(supplier, ''), COALESCE(description, ''), status, created_at, updated_at
		FROM materials
		WHERE id = ?
	`, id).Scan(&m.ID, &m.Name, &m.Category, &m.Unit, &m.UnitPrice, &m.Supplier, &m.Description, &m.Status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return MaterialRate{}, ErrNotFound
	}
	if err != nil {
		return MaterialRate{}, fmt.Errorf("query material: %w", err)
	}
	m.CreatedAt, m.UpdatedAt = db.ParseTime(createdAt), db.ParseTime(updatedAt)
	return m, nil
}

func (s *Store) CreateMaterial(ctx context.Context, m MaterialRate) (int64, error) {
	if err := ValidateMaterial(m); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO materials (name, category, unit, unit_price, supplier, description, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.Name, m.Category, m.Unit, m.UnitPrice, m.Supplier, m.Description, string(m.Status))
	if err != nil {
		return 0, fmt.Errorf("insert material: %w", err)
	}
	return result.LastInsertId()
}

func (s *Store) UpdateMaterial(ctx context.Context, m MaterialRate) error {
	if err := ValidateMaterial(m); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE materials
		SET
			name = ?,
			category = ?,
			unit = ?,
			unit_price = ?,
			supplier = ?,
			description = ?,
			status = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, m.Name, m.Category, m.Unit, m.UnitPrice, m.Supplier, m.Description, string(m.Status), m.ID)
	if err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	return expectAffected(result, "update material")
}

func (s *Store) DeleteMaterial(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM materials WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	return expectAffected(result, "delete material")
}

// InsertMaterials stores imported rows in one transaction.
func (s *Store) InsertMaterials(ctx context.Context, rows []MaterialRate) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin material import: %w", err)
	}

	for _, m := range rows {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO materials (name, category, unit, unit_price, supplier, description, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, m.Name, m.Category, m.Unit, m.UnitPrice, m.Supplier, m.Description, string(m.Status)); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert imported material %q: %w", m.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit material import: %w", err)
	}
	return len(rows), nil
}

func (s *Store) ListLabor(ctx context.Context, f Filter) ([]LaborRate, error) {
	search := db.ContainsPattern(f.Query)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_type, category, unit, unit_price, skill_tier, COALESCE(location, ''), COALESCE(description, ''), status, created_at, updated_at
		FROM labor_rates
		WHERE (? = '' OR LOWER(job_type) LIKE ? ESCAPE '\' OR LOWER(COALESCE(location, '')) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\')
		  AND (? = '' OR category = ?)
		  AND (? = '' OR status = ?)
		ORDER BY id ASC
	`, strings.TrimSpace(f.Query), search, search, search, f.Category, f.Category, string(f.Status), string(f.Status))
	if err != nil {
		return nil, fmt.Errorf("query labor rates: %w", err)
	}
	defer rows.Close()

	labor := make([]LaborRate, 0)
	for rows.Next() {
		var l LaborRate
		var createdAt, updatedAt string
		if err := rows.Scan(&l.ID, &l.JobType, &l.Category, &l.Unit, &l.UnitPrice, &l.SkillTier, &l.Location, &l.Description, &l.Status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan labor rate: %w", err)
		}
		l.CreatedAt, l.UpdatedAt = db.ParseTime(createdAt), db.ParseTime(updatedAt)
		labor = append(labor, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate labor rates: %w", err)
	}

	return labor, nil
}

func (s *Store) GetLabor(ctx context.Context, id int64) (LaborRate, error) {
	var l LaborRate
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, job_type, category, unit, unit_price, skill_tier, COALESCE(location, ''), COALESCE(description, ''), status, created_at, updated_at
		FROM labor_rates
		WHERE id = ?
	`, id).Scan(&l.ID, &l.JobType, &l.Category, &l.Unit, &l.UnitPrice, &l.SkillTier, &l.Location, &l.Description, &l.Status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return LaborRate{}, ErrNotFound
	}
	if err != nil {
		return LaborRate{}, fmt.Errorf("query labor rate: %w", err)
	}
	l.CreatedAt, l.UpdatedAt = db.ParseTime(createdAt), db.ParseTime(updatedAt)
	return l, nil
}

func (s *Store) CreateLabor(ctx context.Context, l LaborRate) (int64, error) {
	if err := ValidateLabor(l); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO labor_rates (job_type, category, unit, unit_price, skill_tier, location, description, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, l.JobType, l.Category, l.Unit, l.UnitPrice, string(l.SkillTier), l.Location, l.Description, string(l.Status))
	if err != nil {
		return 0, fmt.Errorf("insert labor rate: %w", err)
	}
	return result.LastInsertId()
}

func (s *Store) UpdateLabor(ctx context.Context, l LaborRate) error {
	if err := ValidateLabor(l); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE labor_rates
		SET
			job_type = ?,
			category = ?,
			unit = ?,
			unit_price = ?,
			skill_tier = ?,
			location = ?,
			description = ?,
			status = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, l.JobType, l.Category, l.Unit, l.UnitPrice, string(l.SkillTier), l.Location, l.Description, string(l.Status), l.ID)
	if err != nil {
		return fmt.Errorf("update labor rate: %w", err)
	}
	return expectAffected(result, "update labor rate")
}

func (s *Store) DeleteLabor(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM labor_rates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete labor rate: %w", err)
	}
	return expectAffected(result, "delete labor rate")
}

// InsertLabor stores imported rows in one transaction.
func (s *Store) InsertLabor(ctx context.Context, rows []LaborRate) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin labor import: %w", err)
	}

	for _, l := range rows {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO labor_rates (job_type, category, unit, unit_price, skill_tier, location, description, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, l.JobType, l.Category, l.Unit, l.UnitPrice, string(l.SkillTier), l.Location, l.Description, string(l.Status)); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert imported labor rate %q: %w", l.JobType, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit labor import: %w", err)
	}
	return len(rows), nil
}

// Categories returns the distinct categories of a catalog table, sorted.
func (s *Store) Categories(ctx context.Context, table string) ([]string, error) {
	var query string
	switch table {
	case "materials":
		query = `SELECT DISTINCT category FROM materials ORDER BY category`
	case "labor_rates":
		query = `SELECT DISTINCT category FROM labor_rates ORDER BY category`
	default:
		return nil, fmt.Errorf("unknown catalog table %q", table)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s categories: %w", table, err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan %s category: %w", table, err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s categories: %w", table, err)
	}
	return categories, nil
}

func expectAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
