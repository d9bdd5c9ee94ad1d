package seed

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/rab.works/internal/catalog"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
	// Catalog also inserts the reference material and labor rates.
	Catalog bool
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Reference rates, one or more per keyword used by the formula table. Names
// are chosen so that each keyword only matches the rows meant for it, except
// "Bata", which matches both brick kinds.
var referenceMaterials = []catalog.MaterialRate{
	{Name: "Papan Kayu Bekisting", Category: "Kayu", Unit: "m3", UnitPrice: 2500000},
	{Name: "Pasir Urug", Category: "Pasir", Unit: "m3", UnitPrice: 200000},
	{Name: "Tanah Urug", Category: "Tanah", Unit: "m3", UnitPrice: 150000},
	{Name: "Batu Kali", Category: "Batu", Unit: "m3", UnitPrice: 450000},
	{Name: "Semen Portland 50 kg", Category: "Semen", Unit: "sak", UnitPrice: 65000},
	{Name: "Pasir Pasang", Category: "Pasir", Unit: "m3", UnitPrice: 280000},
	{Name: "Pasir Cor", Category: "Pasir", Unit: "m3", UnitPrice: 300000},
	{Name: "Batu Split 1/2", Category: "Batu", Unit: "m3", UnitPrice: 350000},
	{Name: "Besi Beton Polos", Category: "Besi", Unit: "kg", UnitPrice: 14000},
	{Name: "Bata Merah", Category: "Bata", Unit: "buah", UnitPrice: 800},
	{Name: "Bata Ringan", Category: "Bata", Unit: "buah", UnitPrice: 9000},
	{Name: "Roster Beton", Category: "Bata", Unit: "buah", UnitPrice: 6000},
	{Name: "Keramik Lantai 40x40", Category: "Lantai", Unit: "m2", UnitPrice: 85000},
	{Name: "Granit 60x60", Category: "Lantai", Unit: "m2", UnitPrice: 210000},
	{Name: "Baja Ringan C75", Category: "Atap", Unit: "m2", UnitPrice: 95000},
	{Name: "Genteng Tanah Liat", Category: "Atap", Unit: "buah", UnitPrice: 6500},
	{Name: "Spandek 0.3 mm", Category: "Atap", Unit: "m2", UnitPrice: 75000},
	{Name: "Nok Bubungan", Category: "Atap", Unit: "buah", UnitPrice: 12000},
	{Name: "Talang PVC", Category: "Atap", Unit: "m1", UnitPrice: 65000},
	{Name: "Hollow Galvalum 4x4", Category: "Plafon", Unit: "batang", UnitPrice: 22000},
	{Name: "Gypsum Board 9 mm", Category: "Plafon", Unit: "lembar", UnitPrice: 75000},
	{Name: "GRC Board 4 mm", Category: "Plafon", Unit: "lembar", UnitPrice: 70000},
	{Name: "List Profil Plafon", Category: "Plafon", Unit: "m1", UnitPrice: 18000},
	{Name: "Kusen Kayu Meranti", Category: "Pintu & Jendela", Unit: "unit", UnitPrice: 1250000},
	{Name: "Daun Pintu Panel", Category: "Pintu & Jendela", Unit: "unit", UnitPrice: 1650000},
	{Name: "Aluminium Jendela", Category: "Pintu & Jendela", Unit: "m2", UnitPrice: 650000},
	{Name: "Kaca Bening 5 mm", Category: "Pintu & Jendela", Unit: "m2", UnitPrice: 150000},
	{Name: "Cat Tembok Interior", Category: "Cat", Unit: "kg", UnitPrice: 35000},
	{Name: "Cat Eksterior", Category: "Cat", Unit: "kg", UnitPrice: 55000},
	{Name: "Cat Kayu", Category: "Cat", Unit: "kg", UnitPrice: 60000},
	{Name: "Kabel NYM 2x1.5", Category: "Listrik", Unit: "m1", UnitPrice: 12000},
	{Name: "Fitting Lampu", Category: "Listrik", Unit: "buah", UnitPrice: 25000},
	{Name: "Stop Kontak", Category: "Listrik", Unit: "buah", UnitPrice: 35000},
	{Name: "Pipa PVC 3/4 inch", Category: "Sanitasi", Unit: "m1", UnitPrice: 45000},
	{Name: "Kloset Duduk", Category: "Sanitasi", Unit: "unit", UnitPrice: 1850000},
	{Name: "Wastafel Porselen", Category: "Sanitasi", Unit: "unit", UnitPrice: 750000},
}

var referenceLabor = []catalog.LaborRate{
	{JobType: "Pekerja", Category: "Pekerja", Unit: "hari", UnitPrice: 110000, SkillTier: catalog.SkillNovice},
	{JobType: "Tukang Batu", Category: "Tukang", Unit: "hari", UnitPrice: 150000, SkillTier: catalog.SkillIntermediate},
	{JobType: "Tukang Kayu", Category: "Tukang", Unit: "hari", UnitPrice: 150000, SkillTier: catalog.SkillIntermediate},
	{JobType: "Tukang Besi", Category: "Tukang", Unit: "hari", UnitPrice: 150000, SkillTier: catalog.SkillIntermediate},
	{JobType: "Tukang Cat", Category: "Tukang", Unit: "hari", UnitPrice: 140000, SkillTier: catalog.SkillIntermediate},
	{JobType: "Tukang Listrik", Category: "Tukang", Unit: "hari", UnitPrice: 160000, SkillTier: catalog.SkillExpert},
	{JobType: "Tukang Pipa", Category: "Tukang", Unit: "hari", UnitPrice: 150000, SkillTier: catalog.SkillIntermediate},
	{JobType: "Mandor", Category: "Pengawas", Unit: "hari", UnitPrice: 180000, SkillTier: catalog.SkillMaster},
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if cfg.Catalog {
		if err := ensureMaterials(tx, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
		if err := ensureLabor(tx, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

// seedAdmin creates the admin account, or promotes an existing account with
// that email. An existing password is never replaced.
func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var role string
	err := tx.QueryRow(`SELECT role FROM users WHERE email = ?`, email).Scan(&role)
	switch {
	case err == nil:
		if role == "admin" {
			return nil
		}
		if _, err := tx.Exec(`UPDATE users SET role = 'admin' WHERE email = ?`, email); err != nil {
			return fmt.Errorf("promote admin user: %w", err)
		}
		stats.Updates++
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check admin user existence: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash, role) VALUES (?, ?, 'admin')`, email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureMaterials(tx *sql.Tx, stats *Stats) error {
	for _, m := range referenceMaterials {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM materials WHERE name = ? LIMIT 1)`, m.Name).Scan(&exists); err != nil {
			return fmt.Errorf("check material %q existence: %w", m.Name, err)
		}
		if exists {
			continue
		}

		if _, err := tx.Exec(`
			INSERT INTO materials (name, category, unit, unit_price, supplier, description, status)
			VALUES (?, ?, ?, ?, '', '', 'active')
		`, m.Name, m.Category, m.Unit, m.UnitPrice); err != nil {
			return fmt.Errorf("insert material %q: %w", m.Name, err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureLabor(tx *sql.Tx, stats *Stats) error {
	for _, l := range referenceLabor {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM labor_rates WHERE job_type = ? LIMIT 1)`, l.JobType).Scan(&exists); err != nil {
			return fmt.Errorf("check labor rate %q existence: %w", l.JobType, err)
		}
		if exists {
			continue
		}

		if _, err := tx.Exec(`
			INSERT INTO labor_rates (job_type, category, unit, unit_price, skill_tier, location, description, status)
			VALUES (?, ?, ?, ?, ?, '', '', 'active')
		`, l.JobType, l.Category, l.Unit, l.UnitPrice, string(l.SkillTier)); err != nil {
			return fmt.Errorf("insert labor rate %q: %w", l.JobType, err)
		}
		stats.Inserts++
	}
	return nil
}
