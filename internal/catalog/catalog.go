// Package catalog holds the material and labor rate reference tables that
// administrators maintain and the estimator reads when suggesting prices.
package catalog

import (
	"strings"
	"time"
)

// Status marks whether a catalog row takes part in price lookups.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ParseStatus normalizes a free-form status value. Empty input means active.
func ParseStatus(raw string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "active", "aktif", "1", "true":
		return StatusActive, true
	case "inactive", "nonaktif", "0", "false":
		return StatusInactive, true
	}
	return "", false
}

// SkillTier classifies a labor rate.
type SkillTier string

const (
	SkillNovice       SkillTier = "novice"
	SkillIntermediate SkillTier = "intermediate"
	SkillExpert       SkillTier = "expert"
	SkillMaster       SkillTier = "master"
)

// SkillTiers lists every tier in ascending order.
var SkillTiers = []SkillTier{SkillNovice, SkillIntermediate, SkillExpert, SkillMaster}

// ParseSkillTier normalizes a free-form tier. Empty input means intermediate.
func ParseSkillTier(raw string) (SkillTier, bool) {
	v := SkillTier(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" {
		return SkillIntermediate, true
	}
	for _, tier := range SkillTiers {
		if v == tier {
			return tier, true
		}
	}
	return "", false
}

// MaterialRate is one row of the material price catalog.
type MaterialRate struct {
	ID          int64
	Name        string `validate:"required,max=120"`
	Category    string `validate:"required,max=80"`
	Unit        string `validate:"required,max=20"`
	UnitPrice   int64  `validate:"gte=0"`
	Supplier    string `validate:"max=120"`
	Description string `validate:"max=500"`
	Status      Status `validate:"oneof=active inactive"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LaborRate is one row of the labor wage catalog.
type LaborRate struct {
	ID          int64
	JobType     string    `validate:"required,max=120"`
	Category    string    `validate:"required,max=80"`
	Unit        string    `validate:"required,max=20"`
	UnitPrice   int64     `validate:"gte=0"`
	SkillTier   SkillTier `validate:"oneof=novice intermediate expert master"`
	Location    string    `validate:"max=120"`
	Description string    `validate:"max=500"`
	Status      Status    `validate:"oneof=active inactive"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (m MaterialRate) LookupName() string { return m.Name }
func (m MaterialRate) Price() int64       { return m.UnitPrice }
func (m MaterialRate) Active() bool       { return m.Status == StatusActive }

func (l LaborRate) LookupName() string { return l.JobType }
func (l LaborRate) Price() int64       { return l.UnitPrice }
func (l LaborRate) Active() bool       { return l.Status == StatusActive }

// Rate is implemented by both catalog row types.
type Rate interface {
	LookupName() string
	Price() int64
	Active() bool
}

// FindFirstActiveMatch returns the first active row, in slice order, whose
// lookup name contains keyword case-insensitively. Several rows may match the
// same keyword; the earliest one wins.
func FindFirstActiveMatch[T Rate](rows []T, keyword string) (T, bool) {
	var zero T
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return zero, false
	}
	for _, row := range rows {
		if !row.Active() {
			continue
		}
		if strings.Contains(strings.ToLower(row.LookupName()), needle) {
			return row, true
		}
	}
	return zero, false
}

// Source exposes the already-loaded active catalog rows to price lookups.
type Source interface {
	ActiveMaterials() []MaterialRate
	ActiveLaborRates() []LaborRate
}

// Snapshot is an in-memory copy of both catalogs in stored iteration order.
type Snapshot struct {
	Materials []MaterialRate
	Labor     []LaborRate
}

func (s Snapshot) ActiveMaterials() []MaterialRate {
	out := make([]MaterialRate, 0, len(s.Materials))
	for _, m := range s.Materials {
		if m.Active() {
			out = append(out, m)
		}
	}
	return out
}

func (s Snapshot) ActiveLaborRates() []LaborRate {
	out := make([]LaborRate, 0, len(s.Labor))
	for _, l := range s.Labor {
		if l.Active() {
			out = append(out, l)
		}
	}
	return out
}
