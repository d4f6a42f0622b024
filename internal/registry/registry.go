// Package registry maps free-text zone/clerk/vehicle/route labels to
// stable row identifiers, creating a row the first time a normalized
// name is seen. It is the only place duplicate prevention lives: the
// lookup tables carry a unique index on the normalized name, and a
// create that loses a race falls back to re-reading the winner's row.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"greenfield-reports/internal/models"

	"gorm.io/gorm"
)

// Normalize trims surrounding whitespace and uppercases a label.
// Every lookup and every stored name goes through this.
func Normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

type Registry struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Zone resolves a zone name to its id, creating the row on first use.
// Blank input resolves to nil without touching the database.
func (r *Registry) Zone(name string) (*uint, error) {
	n := Normalize(name)
	if n == "" {
		return nil, nil
	}

	var z models.Zone
	err := r.db.Where("name = ?", n).Take(&z).Error
	if err == nil {
		return &z.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup zone %q: %w", n, err)
	}

	z = models.Zone{Name: n}
	if cerr := r.db.Create(&z).Error; cerr != nil {
		// a concurrent caller may have created the same name; the
		// unique index rejects the duplicate, so read theirs
		var again models.Zone
		if rerr := r.db.Where("name = ?", n).Take(&again).Error; rerr == nil {
			return &again.ID, nil
		}
		return nil, fmt.Errorf("create zone %q: %w", n, cerr)
	}
	return &z.ID, nil
}

// Clerk resolves a clerk name to its id, creating the row on first use.
func (r *Registry) Clerk(name string) (*uint, error) {
	n := Normalize(name)
	if n == "" {
		return nil, nil
	}

	var c models.Clerk
	err := r.db.Where("name = ?", n).Take(&c).Error
	if err == nil {
		return &c.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup clerk %q: %w", n, err)
	}

	c = models.Clerk{Name: n}
	if cerr := r.db.Create(&c).Error; cerr != nil {
		var again models.Clerk
		if rerr := r.db.Where("name = ?", n).Take(&again).Error; rerr == nil {
			return &again.ID, nil
		}
		return nil, fmt.Errorf("create clerk %q: %w", n, cerr)
	}
	return &c.ID, nil
}

// Vehicle resolves a registration number to its id, creating the row
// on first use.
func (r *Registry) Vehicle(regNumber string) (*uint, error) {
	n := Normalize(regNumber)
	if n == "" {
		return nil, nil
	}

	var v models.Vehicle
	err := r.db.Where("reg_number = ?", n).Take(&v).Error
	if err == nil {
		return &v.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup vehicle %q: %w", n, err)
	}

	v = models.Vehicle{RegNumber: n}
	if cerr := r.db.Create(&v).Error; cerr != nil {
		var again models.Vehicle
		if rerr := r.db.Where("reg_number = ?", n).Take(&again).Error; rerr == nil {
			return &again.ID, nil
		}
		return nil, fmt.Errorf("create vehicle %q: %w", n, cerr)
	}
	return &v.ID, nil
}

// Route resolves a route name to its id, creating the row on first
// use. zoneID is the owning-zone hint recorded only at creation; an
// existing route keeps whatever zone it was first created under.
func (r *Registry) Route(name string, zoneID *uint) (*uint, error) {
	n := Normalize(name)
	if n == "" {
		return nil, nil
	}

	var rt models.Route
	err := r.db.Where("name = ?", n).Take(&rt).Error
	if err == nil {
		return &rt.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup route %q: %w", n, err)
	}

	rt = models.Route{Name: n, ZoneID: zoneID}
	if cerr := r.db.Create(&rt).Error; cerr != nil {
		var again models.Route
		if rerr := r.db.Where("name = ?", n).Take(&again).Error; rerr == nil {
			return &again.ID, nil
		}
		return nil, fmt.Errorf("create route %q: %w", n, cerr)
	}
	return &rt.ID, nil
}

// LookupZone returns the id for an already-registered zone name, or
// nil when the name is blank or unknown. Used by the legacy migration,
// which backfills all names before re-inserting rows.
func (r *Registry) LookupZone(name string) (*uint, error) {
	var z models.Zone
	return lookupOnly(r.db.Where("name = ?", Normalize(name)), Normalize(name), &z, func() uint { return z.ID })
}

// LookupClerk is the lookup-only counterpart of Clerk.
func (r *Registry) LookupClerk(name string) (*uint, error) {
	var c models.Clerk
	return lookupOnly(r.db.Where("name = ?", Normalize(name)), Normalize(name), &c, func() uint { return c.ID })
}

// LookupVehicle is the lookup-only counterpart of Vehicle.
func (r *Registry) LookupVehicle(regNumber string) (*uint, error) {
	var v models.Vehicle
	return lookupOnly(r.db.Where("reg_number = ?", Normalize(regNumber)), Normalize(regNumber), &v, func() uint { return v.ID })
}

// LookupRoute is the lookup-only counterpart of Route.
func (r *Registry) LookupRoute(name string) (*uint, error) {
	var rt models.Route
	return lookupOnly(r.db.Where("name = ?", Normalize(name)), Normalize(name), &rt, func() uint { return rt.ID })
}

func lookupOnly(q *gorm.DB, normalized string, dest interface{}, id func() uint) (*uint, error) {
	if normalized == "" {
		return nil, nil
	}
	err := q.Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", normalized, err)
	}
	v := id()
	return &v, nil
}
