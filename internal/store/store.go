// Package store owns the daily_entries table: inserts, edit-window
// gated updates, and joined reads. Name fields go through the entity
// registry on every write; the store itself never stores free text.
package store

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"greenfield-reports/internal/models"
	"greenfield-reports/internal/registry"

	"gorm.io/gorm"
)

// EntryInput carries one weighing event as submitted. Measure fields
// are pointers so a missing value is distinguishable from zero.
type EntryInput struct {
	Date       string   `json:"date" binding:"required"`
	Zone       string   `json:"zone"`
	Clerk      string   `json:"clerk"`
	Vehicle    string   `json:"vehicle"`
	Route      string   `json:"route"`
	TimeOut    string   `json:"time_out"`
	TimeIn     string   `json:"time_in"`
	TareTime   string   `json:"tare_time"`
	FieldWgt   *float64 `json:"fld_wgt"`
	FactoryWgt *float64 `json:"fact_wgt"`
	ScorchKg   *float64 `json:"scorch_kg"`
	QualityPct *float64 `json:"quality_pct"`
}

// EntryRecord is a stored entry joined back to human-readable
// zone/clerk/vehicle/route names.
type EntryRecord struct {
	ID         uint      `json:"id"`
	Date       string    `json:"date"`
	Zone       string    `json:"zone"`
	Clerk      string    `json:"clerk"`
	Vehicle    string    `json:"vehicle"`
	Route      string    `json:"route"`
	TimeOut    string    `json:"time_out"`
	TimeIn     string    `json:"time_in"`
	TareTime   string    `json:"tare_time"`
	FieldWgt   float64   `json:"fld_wgt" gorm:"column:fld_wgt"`
	FactoryWgt float64   `json:"fact_wgt" gorm:"column:fact_wgt"`
	ScorchKg   float64   `json:"scorch_kg" gorm:"column:scorch_kg"`
	QualityPct float64   `json:"quality_pct" gorm:"column:quality_pct"`
	CreatedAt  time.Time `json:"created_at"`
}

// Metadata is the distinct label sets that have ever appeared, for
// upstream selection UIs.
type Metadata struct {
	Zones    []string `json:"zones"`
	Routes   []string `json:"routes"`
	Vehicles []string `json:"vehicles"`
}

// EditWindowFromHours converts the configured hour count into the
// store's edit window, defaulting to 48 hours.
func EditWindowFromHours(hours int) time.Duration {
	if hours <= 0 {
		hours = 48
	}
	return time.Duration(hours) * time.Hour
}

type Store struct {
	db         *gorm.DB
	editWindow time.Duration
}

func New(db *gorm.DB, editWindow time.Duration) *Store {
	return &Store{
		db:         db,
		editWindow: editWindow,
	}
}

// EditWindow reports the configured edit window.
func (s *Store) EditWindow() time.Duration {
	return s.editWindow
}

func validateMeasures(in *EntryInput) error {
	switch {
	case in.FieldWgt == nil:
		return &ValidationError{Field: "fld_wgt"}
	case in.FactoryWgt == nil:
		return &ValidationError{Field: "fact_wgt"}
	case in.ScorchKg == nil:
		return &ValidationError{Field: "scorch_kg"}
	case in.QualityPct == nil:
		return &ValidationError{Field: "quality_pct"}
	}
	return nil
}

func resolveNames(reg *registry.Registry, in *EntryInput) (zone, clerk, vehicle, route *uint, err error) {
	if zone, err = reg.Zone(in.Zone); err != nil {
		return
	}
	if clerk, err = reg.Clerk(in.Clerk); err != nil {
		return
	}
	if vehicle, err = reg.Vehicle(in.Vehicle); err != nil {
		return
	}
	// the route inherits the already-resolved zone as its owning hint
	route, err = reg.Route(in.Route, zone)
	return
}

// Insert resolves the four name fields and appends one entry row.
// Resolution and the append share one transaction, so a failed write
// leaves no stray lookup rows behind.
func (s *Store) Insert(in *EntryInput) (uint, error) {
	if err := validateMeasures(in); err != nil {
		return 0, err
	}

	var entry models.DailyEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		zoneID, clerkID, vehicleID, routeID, err := resolveNames(registry.New(tx), in)
		if err != nil {
			return err
		}

		entry = models.DailyEntry{
			Date:          in.Date,
			ZoneID:        zoneID,
			ClerkID:       clerkID,
			VehicleID:     vehicleID,
			RouteID:       routeID,
			TimeOut:       in.TimeOut,
			TimeIn:        in.TimeIn,
			TareTime:      in.TareTime,
			FieldWeight:   *in.FieldWgt,
			FactoryWeight: *in.FactoryWgt,
			ScorchKg:      *in.ScorchKg,
			QualityPct:    *in.QualityPct,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return entry.ID, nil
}

// Update overwrites an entry in place. Names are re-resolved, which
// may create new registry rows when an edited name differs from every
// existing one. Rejected once the entry is older than the edit window.
func (s *Store) Update(id uint, in *EntryInput) error {
	if err := validateMeasures(in); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var entry models.DailyEntry
		if err := tx.Take(&entry, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load entry %d: %w", id, err)
		}

		if time.Since(entry.CreatedAt) > s.editWindow {
			return ErrEditWindowExpired
		}

		zoneID, clerkID, vehicleID, routeID, err := resolveNames(registry.New(tx), in)
		if err != nil {
			return err
		}

		entry.Date = in.Date
		entry.ZoneID = zoneID
		entry.ClerkID = clerkID
		entry.VehicleID = vehicleID
		entry.RouteID = routeID
		entry.TimeOut = in.TimeOut
		entry.TimeIn = in.TimeIn
		entry.TareTime = in.TareTime
		entry.FieldWeight = *in.FieldWgt
		entry.FactoryWeight = *in.FactoryWgt
		entry.ScorchKg = *in.ScorchKg
		entry.QualityPct = *in.QualityPct

		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("update entry %d: %w", id, err)
		}
		return nil
	})
}

const joinedSelect = `e.id, e.date, e.time_out, e.time_in, e.tare_time,
	e.fld_wgt, e.fact_wgt, e.scorch_kg, e.quality_pct, e.created_at,
	COALESCE(z.name, '') AS zone, COALESCE(c.name, '') AS clerk,
	COALESCE(v.reg_number, '') AS vehicle, COALESCE(r.name, '') AS route`

func (s *Store) joined() *gorm.DB {
	return s.db.Table("daily_entries e").
		Select(joinedSelect).
		Joins("LEFT JOIN zones z ON e.zone_id = z.id").
		Joins("LEFT JOIN clerks c ON e.clerk_id = c.id").
		Joins("LEFT JOIN vehicles v ON e.vehicle_id = v.id").
		Joins("LEFT JOIN routes r ON e.route_id = r.id")
}

// FetchByDate returns the day's entries in submission order.
func (s *Store) FetchByDate(date string) ([]EntryRecord, error) {
	var records []EntryRecord
	if err := s.joined().
		Where("e.date = ?", date).
		Order("e.id ASC").
		Scan(&records).Error; err != nil {
		return nil, fmt.Errorf("fetch entries for %s: %w", date, err)
	}
	return records, nil
}

// FetchAll returns the full joined history, newest date first.
func (s *Store) FetchAll() ([]EntryRecord, error) {
	var records []EntryRecord
	if err := s.joined().
		Order("e.date DESC").
		Scan(&records).Error; err != nil {
		return nil, fmt.Errorf("fetch all entries: %w", err)
	}
	return records, nil
}

// FetchByID returns one joined entry or ErrNotFound.
func (s *Store) FetchByID(id uint) (*EntryRecord, error) {
	var records []EntryRecord
	if err := s.joined().
		Where("e.id = ?", id).
		Limit(1).
		Scan(&records).Error; err != nil {
		return nil, fmt.Errorf("fetch entry %d: %w", id, err)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return &records[0], nil
}

// DistinctMetadata derives the sorted distinct zone/route/vehicle
// label sets over the whole history.
func (s *Store) DistinctMetadata() (*Metadata, error) {
	records, err := s.FetchAll()
	if err != nil {
		return nil, err
	}

	zones := map[string]struct{}{}
	routes := map[string]struct{}{}
	vehicles := map[string]struct{}{}
	for _, r := range records {
		if r.Zone != "" {
			zones[r.Zone] = struct{}{}
		}
		if r.Route != "" {
			routes[r.Route] = struct{}{}
		}
		if r.Vehicle != "" {
			vehicles[r.Vehicle] = struct{}{}
		}
	}

	return &Metadata{
		Zones:    sortedKeys(zones),
		Routes:   sortedKeys(routes),
		Vehicles: sortedKeys(vehicles),
	}, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
