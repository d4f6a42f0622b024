package database

import (
	"fmt"
	"time"

	"greenfield-reports/internal/models"
	"greenfield-reports/internal/registry"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MigrationError marks a failed legacy schema transform. The caller
// must treat it as fatal: operating on a half-migrated schema is worse
// than not starting.
type MigrationError struct {
	Err error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("legacy schema migration: %v", e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Zone{},
		&models.Clerk{},
		&models.Vehicle{},
		&models.Route{},
		&models.DailyEntry{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// legacyProbe targets the entries table for structural probing only.
type legacyProbe struct{}

func (legacyProbe) TableName() string { return "daily_entries" }

// legacyEntry mirrors the old denormalized layout, where zone, clerk,
// vehicle and route were stored as free text on every row.
type legacyEntry struct {
	ID         uint
	Date       string
	Zone       string
	Clerk      string
	Vehicle    string
	Route      string
	TimeOut    string
	TimeIn     string
	TareTime   string
	FldWgt     float64 `gorm:"column:fld_wgt"`
	FactWgt    float64 `gorm:"column:fact_wgt"`
	ScorchKg   float64 `gorm:"column:scorch_kg"`
	QualityPct float64 `gorm:"column:quality_pct"`
	CreatedAt  time.Time
}

const legacyTable = "daily_entries_legacy"

// MigrateLegacySchema transforms the old denormalized entries table
// into the normalized layout, exactly once. The probe checks for the
// legacy free-text zone column and the absence of zone_id; anything
// else is a no-op, so re-running after a successful migration changes
// nothing. The whole transform runs in one transaction: on failure the
// schema is left as it was.
func MigrateLegacySchema(db *gorm.DB, log *zap.Logger) error {
	m := db.Migrator()
	if !m.HasTable(&legacyProbe{}) {
		return nil
	}
	if !m.HasColumn(&legacyProbe{}, "zone") || m.HasColumn(&legacyProbe{}, "zone_id") {
		return nil
	}

	log.Info("legacy entries schema detected, migrating to normalized layout")

	err := db.Transaction(func(tx *gorm.DB) error {
		reg := registry.New(tx)

		// backfill lookup tables before touching the entries table
		if err := tx.AutoMigrate(&models.Zone{}, &models.Clerk{}, &models.Vehicle{}, &models.Route{}); err != nil {
			return fmt.Errorf("create lookup tables: %w", err)
		}
		if err := backfillLookups(tx, reg); err != nil {
			return err
		}

		// move the legacy table aside and build the normalized one fresh
		if err := tx.Migrator().RenameTable("daily_entries", legacyTable); err != nil {
			return fmt.Errorf("rename legacy table: %w", err)
		}
		if err := tx.AutoMigrate(&models.DailyEntry{}); err != nil {
			return fmt.Errorf("create normalized table: %w", err)
		}

		var rows []legacyEntry
		if err := tx.Table(legacyTable).Order("id ASC").Find(&rows).Error; err != nil {
			return fmt.Errorf("read legacy rows: %w", err)
		}

		for _, row := range rows {
			// all names were backfilled above, so plain lookups suffice
			zoneID, err := reg.LookupZone(row.Zone)
			if err != nil {
				return err
			}
			clerkID, err := reg.LookupClerk(row.Clerk)
			if err != nil {
				return err
			}
			vehicleID, err := reg.LookupVehicle(row.Vehicle)
			if err != nil {
				return err
			}
			routeID, err := reg.LookupRoute(row.Route)
			if err != nil {
				return err
			}

			entry := models.DailyEntry{
				ID:            row.ID,
				Date:          row.Date,
				ZoneID:        zoneID,
				ClerkID:       clerkID,
				VehicleID:     vehicleID,
				RouteID:       routeID,
				TimeOut:       row.TimeOut,
				TimeIn:        row.TimeIn,
				TareTime:      row.TareTime,
				FieldWeight:   row.FldWgt,
				FactoryWeight: row.FactWgt,
				ScorchKg:      row.ScorchKg,
				QualityPct:    row.QualityPct,
				CreatedAt:     row.CreatedAt,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("re-insert entry %d: %w", row.ID, err)
			}
		}

		if err := tx.Migrator().DropTable(legacyTable); err != nil {
			return fmt.Errorf("drop legacy table: %w", err)
		}

		log.Info("legacy migration complete", zap.Int("rows", len(rows)))
		return nil
	})
	if err != nil {
		return &MigrationError{Err: err}
	}
	return nil
}

func backfillLookups(tx *gorm.DB, reg *registry.Registry) error {
	var zones []string
	if err := tx.Table("daily_entries").Distinct("zone").
		Where("zone IS NOT NULL AND TRIM(zone) != ''").
		Pluck("zone", &zones).Error; err != nil {
		return fmt.Errorf("collect legacy zones: %w", err)
	}
	for _, z := range zones {
		if _, err := reg.Zone(z); err != nil {
			return err
		}
	}

	var clerks []string
	if err := tx.Table("daily_entries").Distinct("clerk").
		Where("clerk IS NOT NULL AND TRIM(clerk) != ''").
		Pluck("clerk", &clerks).Error; err != nil {
		return fmt.Errorf("collect legacy clerks: %w", err)
	}
	for _, c := range clerks {
		if _, err := reg.Clerk(c); err != nil {
			return err
		}
	}

	var vehicles []string
	if err := tx.Table("daily_entries").Distinct("vehicle").
		Where("vehicle IS NOT NULL AND TRIM(vehicle) != ''").
		Pluck("vehicle", &vehicles).Error; err != nil {
		return fmt.Errorf("collect legacy vehicles: %w", err)
	}
	for _, v := range vehicles {
		if _, err := reg.Vehicle(v); err != nil {
			return err
		}
	}

	// routes carry the zone text they were first recorded with, which
	// seeds the owning-zone hint
	type routePair struct {
		Route string
		Zone  string
	}
	var pairs []routePair
	if err := tx.Table("daily_entries").
		Select("DISTINCT route, zone").
		Where("route IS NOT NULL AND TRIM(route) != ''").
		Scan(&pairs).Error; err != nil {
		return fmt.Errorf("collect legacy routes: %w", err)
	}
	for _, p := range pairs {
		zoneID, err := reg.Zone(p.Zone)
		if err != nil {
			return err
		}
		if _, err := reg.Route(p.Route, zoneID); err != nil {
			return err
		}
	}
	return nil
}
