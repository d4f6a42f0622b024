package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"greenfield-reports/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Zone{}, &models.Clerk{}, &models.Vehicle{}, &models.Route{},
		&models.DailyEntry{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func f(v float64) *float64 { return &v }

func sampleInput(date, zone string) *EntryInput {
	return &EntryInput{
		Date:       date,
		Zone:       zone,
		Clerk:      "John Kemboi",
		Vehicle:    "kxx 001a",
		Route:      "Kapset",
		TimeOut:    "06:30",
		TimeIn:     "11:15",
		TareTime:   "11:40",
		FieldWgt:   f(1200),
		FactoryWgt: f(1185.5),
		ScorchKg:   f(12),
		QualityPct: f(87.5),
	}
}

func TestInsertAndFetchByID(t *testing.T) {
	s := New(testDB(t), 48*time.Hour)

	id, err := s.Insert(sampleInput("2025-08-01", "Zone 1 Norah"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.FetchByID(id)
	if err != nil {
		t.Fatalf("fetch by id: %v", err)
	}

	// joined text must come back normalized
	if got.Zone != "ZONE 1 NORAH" {
		t.Errorf("zone = %q, want %q", got.Zone, "ZONE 1 NORAH")
	}
	if got.Clerk != "JOHN KEMBOI" {
		t.Errorf("clerk = %q, want %q", got.Clerk, "JOHN KEMBOI")
	}
	if got.Vehicle != "KXX 001A" {
		t.Errorf("vehicle = %q, want %q", got.Vehicle, "KXX 001A")
	}
	if got.Route != "KAPSET" {
		t.Errorf("route = %q, want %q", got.Route, "KAPSET")
	}
	if got.FactoryWgt != 1185.5 {
		t.Errorf("factory weight = %f, want 1185.5", got.FactoryWgt)
	}
	if got.TimeOut != "06:30" {
		t.Errorf("time out = %q, want %q", got.TimeOut, "06:30")
	}
}

func TestInsertMissingMeasure(t *testing.T) {
	s := New(testDB(t), 48*time.Hour)

	in := sampleInput("2025-08-01", "ZONE 2")
	in.ScorchKg = nil

	_, err := s.Insert(in)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("insert error = %v, want ValidationError", err)
	}
	if verr.Field != "scorch_kg" {
		t.Errorf("validation field = %q, want scorch_kg", verr.Field)
	}

	all, err := s.FetchAll()
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("entries = %d, want 0 (no partial write)", len(all))
	}
}

func TestInsertFailureLeavesNoLookupRows(t *testing.T) {
	db := testDB(t)
	if err := db.Migrator().DropTable(&models.DailyEntry{}); err != nil {
		t.Fatalf("drop entries table: %v", err)
	}
	s := New(db, 48*time.Hour)

	if _, err := s.Insert(sampleInput("2025-08-01", "ZONE 2")); err == nil {
		t.Fatal("insert into missing table: error = nil, want error")
	}

	// the resolved names roll back with the failed entry write
	var zones, routes int64
	db.Model(&models.Zone{}).Count(&zones)
	db.Model(&models.Route{}).Count(&routes)
	if zones != 0 || routes != 0 {
		t.Errorf("lookup rows survived the rollback: %d zones, %d routes", zones, routes)
	}
}

func TestUpdateWithinWindow(t *testing.T) {
	s := New(testDB(t), 48*time.Hour)

	id, err := s.Insert(sampleInput("2025-08-01", "ZONE 2"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	in := sampleInput("2025-08-01", "Zone 3 Dennis")
	in.FactoryWgt = f(900)
	in.Route = "New Route"
	if err := s.Update(id, in); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.FetchByID(id)
	if err != nil {
		t.Fatalf("fetch by id: %v", err)
	}
	if got.Zone != "ZONE 3 DENNIS" {
		t.Errorf("zone = %q, want ZONE 3 DENNIS", got.Zone)
	}
	if got.FactoryWgt != 900 {
		t.Errorf("factory weight = %f, want 900", got.FactoryWgt)
	}
	// editing to a previously-unseen route creates a registry row
	if got.Route != "NEW ROUTE" {
		t.Errorf("route = %q, want NEW ROUTE", got.Route)
	}
}

func TestUpdateAfterWindowExpired(t *testing.T) {
	db := testDB(t)
	s := New(db, time.Nanosecond)

	id, err := s.Insert(sampleInput("2025-08-01", "ZONE 2"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	time.Sleep(time.Millisecond)

	in := sampleInput("2025-08-01", "ZONE 2")
	in.FactoryWgt = f(1)
	if err := s.Update(id, in); !errors.Is(err, ErrEditWindowExpired) {
		t.Fatalf("update error = %v, want ErrEditWindowExpired", err)
	}

	got, err := s.FetchByID(id)
	if err != nil {
		t.Fatalf("fetch by id: %v", err)
	}
	if got.FactoryWgt != 1185.5 {
		t.Errorf("factory weight = %f, want 1185.5 (row unchanged)", got.FactoryWgt)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	s := New(testDB(t), 48*time.Hour)

	err := s.Update(9999, sampleInput("2025-08-01", "ZONE 2"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("update error = %v, want ErrNotFound", err)
	}
}

func TestFetchByDateOrder(t *testing.T) {
	s := New(testDB(t), 48*time.Hour)

	for _, zone := range []string{"ZONE 2", "ZONE 1 NORAH", "ZONE 4 WESTONE"} {
		if _, err := s.Insert(sampleInput("2025-08-01", zone)); err != nil {
			t.Fatalf("insert %s: %v", zone, err)
		}
	}
	if _, err := s.Insert(sampleInput("2025-08-02", "ZONE 2")); err != nil {
		t.Fatalf("insert other date: %v", err)
	}

	records, err := s.FetchByDate("2025-08-01")
	if err != nil {
		t.Fatalf("fetch by date: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	// submission order, id ascending
	for i := 1; i < len(records); i++ {
		if records[i].ID <= records[i-1].ID {
			t.Errorf("records out of order: id %d after %d", records[i].ID, records[i-1].ID)
		}
	}
	if records[0].Zone != "ZONE 2" {
		t.Errorf("first record zone = %q, want ZONE 2", records[0].Zone)
	}
}

func TestFetchByDateEmpty(t *testing.T) {
	s := New(testDB(t), 48*time.Hour)

	records, err := s.FetchByDate("2025-08-01")
	if err != nil {
		t.Fatalf("fetch by date: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want 0", len(records))
	}
}

func TestDistinctMetadata(t *testing.T) {
	s := New(testDB(t), 48*time.Hour)

	inputs := []*EntryInput{
		sampleInput("2025-08-01", "ZONE 2"),
		sampleInput("2025-08-01", "zone 2"), // same zone after normalization
		sampleInput("2025-08-02", "ZONE 1 NORAH"),
	}
	inputs[2].Vehicle = "KYY 002B"
	for _, in := range inputs {
		if _, err := s.Insert(in); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	meta, err := s.DistinctMetadata()
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}

	wantZones := []string{"ZONE 1 NORAH", "ZONE 2"}
	if len(meta.Zones) != len(wantZones) {
		t.Fatalf("zones = %v, want %v", meta.Zones, wantZones)
	}
	for i, z := range wantZones {
		if meta.Zones[i] != z {
			t.Errorf("zones[%d] = %q, want %q", i, meta.Zones[i], z)
		}
	}
	if len(meta.Vehicles) != 2 {
		t.Errorf("vehicles = %v, want 2 distinct", meta.Vehicles)
	}
}
