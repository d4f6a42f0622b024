package models

import "time"

// DailyEntry is one vehicle-weighing event. The four name references
// are nullable (blank source text resolves to no row); the four
// numeric measures are required at insert time.
type DailyEntry struct {
	ID        uint   `gorm:"primaryKey"`
	Date      string `gorm:"size:10;index;not null"` // YYYY-MM-DD, no time component
	ZoneID    *uint  `gorm:"index"`
	ClerkID   *uint
	VehicleID *uint
	RouteID   *uint `gorm:"index"`

	// free-text time-of-day fields, kept verbatim from the clerk sheet
	TimeOut  string `gorm:"size:50"`
	TimeIn   string `gorm:"size:50"`
	TareTime string `gorm:"size:50"`

	FieldWeight   float64 `gorm:"column:fld_wgt;not null"`
	FactoryWeight float64 `gorm:"column:fact_wgt;not null"`
	ScorchKg      float64 `gorm:"column:scorch_kg;not null"`
	QualityPct    float64 `gorm:"column:quality_pct;not null"`

	CreatedAt time.Time
}

func (DailyEntry) TableName() string {
	return "daily_entries"
}
