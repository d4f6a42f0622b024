package models

// Route is a collection route lookup row, unique on normalized name.
// ZoneID records the owning zone as seen when the route was first
// created; it is never revisited afterwards.
type Route struct {
	ID     uint   `gorm:"primaryKey"`
	Name   string `gorm:"size:255;uniqueIndex;not null"`
	ZoneID *uint  `gorm:"index"`
}
