package models

// Zone is a tea-collection zone lookup row. Names are stored
// normalized (trimmed, uppercased) and are unique.
type Zone struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:255;uniqueIndex;not null"`
}
