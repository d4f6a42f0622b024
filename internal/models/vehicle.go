package models

// Vehicle is a collection vehicle lookup row, unique on normalized
// registration number.
type Vehicle struct {
	ID        uint   `gorm:"primaryKey"`
	RegNumber string `gorm:"size:255;uniqueIndex;not null"`
}
