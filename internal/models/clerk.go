package models

// Clerk is a weighing clerk lookup row, unique on normalized name.
type Clerk struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:255;uniqueIndex;not null"`
}
