package util

import (
	"fmt"
	"time"
)

// ValidateDate checks a calendar date string (must be YYYY-MM-DD).
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	if _, err := time.Parse("2006-01-02", dateStr); err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateWeight checks a weight measure in kilograms (non-negative,
// below an obviously-wrong ceiling).
func ValidateWeight(weight float64) error {
	if weight < 0 {
		return fmt.Errorf("weight must not be negative, got %f", weight)
	}
	if weight >= 1000000 {
		return fmt.Errorf("weight too large, got %f", weight)
	}
	return nil
}

// ValidateQuality checks a quality percentage (0-100).
func ValidateQuality(pct float64) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("quality percentage out of range, got %f", pct)
	}
	return nil
}
