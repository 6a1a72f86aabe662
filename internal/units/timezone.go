package units

import (
	"fmt"
	"time"
)

// DefaultTimezone is the local calendar used when no timezone is configured.
// The first deployments ran in German workplaces, so their wall clock is
// the ancestral default.
const DefaultTimezone = "Europe/Berlin"

// IsTimezoneValid checks the name against the system tz database.
func IsTimezoneValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// LoadTimezone resolves a tz database name to a Location, falling back to
// DefaultTimezone when the name is empty.
func LoadTimezone(tz string) (*time.Location, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", tz, err)
	}
	return loc, nil
}
