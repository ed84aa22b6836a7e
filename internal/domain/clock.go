package domain

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze the current year
// via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used for tree ages. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now reads the package clock.
func Now() time.Time { return clock.Now() }

// UnknownAge labels markers without a planting date.
const UnknownAge = "unknown age"

// AgeYears is the current year minus the planting year.
func AgeYears(planted time.Time) int {
	return clock.Now().Year() - planted.Year()
}

// AgeLabel renders the tooltip text for a marker: "<N> years" or UnknownAge.
func (m Marker) AgeLabel() string {
	if m.PlantingDate == nil {
		return UnknownAge
	}
	return fmt.Sprintf("%d years", AgeYears(*m.PlantingDate))
}
