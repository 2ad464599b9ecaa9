// internal/domain/schedule/cadence.go
package schedule

import (
	"fmt"
	"strings"
)

// Cadence is the named recurrence pattern controlling how often a job may fire.
type Cadence string

const (
	CadenceFourTimesDaily Cadence = "FOUR_TIMES_DAILY" // every hour of the cron hour list
	CadenceTwiceDaily     Cadence = "TWICE_DAILY"      // first and last hour
	CadenceDaily          Cadence = "DAILY"            // last hour
	CadenceWeekly         Cadence = "WEEKLY"           // last hour, Mondays only
	CadenceBiweekly       Cadence = "BIWEEKLY"         // last hour, 1st/15th/29th only
)

var ErrUnknownCadence = fmt.Errorf("unknown cadence")

// ParseCadence normalizes a cadence name read from configuration.
func ParseCadence(raw string) (Cadence, error) {
	c := Cadence(strings.ToUpper(strings.TrimSpace(raw)))
	switch c {
	case CadenceFourTimesDaily, CadenceTwiceDaily, CadenceDaily, CadenceWeekly, CadenceBiweekly:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCadence, raw)
	}
}
