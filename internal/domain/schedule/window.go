// internal/domain/schedule/window.go
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ExecutionWindow is how long after a trigger time a job is still allowed to run.
// Both ends of the window are inclusive.
const ExecutionWindow = 20 * time.Minute

var ErrInvalidCronExpression = fmt.Errorf("invalid cron expression")

// ParseBaseHours extracts the hour list from a 5-field cron expression
// ("minute hour dom month dow"). The hour field must be a comma separated list
// of integers in 0..23. The result is sorted ascending with duplicates removed.
func ParseBaseHours(cronExpression string) ([]int, error) {
	fields := strings.Fields(cronExpression)
	if len(fields) < 5 {
		return nil, fmt.Errorf("%w: expected 5 fields, got %d in %q", ErrInvalidCronExpression, len(fields), cronExpression)
	}

	seen := make(map[int]struct{})
	hours := make([]int, 0)
	for _, part := range strings.Split(fields[1], ",") {
		h, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%w: hour field %q is not a list of integers", ErrInvalidCronExpression, fields[1])
		}
		if h < 0 || h > 23 {
			return nil, fmt.Errorf("%w: hour %d out of range", ErrInvalidCronExpression, h)
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours, nil
}

// ComputeTodayTriggerTimes returns the trigger times for the day of referenceDate,
// in referenceDate's location, at minute 0 of the selected hours.
func ComputeTodayTriggerTimes(cadence Cadence, baseHours []int, referenceDate time.Time) []time.Time {
	if len(baseHours) == 0 {
		return nil
	}
	hours := append([]int(nil), baseHours...)
	sort.Ints(hours)
	first, last := hours[0], hours[len(hours)-1]

	var selected []int
	switch cadence {
	case CadenceFourTimesDaily:
		selected = hours
	case CadenceTwiceDaily:
		selected = []int{first}
		if last != first {
			selected = append(selected, last)
		}
	case CadenceDaily:
		selected = []int{last}
	case CadenceWeekly:
		if referenceDate.Weekday() == time.Monday {
			selected = []int{last}
		}
	case CadenceBiweekly:
		switch referenceDate.Day() {
		case 1, 15, 29:
			selected = []int{last}
		}
	}

	triggers := make([]time.Time, 0, len(selected))
	for _, h := range selected {
		triggers = append(triggers, time.Date(referenceDate.Year(), referenceDate.Month(), referenceDate.Day(), h, 0, 0, 0, referenceDate.Location()))
	}
	return triggers
}

// IsWithinExecutionWindow reports whether triggerTime <= currentTime <= triggerTime+ExecutionWindow.
func IsWithinExecutionWindow(currentTime, triggerTime time.Time) bool {
	return !currentTime.Before(triggerTime) && !currentTime.After(triggerTime.Add(ExecutionWindow))
}

// ShouldFire reports whether a job with the given cadence and cron expression
// is inside one of today's execution windows. An unparsable expression never fires.
func ShouldFire(cadence Cadence, cronExpression string, currentTime time.Time) bool {
	hours, err := ParseBaseHours(cronExpression)
	if err != nil {
		return false
	}
	for _, trigger := range ComputeTodayTriggerTimes(cadence, hours, currentTime) {
		if IsWithinExecutionWindow(currentTime, trigger) {
			return true
		}
	}
	return false
}
