// Package analyze computes the descriptive statistics and the
// segment-by-weekday grouped summary over the cleaned trip table.
package analyze

// WeekdayOrder fixes the display order of weekdays: Sunday first through
// Saturday. Grouped output sorts by this order, never by locale-alphabetic
// string order.
var WeekdayOrder = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// weekdayIndex maps a weekday name to its position in WeekdayOrder.
var weekdayIndex = func() map[string]int {
	m := make(map[string]int, len(WeekdayOrder))
	for i, d := range WeekdayOrder {
		m[d] = i
	}
	return m
}()

// WeekdayRank returns the Sunday-first position of name, or 7 for anything
// that is not a weekday name, so unknown values sort last instead of
// panicking mid-report.
func WeekdayRank(name string) int {
	if i, ok := weekdayIndex[name]; ok {
		return i
	}
	return len(WeekdayOrder)
}
