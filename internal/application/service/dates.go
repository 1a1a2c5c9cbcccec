package service

import "time"

// dateLayout is the wire format for departure and return dates. They
// are calendar dates without a time component.
const dateLayout = "2006-01-02"

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}
