package util

import "time"

// CurrentPeriod returns the 1-based month and year of now
func CurrentPeriod(now time.Time) (month, year int) {
	return int(now.Month()), now.Year()
}

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// ResolvePeriod fills a zero month or year from now
func ResolvePeriod(month, year int, now time.Time) (int, int) {
	currentMonth, currentYear := CurrentPeriod(now)
	if month == 0 {
		month = currentMonth
	}
	if year == 0 {
		year = currentYear
	}
	return month, year
}
