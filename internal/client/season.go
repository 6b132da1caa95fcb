package client

import (
	"fmt"
	"time"
)

// SeasonEndYear returns the end year of the season to sync. The season
// rolls over at tip-off in October; until then, including the summer
// off-season, it is the season that ends (or ended) this calendar year.
func SeasonEndYear(now time.Time) int {
	if now.Month() >= time.October {
		return now.Year() + 1
	}
	return now.Year()
}

// SeasonString formats a season end year the way the provider expects, e.g. 2025 -> "2024-25".
func SeasonString(endYear int) string {
	return fmt.Sprintf("%d-%02d", endYear-1, endYear%100)
}
