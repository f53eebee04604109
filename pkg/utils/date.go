package utils

import (
	"time"
)

// Zambia runs on Central Africa Time year-round.
var catLocation = time.FixedZone("CAT", 2*60*60)

func ConvertDateTimeToHumanReadableFormat(datetime int64) string {
	t := time.Unix(datetime, 0)
	catTime := t.In(catLocation)
	outputFormat := "02 January 2006, 15:04 CAT"

	return catTime.Format(outputFormat)
}

// ConvertUnixToDateString formats a unix timestamp as the portal's
// YYYY-MM-DD date, in local school time.
func ConvertUnixToDateString(datetime int64) string {
	return time.Unix(datetime, 0).In(catLocation).Format("2006-01-02")
}
