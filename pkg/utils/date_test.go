package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertDateTimeToHumanReadableFormat(t *testing.T) {
	// 2025-09-01 08:00:00 UTC is 10:00 in Lusaka.
	assert.Equal(t, "01 September 2025, 10:00 CAT", ConvertDateTimeToHumanReadableFormat(1756713600))
}

func TestConvertUnixToDateString(t *testing.T) {
	assert.Equal(t, "2025-09-01", ConvertUnixToDateString(1756713600))

	// 23:30 UTC already rolls into the next Lusaka day.
	assert.Equal(t, "2025-09-02", ConvertUnixToDateString(1756769400))
}
