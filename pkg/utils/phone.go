package utils

import (
	"regexp"
	"strings"
)

// Zambian mobile numbers: optional +260/260/0 prefix followed by a
// 9x/7x operator code and seven subscriber digits.
var zambianMobilePattern = regexp.MustCompile(`^(\+?260|0)?(95|96|97|75|76|77)[0-9]{7}$`)

func IsValidZambianMobile(phone string) bool {
	normalized := strings.ReplaceAll(phone, " ", "")
	normalized = strings.ReplaceAll(normalized, "-", "")

	return zambianMobilePattern.MatchString(normalized)
}
