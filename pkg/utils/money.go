package utils

import "math"

// RoundKwacha rounds a ZMW amount to two decimal places.
func RoundKwacha(amount float64) float64 {
	return math.Round(amount*100) / 100
}
