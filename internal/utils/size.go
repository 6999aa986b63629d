package utils

import (
	"strconv"
	"strings"
)

const (
	byteUnitStep         = 1024
	singleDigitThreshold = 10
	fractionSuffix       = ".0"
)

var byteUnits = []string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize renders a byte count with a lower-case binary unit, keeping one
// decimal below ten ("1.5kb") and none above ("12mb"). Negative counts render as "0b".
func FormatFileSize(byteCount int64) string {
	if byteCount < byteUnitStep {
		return strconv.FormatInt(max(byteCount, 0), 10) + byteUnits[0]
	}
	value := float64(byteCount)
	unitIndex := 0
	for value >= byteUnitStep && unitIndex < len(byteUnits)-1 {
		value /= byteUnitStep
		unitIndex++
	}
	if value < singleDigitThreshold {
		return strings.TrimSuffix(strconv.FormatFloat(value, 'f', 1, 64), fractionSuffix) + byteUnits[unitIndex]
	}
	return strconv.FormatFloat(value, 'f', 0, 64) + byteUnits[unitIndex]
}
