package gallra

import "strings"

// DMSToDecimal converts degrees, minutes and seconds to signed decimal degrees.
// A hemisphere reference containing S or W yields a negative result.
func DMSToDecimal(deg, min, sec float64, ref string) float64 {
	d := deg + min/60 + sec/3600
	if strings.ContainsAny(ref, "SW") {
		return -d
	}
	return d
}
