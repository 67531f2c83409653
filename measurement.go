package slidedotnet

import (
	"fmt"
	"strings"
)

// Shape geometry is stored in EMU (English Metric Units); font sizes in
// hundredths of a point.
const (
	emuPerInch       = 914400
	emuPerPoint      = 12700
	emuPerCentimeter = 360000
)

// Unit is a length unit EMU geometry can be presented in.
type Unit string

const (
	UnitEMU        Unit = "emu"
	UnitInch       Unit = "in"
	UnitPoint      Unit = "pt"
	UnitCentimeter Unit = "cm"
)

// ParseUnit returns the unit named s, case-insensitively.
func ParseUnit(s string) (Unit, error) {
	switch u := Unit(strings.ToLower(strings.TrimSpace(s))); u {
	case UnitEMU, UnitInch, UnitPoint, UnitCentimeter:
		return u, nil
	}
	return "", fmt.Errorf("unknown unit %q: want emu, in, pt or cm", s)
}

// FromEMU converts a length in EMU to u. An unknown unit leaves the value
// in EMU.
func (u Unit) FromEMU(emu int64) float64 {
	switch u {
	case UnitInch:
		return float64(emu) / emuPerInch
	case UnitPoint:
		return float64(emu) / emuPerPoint
	case UnitCentimeter:
		return float64(emu) / emuPerCentimeter
	}
	return float64(emu)
}

// FontSizeToPoints converts a font size in hundredths of a point to points.
func FontSizeToPoints(size int) float64 {
	return float64(size) / 100
}
