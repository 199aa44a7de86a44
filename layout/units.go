package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines length units used by configuration and page geometry.

// Unit is the unit a length was written in.
type Unit int

const (
	UnitNone Unit = iota // bare numbers, read as millimetres
	UnitMM
	UnitCM
	UnitIN
	UnitPT
)

// Conversion constants between pt and mm.
const (
	PtToMm = 25.4 / 72
	MmToPt = 72 / 25.4
)

func (u Unit) String() string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length keeps a number together with the unit it was written in.
type Length struct {
	Value float64
	Unit  Unit
}

// MM converts the length to millimetres.
func (l Length) MM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

// PT converts the length to points.
func (l Length) PT() float64 { return l.MM() * MmToPt }

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

var unitSuffixes = []struct {
	s string
	u Unit
}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}}

// ParseLength parses strings such as "50pt", "2cm" or "17.5".
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("empty length")
	}
	unit := UnitNone
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			v = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Length{}, fmt.Errorf("invalid length %q: %w", value, err)
	}
	if f < 0 {
		return Length{}, fmt.Errorf("negative length %q", value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// PageSize is a paper size in millimetres (portrait).
type PageSize struct {
	Width  float64
	Height float64
}

// PageSizes lists the paper sizes accepted by name.
var PageSizes = map[string]PageSize{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"B5":     {176, 250},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
}

// LookupPageSize resolves a paper name, optionally in landscape orientation.
func LookupPageSize(name string, landscape bool) (PageSize, bool) {
	size, ok := PageSizes[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return PageSize{}, false
	}
	if landscape {
		size.Width, size.Height = size.Height, size.Width
	}
	return size, true
}
