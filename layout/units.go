package layout

import (
	"strconv"
	"strings"
)

// 屏幕预览使用 96 DPI 的像素，PDF 使用 72 DPI 的点。两个渲染器都只通过这里换算。

const (
	MmPerInch     = 25.4
	ScreenDPI     = 96.0
	PointsPerInch = 72.0

	PtToMm = MmPerInch / PointsPerInch
)

// MmToScreen 将毫米转换为屏幕像素。
func MmToScreen(mm float64) float64 { return mm * ScreenDPI / MmPerInch }

// ScreenToMm 将屏幕像素转换为毫米。
func ScreenToMm(px float64) float64 { return px * MmPerInch / ScreenDPI }

// MmToDoc 将毫米转换为 PDF 点。
func MmToDoc(mm float64) float64 { return mm * PointsPerInch / MmPerInch }

// DocToMm 将 PDF 点转换为毫米。
func DocToMm(pt float64) float64 { return pt * MmPerInch / PointsPerInch }

// Unit is the unit a length value was written in.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
	UnitPX               // screen pixels
)

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// ToMM converts to millimeters. Unit-less values are returned as-is.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * MmPerInch
	case UnitPT:
		return DocToMm(l.Value)
	case UnitPX:
		return ScreenToMm(l.Value)
	default:
		return l.Value
	}
}

// To converts this length to target unit. A unit-less length is interpreted in the target unit.
func (l Length) To(target Unit) float64 {
	if l.Unit == UnitNone || l.Unit == target {
		return l.Value
	}
	mm := l.ToMM()
	switch target {
	case UnitCM:
		return mm / 10
	case UnitIN:
		return mm / MmPerInch
	case UnitPT:
		return MmToDoc(mm)
	case UnitPX:
		return MmToScreen(mm)
	default:
		return mm
	}
}

func (l Length) ToPX() float64 { return l.To(UnitPX) }

// ParseRawLengthStr parses a length string such as "46px" or "15mm", preserving its unit.
func ParseRawLengthStr(value string) (Length, bool) {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}, {"px", UnitPX}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}
