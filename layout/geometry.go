package layout

import "strings"

// 该文件集中定义页面几何。所有数值均为毫米，原点在页面左上角；
// 屏幕与 PDF 渲染器各自在最后一步换算单位与坐标系。

const (
	PageWidthMm  = 210.0
	PageHeightMm = 297.0

	HeaderGapMm       = 6.0  // 页眉基线位于网格上缘之上
	HeaderNameInsetMm = 2.0  // 姓名栏距网格左缘
	HeaderDateInsetMm = 62.0 // 日期栏距网格右缘
	BorderGapMm       = 2.0  // 粗外框与网格边缘的间距

	HeaderLabelSizeMm = 14 * PtToMm

	HairlineWidthMm = 0.8 * PtToMm
	HeavyWidthMm    = 2.5 * PtToMm
	CellWidthMm     = 0.8 * PtToMm
	MidlineWidthMm  = 0.4 * PtToMm
	DiagonalWidthMm = 0.25 * PtToMm
	ThirdsWidthMm   = 0.35 * PtToMm
	DashMm          = 3 * PtToMm

	// GlyphBaselineRatio 范字基线相对格子中心下移的字号比例。
	GlyphBaselineRatio = 1.0 / 3.0
)

// 页眉上的固定标签。
var (
	NameLabel = "姓名："
	DateLabel = "日期："
)

// Frame 是网格整体所占的矩形区域。
type Frame struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// GridFrame 返回网格区域（不含外框）。
func GridFrame(tpl Template) Frame {
	return Frame{
		X:      tpl.PaddingMm,
		Y:      tpl.PaddingMm + TopPaddingExtraMm,
		Width:  float64(tpl.Columns) * tpl.CellSizeMm,
		Height: float64(tpl.Rows) * tpl.CellSizeMm,
	}
}

// HeaderLabels 返回姓名与日期标签，坐标为文字基线起点。
func HeaderLabels(tpl Template) []Label {
	frame := GridFrame(tpl)
	baseline := frame.Y - HeaderGapMm
	return []Label{
		{Text: NameLabel, X: frame.X + HeaderNameInsetMm, Y: baseline, Size: HeaderLabelSizeMm},
		{Text: DateLabel, X: frame.X + frame.Width - HeaderDateInsetMm, Y: baseline, Size: HeaderLabelSizeMm},
	}
}

// Borders 返回双线外框：细线贴合网格边缘，粗线向外偏移 BorderGapMm。
func Borders(tpl Template) []Rect {
	frame := GridFrame(tpl)
	offsets := []struct {
		gap   float64
		width float64
	}{
		{0, HairlineWidthMm},
		{BorderGapMm, HeavyWidthMm},
	}
	rects := make([]Rect, 0, len(offsets))
	for _, o := range offsets {
		rects = append(rects, Rect{
			X:           frame.X - o.gap,
			Y:           frame.Y - o.gap,
			Width:       frame.Width + o.gap*2,
			Height:      frame.Height + o.gap*2,
			StrokeWidth: o.width,
		})
	}
	return rects
}

// CellRect 返回格子边框。
func CellRect(cell Cell, tpl Template) Rect {
	return Rect{X: cell.X, Y: cell.Y, Width: tpl.CellSizeMm, Height: tpl.CellSizeMm, StrokeWidth: CellWidthMm}
}

// CellGuides 返回格子内部的虚线辅助线。
func CellGuides(x, y, size float64, gridType GridType) []Line {
	left, top := x, y
	right, bottom := x+size, y+size
	half := size / 2
	third := size / 3

	vertical := func(at, width float64) Line {
		return Line{X1: left + at, Y1: top, X2: left + at, Y2: bottom, Width: width, Dashed: true}
	}
	horizontal := func(at, width float64) Line {
		return Line{X1: left, Y1: top + at, X2: right, Y2: top + at, Width: width, Dashed: true}
	}

	switch gridType {
	case GridTian:
		return []Line{vertical(half, MidlineWidthMm), horizontal(half, MidlineWidthMm)}
	case GridMi:
		return []Line{
			vertical(half, MidlineWidthMm),
			horizontal(half, MidlineWidthMm),
			{X1: left, Y1: top, X2: right, Y2: bottom, Width: DiagonalWidthMm, Dashed: true},
			{X1: left, Y1: bottom, X2: right, Y2: top, Width: DiagonalWidthMm, Dashed: true},
		}
	case GridNine:
		return []Line{
			vertical(third, ThirdsWidthMm),
			vertical(2*third, ThirdsWidthMm),
			horizontal(third, ThirdsWidthMm),
			horizontal(2*third, ThirdsWidthMm),
		}
	default:
		return nil
	}
}

// GlyphSizeMm 将设置中的像素字号换算为毫米。
func GlyphSizeMm(s Settings) float64 { return ScreenToMm(s.FontSize) }

// GlyphAnchor 返回范字的锚点：水平为格子中心，垂直为基线。
func GlyphAnchor(cell Cell, tpl Template, glyphSizeMm float64) Point {
	return Point{
		X: cell.X + tpl.CellSizeMm/2,
		Y: cell.Y + tpl.CellSizeMm/2 + glyphSizeMm*GlyphBaselineRatio,
	}
}

// ReferenceOpacity 返回实际使用的范字透明度；关闭范字时为 0。
func ReferenceOpacity(s Settings) float64 {
	if !s.ShowReference {
		return 0
	}
	return s.ReferenceOpacity
}

// ShouldDrawGlyph 判断格子里的字是否需要绘制范字。
func ShouldDrawGlyph(s Settings, char string) bool {
	if ReferenceOpacity(s) <= 0 {
		return false
	}
	return strings.TrimSpace(char) != ""
}
