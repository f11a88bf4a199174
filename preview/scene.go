// Package preview 生成字帖的屏幕预览场景（像素坐标，左上角为原点）。
package preview

import (
	"github.com/samber/lo"

	"github.com/ByLCY/writemate/fonts"
	"github.com/ByLCY/writemate/layout"
)

// 缩放范围（百分比）。
const (
	MinZoom     = 60.0
	MaxZoom     = 140.0
	DefaultZoom = 90.0
)

const (
	backgroundFill   = "#fffef8"
	backgroundRadius = 8.0 // px
)

// Rect 是像素坐标下的矩形。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Radius      float64 `json:"radius,omitempty"`
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Line 是像素坐标下的线段。
type Line struct {
	X1          float64 `json:"x1"`
	Y1          float64 `json:"y1"`
	X2          float64 `json:"x2"`
	Y2          float64 `json:"y2"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Dash        float64 `json:"dash,omitempty"` // 虚线段长度，0 表示实线
}

// Text 是一段文字，X/Y 为锚点（Anchor=middle 时 X 为水平中心），Y 为基线。
type Text struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Content    string  `json:"content"`
	Size       float64 `json:"size"`
	Fill       string  `json:"fill"`
	FontFamily string  `json:"fontFamily,omitempty"`
	Anchor     string  `json:"anchor"` // start | middle
	Bold       bool    `json:"bold,omitempty"`
	Opacity    float64 `json:"opacity"`
	Vertical   bool    `json:"vertical,omitempty"`
	Row        int     `json:"row,omitempty"`
	Column     int     `json:"column,omitempty"`
}

// Scene 是按图层排列的绘制指令。Zoom 只作为整体缩放，不参与任何几何计算。
type Scene struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Zoom       float64 `json:"zoom"`
	Background Rect    `json:"background"`
	Header     []Text  `json:"header"`
	Borders    []Rect  `json:"borders"`
	Cells      []Rect  `json:"cells"`
	Guides     []Line  `json:"guides"`
	Glyphs     []Text  `json:"glyphs"`
}

// Scale 返回缩放倍率。
func (s *Scene) Scale() float64 { return s.Zoom / 100 }

// ClampZoom 将缩放百分比限制在 [MinZoom, MaxZoom]。
func ClampZoom(zoom float64) float64 { return lo.Clamp(zoom, MinZoom, MaxZoom) }

// Render 将布局解释为屏幕场景。该函数不会失败，适合每次按键后重算。
func Render(settings layout.Settings, tpl layout.Template, l layout.Layout, tf fonts.Typeface, zoomPercent float64) *Scene {
	px := layout.MmToScreen
	width, height := px(layout.PageWidthMm), px(layout.PageHeightMm)

	scene := &Scene{
		Width:  width,
		Height: height,
		Zoom:   ClampZoom(zoomPercent),
		Background: Rect{
			Width: width, Height: height,
			Radius: backgroundRadius,
			Fill:   backgroundFill,
		},
	}

	for _, label := range layout.HeaderLabels(tpl) {
		scene.Header = append(scene.Header, Text{
			X:       px(label.X),
			Y:       px(label.Y),
			Content: label.Text,
			Size:    px(label.Size),
			Fill:    settings.GridColor,
			Anchor:  "start",
			Bold:    true,
			Opacity: 1,
		})
	}

	for _, b := range layout.Borders(tpl) {
		scene.Borders = append(scene.Borders, toRect(b, settings.GridColor))
	}

	glyphSizeMm := layout.GlyphSizeMm(settings)
	opacity := layout.ReferenceOpacity(settings)
	for _, cell := range l.Cells {
		scene.Cells = append(scene.Cells, toRect(layout.CellRect(cell, tpl), settings.GridColor))
		for _, g := range layout.CellGuides(cell.X, cell.Y, tpl.CellSizeMm, settings.GridType) {
			scene.Guides = append(scene.Guides, toLine(g, settings.GridColor))
		}
		if !layout.ShouldDrawGlyph(settings, cell.Char) {
			continue
		}
		anchor := layout.GlyphAnchor(cell, tpl, glyphSizeMm)
		scene.Glyphs = append(scene.Glyphs, Text{
			X:          px(anchor.X),
			Y:          px(anchor.Y),
			Content:    cell.Char,
			Size:       settings.FontSize,
			Fill:       settings.TextColor,
			FontFamily: tf.CSSStack,
			Anchor:     "middle",
			Opacity:    opacity,
			Vertical:   tpl.Orientation == layout.Vertical,
			Row:        cell.Row,
			Column:     cell.Column,
		})
	}
	return scene
}

func toRect(r layout.Rect, stroke string) Rect {
	px := layout.MmToScreen
	return Rect{
		X: px(r.X), Y: px(r.Y),
		Width: px(r.Width), Height: px(r.Height),
		Stroke:      stroke,
		StrokeWidth: px(r.StrokeWidth),
	}
}

func toLine(l layout.Line, stroke string) Line {
	px := layout.MmToScreen
	out := Line{
		X1: px(l.X1), Y1: px(l.Y1),
		X2: px(l.X2), Y2: px(l.Y2),
		Stroke:      stroke,
		StrokeWidth: px(l.Width),
	}
	if l.Dashed {
		out.Dash = px(layout.DashMm)
	}
	return out
}
