package canvasrenderer

import (
	"fmt"

	"github.com/ByLCY/writemate/layout"
	"github.com/ByLCY/writemate/renderer"
)

// Plan 是 PDF 页面上的全部绘制指令，单位为点（pt），原点在页面左下角。
type Plan struct {
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
	Header  []PlanText `json:"header"`
	Borders []PlanRect `json:"borders"`
	Cells   []PlanRect `json:"cells"`
	Guides  []PlanLine `json:"guides"`
	Glyphs  []PlanText `json:"glyphs"`
}

// PlanRect 的 X/Y 为矩形左下角。
type PlanRect struct {
	X           float64      `json:"x"`
	Y           float64      `json:"y"`
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
	StrokeWidth float64      `json:"strokeWidth"`
	Color       layout.Color `json:"color"`
}

type PlanLine struct {
	X1    float64      `json:"x1"`
	Y1    float64      `json:"y1"`
	X2    float64      `json:"x2"`
	Y2    float64      `json:"y2"`
	Width float64      `json:"width"`
	Dash  float64      `json:"dash,omitempty"`
	Color layout.Color `json:"color"`
}

// PlanText 的 X 为文字左端，Y 为基线。
type PlanText struct {
	Content string       `json:"content"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	Size    float64      `json:"size"`
	Width   float64      `json:"width"`
	Color   layout.Color `json:"color"`
	Opacity float64      `json:"opacity"`
	Row     int          `json:"row,omitempty"`
	Column  int          `json:"column,omitempty"`
}

// Measurer 量测文字宽度，sizePt 与返回值均为点。
type Measurer interface {
	TextWidth(text string, sizePt float64) float64
}

// MeasurerFunc 让普通函数满足 Measurer。
type MeasurerFunc func(text string, sizePt float64) float64

func (f MeasurerFunc) TextWidth(text string, sizePt float64) float64 { return f(text, sizePt) }

// toDocY 将距页面上缘的毫米换算为距下缘的点。
func toDocY(fromTopMm float64) float64 { return layout.MmToDoc(layout.PageHeightMm - fromTopMm) }

// BuildPlan 依照共享的毫米几何生成 PDF 绘制指令。颜色无法解析时返回错误。
func BuildPlan(job renderer.Job, m Measurer) (*Plan, error) {
	textColor, err := layout.ParseColor(job.Settings.TextColor)
	if err != nil {
		return nil, fmt.Errorf("文字颜色: %w", err)
	}
	gridColor, err := layout.ParseColor(job.Settings.GridColor)
	if err != nil {
		return nil, fmt.Errorf("格线颜色: %w", err)
	}

	pt := layout.MmToDoc
	tpl := job.Template
	plan := &Plan{Width: pt(layout.PageWidthMm), Height: pt(layout.PageHeightMm)}

	for _, label := range layout.HeaderLabels(tpl) {
		size := pt(label.Size)
		plan.Header = append(plan.Header, PlanText{
			Content: label.Text,
			X:       pt(label.X),
			Y:       toDocY(label.Y),
			Size:    size,
			Width:   m.TextWidth(label.Text, size),
			Color:   gridColor,
			Opacity: 1,
		})
	}

	for _, b := range layout.Borders(tpl) {
		plan.Borders = append(plan.Borders, toPlanRect(b, gridColor))
	}

	glyphSizeMm := layout.GlyphSizeMm(job.Settings)
	glyphSize := pt(glyphSizeMm)
	opacity := layout.ReferenceOpacity(job.Settings)
	for _, cell := range job.Layout.Cells {
		plan.Cells = append(plan.Cells, toPlanRect(layout.CellRect(cell, tpl), gridColor))
		for _, g := range layout.CellGuides(cell.X, cell.Y, tpl.CellSizeMm, job.Settings.GridType) {
			plan.Guides = append(plan.Guides, toPlanLine(g, gridColor))
		}
		if !layout.ShouldDrawGlyph(job.Settings, cell.Char) {
			continue
		}
		anchor := layout.GlyphAnchor(cell, tpl, glyphSizeMm)
		width := m.TextWidth(cell.Char, glyphSize)
		plan.Glyphs = append(plan.Glyphs, PlanText{
			Content: cell.Char,
			X:       pt(anchor.X) - width/2,
			Y:       toDocY(anchor.Y),
			Size:    glyphSize,
			Width:   width,
			Color:   textColor,
			Opacity: opacity,
			Row:     cell.Row,
			Column:  cell.Column,
		})
	}
	return plan, nil
}

func toPlanRect(r layout.Rect, c layout.Color) PlanRect {
	pt := layout.MmToDoc
	return PlanRect{
		X:           pt(r.X),
		Y:           toDocY(r.Y + r.Height),
		Width:       pt(r.Width),
		Height:      pt(r.Height),
		StrokeWidth: pt(r.StrokeWidth),
		Color:       c,
	}
}

func toPlanLine(l layout.Line, c layout.Color) PlanLine {
	pt := layout.MmToDoc
	out := PlanLine{
		X1: pt(l.X1), Y1: toDocY(l.Y1),
		X2: pt(l.X2), Y2: toDocY(l.Y2),
		Width: pt(l.Width),
		Color: c,
	}
	if l.Dashed {
		out.Dash = pt(layout.DashMm)
	}
	return out
}
