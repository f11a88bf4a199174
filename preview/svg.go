package preview

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo/float"
)

// WriteSVG 输出 SVG。viewBox 保持页面像素尺寸，外层宽高乘以缩放倍率，
// 因此缩放不会改变任何内部坐标。
func (s *Scene) WriteSVG(w io.Writer) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	scale := s.Scale()
	canvas.Startview(s.Width*scale, s.Height*scale, 0, 0, s.Width, s.Height)
	canvas.Title("WriteMate")

	bg := s.Background
	canvas.Roundrect(bg.X, bg.Y, bg.Width, bg.Height, bg.Radius, bg.Radius, "fill:"+bg.Fill)

	canvas.Gid("header")
	for _, t := range s.Header {
		canvas.Text(t.X, t.Y, t.Content, textStyle(t))
	}
	canvas.Gend()

	canvas.Gid("borders")
	for _, r := range s.Borders {
		canvas.Rect(r.X, r.Y, r.Width, r.Height, rectStyle(r))
	}
	canvas.Gend()

	canvas.Gid("cells")
	for _, r := range s.Cells {
		canvas.Rect(r.X, r.Y, r.Width, r.Height, rectStyle(r))
	}
	canvas.Gend()

	canvas.Gid("guides")
	for _, l := range s.Guides {
		canvas.Line(l.X1, l.Y1, l.X2, l.Y2, lineStyle(l))
	}
	canvas.Gend()

	canvas.Gid("glyphs")
	for _, t := range s.Glyphs {
		y := t.Y
		if t.Vertical {
			// 直排时 SVG 以中心基线定位，改用格子中心
			y -= t.Size / 3
		}
		canvas.Text(t.X, y, t.Content, textStyle(t))
	}
	canvas.Gend()

	canvas.End()
	return ew.err
}

// SVG 返回 SVG 字节。
func (s *Scene) SVG() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.WriteSVG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func rectStyle(r Rect) string {
	fill := r.Fill
	if fill == "" {
		fill = "none"
	}
	return fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%.3f", fill, r.Stroke, r.StrokeWidth)
}

func lineStyle(l Line) string {
	style := fmt.Sprintf("stroke:%s;stroke-width:%.3f", l.Stroke, l.StrokeWidth)
	if l.Dash > 0 {
		style += fmt.Sprintf(";stroke-dasharray:%.3f %.3f", l.Dash, l.Dash)
	}
	return style
}

func textStyle(t Text) string {
	parts := []string{
		fmt.Sprintf("font-size:%.3fpx", t.Size),
		"fill:" + t.Fill,
		"text-anchor:" + t.Anchor,
	}
	if t.FontFamily != "" {
		// style 属性使用双引号包裹，字体名改用单引号
		parts = append(parts, "font-family:"+strings.ReplaceAll(t.FontFamily, `"`, "'"))
	}
	if t.Bold {
		parts = append(parts, "font-weight:700")
	}
	if t.Opacity < 1 {
		parts = append(parts, fmt.Sprintf("opacity:%.2f", t.Opacity))
	}
	if t.Vertical {
		parts = append(parts, "writing-mode:vertical-rl", "dominant-baseline:central")
	}
	return strings.Join(parts, ";")
}

// errWriter 记录第一次写入错误；svgo 本身不返回错误。
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
