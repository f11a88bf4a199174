package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// 该文件定义模板、设置与布局结果，供布局计算、两个渲染器与调试 JSON 共用。

// Orientation 决定字符的填充顺序，不改变网格形状。
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// GridType 是单元格内部的辅助线样式。
type GridType string

const (
	GridTian GridType = "tian" // 田字格
	GridMi   GridType = "mi"   // 米字格
	GridNine GridType = "nine" // 九宫格
)

// Template 描述一种字帖网格，进程启动后只读。
type Template struct {
	ID          string      `json:"id" yaml:"id"`
	Label       string      `json:"label" yaml:"label"`
	Description string      `json:"description" yaml:"description"`
	Rows        int         `json:"rows" yaml:"rows"`
	Columns     int         `json:"columns" yaml:"columns"`
	Orientation Orientation `json:"orientation" yaml:"orientation"`
	MinChars    int         `json:"minChars" yaml:"minChars"`
	MaxChars    int         `json:"maxChars" yaml:"maxChars"`
	CellSizeMm  float64     `json:"cellSizeMm" yaml:"cellSizeMm"`
	PaddingMm   float64     `json:"paddingMm" yaml:"paddingMm"`
}

// Capacity 返回网格可容纳的字数（rows * columns）。
func (t Template) Capacity() int { return t.Rows * t.Columns }

// Settings 是一次渲染使用的设置快照。字段与持久化 JSON 保持一致。
type Settings struct {
	TemplateID       string   `json:"templateId"`
	Text             string   `json:"text"`
	FontID           string   `json:"fontId"`
	FontSize         float64  `json:"fontSize"` // 范字字号，屏幕像素
	TextColor        string   `json:"textColor"`
	GridColor        string   `json:"gridColor"`
	GridType         GridType `json:"gridType"`
	ShowReference    bool     `json:"showReference"`
	ReferenceOpacity float64  `json:"referenceOpacity"`
}

// 设置取值范围。
const (
	MinReferenceOpacity = 0.1
	MaxReferenceOpacity = 0.9
	MinFontSize         = 32.0
	MaxFontSize         = 78.0

	DefaultTemplateID = "article-horizontal"
	DefaultFontID     = "chenyuluoyan-thin"
	SampleText        = "永和九年，歲在癸丑。暮春之初，會於會稽山陰之蘭亭。"
)

// DefaultSettings 返回首次启动时的设置。
func DefaultSettings() Settings {
	return Settings{
		TemplateID:       DefaultTemplateID,
		Text:             SampleText,
		FontID:           DefaultFontID,
		FontSize:         46,
		TextColor:        "#1b1b1f",
		GridColor:        "#5b6045",
		GridType:         GridTian,
		ShowReference:    true,
		ReferenceOpacity: 0.35,
	}
}

// Normalize 将越界的数值夹回允许范围，并为空字段填入默认值。
// 渲染器不会调用它：它们按原样解释传入的设置。
func (s Settings) Normalize() Settings {
	def := DefaultSettings()
	if s.TemplateID == "" {
		s.TemplateID = def.TemplateID
	}
	if s.FontID == "" {
		s.FontID = def.FontID
	}
	if s.FontSize <= 0 {
		s.FontSize = def.FontSize
	}
	s.FontSize = lo.Clamp(s.FontSize, MinFontSize, MaxFontSize)
	s.ReferenceOpacity = lo.Clamp(s.ReferenceOpacity, MinReferenceOpacity, MaxReferenceOpacity)
	if _, err := ParseColor(s.TextColor); err != nil {
		s.TextColor = def.TextColor
	}
	if _, err := ParseColor(s.GridColor); err != nil {
		s.GridColor = def.GridColor
	}
	switch s.GridType {
	case GridTian, GridMi, GridNine:
	default:
		s.GridType = def.GridType
	}
	return s
}

// Cell 是网格中的一个格子，坐标为左上角（mm，页面左上角为原点）。
type Cell struct {
	Row    int     `json:"row"`
	Column int     `json:"column"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Char   string  `json:"char"`
}

// Layout 是模板与文本的排版结果，两个渲染器共用的唯一真相。
type Layout struct {
	Template  Template `json:"template"`
	Cells     []Cell   `json:"cells"`
	CharCount int      `json:"charCount"`
	Overflow  int      `json:"overflow"`
	MinChars  int      `json:"minChars,omitempty"`
	MaxChars  int      `json:"maxChars"`
}

// BelowMinimum 报告输入字数是否少于模板建议的最少字数。
func (l Layout) BelowMinimum() bool {
	return l.MinChars > 0 && l.CharCount < l.MinChars
}

// Cell 按行列返回格子；越界时 ok 为 false。
func (l Layout) Cell(row, column int) (Cell, bool) {
	if row < 0 || column < 0 || row >= l.Template.Rows || column >= l.Template.Columns {
		return Cell{}, false
	}
	idx := row*l.Template.Columns + column
	if idx >= len(l.Cells) {
		return Cell{}, false
	}
	return l.Cells[idx], true
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Hex 返回 #rrggbb 形式。
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor 解析 #rgb、#rrggbb 与 #rrggbbaa（alpha 只校验不使用）。必须带 # 前缀。
func ParseColor(value string) (Color, error) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "#") {
		return Color{}, fmt.Errorf("颜色值 %q 缺少 # 前缀", value)
	}
	raw := trimmed[1:]
	if len(raw) == 3 {
		raw = string([]byte{raw[0], raw[0], raw[1], raw[1], raw[2], raw[2]})
	}
	if len(raw) != 6 && len(raw) != 8 {
		return Color{}, fmt.Errorf("颜色值 %q 无法解析", value)
	}
	var parts [4]int
	for i := 0; i < len(raw)/2; i++ {
		v, err := strconv.ParseUint(raw[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %q 无法解析: %w", value, err)
		}
		parts[i] = int(v)
	}
	return Color{R: parts[0], G: parts[1], B: parts[2]}, nil
}

// Line 表示一条线段（mm，页面左上角为原点）。
type Line struct {
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Width  float64 `json:"width"` // 线宽（mm）
	Dashed bool    `json:"dashed,omitempty"`
}

// Rect 表示一个只描边的矩形（mm，页面左上角为原点）。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeWidth float64 `json:"strokeWidth"` // mm
}

// Label 是页眉上的固定文字，X/Y 为基线起点（mm）。
type Label struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"` // mm
}

// Point 是一个 mm 坐标点。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
