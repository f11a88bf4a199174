package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridFrame(t *testing.T) {
	f := GridFrame(article(Horizontal))
	assert.Equal(t, Frame{X: 15, Y: 21, Width: 180, Height: 255}, f, "网格区域错误")
	assert.LessOrEqual(t, f.Y+f.Height, PageHeightMm, "网格超出页面")
	assert.LessOrEqual(t, f.X+f.Width, PageWidthMm, "网格超出页面")
}

func TestBordersDoubleStroke(t *testing.T) {
	rects := Borders(article(Horizontal))
	require.Len(t, rects, 2, "期望双线外框")
	inner, outer := rects[0], rects[1]
	assert.Equal(t, inner.X-BorderGapMm, outer.X, "粗外框应向外偏移")
	assert.Equal(t, inner.Width+2*BorderGapMm, outer.Width, "粗外框应向外偏移")
	assert.Greater(t, outer.StrokeWidth, inner.StrokeWidth, "外侧应为粗线")
}

func TestCellGuidesPerVariant(t *testing.T) {
	cases := map[GridType]int{GridTian: 2, GridMi: 4, GridNine: 4, GridType("none"): 0}
	for gt, want := range cases {
		assert.Len(t, CellGuides(0, 0, 15, gt), want, string(gt))
	}
	nine := CellGuides(10, 20, 15, GridNine)
	assert.InDelta(t, 15, nine[0].X1, 1e-9, "九宫格三等分线位置错误")
	assert.InDelta(t, 20, nine[1].X1, 1e-9, "九宫格三等分线位置错误")
}

func TestShouldDrawGlyph(t *testing.T) {
	s := DefaultSettings()
	assert.True(t, ShouldDrawGlyph(s, "永"), "默认设置应绘制范字")
	assert.False(t, ShouldDrawGlyph(s, BlankPlaceholder), "空白格不应绘制")
	assert.False(t, ShouldDrawGlyph(s, ""), "空白格不应绘制")

	s.ShowReference = false
	assert.False(t, ShouldDrawGlyph(s, "永"), "关闭范字后不应绘制")

	s.ShowReference = true
	s.ReferenceOpacity = 0
	assert.False(t, ShouldDrawGlyph(s, "永"), "透明度为 0 时不应绘制")
}

func TestSettingsNormalize(t *testing.T) {
	def := DefaultSettings()
	s := Settings{ReferenceOpacity: 1.5, FontSize: 200, TextColor: "nothex", GridColor: "#12345", GridType: "x"}.Normalize()
	assert.Equal(t, MaxReferenceOpacity, s.ReferenceOpacity)
	assert.Equal(t, MaxFontSize, s.FontSize)
	assert.Equal(t, def.TextColor, s.TextColor, "非法颜色应回落到默认值")
	assert.Equal(t, def.GridColor, s.GridColor, "非法颜色应回落到默认值")
	assert.Equal(t, GridTian, s.GridType)
	assert.Equal(t, DefaultTemplateID, s.TemplateID)

	// 没有 # 前缀的值同样视为非法
	assert.Equal(t, def.TextColor, Settings{TextColor: "bad"}.Normalize().TextColor)
	assert.Equal(t, MinReferenceOpacity, Settings{ReferenceOpacity: 0.01}.Normalize().ReferenceOpacity)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#5b6045")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 0x5b, G: 0x60, B: 0x45}, c)

	short, err := ParseColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", short.Hex())

	withAlpha, err := ParseColor("#11223380")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 0x11, G: 0x22, B: 0x33}, withAlpha)

	for _, bad := range []string{"#12", "#zzzzzz", "bad", "5b6045", "fff", "#112233zz"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}
