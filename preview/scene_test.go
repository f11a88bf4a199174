package preview

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/writemate/fonts"
	"github.com/ByLCY/writemate/layout"
	"github.com/ByLCY/writemate/templates"
)

func sceneFor(t *testing.T, mutate func(*layout.Settings), zoom float64) (*Scene, layout.Layout) {
	t.Helper()
	settings := layout.DefaultSettings()
	if mutate != nil {
		mutate(&settings)
	}
	tpl, err := templates.Builtin().Lookup(settings.TemplateID)
	require.NoError(t, err)
	l := layout.Build(tpl, settings.Text)
	tf := fonts.Builtin().Resolve(settings.FontID)
	return Render(settings, tpl, l, tf, zoom), l
}

func TestZoomDoesNotChangeGeometry(t *testing.T) {
	small, _ := sceneFor(t, nil, MinZoom)
	large, _ := sceneFor(t, nil, MaxZoom)

	assert.Equal(t, small.Cells, large.Cells)
	assert.Equal(t, small.Guides, large.Guides)
	assert.Equal(t, small.Glyphs, large.Glyphs)
	assert.Equal(t, small.Width, large.Width)
	assert.InDelta(t, 0.6, small.Scale(), 1e-9)
	assert.InDelta(t, 1.4, large.Scale(), 1e-9)
}

func TestZoomIsClamped(t *testing.T) {
	s, _ := sceneFor(t, nil, 300)
	assert.Equal(t, MaxZoom, s.Zoom)
	s, _ = sceneFor(t, nil, 10)
	assert.Equal(t, MinZoom, s.Zoom)
}

func TestPageSizeInPixels(t *testing.T) {
	s, _ := sceneFor(t, nil, DefaultZoom)
	assert.InDelta(t, 793.7, s.Width, 0.01)
	assert.InDelta(t, 1122.52, s.Height, 0.01)
}

func TestGuideCountPerGridType(t *testing.T) {
	cases := map[layout.GridType]int{
		layout.GridTian: 2,
		layout.GridMi:   4,
		layout.GridNine: 4,
	}
	for gridType, perCell := range cases {
		s, l := sceneFor(t, func(st *layout.Settings) { st.GridType = gridType }, DefaultZoom)
		assert.Len(t, s.Cells, len(l.Cells), gridType)
		assert.Len(t, s.Guides, perCell*len(l.Cells), gridType)
		for _, g := range s.Guides {
			assert.Greater(t, g.Dash, 0.0)
		}
	}
}

func TestGlyphsSkipBlankCells(t *testing.T) {
	s, _ := sceneFor(t, func(st *layout.Settings) { st.Text = "永 和\n九" }, DefaultZoom)
	contents := make([]string, 0, len(s.Glyphs))
	for _, g := range s.Glyphs {
		contents = append(contents, g.Content)
	}
	assert.Equal(t, []string{"永", "和", "九"}, contents)
}

func TestGlyphsHiddenWithoutReference(t *testing.T) {
	s, l := sceneFor(t, func(st *layout.Settings) { st.ShowReference = false }, DefaultZoom)
	assert.Empty(t, s.Glyphs)
	assert.Len(t, s.Cells, len(l.Cells))
}

func TestGlyphAttributes(t *testing.T) {
	s, l := sceneFor(t, nil, DefaultZoom)
	require.NotEmpty(t, s.Glyphs)
	g := s.Glyphs[0]
	first := l.Cells[0]
	cell := layout.MmToScreen(l.Template.CellSizeMm)

	assert.InDelta(t, layout.MmToScreen(first.X)+cell/2, g.X, 1e-6)
	assert.InDelta(t, layout.MmToScreen(first.Y)+cell/2+46.0/3, g.Y, 1e-6)
	assert.Equal(t, 46.0, g.Size)
	assert.Equal(t, 0.35, g.Opacity)
	assert.Equal(t, "middle", g.Anchor)
	assert.False(t, g.Vertical)

	v, vl := sceneFor(t, func(st *layout.Settings) { st.TemplateID = "article-vertical" }, DefaultZoom)
	require.NotEmpty(t, v.Glyphs)
	top, ok := glyphAt(v, 0, 11)
	require.True(t, ok, "直排首字应位于最右一列顶端")
	assert.True(t, top.Vertical)
	assert.Equal(t, vl.Cells[11].Char, top.Content)

	// 场景中的字按行优先排列，第一行最左的字属于后面的列。
	assert.Equal(t, 0, v.Glyphs[0].Row)
	assert.Less(t, v.Glyphs[0].Column, 11)
}

func glyphAt(s *Scene, row, column int) (Text, bool) {
	for _, g := range s.Glyphs {
		if g.Row == row && g.Column == column {
			return g, true
		}
	}
	return Text{}, false
}

func TestHeaderLabels(t *testing.T) {
	s, _ := sceneFor(t, nil, DefaultZoom)
	require.Len(t, s.Header, 2)
	assert.Equal(t, layout.NameLabel, s.Header[0].Content)
	assert.Equal(t, layout.DateLabel, s.Header[1].Content)
	assert.Less(t, s.Header[0].X, s.Header[1].X)
	assert.Equal(t, s.Header[0].Y, s.Header[1].Y)
}

func TestWriteSVG(t *testing.T) {
	s, l := sceneFor(t, nil, 140)
	data, err := s.SVG()
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<?xml"))
	assert.Contains(t, out, "viewBox")
	assert.Contains(t, out, "stroke-dasharray")
	assert.Contains(t, out, "永")
	// 背景 + 双线外框 + 每个格子
	assert.Equal(t, 1+2+len(l.Cells), strings.Count(out, "<rect"))
	assert.Equal(t, len(s.Header)+len(s.Glyphs), strings.Count(out, "<text"))
	assert.NotContains(t, out, `font-family:"`)
}

func TestRasterizeUsesZoom(t *testing.T) {
	for _, zoom := range []float64{60, 100} {
		s, _ := sceneFor(t, nil, zoom)
		img, err := s.Rasterize()
		require.NoError(t, err)

		b := img.Bounds()
		assert.Equal(t, int(math.Round(s.Width*zoom/100)), b.Dx())
		assert.Equal(t, int(math.Round(s.Height*zoom/100)), b.Dy())
		_, _, _, a := img.At(20, 20).RGBA()
		assert.NotZero(t, a, "背景应被绘制")
	}
}

func TestWritePNG(t *testing.T) {
	s, _ := sceneFor(t, nil, DefaultZoom)
	var buf bytes.Buffer
	require.NoError(t, s.WritePNG(&buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, int(math.Round(s.Width*0.9)), img.Bounds().Dx())
}
