package canvasrenderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/flanksource/commons/logger"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/writemate/fonts"
	"github.com/ByLCY/writemate/layout"
	"github.com/ByLCY/writemate/renderer"
)

// Renderer 通过 github.com/tdewolff/canvas 输出单页 A4 PDF。
type Renderer struct {
	fetcher fonts.Fetcher

	fontMu         sync.Mutex
	fontFamilies   map[string]*canvas.FontFamily // 按 Typeface.ID
	fallbackFamily *canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	// Fetcher 下载带有来源的字型；为空时使用默认 HTTP 下载器。
	Fetcher fonts.Fetcher
}

// NewRenderer 创建使用默认下载器的渲染器。
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with an injected font fetcher.
func NewRendererWithOptions(opts Options) *Renderer {
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = fonts.NewHTTPFetcher(nil)
	}
	return &Renderer{
		fetcher:      fetcher,
		fontFamilies: map[string]*canvas.FontFamily{},
	}
}

// Result 是异步渲染的结果。
type Result struct {
	Data []byte
	Err  error
}

// RenderAsync 在后台渲染，结果只发送一次后关闭通道。
func (r *Renderer) RenderAsync(ctx context.Context, job renderer.Job) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		data, err := r.Render(ctx, job)
		out <- Result{Data: data, Err: err}
	}()
	return out
}

// Render 生成 PDF。字型下载失败时返回 fonts.ErrAssetFetchFailed，且不产生任何数据。
func (r *Renderer) Render(ctx context.Context, job renderer.Job) ([]byte, error) {
	family, err := r.fontFamily(ctx, job.Typeface)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plan, err := BuildPlan(job, familyMeasurer(family))
	if err != nil {
		return nil, err
	}

	widthMm, heightMm := layout.PageWidthMm, layout.PageHeightMm
	var buf bytes.Buffer
	writer := pdf.New(&buf, widthMm, heightMm, nil)
	applyMeta(writer, job.Meta)

	c := canvas.New(widthMm, heightMm)
	drawPlan(canvas.NewContext(c), plan, family)
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	logger.Debugf("已生成 PDF：%d 格，%d 个范字，%d 字节", len(plan.Cells), len(plan.Glyphs), buf.Len())
	return buf.Bytes(), nil
}

// Plan 返回与 Render 相同的绘制指令，主要用于调试输出。
func (r *Renderer) Plan(ctx context.Context, job renderer.Job) (*Plan, error) {
	family, err := r.fontFamily(ctx, job.Typeface)
	if err != nil {
		return nil, err
	}
	return BuildPlan(job, familyMeasurer(family))
}

func applyMeta(writer *pdf.PDF, meta renderer.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// drawPlan 按图层顺序绘制：页眉、外框、格子、辅助线、范字。
// canvas 以毫米为单位且原点在左下角，只需把点换算为毫米。
func drawPlan(ctx *canvas.Context, plan *Plan, family *canvas.FontFamily) {
	mm := layout.DocToMm

	for _, t := range plan.Header {
		drawText(ctx, family, t)
	}

	ctx.SetFillColor(canvas.Transparent)
	for _, rects := range [][]PlanRect{plan.Borders, plan.Cells} {
		for _, rc := range rects {
			ctx.SetStrokeColor(toColor(rc.Color, 1))
			ctx.SetStrokeWidth(mm(rc.StrokeWidth))
			ctx.DrawPath(mm(rc.X), mm(rc.Y), canvas.Rectangle(mm(rc.Width), mm(rc.Height)))
		}
	}

	for _, ln := range plan.Guides {
		ctx.SetStrokeColor(toColor(ln.Color, 1))
		ctx.SetStrokeWidth(mm(ln.Width))
		if ln.Dash > 0 {
			ctx.SetDashes(0, mm(ln.Dash), mm(ln.Dash))
		} else {
			ctx.SetDashes(0)
		}
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(mm(ln.X2-ln.X1), mm(ln.Y2-ln.Y1))
		ctx.DrawPath(mm(ln.X1), mm(ln.Y1), p)
	}
	ctx.SetDashes(0)

	for _, t := range plan.Glyphs {
		drawText(ctx, family, t)
	}
}

func drawText(ctx *canvas.Context, family *canvas.FontFamily, t PlanText) {
	if t.Opacity <= 0 {
		return
	}
	face := family.Face(t.Size, toColor(t.Color, t.Opacity), canvas.FontRegular, canvas.FontNormal)
	line := canvas.NewTextLine(face, t.Content, canvas.Left)
	ctx.DrawText(layout.DocToMm(t.X), layout.DocToMm(t.Y), line)
}

// familyMeasurer 以 canvas 字型量测宽度。face 的字号是点，TextWidth 返回毫米。
func familyMeasurer(family *canvas.FontFamily) Measurer {
	return MeasurerFunc(func(text string, sizePt float64) float64 {
		face := family.Face(sizePt, canvas.Black, canvas.FontRegular, canvas.FontNormal)
		return layout.MmToDoc(face.TextWidth(text))
	})
}

// fontFamily 载入字型。有来源的字型必须下载成功，否则整个导出失败；
// 没有来源的字型使用内建标准字型。
func (r *Renderer) fontFamily(ctx context.Context, tf fonts.Typeface) (*canvas.FontFamily, error) {
	if !tf.Embeddable() {
		return r.fallback()
	}

	r.fontMu.Lock()
	family, ok := r.fontFamilies[tf.ID]
	r.fontMu.Unlock()
	if ok {
		return family, nil
	}

	data, err := r.fetcher.Fetch(ctx, tf.Source)
	if err != nil {
		if !errors.Is(err, fonts.ErrAssetFetchFailed) {
			err = &fonts.AssetFetchError{URL: tf.Source, Err: err}
		}
		logger.Warnf("字型 %s 下载失败: %v", tf.ID, err)
		return nil, err
	}

	family = canvas.NewFontFamily(tf.ID)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, &fonts.AssetFetchError{URL: tf.Source, Err: fmt.Errorf("解析字型失败: %w", err)}
	}

	r.fontMu.Lock()
	r.fontFamilies[tf.ID] = family
	r.fontMu.Unlock()
	return family, nil
}

func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	family := canvas.NewFontFamily(fonts.StandardName)
	if err := family.LoadFont(fonts.Standard(), 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("载入标准字型失败: %w", err)
	}
	r.fallbackFamily = family
	return family, nil
}

func toColor(c layout.Color, alpha float64) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, alpha)
}
