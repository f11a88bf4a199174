package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"

	"github.com/ByLCY/writemate/binding"
	"github.com/ByLCY/writemate/dsl"
	"github.com/ByLCY/writemate/export"
	"github.com/ByLCY/writemate/fonts"
	"github.com/ByLCY/writemate/layout"
	"github.com/ByLCY/writemate/preview"
	"github.com/ByLCY/writemate/renderer"
	canvasrenderer "github.com/ByLCY/writemate/renderer/canvas"
	"github.com/ByLCY/writemate/store"
	"github.com/ByLCY/writemate/templates"
)

var warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)

// planner 由能给出 PDF 绘制指令的渲染器实现，--debug 时一并输出。
type planner interface {
	Plan(ctx context.Context, job renderer.Job) (*canvasrenderer.Plan, error)
}

type renderOptions struct {
	Input      string
	OutDir     string
	DataJSON   string
	PreviewSVG bool
	PreviewPNG bool
	Zoom       float64
	DebugPath  string
	DBPath     string
}

func newRenderCommand() *cobra.Command {
	opts := renderOptions{OutDir: "output", Zoom: preview.DefaultZoom}
	cmd := &cobra.Command{
		Use:   "render [file.writemate]",
		Short: "生成字帖 PDF",
		Long: `解析 .writemate 文件并为每个 sheet 生成一份 PDF。
未指定文件时使用已保存的当前设置。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Input = args[0]
			}
			paths, err := run(cmd.Context(), opts, canvasrenderer.NewRenderer(), time.Now, cmd.ErrOrStderr())
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.OutDir, "out", "o", opts.OutDir, "输出目录")
	flags.StringVar(&opts.DataJSON, "data", "", "绑定到 text 的 JSON 数据")
	flags.BoolVar(&opts.PreviewSVG, "preview-svg", false, "同时输出 SVG 预览")
	flags.BoolVar(&opts.PreviewPNG, "preview-png", false, "同时输出 PNG 预览")
	flags.Float64Var(&opts.Zoom, "zoom", opts.Zoom, "预览缩放百分比（60-140）")
	flags.StringVar(&opts.DebugPath, "debug", "", "布局调试 JSON 输出路径")
	flags.StringVar(&opts.DBPath, "db", "", "设置数据库路径（默认 ~/.cache/writemate.db）")
	return cmd
}

// run 串联解析、布局与渲染，返回写出的全部文件。
func run(ctx context.Context, opts renderOptions, r renderer.Renderer, now func() time.Time, stderr io.Writer) ([]string, error) {
	if r == nil {
		return nil, fmt.Errorf("renderer 不能为空")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	sheets, err := loadSheets(ctx, opts)
	if err != nil {
		return nil, err
	}

	var written []string
	for i, settings := range sheets {
		tpl, err := templates.Builtin().Lookup(settings.TemplateID)
		if err != nil {
			return written, err
		}
		tf, ok := fonts.Builtin().Lookup(settings.FontID)
		if !ok {
			tf = fonts.Builtin().Resolve(settings.FontID)
			logger.Warnf("字型 %s 不存在，改用 %s", settings.FontID, tf.ID)
		}

		l := layout.Build(tpl, settings.Text)
		warnNotices(stderr, l)
		warnUnbound(stderr, settings.Text)

		if opts.DebugPath != "" {
			path := indexedPath(opts.DebugPath, i, len(sheets))
			if err := export.EnsureDir(path); err != nil {
				return written, fmt.Errorf("创建调试目录失败: %w", err)
			}
			if err := layout.WriteDebugJSON(l, path); err != nil {
				return written, fmt.Errorf("输出调试 JSON 失败: %w", err)
			}
			written = append(written, path)
		}

		start := now()
		job := renderer.Job{Settings: settings, Template: tpl, Layout: l, Typeface: tf, Meta: renderer.DefaultMeta(tpl)}
		pdfBytes, err := r.Render(ctx, job)
		if err != nil {
			return written, fmt.Errorf("渲染 PDF 失败: %w", err)
		}
		pdfPath := filepath.Join(opts.OutDir, export.NextFileName(start))
		if err := export.WriteFile(pdfPath, pdfBytes); err != nil {
			return written, err
		}
		written = append(written, pdfPath)
		logger.Infof("已生成 PDF：%s（%d 字）", pdfPath, l.CharCount)

		if p, ok := r.(planner); ok && opts.DebugPath != "" {
			path := planPath(indexedPath(opts.DebugPath, i, len(sheets)))
			if err := writePlan(ctx, p, job, path); err != nil {
				return written, err
			}
			written = append(written, path)
		}

		if opts.PreviewSVG || opts.PreviewPNG {
			scene := preview.Render(settings, tpl, l, tf, opts.Zoom)
			base := strings.TrimSuffix(pdfPath, export.FileExt)
			paths, err := writePreviews(scene, base, opts)
			written = append(written, paths...)
			if err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// loadSheets 读取 DSL 文件中的全部 sheet；未指定文件时读取已保存的设置。
func loadSheets(ctx context.Context, opts renderOptions) ([]layout.Settings, error) {
	if opts.Input == "" {
		backend, err := store.OpenSQLite(opts.DBPath)
		if err != nil {
			return nil, err
		}
		st, err := store.Open(ctx, backend)
		if err != nil {
			backend.Close()
			return nil, err
		}
		defer st.Close()
		return []layout.Settings{st.Settings()}, nil
	}

	var data any
	if opts.DataJSON != "" {
		if err := json.Unmarshal([]byte(opts.DataJSON), &data); err != nil {
			return nil, fmt.Errorf("解析 data JSON 失败: %w", err)
		}
	}
	file, err := os.Open(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("无法打开文件 %s: %w", opts.Input, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(filepath.Base(opts.Input), file)
	if err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", opts.Input, err)
	}
	return doc.Settings(data)
}

func writePreviews(scene *preview.Scene, base string, opts renderOptions) ([]string, error) {
	var written []string
	if opts.PreviewSVG {
		var buf bytes.Buffer
		if err := scene.WriteSVG(&buf); err != nil {
			return written, err
		}
		path := base + ".svg"
		if err := export.WriteFile(path, buf.Bytes()); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if opts.PreviewPNG {
		var buf bytes.Buffer
		if err := scene.WritePNG(&buf); err != nil {
			return written, err
		}
		path := base + ".png"
		if err := export.WriteFile(path, buf.Bytes()); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// warnNotices 输出字数提示。超出与不足互斥。
func warnNotices(w io.Writer, l layout.Layout) {
	switch {
	case l.Overflow > 0:
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("已超出 %d 字", l.Overflow)))
	case l.BelowMinimum():
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("至少需要 %d 字", l.MinChars)))
	}
}

// warnUnbound 提示文字中没有被数据填入的 ${} 变量。
func warnUnbound(w io.Writer, text string) {
	paths := binding.Placeholders(text)
	if len(paths) == 0 {
		return
	}
	fmt.Fprintln(w, warnStyle.Render("未绑定的变量: "+strings.Join(paths, ", ")))
}

func writePlan(ctx context.Context, p planner, job renderer.Job, path string) error {
	plan, err := p.Plan(ctx, job)
	if err != nil {
		return fmt.Errorf("生成绘制指令失败: %w", err)
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return err
	}
	return export.WriteFile(path, data)
}

// planPath 由布局调试路径得到绘制指令的路径，例如 layout.json → layout-plan.json。
func planPath(debugPath string) string {
	ext := filepath.Ext(debugPath)
	return strings.TrimSuffix(debugPath, ext) + "-plan" + ext
}

// indexedPath 在多个 sheet 时为文件名加上序号，例如 debug-2.json。
func indexedPath(path string, i, total int) string {
	if total <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), i+1, ext)
}
