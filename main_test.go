package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/writemate/fonts"
	"github.com/ByLCY/writemate/layout"
	"github.com/ByLCY/writemate/renderer"
	canvasrenderer "github.com/ByLCY/writemate/renderer/canvas"
	"github.com/ByLCY/writemate/templates"
)

const twoSheets = `
sheet "one" {
  font: cwtex-kai
  text: "${name|無名}"
}
sheet "two" {
  template: article-vertical
  font: klee-one
  grid: nine
}
`

func offlineRenderer() *canvasrenderer.Renderer {
	return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		Fetcher: fonts.FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
			return nil, errors.New("offline")
		}),
	})
}

func fixedNow() time.Time { return time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC) }

func writeSheetFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheets.writemate")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunRendersEverySheet(t *testing.T) {
	out := t.TempDir()
	var stderr bytes.Buffer
	opts := renderOptions{
		Input:      writeSheetFile(t, twoSheets),
		OutDir:     out,
		DataJSON:   `{"name":"王羲之"}`,
		PreviewSVG: true,
		Zoom:       90,
		DebugPath:  filepath.Join(out, "debug", "layout.json"),
	}
	paths, err := run(context.Background(), opts, offlineRenderer(), fixedNow, &stderr)
	require.NoError(t, err)

	var pdfs, svgs, debugs int
	for _, p := range paths {
		assert.FileExists(t, p)
		switch filepath.Ext(p) {
		case ".pdf":
			pdfs++
			assert.True(t, strings.HasPrefix(filepath.Base(p), "WriteMate-"))
		case ".svg":
			svgs++
		case ".json":
			debugs++
		}
	}
	assert.Equal(t, 2, pdfs)
	assert.Equal(t, 2, svgs)
	// 每张字帖一份布局与一份 PDF 绘制指令
	assert.Equal(t, 4, debugs)
	assert.FileExists(t, filepath.Join(out, "debug", "layout-1.json"))

	data, err := os.ReadFile(filepath.Join(out, "debug", "layout-2-plan.json"))
	require.NoError(t, err)
	var plan canvasrenderer.Plan
	require.NoError(t, json.Unmarshal(data, &plan))
	assert.InDelta(t, 841.89, plan.Height, 0.01)
	assert.Len(t, plan.Cells, 204)
	assert.NotContains(t, stderr.String(), "未绑定")

	// 第一张只有 3 个字
	assert.Contains(t, stderr.String(), "至少需要 24 字")
}

func TestRunFailsOnRemoteFontWithoutOutput(t *testing.T) {
	out := t.TempDir()
	opts := renderOptions{
		Input:  writeSheetFile(t, `sheet "x" { font: chenyuluoyan-thin }`),
		OutDir: out,
	}
	paths, err := run(context.Background(), opts, offlineRenderer(), fixedNow, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fonts.ErrAssetFetchFailed))
	assert.Empty(t, paths)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunRejectsUnknownTemplate(t *testing.T) {
	opts := renderOptions{
		Input:  writeSheetFile(t, `sheet "x" { template: poem-grid }`),
		OutDir: t.TempDir(),
	}
	_, err := run(context.Background(), opts, offlineRenderer(), fixedNow, &bytes.Buffer{})
	assert.True(t, errors.Is(err, templates.ErrInvalidTemplateReference))
}

func TestRunUsesStoredSettingsWithoutInput(t *testing.T) {
	out := t.TempDir()
	opts := renderOptions{
		OutDir: out,
		DBPath: filepath.Join(t.TempDir(), "store.db"),
	}
	var rec recordingRenderer
	paths, err := run(context.Background(), opts, &rec, fixedNow, &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Len(t, rec.jobs, 1)
	assert.Equal(t, layout.DefaultSettings(), rec.jobs[0].Settings)
}

func TestRunWarnsAboutUnboundPlaceholders(t *testing.T) {
	var stderr bytes.Buffer
	opts := renderOptions{
		Input:  writeSheetFile(t, `sheet "x" { font: cwtex-kai; text: "${student.name}：天地玄黃，宇宙洪荒。日月盈昃，辰宿列張。寒來暑往，秋收冬藏。" }`),
		OutDir: t.TempDir(),
	}
	_, err := run(context.Background(), opts, &recordingRenderer{}, fixedNow, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "未绑定的变量: student.name")
}

func TestRunRequiresRenderer(t *testing.T) {
	_, err := run(context.Background(), renderOptions{}, nil, fixedNow, &bytes.Buffer{})
	assert.Error(t, err)
}

type recordingRenderer struct{ jobs []renderer.Job }

func (r *recordingRenderer) Render(_ context.Context, job renderer.Job) ([]byte, error) {
	r.jobs = append(r.jobs, job)
	return []byte("%PDF-1.7\n"), nil
}

func TestWarnNotices(t *testing.T) {
	tpl := templates.Builtin().Default()

	var buf bytes.Buffer
	warnNotices(&buf, layout.Build(tpl, strings.Repeat("永", 210)))
	assert.Contains(t, buf.String(), "已超出 6 字")

	buf.Reset()
	warnNotices(&buf, layout.Build(tpl, strings.Repeat("永", 30)))
	assert.Empty(t, buf.String())
}

func TestIndexedPath(t *testing.T) {
	assert.Equal(t, "out/debug.json", indexedPath("out/debug.json", 0, 1))
	assert.Equal(t, "out/debug-2.json", indexedPath("out/debug.json", 1, 3))
	assert.Equal(t, "out/debug-2-plan.json", planPath(indexedPath("out/debug.json", 1, 3)))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSettingsSetIsUsedByRender(t *testing.T) {
	db := filepath.Join(t.TempDir(), "store.db")
	out, err := execute(t, "settings", "set", "--db", db,
		"--template", "article-vertical",
		"--font", "klee-one",
		"--grid", "mi",
		"--size", "12mm",
		"--text-color", "#333",
		"--opacity", "0.5",
		"--reference=false",
		"--text", "${name|學生}：天地玄黃",
		"--data", `{"name":"王小明"}`,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "article-vertical")

	var rec recordingRenderer
	_, err = run(context.Background(), renderOptions{OutDir: t.TempDir(), DBPath: db}, &rec, fixedNow, &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, rec.jobs, 1)

	got := rec.jobs[0].Settings
	assert.Equal(t, "article-vertical", got.TemplateID)
	assert.Equal(t, "article-vertical", rec.jobs[0].Template.ID)
	assert.Equal(t, "klee-one", got.FontID)
	assert.Equal(t, layout.GridMi, got.GridType)
	assert.InDelta(t, layout.MmToScreen(12), got.FontSize, 1e-9)
	assert.Equal(t, "#333333", got.TextColor)
	assert.Equal(t, layout.DefaultSettings().GridColor, got.GridColor)
	assert.Equal(t, 0.5, got.ReferenceOpacity)
	assert.False(t, got.ShowReference)
	assert.Equal(t, "王小明：天地玄黃", got.Text)

	// 只改一项时其余设置保持不变
	_, err = execute(t, "settings", "set", "--db", db, "--grid", "nine")
	require.NoError(t, err)
	out, err = execute(t, "settings", "show", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "nine")
	assert.Contains(t, out, "klee-one")

	// 保存的记录是修改后的设置
	_, err = execute(t, "preset", "save", "--db", db)
	require.NoError(t, err)
	out, err = execute(t, "preset", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "article-vertical")
}

func TestSettingsSetRejectsInvalidValues(t *testing.T) {
	db := filepath.Join(t.TempDir(), "store.db")

	_, err := execute(t, "settings", "set", "--db", db, "--template", "poem-grid")
	assert.True(t, errors.Is(err, templates.ErrInvalidTemplateReference))

	for _, args := range [][]string{
		{"--font", "comic-sans"},
		{"--grid", "hex"},
		{"--text-color", "blue"},
		{"--size", "big"},
		{},
	} {
		_, err := execute(t, append([]string{"settings", "set", "--db", db}, args...)...)
		assert.Error(t, err, args)
	}

	out, err := execute(t, "settings", "show", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, layout.DefaultTemplateID)
}

func TestWarnUnbound(t *testing.T) {
	var buf bytes.Buffer
	warnUnbound(&buf, "天地玄黃")
	assert.Empty(t, buf.String())

	warnUnbound(&buf, "${a}與${b.c}")
	assert.Contains(t, buf.String(), "a, b.c")
}

func TestCatalogListings(t *testing.T) {
	var buf bytes.Buffer
	printTemplates(&buf, templates.Builtin())
	assert.Contains(t, buf.String(), "article-horizontal *")
	assert.Contains(t, buf.String(), "article-vertical")

	buf.Reset()
	printFonts(&buf, fonts.Builtin().All())
	assert.Contains(t, buf.String(), "chenyuluoyan-thin")

	buf.Reset()
	printPresets(&buf, nil)
	assert.Contains(t, buf.String(), "尚无")
}
