package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ByLCY/writemate/binding"
	"github.com/ByLCY/writemate/fonts"
	"github.com/ByLCY/writemate/layout"
	"github.com/ByLCY/writemate/store"
	"github.com/ByLCY/writemate/templates"
)

type settingsFlags struct {
	Template  string
	Font      string
	Size      string
	TextColor string
	GridColor string
	Grid      string
	Reference bool
	Opacity   float64
	Text      string
	DataJSON  string
}

var gridTypes = []layout.GridType{layout.GridTian, layout.GridMi, layout.GridNine}

func newSettingsCommand() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "查看或修改当前设置",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "设置数据库路径（默认 ~/.cache/writemate.db）")

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "显示当前设置",
		Args:  cobra.NoArgs,
		RunE: withStore(&dbPath, func(_ context.Context, st *store.Store, w io.Writer, _ []string) error {
			printSettings(w, st.Settings())
			return nil
		}),
	})

	var f settingsFlags
	set := &cobra.Command{
		Use:   "set",
		Short: "修改当前设置，未指定的项目保持不变",
		Example: `  writemate settings set --template article-vertical --grid mi --size 12mm
  writemate settings set --text '${name|學生}：天地玄黃' --data '{"name":"王小明"}'`,
		Args: cobra.NoArgs,
	}
	set.RunE = withStore(&dbPath, func(ctx context.Context, st *store.Store, w io.Writer, _ []string) error {
		if err := applySettings(ctx, st, f, set.Flags().Changed); err != nil {
			return err
		}
		printSettings(w, st.Settings())
		return nil
	})
	flags := set.Flags()
	flags.StringVar(&f.Template, "template", "", "模板 ID")
	flags.StringVar(&f.Font, "font", "", "字型 ID")
	flags.StringVar(&f.Size, "size", "", "范字字号，例如 46px 或 12mm")
	flags.StringVar(&f.TextColor, "text-color", "", "文字颜色，例如 #1b1b1f")
	flags.StringVar(&f.GridColor, "grid-color", "", "格线颜色，例如 #5b6045")
	flags.StringVar(&f.Grid, "grid", "", "格线样式：tian、mi 或 nine")
	flags.BoolVar(&f.Reference, "reference", true, "是否显示范字")
	flags.Float64Var(&f.Opacity, "opacity", 0, "范字透明度（0.1-0.9）")
	flags.StringVar(&f.Text, "text", "", "练习文字，可包含 ${path|默认值}")
	flags.StringVar(&f.DataJSON, "data", "", "绑定到 text 的 JSON 数据")
	cmd.AddCommand(set)
	return cmd
}

// applySettings 校验 changed 报告过的旗标并写入设置库。模板与字型必须存在于内置目录。
func applySettings(ctx context.Context, st *store.Store, f settingsFlags, changed func(string) bool) error {
	var mutations []func(*layout.Settings)

	if changed("template") {
		if _, err := templates.Builtin().Lookup(f.Template); err != nil {
			return err
		}
	}
	if changed("font") {
		if _, ok := fonts.Builtin().Lookup(f.Font); !ok {
			return fmt.Errorf("字型 %s 不存在", f.Font)
		}
		mutations = append(mutations, func(s *layout.Settings) { s.FontID = f.Font })
	}
	if changed("size") {
		length, ok := layout.ParseRawLengthStr(f.Size)
		if !ok {
			return fmt.Errorf("字号 %q 无法解析", f.Size)
		}
		mutations = append(mutations, func(s *layout.Settings) { s.FontSize = length.ToPX() })
	}
	for _, c := range []struct {
		flag  string
		value string
		field func(*layout.Settings) *string
	}{
		{"text-color", f.TextColor, func(s *layout.Settings) *string { return &s.TextColor }},
		{"grid-color", f.GridColor, func(s *layout.Settings) *string { return &s.GridColor }},
	} {
		if !changed(c.flag) {
			continue
		}
		parsed, err := layout.ParseColor(c.value)
		if err != nil {
			return fmt.Errorf("%s: %w", c.flag, err)
		}
		field, hex := c.field, parsed.Hex()
		mutations = append(mutations, func(s *layout.Settings) { *field(s) = hex })
	}
	if changed("grid") {
		grid := layout.GridType(f.Grid)
		if !lo.Contains(gridTypes, grid) {
			return fmt.Errorf("未知的格线样式 %q", f.Grid)
		}
		mutations = append(mutations, func(s *layout.Settings) { s.GridType = grid })
	}
	if changed("reference") {
		mutations = append(mutations, func(s *layout.Settings) { s.ShowReference = f.Reference })
	}
	if changed("opacity") {
		mutations = append(mutations, func(s *layout.Settings) { s.ReferenceOpacity = f.Opacity })
	}
	if changed("text") {
		var data any
		if f.DataJSON != "" {
			if err := json.Unmarshal([]byte(f.DataJSON), &data); err != nil {
				return fmt.Errorf("解析 data JSON 失败: %w", err)
			}
		}
		text := binding.Interpolate(f.Text, data)
		mutations = append(mutations, func(s *layout.Settings) { s.Text = text })
	}

	if !changed("template") && len(mutations) == 0 {
		return fmt.Errorf("未指定任何设置")
	}
	if changed("template") {
		if err := st.SetTemplate(ctx, f.Template); err != nil {
			return err
		}
	}
	if len(mutations) == 0 {
		return nil
	}
	return st.Update(ctx, func(s *layout.Settings) {
		for _, m := range mutations {
			m(s)
		}
	})
}

func printSettings(w io.Writer, s layout.Settings) {
	t := newTable("模板", "字型", "字号", "格线", "范字", "透明度", "文字颜色", "格线颜色")
	t.Row(append(settingsRow(s), s.TextColor, s.GridColor)...)
	fmt.Fprintln(w, t)
	fmt.Fprintln(w, strconv.Quote(s.Text))
}
