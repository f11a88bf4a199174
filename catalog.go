package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ByLCY/writemate/fonts"
	"github.com/ByLCY/writemate/layout"
	"github.com/ByLCY/writemate/templates"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func newTemplatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "列出内置模板",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printTemplates(cmd.OutOrStdout(), templates.Builtin())
			return nil
		},
	}
}

func printTemplates(w io.Writer, c *templates.Catalog) {
	t := newTable("ID", "名称", "方向", "行×列", "字数")
	def := c.Default().ID
	for _, tpl := range c.All() {
		id := tpl.ID
		if id == def {
			id += " *"
		}
		t.Row(id, tpl.Label, string(tpl.Orientation),
			fmt.Sprintf("%d×%d", tpl.Rows, tpl.Columns),
			fmt.Sprintf("%d-%d", tpl.MinChars, tpl.MaxChars))
	}
	fmt.Fprintln(w, t)
}

func newFontsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fonts",
		Short: "列出可选字型",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printFonts(cmd.OutOrStdout(), fonts.Builtin().All())
			return nil
		},
	}
}

func printFonts(w io.Writer, all []fonts.Typeface) {
	t := newTable("ID", "名称", "说明", "PDF 嵌入")
	rows := lo.Map(all, func(tf fonts.Typeface, _ int) []string {
		embed := "标准字型"
		if tf.Embeddable() {
			embed = "下载"
		}
		return []string{tf.ID, tf.Label, tf.Description, embed}
	})
	t.Rows(rows...)
	fmt.Fprintln(w, t)
}

func settingsRow(s layout.Settings) []string {
	return []string{
		s.TemplateID, s.FontID,
		strconv.FormatFloat(s.FontSize, 'f', -1, 64),
		string(s.GridType),
		strconv.FormatBool(s.ShowReference),
		strconv.FormatFloat(s.ReferenceOpacity, 'f', 2, 64),
	}
}
