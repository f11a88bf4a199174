package layout

import (
	"strings"

	"github.com/rivo/uniseg"
)

// TopPaddingExtraMm 为网格上方的姓名/日期栏预留的额外高度。
const TopPaddingExtraMm = 6.0

// BlankPlaceholder 换行占一个格子，用全形空白填充以保持网格对齐。
const BlankPlaceholder = "　"

// Build 根据模板与原始文本计算字帖布局。
// 纯函数：相同输入总是得到相同输出；超出容量的字只计入 Overflow，不会报错。
func Build(tpl Template, text string) Layout {
	tokens := Tokenize(text)
	cells := allocateCells(tpl)

	switch tpl.Orientation {
	case Vertical:
		assignVertical(cells, tpl, tokens)
	default:
		assignHorizontal(cells, tokens)
	}

	capacity := tpl.Capacity()
	overflow := len(tokens) - capacity
	if overflow < 0 {
		overflow = 0
	}

	return Layout{
		Template:  tpl,
		Cells:     cells,
		CharCount: len(tokens),
		Overflow:  overflow,
		MinChars:  tpl.MinChars,
		MaxChars:  tpl.MaxChars,
	}
}

// Tokenize 按用户可感知字符（grapheme cluster）拆分文本。
// \r 会被丢弃，每个 \n 映射为一个全形空白。
func Tokenize(text string) []string {
	text = strings.ReplaceAll(text, "\r", "")
	if text == "" {
		return nil
	}
	tokens := make([]string, 0, len(text))
	graphemes := uniseg.NewGraphemes(text)
	for graphemes.Next() {
		cluster := graphemes.Str()
		if cluster == "\n" {
			tokens = append(tokens, BlankPlaceholder)
			continue
		}
		tokens = append(tokens, cluster)
	}
	return tokens
}

// allocateCells 按行优先顺序生成全部格子，坐标只取决于模板几何。
func allocateCells(tpl Template) []Cell {
	if tpl.Rows <= 0 || tpl.Columns <= 0 {
		return []Cell{}
	}
	cells := make([]Cell, 0, tpl.Capacity())
	for row := 0; row < tpl.Rows; row++ {
		for column := 0; column < tpl.Columns; column++ {
			cells = append(cells, Cell{
				Row:    row,
				Column: column,
				X:      tpl.PaddingMm + float64(column)*tpl.CellSizeMm,
				Y:      tpl.PaddingMm + TopPaddingExtraMm + float64(row)*tpl.CellSizeMm,
			})
		}
	}
	return cells
}

func assignHorizontal(cells []Cell, tokens []string) {
	for i := range cells {
		if i >= len(tokens) {
			return
		}
		cells[i].Char = tokens[i]
	}
}

// assignVertical 从最右一列开始自上而下填写，再向左移动一列（直排右起）。
func assignVertical(cells []Cell, tpl Template, tokens []string) {
	pointer := 0
	for column := tpl.Columns - 1; column >= 0; column-- {
		for row := 0; row < tpl.Rows; row++ {
			if pointer >= len(tokens) {
				return
			}
			cells[row*tpl.Columns+column].Char = tokens[pointer]
			pointer++
		}
	}
}
