package renderer

import (
	"context"
	"strings"

	"github.com/ByLCY/writemate/fonts"
	"github.com/ByLCY/writemate/layout"
)

// Job 是一次导出所需的全部输入。渲染器不会再规范化设置。
type Job struct {
	Settings layout.Settings
	Template layout.Template
	Layout   layout.Layout
	Typeface fonts.Typeface
	Meta     DocumentMeta
}

// DocumentMeta 写入 PDF 的文档信息。
type DocumentMeta struct {
	Title    string
	Subject  string
	Keywords []string
	Author   string
	Creator  string
}

// DefaultMeta 按模板生成文档信息。
func DefaultMeta(tpl layout.Template) DocumentMeta {
	return DocumentMeta{
		Title:    strings.TrimSpace("WriteMate 字帖 " + tpl.Label),
		Subject:  tpl.Description,
		Keywords: []string{"WriteMate", tpl.ID, string(tpl.Orientation)},
		Creator:  "WriteMate",
	}
}

// Renderer 将布局输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据；失败时数据为 nil。
type Renderer interface {
	Render(ctx context.Context, job Job) ([]byte, error)
}
