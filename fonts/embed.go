package fonts

import (
	"golang.org/x/image/font/gofont/goregular"
)

// StandardName 是内建标准字型在 PDF 中使用的 family 名称。
const StandardName = "writemate-standard"

// Standard 返回内建标准字型（Go Regular）的 TTF 数据。
// 它不含中日韩字形，只在字型没有配置下载来源时使用。
func Standard() []byte { return goregular.TTF }
