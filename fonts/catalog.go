// Package fonts 管理字型目录、远端字型下载与内建后备字型。
package fonts

import (
	_ "embed"
	"fmt"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed typefaces.yaml
var builtinYAML []byte

// Typeface 描述一种可选字型。
// CSSStack 供屏幕预览使用；Source 为空时 PDF 使用内建标准字型。
type Typeface struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
	Sample      string `json:"sample" yaml:"sample"`
	CSSStack    string `json:"cssStack" yaml:"cssStack"`
	Source      string `json:"source,omitempty" yaml:"source"`
}

// Embeddable 报告该字型是否需要下载并嵌入 PDF。
func (t Typeface) Embeddable() bool { return t.Source != "" }

// Catalog 是只读的字型目录。
type Catalog struct {
	defaultID string
	items     []Typeface
	byID      map[string]Typeface
}

var builtin = mustParse(builtinYAML)

// Builtin 返回内置字型目录。
func Builtin() *Catalog { return builtin }

// Parse 从 YAML 读取字型目录。
func Parse(data []byte) (*Catalog, error) {
	var file struct {
		Default   string     `yaml:"default"`
		Typefaces []Typeface `yaml:"typefaces"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("解析字型目录失败: %w", err)
	}
	if len(file.Typefaces) == 0 {
		return nil, fmt.Errorf("字型目录为空")
	}
	c := &Catalog{defaultID: file.Default, items: file.Typefaces, byID: map[string]Typeface{}}
	for _, tf := range file.Typefaces {
		if tf.ID == "" {
			return nil, fmt.Errorf("字型缺少 id")
		}
		c.byID[tf.ID] = tf
	}
	if remote := lo.Filter(file.Typefaces, func(tf Typeface, _ int) bool { return tf.Embeddable() }); len(remote) > 1 {
		return nil, fmt.Errorf("最多只能有一种字型配置下载来源，实际 %d 种", len(remote))
	}
	if c.defaultID == "" {
		c.defaultID = file.Typefaces[0].ID
	}
	if _, ok := c.byID[c.defaultID]; !ok {
		return nil, fmt.Errorf("默认字型 %s 不存在", c.defaultID)
	}
	return c, nil
}

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup 按 id 查找字型。
func (c *Catalog) Lookup(id string) (Typeface, bool) {
	tf, ok := c.byID[id]
	return tf, ok
}

// Resolve 查找字型，找不到时回落到默认字型。
func (c *Catalog) Resolve(id string) Typeface {
	if tf, ok := c.byID[id]; ok {
		return tf
	}
	return c.byID[c.defaultID]
}

// All 按声明顺序返回全部字型。
func (c *Catalog) All() []Typeface { return append([]Typeface(nil), c.items...) }
