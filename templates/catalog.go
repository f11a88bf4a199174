// Package templates 提供内置的字帖模板目录。
package templates

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/writemate/layout"
)

//go:embed templates.yaml
var builtinYAML []byte

// ErrInvalidTemplateReference 表示设置引用了目录中不存在的模板。
// 这是调用方的配置错误，核心不会尝试恢复。
var ErrInvalidTemplateReference = errors.New("模板不存在")

// Catalog 是只读的模板目录，保持声明顺序。
type Catalog struct {
	defaultID string
	order     []string
	byID      map[string]layout.Template
}

type catalogFile struct {
	Default   string            `yaml:"default"`
	Templates []layout.Template `yaml:"templates"`
}

var builtin = mustParse(builtinYAML)

// Builtin 返回内置目录。
func Builtin() *Catalog { return builtin }

// Parse 从 YAML 读取模板目录并校验每个模板。
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("解析模板目录失败: %w", err)
	}
	c := &Catalog{defaultID: file.Default, byID: make(map[string]layout.Template, len(file.Templates))}
	for _, tpl := range file.Templates {
		if err := validate(tpl); err != nil {
			return nil, err
		}
		if _, dup := c.byID[tpl.ID]; dup {
			return nil, fmt.Errorf("模板 %s 重复定义", tpl.ID)
		}
		c.byID[tpl.ID] = tpl
		c.order = append(c.order, tpl.ID)
	}
	if len(c.order) == 0 {
		return nil, fmt.Errorf("模板目录为空")
	}
	if c.defaultID == "" {
		c.defaultID = c.order[0]
	}
	if _, ok := c.byID[c.defaultID]; !ok {
		return nil, fmt.Errorf("默认模板 %s: %w", c.defaultID, ErrInvalidTemplateReference)
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

func validate(tpl layout.Template) error {
	switch {
	case tpl.ID == "":
		return fmt.Errorf("模板缺少 id")
	case tpl.Rows <= 0 || tpl.Columns <= 0:
		return fmt.Errorf("模板 %s 的行列数必须为正", tpl.ID)
	case tpl.CellSizeMm <= 0:
		return fmt.Errorf("模板 %s 的格子尺寸必须为正", tpl.ID)
	case tpl.Orientation != layout.Horizontal && tpl.Orientation != layout.Vertical:
		return fmt.Errorf("模板 %s 的方向 %q 无效", tpl.ID, tpl.Orientation)
	case tpl.MaxChars != tpl.Capacity():
		return fmt.Errorf("模板 %s 的 maxChars=%d 与容量 %d 不一致", tpl.ID, tpl.MaxChars, tpl.Capacity())
	case tpl.MinChars > tpl.MaxChars:
		return fmt.Errorf("模板 %s 的 minChars 大于 maxChars", tpl.ID)
	}
	return nil
}

// Lookup 按 id 查找模板。
func (c *Catalog) Lookup(id string) (layout.Template, error) {
	tpl, ok := c.byID[id]
	if !ok {
		return layout.Template{}, fmt.Errorf("%s: %w", id, ErrInvalidTemplateReference)
	}
	return tpl, nil
}

// MustLookup 与 Lookup 相同，但在引用无效时 panic。
func (c *Catalog) MustLookup(id string) layout.Template {
	tpl, err := c.Lookup(id)
	if err != nil {
		panic(err)
	}
	return tpl
}

// Default 返回默认模板。
func (c *Catalog) Default() layout.Template { return c.byID[c.defaultID] }

// All 按声明顺序返回全部模板。
func (c *Catalog) All() []layout.Template {
	return lo.Map(c.order, func(id string, _ int) layout.Template { return c.byID[id] })
}

// IDs 返回全部模板 id。
func (c *Catalog) IDs() []string { return append([]string(nil), c.order...) }
