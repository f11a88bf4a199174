package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/writemate/binding"
	"github.com/ByLCY/writemate/layout"
)

// 支持的设置键。
const (
	KeyTemplate  = "template"
	KeyFont      = "font"
	KeySize      = "size"
	KeyTextColor = "text-color"
	KeyGridColor = "grid-color"
	KeyGrid      = "grid"
	KeyReference = "reference"
	KeyOpacity   = "opacity"
	KeyText      = "text"
)

type applyFunc func(s *layout.Settings, v *Value, data any) error

var appliers = map[string]applyFunc{
	KeyTemplate: func(s *layout.Settings, v *Value, _ any) error {
		id, err := word(v)
		s.TemplateID = id
		return err
	},
	KeyFont: func(s *layout.Settings, v *Value, _ any) error {
		id, err := word(v)
		s.FontID = id
		return err
	},
	KeySize: func(s *layout.Settings, v *Value, _ any) error {
		if v.Number == nil {
			return fmt.Errorf("字号需要数值，得到 %s", v.Kind())
		}
		length, ok := layout.ParseRawLengthStr(*v.Number)
		if !ok || strings.HasSuffix(*v.Number, "%") {
			return fmt.Errorf("无法解析字号 %q", *v.Number)
		}
		s.FontSize = length.ToPX()
		return nil
	},
	KeyTextColor: func(s *layout.Settings, v *Value, _ any) error {
		c, err := color(v)
		s.TextColor = c
		return err
	},
	KeyGridColor: func(s *layout.Settings, v *Value, _ any) error {
		c, err := color(v)
		s.GridColor = c
		return err
	},
	KeyGrid: func(s *layout.Settings, v *Value, _ any) error {
		raw, err := word(v)
		if err != nil {
			return err
		}
		switch g := layout.GridType(raw); g {
		case layout.GridTian, layout.GridMi, layout.GridNine:
			s.GridType = g
			return nil
		default:
			return fmt.Errorf("未知的格线类型 %q（可选 tian、mi、nine）", raw)
		}
	},
	KeyReference: func(s *layout.Settings, v *Value, _ any) error {
		raw, err := word(v)
		if err != nil {
			return err
		}
		switch strings.ToLower(raw) {
		case "true", "on", "yes", "show":
			s.ShowReference = true
		case "false", "off", "no", "hide":
			s.ShowReference = false
		default:
			return fmt.Errorf("范字开关需要 true 或 false，得到 %q", raw)
		}
		return nil
	},
	KeyOpacity: func(s *layout.Settings, v *Value, _ any) error {
		if v.Number == nil {
			return fmt.Errorf("透明度需要数值，得到 %s", v.Kind())
		}
		raw := *v.Number
		percent := strings.HasSuffix(raw, "%")
		f, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
		if err != nil {
			return fmt.Errorf("无法解析透明度 %q: %w", raw, err)
		}
		if percent {
			f /= 100
		}
		s.ReferenceOpacity = f
		return nil
	},
	KeyText: func(s *layout.Settings, v *Value, data any) error {
		if v.String == nil {
			return fmt.Errorf("text 需要字符串，得到 %s", v.Kind())
		}
		s.Text = binding.Interpolate(string(*v.String), data)
		return nil
	},
}

// Settings 把 sheet 转换为规范化后的字帖设置。未写出的键沿用默认值，
// text 中的 ${path} 以 data 填充。
func (sh *Sheet) Settings(data any) (layout.Settings, error) {
	s := layout.DefaultSettings()
	seen := map[string]bool{}
	for _, entry := range sh.Entries {
		apply, ok := appliers[entry.Key]
		if !ok {
			return layout.Settings{}, fmt.Errorf("%s: 未知的设置 %q", entry.Pos, entry.Key)
		}
		if seen[entry.Key] {
			return layout.Settings{}, fmt.Errorf("%s: 设置 %q 重复", entry.Pos, entry.Key)
		}
		seen[entry.Key] = true
		if err := apply(&s, entry.Value, data); err != nil {
			return layout.Settings{}, fmt.Errorf("%s: %s: %w", entry.Value.Pos, entry.Key, err)
		}
	}
	return s.Normalize(), nil
}

// Settings 依序转换文件中的全部 sheet。
func (f *File) Settings(data any) ([]layout.Settings, error) {
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("文件中没有 sheet 区块")
	}
	out := make([]layout.Settings, 0, len(f.Sheets))
	for _, sh := range f.Sheets {
		s, err := sh.Settings(data)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", string(sh.Name), err)
		}
		out = append(out, s)
	}
	return out, nil
}

func word(v *Value) (string, error) {
	switch {
	case v.Ident != nil:
		return *v.Ident, nil
	case v.String != nil:
		return string(*v.String), nil
	default:
		return "", fmt.Errorf("需要名称，得到 %s", v.Kind())
	}
}

func color(v *Value) (string, error) {
	raw := v.Raw()
	if v.Color == nil && v.String == nil {
		return "", fmt.Errorf("需要颜色，得到 %s", v.Kind())
	}
	c, err := layout.ParseColor(raw)
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}
