package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Rasterize 按缩放倍率把场景画成位图。oksvg 不支持 <text>，
// 位图只包含背景、外框、格线与辅助线。
func (s *Scene) Rasterize() (*image.RGBA, error) {
	data, err := s.SVG()
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("解析预览 SVG 失败: %w", err)
	}

	width := int(math.Round(s.Width * s.Scale()))
	height := int(math.Round(s.Height * s.Scale()))
	icon.SetTarget(0, 0, float64(width), float64(height))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	raster := rasterx.NewDasher(width, height, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}

// WritePNG 将位图编码为 PNG。
func (s *Scene) WritePNG(w io.Writer) error {
	img, err := s.Rasterize()
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return nil
}
