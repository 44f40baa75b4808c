package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strconv"
	"sync"

	"github.com/GrainArc/CragTopo/editor"
	"github.com/GrainArc/CragTopo/linework"
	"github.com/gogpu/gg"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// MaxRenderWidth 渲染宽度上限
const MaxRenderWidth = 2048

var (
	fontOnce sync.Once
	labelTTF *truetype.Font
	fontErr  error
)

func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		labelTTF, fontErr = truetype.Parse(goregular.TTF)
	})
	return labelTTF, fontErr
}

// RenderService 把线条叠加到拓扑图片上输出 PNG
type RenderService struct {
	topos  *TopoService
	images *ImageService
	cache  *RenderCache
}

func NewRenderService(topos *TopoService, images *ImageService, cache *RenderCache) *RenderService {
	return &RenderService{topos: topos, images: images, cache: cache}
}

// RenderPNG width<=0 表示原始宽度
func (s *RenderService) RenderPNG(ctx context.Context, topoID uint, width int) ([]byte, error) {
	if width > MaxRenderWidth {
		width = MaxRenderWidth
	}
	key := fmt.Sprintf("%srender:%d", topoCachePrefix(topoID), width)
	if s.cache != nil {
		if data, ok := s.cache.Get(key); ok {
			return data, nil
		}
	}

	topo, err := s.topos.Get(ctx, topoID)
	if err != nil {
		return nil, err
	}
	src, err := s.images.Load(topo.FileName)
	if err != nil {
		return nil, fmt.Errorf("读取拓扑图片失败: %w", err)
	}
	segments, err := editor.DecodeCollection(topo.LineSegments)
	if err != nil {
		return nil, err
	}

	img, err := RenderLines(ScaleToWidth(src, width), segments)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(key, buf.Bytes())
	}
	return buf.Bytes(), nil
}

// RenderLines 在底图上描绘已保存的线条和线号
func RenderLines(base image.Image, segments []editor.LineSegment) (*image.RGBA, error) {
	b := base.Bounds()
	dims := linework.Dimensions{Width: float64(b.Dx()), Height: float64(b.Dy())}
	lineWidth := max(2.0, dims.Width/320)
	radius := max(8.0, dims.Width/90)

	sorted := make([]editor.LineSegment, 0, len(segments))
	for _, seg := range segments {
		if seg.Drawable() {
			sorted = append(sorted, seg)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Label() < sorted[j].Label() })

	dc := gg.NewContextForImage(base)
	defer dc.Close()
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	type label struct {
		at   [2]float64
		text string
	}
	labels := make([]label, 0, len(sorted))
	for _, seg := range sorted {
		points, err := linework.Denormalize(seg.Geometry.Coordinates, dims)
		if err != nil {
			return nil, err
		}
		path := linework.BuildPath(points)
		// 白色描边衬底，照片上更清楚
		dc.SetRGB(1, 1, 1)
		dc.SetLineWidth(lineWidth + 2)
		if err := linework.Stroke(dc, path); err != nil {
			return nil, err
		}
		dc.SetRGB(0.85, 0.1, 0.1)
		dc.SetLineWidth(lineWidth)
		if err := linework.Stroke(dc, path); err != nil {
			return nil, err
		}

		anchor, ok := linework.LabelAnchor(path, radius+lineWidth)
		if !ok {
			continue
		}
		dc.SetRGB(0.85, 0.1, 0.1)
		dc.DrawCircle(anchor[0], anchor[1], radius)
		if err := dc.Fill(); err != nil {
			return nil, err
		}
		labels = append(labels, label{at: anchor, text: strconv.Itoa(seg.Label())})
	}

	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), dc.Image(), dc.Image().Bounds().Min, draw.Src)

	ttf, err := loadFont()
	if err != nil {
		return nil, err
	}
	fontSize := radius * 1.2
	for _, l := range labels {
		w := textWidth(l.text, fontSize, ttf)
		x := int(l.at[0]) - w/2
		y := int(l.at[1] + fontSize*0.35)
		if err := drawText(out, x, y, l.text, fontSize, color.White, ttf); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func drawText(img *image.RGBA, x, y int, text string, fontSize float64, c color.Color, ttf *truetype.Font) error {
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttf)
	ctx.SetFontSize(fontSize)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.NewUniform(c))
	ctx.SetHinting(font.HintingFull)
	_, err := ctx.DrawString(text, freetype.Pt(x, y))
	return err
}

func textWidth(text string, fontSize float64, ttf *truetype.Font) int {
	face := truetype.NewFace(ttf, &truetype.Options{Size: fontSize, DPI: 72})
	defer face.Close()

	width := 0
	for _, r := range text {
		advance, ok := face.GlyphAdvance(r)
		if !ok {
			width += int(fontSize)
			continue
		}
		width += advance.Round()
	}
	return width
}
