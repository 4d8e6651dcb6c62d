// Package canvasbackend 基于 github.com/tdewolff/canvas 实现离屏表面与
// 字体系统：字体族按需加载并缓存，表面以 CartesianIV（左上原点）绘制，
// 经光栅化器回读 RGBA 像素。
package canvasbackend

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/kinetext/layout"
	"github.com/ByLCY/kinetext/render"
	"github.com/ByLCY/kinetext/style"
)

// 画布单位按 px 解释；canvas 的字号入参为 pt，这里做一次 px→pt 换算
//（与 canvas 内部 1pt = 0.352777 单位的约定对偶）。
const pxToPt = 1 / 0.352777

// Backend 把 canvas 字体系统与表面工厂绑在一起，实现 render.Backend。
type Backend struct {
	fonts *FontProvider
}

var _ render.Backend = (*Backend)(nil)

// New 创建一个空后端；使用前需至少注册一个字体族。
func New() *Backend {
	return &Backend{fonts: newFontProvider()}
}

// Fonts 返回字体提供方。
func (b *Backend) Fonts() render.FontProvider { return b.fonts }

// NewSurface 创建一个 width×height 的离屏表面；pixelRatio 决定回读时
// 的物理像素密度。
func (b *Backend) NewSurface(width, height int, pixelRatio float64) (render.Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("canvasbackend: 表面尺寸无效: %dx%d", width, height)
	}
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	s := &surface{w: width, h: height, ratio: pixelRatio}
	s.reset()
	return s, nil
}

// FontProvider 管理字体字节与按 (族|字重|样式) 缓存的 canvas 字体族。
type FontProvider struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	families map[string]*canvas.FontFamily
	fallback string // 第一个注册的族，作为兜底
}

var _ render.FontProvider = (*FontProvider)(nil)

func newFontProvider() *FontProvider {
	return &FontProvider{
		blobs:    map[string][]byte{},
		families: map[string]*canvas.FontFamily{},
	}
}

// Register 注册一段字体数据到族名。重复注册时后者覆盖前者。
func (p *FontProvider) Register(data []byte, family string) error {
	if family == "" {
		return fmt.Errorf("canvasbackend: 字体族名不能为空")
	}
	if len(data) == 0 {
		return fmt.Errorf("canvasbackend: 字体 %q 数据为空", family)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blobs[family] = data
	if p.fallback == "" {
		p.fallback = family
	}
	// 已缓存的字体族基于旧数据，作废重建
	for key := range p.families {
		delete(p.families, key)
	}
	return nil
}

// Resolve 解析字体面。族名为空时使用兜底族。
func (p *FontProvider) Resolve(family string, weight int, styleName string, size float64) (render.Face, error) {
	fam, fontStyle, err := p.ensureFamily(family, weight, styleName)
	if err != nil {
		return nil, err
	}
	face := fam.Face(size*pxToPt, canvas.Black, fontStyle, canvas.FontNormal)
	return &fontFace{face: face}, nil
}

// ResolveFallback 返回兜底族的常规字体面。
func (p *FontProvider) ResolveFallback(size float64) (render.Face, error) {
	p.mu.Lock()
	fallback := p.fallback
	p.mu.Unlock()
	if fallback == "" {
		return nil, fmt.Errorf("canvasbackend: 尚未注册任何字体族")
	}
	return p.Resolve(fallback, 400, "", size)
}

func (p *FontProvider) ensureFamily(family string, weight int, styleName string) (*canvas.FontFamily, canvas.FontStyle, error) {
	fontStyle := fontStyleFor(weight, styleName)

	p.mu.Lock()
	defer p.mu.Unlock()

	if family == "" {
		family = p.fallback
	}
	data, ok := p.blobs[family]
	if !ok {
		return nil, fontStyle, fmt.Errorf("canvasbackend: 找不到字体族 %q", family)
	}

	key := fmt.Sprintf("%s|%d", family, fontStyle)
	if fam, ok := p.families[key]; ok {
		return fam, fontStyle, nil
	}
	fam := canvas.NewFontFamily(family)
	if err := fam.LoadFont(data, 0, fontStyle); err != nil {
		return nil, fontStyle, fmt.Errorf("canvasbackend: 加载字体 %q 失败: %w", family, err)
	}
	p.families[key] = fam
	return fam, fontStyle, nil
}

// fontStyleFor 把数值字重与样式名映射为 canvas.FontStyle。
func fontStyleFor(weight int, styleName string) canvas.FontStyle {
	var result canvas.FontStyle
	switch {
	case weight >= 900:
		result = canvas.FontBlack
	case weight >= 800:
		result = canvas.FontExtraBold
	case weight >= 700:
		result = canvas.FontBold
	case weight >= 600:
		result = canvas.FontSemiBold
	case weight >= 500:
		result = canvas.FontMedium
	case weight > 0 && weight < 400:
		result = canvas.FontLight
	default:
		result = canvas.FontRegular
	}
	if styleName == "italic" || styleName == "oblique" {
		result |= canvas.FontItalic
	}
	return result
}

// fontFace 包装 canvas.FontFace 实现 render.Face。
type fontFace struct {
	face *canvas.FontFace
}

func (f *fontFace) TextWidth(s string) float64 { return f.face.TextWidth(s) }

func (f *fontFace) Metrics() layout.Metrics {
	m := f.face.Metrics()
	return layout.Metrics{Ascent: m.Ascent, Descent: m.Descent, LineHeight: m.LineHeight}
}

// surface 实现 render.Surface：每次 Clear 重建画布，绘制后经光栅化器
// 回读像素。
type surface struct {
	w, h  int
	ratio float64
	c     *canvas.Canvas
	ctx   *canvas.Context
}

var _ render.Surface = (*surface)(nil)

func (s *surface) reset() {
	s.c = canvas.New(float64(s.w), float64(s.h))
	s.ctx = canvas.NewContext(s.c)
	s.ctx.SetCoordSystem(canvas.CartesianIV) // 左上角为原点，与布局一致
}

// Clear 重建画布并铺设背景。
func (s *surface) Clear(bg style.Color, borderRadius float64) {
	s.reset()
	if bg.A <= 0 {
		return
	}
	s.ctx.SetFillColor(toCanvasColor(bg, 1))
	s.ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	if borderRadius > 0 {
		s.ctx.DrawPath(0, 0, canvas.RoundedRectangle(float64(s.w), float64(s.h), borderRadius))
	} else {
		s.ctx.DrawPath(0, 0, canvas.Rectangle(float64(s.w), float64(s.h)))
	}
}

// DrawText 以 (x,y) 为基线填充一段文本。
func (s *surface) DrawText(x, y float64, text string, face render.Face, paint style.Paint, alpha float64) {
	cf, ok := face.(*fontFace)
	if !ok || text == "" {
		return
	}
	s.applyFillPaint(paint, alpha)
	s.ctx.DrawText(x, y, canvas.NewTextLine(cf.face, text, canvas.Left))
}

// DrawTextOutline 把文本转为轮廓路径后描边。
func (s *surface) DrawTextOutline(x, y float64, text string, face render.Face, paint style.Paint, width, alpha float64) {
	cf, ok := face.(*fontFace)
	if !ok || text == "" || width <= 0 {
		return
	}
	path, _, err := cf.face.ToPath(text)
	if err != nil || path == nil {
		return
	}
	s.ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	s.ctx.SetStrokeColor(toCanvasColor(paint.Effective(alpha), 1))
	s.ctx.SetStrokeWidth(width)
	s.ctx.DrawPath(x, y, path)
	s.ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
}

// DrawLine 绘制装饰线。
func (s *surface) DrawLine(x1, y1, x2, y2, width float64, paint style.Paint, alpha float64) {
	s.ctx.SetStrokeColor(toCanvasColor(paint.Effective(alpha), 1))
	s.ctx.SetStrokeWidth(width)
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(x2-x1, y2-y1)
	s.ctx.DrawPath(x1, y1, p)
	s.ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
}

// applyFillPaint 把 Paint 装配到上下文：渐变优先，否则纯色。
func (s *surface) applyFillPaint(paint style.Paint, alpha float64) {
	s.ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	if paint.Gradient == nil {
		s.ctx.SetFillColor(toCanvasColor(paint.Effective(alpha), 1))
		return
	}
	alphaMul := paint.Opacity * alpha
	switch paint.Gradient.Kind {
	case style.GradientRadial:
		rp := paint.Gradient.Radial(paint.Bounds)
		center := canvas.Point{X: rp.CX, Y: rp.CY}
		g := canvas.NewRadialGradient(center, 0, center, rp.Radius)
		for _, stop := range rp.Stops {
			g.Add(stop.Offset, toCanvasColor(stop.Color, alphaMul))
		}
		s.ctx.SetFillGradient(g)
	default:
		lp := paint.Gradient.Linear(paint.Bounds)
		g := canvas.NewLinearGradient(
			canvas.Point{X: lp.X0, Y: lp.Y0},
			canvas.Point{X: lp.X1, Y: lp.Y1},
		)
		for _, stop := range lp.Stops {
			g.Add(stop.Offset, toCanvasColor(stop.Color, alphaMul))
		}
		s.ctx.SetFillGradient(g)
	}
}

// ReadPixels 光栅化画布并返回 RGBA 字节（宽·高·4，含 pixelRatio）。
func (s *surface) ReadPixels() ([]byte, error) {
	img := rasterizer.Draw(s.c, canvas.DPMM(s.ratio), canvas.DefaultColorSpace)
	if img == nil {
		return nil, fmt.Errorf("canvasbackend: 光栅化失败")
	}
	return img.Pix, nil
}

// Size 返回物理像素尺寸。
func (s *surface) Size() (int, int) {
	return int(float64(s.w) * s.ratio), int(float64(s.h) * s.ratio)
}

// Dispose 释放画布引用。canvas 对象由 GC 回收，这里只断开引用以便
// 尽早释放大块位图。
func (s *surface) Dispose() {
	s.c = nil
	s.ctx = nil
}

// toCanvasColor 把非预乘的 style.Color 转为 canvas 颜色，alpha 额外乘
// mul。渐变停靠点要求具体的 color.RGBA。
func toCanvasColor(c style.Color, mul float64) color.RGBA {
	a := c.A * mul
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	return canvas.RGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, a)
}
