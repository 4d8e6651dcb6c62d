package canvasbackend

import (
	"testing"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/kinetext/layout"
	"github.com/ByLCY/kinetext/style"
)

func TestFontStyleFor(t *testing.T) {
	cases := []struct {
		weight int
		style  string
		want   canvas.FontStyle
	}{
		{0, "", canvas.FontRegular},
		{400, "", canvas.FontRegular},
		{300, "", canvas.FontLight},
		{500, "", canvas.FontMedium},
		{600, "", canvas.FontSemiBold},
		{700, "", canvas.FontBold},
		{800, "", canvas.FontExtraBold},
		{900, "", canvas.FontBlack},
		{400, "italic", canvas.FontRegular | canvas.FontItalic},
		{700, "oblique", canvas.FontBold | canvas.FontItalic},
	}
	for _, c := range cases {
		if got := fontStyleFor(c.weight, c.style); got != c.want {
			t.Fatalf("fontStyleFor(%d, %q) = %v，期望 %v", c.weight, c.style, got, c.want)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	p := newFontProvider()
	if err := p.Register([]byte{1, 2, 3}, ""); err == nil {
		t.Fatalf("空族名应当报错")
	}
	if err := p.Register(nil, "Body"); err == nil {
		t.Fatalf("空字体数据应当报错")
	}
	if err := p.Register([]byte{1, 2, 3}, "Body"); err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if p.fallback != "Body" {
		t.Fatalf("第一个注册的族应成为兜底族，实际 %q", p.fallback)
	}
}

func TestResolveUnknownFamily(t *testing.T) {
	p := newFontProvider()
	if err := p.Register([]byte{0xde, 0xad}, "Body"); err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if _, err := p.Resolve("NoSuch", 400, "", 16); err == nil {
		t.Fatalf("未注册的族应当报错")
	}
}

func TestResolveRejectsGarbageFontData(t *testing.T) {
	p := newFontProvider()
	if err := p.Register([]byte("not a font"), "Body"); err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	// 注册只存字节，解析推迟到首次解析字体面
	if _, err := p.Resolve("Body", 400, "", 16); err == nil {
		t.Fatalf("非法字体数据在解析时应当报错")
	}
}

func TestResolveFallbackWithoutFonts(t *testing.T) {
	p := newFontProvider()
	if _, err := p.ResolveFallback(16); err == nil {
		t.Fatalf("没有任何字体族时兜底解析应当报错")
	}
}

func TestNewSurfaceValidation(t *testing.T) {
	b := New()
	if _, err := b.NewSurface(0, 100, 1); err == nil {
		t.Fatalf("零宽表面应当报错")
	}
	if _, err := b.NewSurface(100, -1, 1); err == nil {
		t.Fatalf("负高表面应当报错")
	}
	s, err := b.NewSurface(100, 50, 0)
	if err != nil {
		t.Fatalf("创建表面失败: %v", err)
	}
	defer s.Dispose()
	w, h := s.Size()
	if w != 100 || h != 50 {
		t.Fatalf("pixelRatio<=0 时应按 1 处理，实际 %dx%d", w, h)
	}
}

func TestSurfaceSizeHonorsPixelRatio(t *testing.T) {
	b := New()
	s, err := b.NewSurface(100, 50, 2)
	if err != nil {
		t.Fatalf("创建表面失败: %v", err)
	}
	defer s.Dispose()
	w, h := s.Size()
	if w != 200 || h != 100 {
		t.Fatalf("物理尺寸错误: %dx%d", w, h)
	}
}

func TestReadPixelsBlankSurface(t *testing.T) {
	b := New()
	s, err := b.NewSurface(8, 4, 1)
	if err != nil {
		t.Fatalf("创建表面失败: %v", err)
	}
	defer s.Dispose()
	s.Clear(style.Color{R: 255, G: 0, B: 0, A: 1}, 0)
	pix, err := s.ReadPixels()
	if err != nil {
		t.Fatalf("读取像素失败: %v", err)
	}
	if len(pix) != 8*4*4 {
		t.Fatalf("像素长度错误: %d", len(pix))
	}
	opaque := false
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0 {
			opaque = true
			break
		}
	}
	if !opaque {
		t.Fatalf("铺设背景后应存在不透明像素")
	}
}

func TestReadPixelsTransparentBackground(t *testing.T) {
	b := New()
	s, err := b.NewSurface(4, 4, 1)
	if err != nil {
		t.Fatalf("创建表面失败: %v", err)
	}
	defer s.Dispose()
	s.Clear(style.Color{A: 0}, 0)
	pix, err := s.ReadPixels()
	if err != nil {
		t.Fatalf("读取像素失败: %v", err)
	}
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0 {
			t.Fatalf("透明背景不应产生不透明像素，偏移 %d 为 %d", i, pix[i])
		}
	}
}

func TestGradientFillPaint(t *testing.T) {
	b := New()
	s, err := b.NewSurface(100, 50, 1)
	if err != nil {
		t.Fatalf("创建表面失败: %v", err)
	}
	defer s.Dispose()
	s.Clear(style.Color{A: 0}, 0)

	bounds := layout.Rect{X: 10, Y: 10, W: 80, H: 30}
	stops := []style.Stop{
		{Offset: 0, Color: style.Color{R: 255, A: 1}},
		{Offset: 1, Color: style.Color{B: 255, A: 1}},
	}
	linear := style.Paint{
		Gradient: &style.Gradient{Kind: style.GradientLinear, Angle: 45, Stops: stops},
		Bounds:   bounds,
		Opacity:  1,
	}
	radial := style.Paint{
		Gradient: &style.Gradient{Kind: style.GradientRadial, Stops: stops},
		Bounds:   bounds,
		Opacity:  0.5,
	}
	// 渐变停靠点的颜色转换必须产出具体的 color.RGBA
	surf := s.(*surface)
	surf.applyFillPaint(linear, 1)
	surf.applyFillPaint(radial, 1)
	c := toCanvasColor(style.Color{R: 255, A: 1}, 0.5)
	if c.A == 0 || c.R == 0 {
		t.Fatalf("颜色转换结果异常: %+v", c)
	}
}

func TestBackendFontsShared(t *testing.T) {
	b := New()
	if b.Fonts() == nil {
		t.Fatalf("Fonts() 不应为 nil")
	}
	if b.Fonts() != b.Fonts() {
		t.Fatalf("Fonts() 应返回同一提供方")
	}
}
