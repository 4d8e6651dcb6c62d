package style

import (
	"math"
	"testing"

	"github.com/ByLCY/kinetext/layout"
)

func TestParseColorHex(t *testing.T) {
	c := ParseColor("#ff8000")
	if c.R != 255 || c.G != 128 || c.B != 0 || c.A != 1 {
		t.Fatalf("#ff8000 解析错误: %+v", c)
	}
	c = ParseColor("#ff800080")
	if c.R != 255 || c.G != 128 || c.B != 0 || math.Abs(c.A-128.0/255) > 1e-9 {
		t.Fatalf("#ff800080 解析错误: %+v", c)
	}
}

func TestParseColorFunc(t *testing.T) {
	c := ParseColor("rgb(12, 34, 56)")
	if c.R != 12 || c.G != 34 || c.B != 56 || c.A != 1 {
		t.Fatalf("rgb() 解析错误: %+v", c)
	}
	c = ParseColor("rgba(12,34,56,0.5)")
	if c.R != 12 || c.A != 0.5 {
		t.Fatalf("rgba() 解析错误: %+v", c)
	}
}

// TestParseColorEquivalence 验证同一颜色的两种写法归一到相同 RGBA。
func TestParseColorEquivalence(t *testing.T) {
	if ParseColor("#ff0000") != ParseColor("rgba(255, 0, 0, 1)") {
		t.Fatalf("#ff0000 与 rgba(255,0,0,1) 应等价")
	}
}

func TestParseColorFallbackToBlack(t *testing.T) {
	for _, s := range []string{"", "papayawhip", "#12", "rgb(1,2)", "hsl(1,2,3)", "rgba(1,2,3,4,5)"} {
		if c := ParseColor(s); c != Black {
			t.Fatalf("无法识别的颜色 %q 应退化为黑色，实际 %+v", s, c)
		}
	}
}

func TestNormalizeStopsSingleExpands(t *testing.T) {
	red := Color{R: 255, A: 1}
	stops := NormalizeStops([]Stop{{Offset: 0.3, Color: red}})
	if len(stops) != 2 {
		t.Fatalf("单一 stop 应扩展为 2 个，实际 %d", len(stops))
	}
	if stops[1].Offset != 1 || stops[1].Color != red {
		t.Fatalf("扩展 stop 应位于 offset=1 且颜色相同: %+v", stops[1])
	}
}

func TestNormalizeStopsSortAndClamp(t *testing.T) {
	stops := NormalizeStops([]Stop{
		{Offset: 1.5, Color: Color{R: 1, A: 1}},
		{Offset: -0.2, Color: Color{R: 2, A: 1}},
		{Offset: 0.4, Color: Color{R: 3, A: 1}},
	})
	last := -1.0
	for i, s := range stops {
		if s.Offset < 0 || s.Offset > 1 {
			t.Fatalf("stop %d 偏移越界: %g", i, s.Offset)
		}
		if s.Offset < last {
			t.Fatalf("stop 未按升序排序: %v", stops)
		}
		last = s.Offset
	}
}

func TestNormalizeStopsEmpty(t *testing.T) {
	stops := NormalizeStops(nil)
	if len(stops) != 2 || stops[0].Color != Black {
		t.Fatalf("空 stop 列表应退化为黑色双 stop: %+v", stops)
	}
}

func TestLinearGradientEndpoints(t *testing.T) {
	g := Gradient{Kind: GradientLinear, Angle: 0, Stops: []Stop{{Offset: 0, Color: Black}}}
	b := layout.Rect{X: 0, Y: 0, W: 200, H: 100}
	p := g.Linear(b)
	// 0°：水平轴，半长 = max(200,100)/2 = 100
	if math.Abs(p.X0-0) > 1e-9 || math.Abs(p.Y0-50) > 1e-9 {
		t.Fatalf("起点期望 (0,50)，实际 (%g,%g)", p.X0, p.Y0)
	}
	if math.Abs(p.X1-200) > 1e-9 || math.Abs(p.Y1-50) > 1e-9 {
		t.Fatalf("终点期望 (200,50)，实际 (%g,%g)", p.X1, p.Y1)
	}
	if len(p.Stops) != 2 {
		t.Fatalf("参数中的 stop 应已归一: %+v", p.Stops)
	}

	// 90°：垂直轴
	g.Angle = 90
	p = g.Linear(b)
	if math.Abs(p.X0-100) > 1e-6 || math.Abs(p.Y0-(-50)) > 1e-6 {
		t.Fatalf("90° 起点期望 (100,-50)，实际 (%g,%g)", p.X0, p.Y0)
	}
}

func TestRadialGradientParams(t *testing.T) {
	g := Gradient{Kind: GradientRadial}
	p := g.Radial(layout.Rect{X: 10, Y: 20, W: 80, H: 40})
	if p.CX != 50 || p.CY != 40 {
		t.Fatalf("径向中心期望 (50,40)，实际 (%g,%g)", p.CX, p.CY)
	}
	if p.Radius != 20 {
		t.Fatalf("径向半径期望 min(w,h)/2=20，实际 %g", p.Radius)
	}
}

func TestFillPaint(t *testing.T) {
	ts := TextStyle{Color: "#ff0000", Opacity: 0.5}
	p := FillPaint(ts, layout.Rect{})
	if p.Gradient != nil {
		t.Fatalf("未配置渐变时不应有渐变画刷")
	}
	if got := p.Effective(1).A; math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("全局不透明度应乘入 alpha: %g", got)
	}
	// 全局不透明度与单元 alpha 相乘而非覆盖
	if got := p.Effective(0.5).A; math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("单元 alpha 应参与乘法: %g", got)
	}

	ts.Gradient = &Gradient{Kind: GradientLinear, Stops: []Stop{{Offset: 0, Color: Black}}}
	p = FillPaint(ts, layout.Rect{W: 10, H: 10})
	if p.Gradient == nil {
		t.Fatalf("配置渐变且包围盒有效时应使用渐变画刷")
	}
}

func TestShadowAndStrokePaintAlpha(t *testing.T) {
	ts := TextStyle{Opacity: 0.5}
	sh := ShadowPaint(Shadow{Color: "#000000", Opacity: 0.6}, ts)
	if got := sh.Effective(1).A; math.Abs(got-0.3) > 1e-9 {
		t.Fatalf("阴影 alpha 应为 0.6×0.5=0.3，实际 %g", got)
	}
	st := StrokePaint(Stroke{Color: "#000000", Opacity: 0.4}, ts)
	if got := st.Effective(1).A; math.Abs(got-0.2) > 1e-9 {
		t.Fatalf("描边 alpha 应为 0.4×0.5=0.2，实际 %g", got)
	}
}

func TestDecorationLine(t *testing.T) {
	x1, y1, x2, _, _, ok := DecorationLine(DecorationUnderline, 10, 100, 80, 20)
	if !ok {
		t.Fatalf("underline 应返回几何")
	}
	if x1 != 10 || x2 != 90 {
		t.Fatalf("装饰线应覆盖文本宽度: %g..%g", x1, x2)
	}
	if math.Abs(y1-103) > 1e-9 {
		t.Fatalf("下划线 y 期望 100+0.15·20=103，实际 %g", y1)
	}

	_, y1, _, _, _, ok = DecorationLine(DecorationStrikethrough, 10, 100, 80, 20)
	if !ok || math.Abs(y1-94) > 1e-9 {
		t.Fatalf("删除线 y 期望 100−0.3·20=94，实际 %g", y1)
	}

	if _, _, _, _, _, ok := DecorationLine(DecorationNone, 0, 0, 0, 0); ok {
		t.Fatalf("none 应为 no-op")
	}
}

func TestShadowOffsets(t *testing.T) {
	if got := ShadowOffsets(0); len(got) != 1 {
		t.Fatalf("无模糊时应只有中心点: %v", got)
	}
	if got := ShadowOffsets(4); len(got) != 5 {
		t.Fatalf("模糊时应有 5 个采样点: %v", got)
	}
}
