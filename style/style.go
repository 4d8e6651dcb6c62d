package style

import (
	"github.com/ByLCY/kinetext/layout"
)

// 文本样式装配：把填充（纯色或渐变）、描边、阴影与装饰线归一成绘制参数。
// 本包只做计算，不直接绘制；Surface 后端按 Paint 内容构造具体画刷。

// TextStyle 汇总一次渲染中影响外观的样式字段。
type TextStyle struct {
	Color      string     // CSS 颜色字符串，解析失败退化为黑色
	Gradient   *Gradient  // 非空时优先于 Color
	Opacity    float64    // 全局不透明度，乘在已有 alpha 之上
	Shadow     *Shadow
	Stroke     *Stroke
	Decoration Decoration
}

// Shadow 描述文本阴影。
type Shadow struct {
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Opacity float64 `json:"opacity"`
}

// Stroke 描述文本描边。
type Stroke struct {
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
	Opacity float64 `json:"opacity"`
}

// Decoration 为装饰线类型。
type Decoration string

const (
	DecorationNone          Decoration = "none"
	DecorationUnderline     Decoration = "underline"
	DecorationStrikethrough Decoration = "line-through"
)

// Paint 是后端无关的画刷描述：Gradient 非空时为渐变填充（Bounds 用于
// 解析端点），否则为 Color 纯色。Opacity 为全局系数，在绘制时与每单元
// 的动画 alpha 相乘，不覆盖后者。
type Paint struct {
	Color    Color
	Gradient *Gradient
	Bounds   layout.Rect
	Opacity  float64
}

// Effective 返回叠加全局不透明度与单元 alpha 后的纯色。
func (p Paint) Effective(unitAlpha float64) Color {
	return p.Color.WithAlpha(p.Opacity * unitAlpha)
}

// FillPaint 装配填充画刷：配置了渐变且包围盒有效时使用渐变着色，
// 否则解析纯色；全局不透明度只做乘法。
func FillPaint(ts TextStyle, bounds layout.Rect) Paint {
	p := Paint{Opacity: normalOpacity(ts.Opacity)}
	if ts.Gradient != nil && bounds.W > 0 && bounds.H > 0 {
		p.Gradient = ts.Gradient
		p.Bounds = bounds
		p.Color = Black
		return p
	}
	p.Color = ParseColor(ts.Color)
	return p
}

// ShadowPaint 装配阴影画刷，独立于填充：alpha = 自身不透明度 × 全局不透明度。
func ShadowPaint(sh Shadow, ts TextStyle) Paint {
	c := ParseColor(sh.Color).WithAlpha(normalOpacity(sh.Opacity))
	return Paint{Color: c, Opacity: normalOpacity(ts.Opacity)}
}

// StrokePaint 装配描边画刷，规则同阴影。
func StrokePaint(st Stroke, ts TextStyle) Paint {
	c := ParseColor(st.Color).WithAlpha(normalOpacity(st.Opacity))
	return Paint{Color: c, Opacity: normalOpacity(ts.Opacity)}
}

// ShadowOffsets 返回阴影的采样偏移：blur <= 0 时只有中心一点；
// 否则以四个对角抖动近似模糊，每个采样点按 1/n 权重绘制。
func ShadowOffsets(blur float64) [][2]float64 {
	if blur <= 0 {
		return [][2]float64{{0, 0}}
	}
	r := blur / 2
	return [][2]float64{
		{0, 0},
		{-r, -r}, {r, -r},
		{-r, r}, {r, r},
	}
}

// DecorationLine 计算装饰线的几何：下划线位于基线下方 0.15·fontSize，
// 删除线位于基线上方 0.3·fontSize，长度为测量得到的文本宽度。
// Decoration 为 none 或空时返回 ok=false。
func DecorationLine(d Decoration, x, baseline, width, fontSize float64) (x1, y1, x2, y2, thickness float64, ok bool) {
	var y float64
	switch d {
	case DecorationUnderline:
		y = baseline + 0.15*fontSize
	case DecorationStrikethrough:
		y = baseline - 0.3*fontSize
	default:
		return 0, 0, 0, 0, 0, false
	}
	thickness = fontSize / 16
	if thickness < 1 {
		thickness = 1
	}
	return x, y, x + width, y, thickness, true
}

// normalOpacity 将不透明度归一到 (0,1]；未设置（0 或越界）取 1。
func normalOpacity(v float64) float64 {
	if v <= 0 || v > 1 {
		return 1
	}
	return v
}
