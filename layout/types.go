package layout

// 该文件定义排版结果与字体度量接口，供布局计算、样式绘制与动画采样共用。

// Measurer 抽象一个已定尺寸的字体面：布局只依赖宽度测量与纵向度量，
// 具体实现由渲染后端（render/canvasbackend）或测试桩提供。
type Measurer interface {
	// TextWidth 返回文本在该字体面下的总推进宽度（px）。
	TextWidth(text string) float64
	// Metrics 返回字体面的纵向度量（px）。
	Metrics() Metrics
}

// Metrics 描述字体面的纵向度量。
type Metrics struct {
	Ascent     float64 `json:"ascent"`
	Descent    float64 `json:"descent"`
	LineHeight float64 `json:"lineHeight"`
}

// Line 表示排版后的一行文本及其位置与宽度（px）。
type Line struct {
	Text  string  `json:"text"`
	Width float64 `json:"width"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"` // 基线 y 坐标
}

// Unit 是动画的最小独立单元：一个字符或一个单词。
type Unit struct {
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"` // 基线 y 坐标
	Width float64 `json:"width"`
}

// Rect 表示一个轴对齐包围盒。
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Align 为文本水平对齐方式。
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Baseline 为文本块的垂直锚定方式。
type Baseline string

const (
	BaselineTop    Baseline = "top"
	BaselineMiddle Baseline = "middle"
	BaselineBottom Baseline = "bottom"
)

// Options 配置一次布局计算。除 Face 外所有字段均有零值可用的默认语义。
type Options struct {
	Face          Measurer
	FontSize      float64  // px，用于测量兜底与行高计算
	Align         Align    // 默认 left
	Baseline      Baseline // 默认 top
	LetterSpacing float64  // px，字符间附加间距
	LineHeight    float64  // 行高倍数，<=0 时取 1.2
}

// DefaultLineHeight 是未显式指定时的行高倍数。
const DefaultLineHeight = 1.2

func (o Options) lineHeightFactor() float64 {
	if o.LineHeight > 0 {
		return o.LineHeight
	}
	return DefaultLineHeight
}
