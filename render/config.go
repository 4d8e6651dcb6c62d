package render

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/ByLCY/kinetext/anim"
	"github.com/ByLCY/kinetext/cache"
	"github.com/ByLCY/kinetext/layout"
	"github.com/ByLCY/kinetext/style"
)

// RenderConfig 是渲染调用的唯一配置面，按值传入且在调用期间不可变。
// 零值字段在 withDefaults 中得到可用默认。
type RenderConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	FontWeight int     `json:"fontWeight"`
	FontStyle  string  `json:"fontStyle"`

	Color           string  `json:"color"`
	Opacity         float64 `json:"opacity"`
	BackgroundColor string  `json:"backgroundColor"`
	BorderRadius    float64 `json:"borderRadius"`

	TextAlign     string  `json:"textAlign"`
	TextBaseline  string  `json:"textBaseline"`
	LetterSpacing float64 `json:"letterSpacing"`
	LineHeight    float64 `json:"lineHeight"`

	TextTransform  string `json:"textTransform"`
	TextDecoration string `json:"textDecoration"`

	Gradient *style.Gradient `json:"gradient,omitempty"`
	Shadow   *style.Shadow   `json:"shadow,omitempty"`
	Stroke   *style.Stroke   `json:"stroke,omitempty"`

	Duration  float64 `json:"duration"`
	FPS       float64 `json:"fps"`
	Direction string  `json:"direction,omitempty"`

	Animation *AnimationSpec `json:"animation,omitempty"`

	PixelRatio float64 `json:"pixelRatio"`

	// Data 非空时，文本先经 binding.Interpolate 做 ${path} 占位符替换。
	Data any `json:"-"`
}

// AnimationSpec 描述动画预设及其调节参数。
type AnimationSpec struct {
	Preset    string  `json:"preset"`
	Speed     float64 `json:"speed"`
	Style     string  `json:"style"` // character | word
	Direction string  `json:"direction"`
}

// withDefaults 填充零值字段的默认语义。
func (c RenderConfig) withDefaults() RenderConfig {
	if c.Width <= 0 {
		c.Width = 640
	}
	if c.Height <= 0 {
		c.Height = 360
	}
	if c.FontSize <= 0 {
		c.FontSize = 48
	}
	if c.FontWeight <= 0 {
		c.FontWeight = 400
	}
	if c.Color == "" {
		c.Color = "#000000"
	}
	if c.Opacity <= 0 || c.Opacity > 1 {
		c.Opacity = 1
	}
	if c.Duration <= 0 {
		c.Duration = 1
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.PixelRatio <= 0 {
		c.PixelRatio = 1
	}
	return c
}

// layoutOptions 把配置翻译为布局参数。
func (c RenderConfig) layoutOptions(face layout.Measurer) layout.Options {
	return layout.Options{
		Face:          face,
		FontSize:      c.FontSize,
		Align:         layout.Align(c.TextAlign),
		Baseline:      layout.Baseline(c.TextBaseline),
		LetterSpacing: c.LetterSpacing,
		LineHeight:    c.LineHeight,
	}
}

// textStyle 把配置翻译为样式参数。
func (c RenderConfig) textStyle() style.TextStyle {
	return style.TextStyle{
		Color:      c.Color,
		Gradient:   c.Gradient,
		Opacity:    c.Opacity,
		Shadow:     c.Shadow,
		Stroke:     c.Stroke,
		Decoration: style.Decoration(c.TextDecoration),
	}
}

// animOptions 把配置翻译为补间时间表参数。
func (c RenderConfig) animOptions() anim.Options {
	opts := anim.Options{
		Preset:    anim.FadeIn,
		Speed:     1,
		Direction: anim.Direction(c.Direction),
		Duration:  c.Duration,
		FPS:       c.FPS,
		Width:     float64(c.Width),
		Height:    float64(c.Height),
	}
	if a := c.Animation; a != nil {
		if a.Preset != "" {
			opts.Preset = anim.Preset(a.Preset)
		}
		if a.Speed > 0 {
			opts.Speed = a.Speed
		}
		opts.Granularity = anim.Granularity(a.Style)
		if a.Direction != "" {
			opts.Direction = anim.Direction(a.Direction)
		}
	}
	return opts
}

// cacheKey 对（文本、预设与影响渲染的配置子集）计算稳定摘要；
// 语义相同的输入总是得到相同的键。
func (c RenderConfig) cacheKey(text string) string {
	preset, animStyle := "", ""
	if c.Animation != nil {
		preset = c.Animation.Preset
		animStyle = c.Animation.Style
	}
	return cache.Digest(
		text,
		preset,
		strconv.Itoa(c.Width),
		strconv.Itoa(c.Height),
		strconv.FormatFloat(c.FontSize, 'g', -1, 64),
		c.FontFamily,
		strconv.Itoa(c.FontWeight),
		c.Color,
		strconv.FormatFloat(c.Duration, 'g', -1, 64),
		strconv.FormatFloat(c.FPS, 'g', -1, 64),
		c.Direction,
		animStyle,
	)
}

// applyTransform 实现 textTransform：uppercase / lowercase / capitalize。
func applyTransform(text, transform string) string {
	switch strings.ToLower(transform) {
	case "uppercase":
		return strings.ToUpper(text)
	case "lowercase":
		return strings.ToLower(text)
	case "capitalize":
		prevLetter := false
		return strings.Map(func(r rune) rune {
			out := r
			if !prevLetter && unicode.IsLetter(r) {
				out = unicode.ToUpper(r)
			}
			prevLetter = unicode.IsLetter(r) || unicode.IsDigit(r)
			return out
		}, text)
	default:
		return text
	}
}
