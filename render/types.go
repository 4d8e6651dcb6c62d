package render

import (
	"errors"

	"github.com/ByLCY/kinetext/layout"
	"github.com/ByLCY/kinetext/style"
)

// 该文件定义渲染核心对外的接口与结果类型：字体提供方、离屏表面、
// 后端工厂，以及静态图与动画两种渲染结果。

// ErrNotInitialized 表示尚未挂接渲染后端（或引擎已关闭）就发起渲染。
// 这是致命的初始化错误，会在任何绘制开始前返回。
var ErrNotInitialized = errors.New("render: 渲染后端尚未初始化")

// Face 是一个已定尺寸的字体面句柄，至少要能支撑布局测量；
// 具体后端在绘制时断言回自己的实现。
type Face interface {
	layout.Measurer
}

// FontProvider 提供字体注册与解析。实现必须可多次解析同一字体面
//（内部自行缓存），并在常规解析失败时提供一个兜底字体面。
type FontProvider interface {
	// Register 注册一段字体字节数据到指定族名。
	Register(data []byte, family string) error
	// Resolve 按（族、字重、样式、字号）解析字体面。
	Resolve(family string, weight int, styleName string, size float64) (Face, error)
	// ResolveFallback 返回兜底族的字体面，用于空栅格重试。
	ResolveFallback(size float64) (Face, error)
}

// Surface 是一个离屏像素目标。坐标单位为 px，y 轴向下，文本按基线绘制。
// alpha 参数为单元动画不透明度，与画刷自身的 alpha 相乘。
type Surface interface {
	// Clear 清空表面并铺设背景（可带圆角）。
	Clear(bg style.Color, borderRadius float64)
	// DrawText 以 (x,y) 为基线起点填充一段文本。
	DrawText(x, y float64, text string, face Face, paint style.Paint, alpha float64)
	// DrawTextOutline 仅描边一段文本。
	DrawTextOutline(x, y float64, text string, face Face, paint style.Paint, width, alpha float64)
	// DrawLine 绘制一条线段（用于装饰线）。
	DrawLine(x1, y1, x2, y2, width float64, paint style.Paint, alpha float64)
	// ReadPixels 回读整个表面的 RGBA 像素（长度 = 宽·高·4，已含 pixelRatio）。
	ReadPixels() ([]byte, error)
	// Size 返回像素尺寸（已含 pixelRatio）。
	Size() (int, int)
	// Dispose 释放表面资源。所有退出路径都必须调用。
	Dispose()
}

// Backend 把字体系统与表面工厂绑在一起，由调用方显式构造并持有，
// 不做进程级单例。
type Backend interface {
	NewSurface(width, height int, pixelRatio float64) (Surface, error)
	Fonts() FontProvider
}

// AnimationFrame 是一帧已栅格化的动画输出。FrameNumber 自 0 严格递增。
type AnimationFrame struct {
	FrameNumber int     `json:"frameNumber"`
	Timestamp   float64 `json:"timestamp"`
	Pixels      []byte  `json:"-"`
}

// Metadata 汇总一次渲染的产出信息。
type Metadata struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	Duration         float64 `json:"duration,omitempty"`
	FrameCount       int     `json:"frameCount,omitempty"`
	FPS              float64 `json:"fps,omitempty"`
	GenerationTimeMs float64 `json:"generationTimeMs"`
	// Attempts 记录空栅格重试链实际走到第几步，便于诊断退化路径。
	Attempts int `json:"attempts,omitempty"`
}

// RenderResult 是渲染调用的返回值：静态图为一段 RGBA 像素，
// 动画为有序帧序列。
type RenderResult struct {
	Kind     ResultKind       `json:"kind"`
	Image    []byte           `json:"-"`
	Frames   []AnimationFrame `json:"-"`
	Metadata Metadata         `json:"metadata"`
}

// ResultKind 标记结果类别。
type ResultKind string

const (
	KindImage     ResultKind = "image"
	KindAnimation ResultKind = "animation"
)
