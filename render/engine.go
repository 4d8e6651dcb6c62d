package render

import (
	"fmt"
	"time"

	"github.com/ByLCY/kinetext/anim"
	"github.com/ByLCY/kinetext/binding"
	"github.com/ByLCY/kinetext/cache"
	"github.com/ByLCY/kinetext/layout"
	"github.com/ByLCY/kinetext/style"
)

// Engine 是渲染核心的服务对象：由调用方显式构造、使用并关闭，
// 持有字体系统（经 Backend）与帧缓存。单次调用同步完成；
// 表面等原生资源在调用内申请并在所有退出路径上释放。

// 不透明度低于该阈值的单元不绘制。
const minVisibleOpacity = 0.01

// Engine 渲染静态文本图与动画帧序列。
type Engine struct {
	backend Backend
	frames  *cache.Cache[cachedAnimation]
	closed  bool
}

// cachedAnimation 缓存帧序列及其物理像素尺寸，命中时无需重建表面。
type cachedAnimation struct {
	frames []AnimationFrame
	width  int
	height int
}

// NewEngine 创建引擎。backend 为 nil 时引擎不可用，任何渲染调用
// 都会得到 ErrNotInitialized。
func NewEngine(backend Backend) *Engine {
	return &Engine{
		backend: backend,
		frames:  cache.New(cache.DefaultMaxBytes, animationBytes),
	}
}

// animationBytes 统计一段缓存帧序列占用的字节数。
func animationBytes(a cachedAnimation) int {
	total := 0
	for _, f := range a.frames {
		total += len(f.Pixels)
	}
	return total
}

// Close 关闭引擎并清空帧缓存。关闭后的渲染调用返回 ErrNotInitialized。
func (e *Engine) Close() error {
	e.closed = true
	e.frames.Clear()
	return nil
}

// SetCacheMaxSize 调整帧缓存的字节预算。
func (e *Engine) SetCacheMaxSize(maxBytes int) { e.frames.SetMaxSize(maxBytes) }

// CacheStats 返回帧缓存统计。
func (e *Engine) CacheStats() cache.Stats { return e.frames.Stats() }

// ClearCache 清空帧缓存。
func (e *Engine) ClearCache() { e.frames.Clear() }

func (e *Engine) ready() error {
	if e.backend == nil || e.closed {
		return ErrNotInitialized
	}
	return nil
}

// prepareText 依次完成占位符插值与大小写变换。
func prepareText(text string, cfg RenderConfig) string {
	text = binding.Interpolate(text, cfg.Data)
	return applyTransform(text, cfg.TextTransform)
}

// Render 渲染一张静态文本图，返回 RGBA 像素与元信息。
func (e *Engine) Render(text string, cfg RenderConfig) (*RenderResult, error) {
	start := time.Now()
	if err := e.ready(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	text = prepareText(text, cfg)

	face, err := e.resolveFace(cfg, 1)
	if err != nil {
		return nil, err
	}

	surface, err := e.backend.NewSurface(cfg.Width, cfg.Height, cfg.PixelRatio)
	if err != nil {
		return nil, fmt.Errorf("render: 创建表面失败: %w", err)
	}
	defer surface.Dispose()

	pixels, attempts, err := e.rasterizeWithRetry(surface, text, face, cfg)
	if err != nil {
		return nil, err
	}

	pw, ph := surface.Size()
	return &RenderResult{
		Kind:  KindImage,
		Image: pixels,
		Metadata: Metadata{
			Width:            pw,
			Height:           ph,
			GenerationTimeMs: float64(time.Since(start).Microseconds()) / 1000,
			Attempts:         attempts,
		},
	}, nil
}

// rasterizeWithRetry 实现空栅格重试链：正常样式 → 兜底字体族 →
// 无样式的纯色兜底绘制。每一步都检查 alpha 通道是否有内容。
func (e *Engine) rasterizeWithRetry(surface Surface, text string, face Face, cfg RenderConfig) ([]byte, int, error) {
	e.drawStatic(surface, text, face, cfg, false)
	pixels, err := surface.ReadPixels()
	if err != nil {
		return nil, 1, fmt.Errorf("render: 回读像素失败: %w", err)
	}
	if text == "" || hasInk(pixels) {
		return pixels, 1, nil
	}

	// 第一次重试：兜底字体族
	if fallback, fbErr := e.backend.Fonts().ResolveFallback(cfg.FontSize); fbErr == nil {
		e.drawStatic(surface, text, fallback, cfg, false)
		if pixels, err = surface.ReadPixels(); err != nil {
			return nil, 2, fmt.Errorf("render: 回读像素失败: %w", err)
		}
		if hasInk(pixels) {
			return pixels, 2, nil
		}
		face = fallback
	}

	// 第二次重试：跳过全部样式通道的简化绘制
	e.drawStatic(surface, text, face, cfg, true)
	if pixels, err = surface.ReadPixels(); err != nil {
		return nil, 3, fmt.Errorf("render: 回读像素失败: %w", err)
	}
	return pixels, 3, nil
}

// hasInk 检查 RGBA 缓冲的 alpha 通道是否有任何非零内容。
func hasInk(pixels []byte) bool {
	for i := 3; i < len(pixels); i += 4 {
		if pixels[i] != 0 {
			return true
		}
	}
	return false
}

// layoutText 折行并定位文本。
func layoutText(text string, cfg RenderConfig, face Face) []layout.Line {
	opts := cfg.layoutOptions(face)
	maxWidth := float64(cfg.Width)
	var lines []layout.Line
	if layout.NeedsWrap(text, maxWidth, opts) {
		lines = layout.ProcessText(text, maxWidth, opts)
	} else {
		lines = []layout.Line{{Text: text, Width: layout.MeasureWithSpacing(text, opts)}}
	}
	return layout.PlaceLines(lines, float64(cfg.Width), float64(cfg.Height), opts)
}

// drawStatic 执行一次完整的静态绘制。plain 为 true 时只做纯色填充，
// 跳过阴影、描边、渐变与装饰线（空栅格重试链的最后一步）。
func (e *Engine) drawStatic(surface Surface, text string, face Face, cfg RenderConfig, plain bool) {
	surface.Clear(style.ParseColor(cfg.BackgroundColor), cfg.BorderRadius)

	lines := layoutText(text, cfg, face)
	opts := cfg.layoutOptions(face)
	bounds := layout.Bounds(lines, opts)
	ts := cfg.textStyle()
	if plain {
		ts = style.TextStyle{Color: cfg.Color, Opacity: cfg.Opacity}
	}

	if ts.Shadow != nil {
		paint := style.ShadowPaint(*ts.Shadow, ts)
		offsets := style.ShadowOffsets(ts.Shadow.Blur)
		weight := 1.0 / float64(len(offsets))
		for _, ln := range lines {
			for _, off := range offsets {
				e.drawLineText(surface, ln, ts.Shadow.OffsetX+off[0], ts.Shadow.OffsetY+off[1], face, paint, weight, cfg)
			}
		}
	}
	if ts.Stroke != nil {
		paint := style.StrokePaint(*ts.Stroke, ts)
		for _, ln := range lines {
			surface.DrawTextOutline(ln.X, ln.Y, ln.Text, face, paint, ts.Stroke.Width, 1)
		}
	}

	fill := style.FillPaint(ts, bounds)
	for _, ln := range lines {
		e.drawLineText(surface, ln, 0, 0, face, fill, 1, cfg)
		if x1, y1, x2, y2, thickness, ok := style.DecorationLine(ts.Decoration, ln.X, ln.Y, ln.Width, cfg.FontSize); ok {
			surface.DrawLine(x1, y1, x2, y2, thickness, fill, 1)
		}
	}
}

// drawLineText 绘制一行文本。letterSpacing 非零时按字符单元逐个绘制，
// 否则整行一次绘制。
func (e *Engine) drawLineText(surface Surface, ln layout.Line, dx, dy float64, face Face, paint style.Paint, alpha float64, cfg RenderConfig) {
	if cfg.LetterSpacing == 0 {
		surface.DrawText(ln.X+dx, ln.Y+dy, ln.Text, face, paint, alpha)
		return
	}
	for _, u := range layout.CharacterUnits(ln, cfg.layoutOptions(face)) {
		surface.DrawText(u.X+dx, u.Y+dy, u.Text, face, paint, alpha)
	}
}

// RenderAnimation 把动画预设烘焙为确定的离散帧序列；相同的
// (text, config) 输入总是产出相同的帧（缓存命中时直接复用）。
func (e *Engine) RenderAnimation(text string, cfg RenderConfig) (*RenderResult, error) {
	start := time.Now()
	if err := e.ready(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	text = prepareText(text, cfg)

	key := cfg.cacheKey(text)
	frameCount := anim.FrameCount(cfg.Duration, cfg.FPS)
	if hit, ok := e.frames.Get(key); ok {
		return e.animationResult(hit, cfg, start), nil
	}

	face, err := e.resolveFace(cfg, 1)
	if err != nil {
		return nil, err
	}

	surface, err := e.backend.NewSurface(cfg.Width, cfg.Height, cfg.PixelRatio)
	if err != nil {
		return nil, fmt.Errorf("render: 创建表面失败: %w", err)
	}
	defer surface.Dispose()

	lines := layoutText(text, cfg, face)
	opts := cfg.layoutOptions(face)
	bounds := layout.Bounds(lines, opts)
	animOpts := cfg.animOptions()

	var units []layout.Unit
	for _, ln := range lines {
		switch animOpts.EffectiveGranularity() {
		case anim.ByWord:
			units = append(units, layout.WordUnits(ln, opts)...)
		default:
			units = append(units, layout.CharacterUnits(ln, opts)...)
		}
	}
	schedule := anim.BuildSchedule(units, bounds, animOpts)

	ts := cfg.textStyle()
	fill := style.FillPaint(ts, bounds)

	frames := make([]AnimationFrame, frameCount)
	for f := 0; f < frameCount; f++ {
		progress := 1.0
		if frameCount > 1 {
			progress = float64(f) / float64(frameCount-1)
		}
		surface.Clear(style.ParseColor(cfg.BackgroundColor), cfg.BorderRadius)
		e.drawFrame(surface, schedule, progress, face, fill, ts, cfg)
		pixels, rdErr := surface.ReadPixels()
		if rdErr != nil {
			return nil, fmt.Errorf("render: 第 %d 帧回读失败: %w", f, rdErr)
		}
		frames[f] = AnimationFrame{
			FrameNumber: f,
			Timestamp:   anim.Timestamp(f, frameCount, cfg.Duration),
			Pixels:      pixels,
		}
	}

	pw, ph := surface.Size()
	baked := cachedAnimation{frames: frames, width: pw, height: ph}
	e.frames.Set(key, baked)
	return e.animationResult(baked, cfg, start), nil
}

// drawFrame 按采样到的单元状态绘制一帧。通道顺序与静态路径一致：
// 阴影先于描边与填充合成，装饰线按单元宽度跟随单元位置。
func (e *Engine) drawFrame(surface Surface, schedule *anim.Schedule, progress float64, face Face, fill style.Paint, ts style.TextStyle, cfg RenderConfig) {
	states := schedule.UnitStates(progress)

	if ts.Shadow != nil {
		paint := style.ShadowPaint(*ts.Shadow, ts)
		offsets := style.ShadowOffsets(ts.Shadow.Blur)
		weight := 1.0 / float64(len(offsets))
		for _, st := range states {
			if st.Opacity <= minVisibleOpacity {
				continue
			}
			for _, off := range offsets {
				surface.DrawText(st.X+ts.Shadow.OffsetX+off[0], st.Y+ts.Shadow.OffsetY+off[1], st.Text, face, paint, weight*st.Opacity)
			}
		}
	}

	for _, st := range states {
		if st.Opacity <= minVisibleOpacity {
			continue
		}
		unitFace := face
		if st.Scale != 1 {
			if scaled, err := e.resolveFace(cfg, st.Scale); err == nil {
				unitFace = scaled
			}
		}
		if ts.Stroke != nil {
			paint := style.StrokePaint(*ts.Stroke, ts)
			surface.DrawTextOutline(st.X, st.Y, st.Text, unitFace, paint, ts.Stroke.Width, st.Opacity)
		}
		surface.DrawText(st.X, st.Y, st.Text, unitFace, fill, st.Opacity)
		unitWidth := layout.MeasureWithSpacing(st.Text, cfg.layoutOptions(unitFace))
		if x1, y1, x2, y2, thickness, ok := style.DecorationLine(ts.Decoration, st.X, st.Y, unitWidth, cfg.FontSize); ok {
			surface.DrawLine(x1, y1, x2, y2, thickness, fill, st.Opacity)
		}
	}
	if cursor, ok := schedule.Cursor(progress); ok && cursor.Visible {
		surface.DrawText(cursor.X, cursor.Y, "|", face, fill, 1)
	}
}

// animationResult 组装动画结果。宽高取自表面的物理像素尺寸，与帧缓冲
// 长度严格对应（小数 pixelRatio 下不做独立换算）。
func (e *Engine) animationResult(baked cachedAnimation, cfg RenderConfig, start time.Time) *RenderResult {
	return &RenderResult{
		Kind:   KindAnimation,
		Frames: baked.frames,
		Metadata: Metadata{
			Width:            baked.width,
			Height:           baked.height,
			Duration:         cfg.Duration,
			FrameCount:       len(baked.frames),
			FPS:              cfg.FPS,
			GenerationTimeMs: float64(time.Since(start).Microseconds()) / 1000,
		},
	}
}

// resolveFace 解析字体面；常规族解析失败时退至兜底族，两者都失败才报错。
func (e *Engine) resolveFace(cfg RenderConfig, scale float64) (Face, error) {
	fonts := e.backend.Fonts()
	size := cfg.FontSize * scale
	face, err := fonts.Resolve(cfg.FontFamily, cfg.FontWeight, cfg.FontStyle, size)
	if err == nil {
		return face, nil
	}
	fallback, fbErr := fonts.ResolveFallback(size)
	if fbErr != nil {
		return nil, fmt.Errorf("render: 解析字体 %q 失败（兜底也不可用: %v）: %w", cfg.FontFamily, fbErr, err)
	}
	return fallback, nil
}
