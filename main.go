package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/ByLCY/kinetext/layout"
	"github.com/ByLCY/kinetext/render"
	"github.com/ByLCY/kinetext/render/canvasbackend"
)

func main() {
	text := flag.String("text", "Hello Kinetext", "要渲染的文本")
	fontPath := flag.String("font", "", "TTF/OTF 字体文件路径（必填）")
	family := flag.String("family", "Body", "字体族名")
	output := flag.String("out", "output", "输出目录")
	size := flag.Float64("size", 48, "字号（px）")
	width := flag.Int("w", 640, "画布宽度（px）")
	height := flag.Int("h", 360, "画布高度（px）")
	colorStr := flag.String("color", "#000000", "文本颜色")
	preset := flag.String("preset", "", "动画预设（留空输出静态图）")
	duration := flag.Float64("duration", 1, "动画时长（秒）")
	fps := flag.Float64("fps", 30, "动画帧率")
	dataJSON := flag.String("data", "", "绑定到 ${path} 占位符的 JSON 数据")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	flag.Parse()

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	cfg := render.RenderConfig{
		Width:    *width,
		Height:   *height,
		FontSize: *size,
		Color:    *colorStr,
		Duration: *duration,
		FPS:      *fps,
		Data:     inputData,
	}
	cfg.FontFamily = *family
	if *preset != "" {
		cfg.Animation = &render.AnimationSpec{Preset: *preset}
	}

	if err := run(*text, *fontPath, *family, *output, *debug, cfg); err != nil {
		log.Fatalf("渲染失败: %v", err)
	}
	fmt.Printf("已输出到：%s\n", *output)
}

// run 串联字体注册、渲染与文件输出。
func run(text, fontPath, family, outputDir, debugPath string, cfg render.RenderConfig) error {
	if fontPath == "" {
		return fmt.Errorf("必须通过 -font 指定字体文件")
	}
	fontData, err := os.ReadFile(fontPath)
	if err != nil {
		return fmt.Errorf("读取字体 %s 失败: %w", fontPath, err)
	}

	backend := canvasbackend.New()
	if err := backend.Fonts().Register(fontData, family); err != nil {
		return fmt.Errorf("注册字体失败: %w", err)
	}

	engine := render.NewEngine(backend)
	defer engine.Close()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	if debugPath != "" {
		if err := writeDebug(backend, text, cfg, debugPath); err != nil {
			return err
		}
	}

	if cfg.Animation == nil {
		result, err := engine.Render(text, cfg)
		if err != nil {
			return fmt.Errorf("渲染静态图失败: %w", err)
		}
		path := filepath.Join(outputDir, "image.png")
		return writePNG(path, result.Image, result.Metadata.Width, result.Metadata.Height)
	}

	result, err := engine.RenderAnimation(text, cfg)
	if err != nil {
		return fmt.Errorf("渲染动画失败: %w", err)
	}
	for _, frame := range result.Frames {
		path := filepath.Join(outputDir, fmt.Sprintf("frame_%04d.png", frame.FrameNumber))
		if err := writePNG(path, frame.Pixels, result.Metadata.Width, result.Metadata.Height); err != nil {
			return err
		}
	}
	return nil
}

// writePNG 把 RGBA 字节编码为 PNG 文件。
func writePNG(path string, pixels []byte, width, height int) error {
	if len(pixels) != width*height*4 {
		return fmt.Errorf("像素长度 %d 与尺寸 %dx%d 不符", len(pixels), width, height)
	}
	img := &image.RGBA{
		Pix:    pixels,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建文件 %s 失败: %w", path, err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return nil
}

// writeDebug 重算一次布局并输出调试快照。
func writeDebug(backend render.Backend, text string, cfg render.RenderConfig, debugPath string) error {
	face, err := backend.Fonts().Resolve(cfg.FontFamily, cfg.FontWeight, cfg.FontStyle, cfg.FontSize)
	if err != nil {
		face, err = backend.Fonts().ResolveFallback(cfg.FontSize)
		if err != nil {
			return fmt.Errorf("解析调试字体失败: %w", err)
		}
	}
	opts := layout.Options{Face: face, FontSize: cfg.FontSize, LetterSpacing: cfg.LetterSpacing}
	lines := layout.ProcessText(text, float64(cfg.Width), opts)
	lines = layout.PlaceLines(lines, float64(cfg.Width), float64(cfg.Height), opts)
	var units []layout.Unit
	for _, ln := range lines {
		units = append(units, layout.CharacterUnits(ln, opts)...)
	}
	snap := &layout.Snapshot{
		Lines:  lines,
		Units:  units,
		Bounds: layout.Bounds(lines, opts),
	}
	if err := layout.WriteDebugJSON(snap, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
