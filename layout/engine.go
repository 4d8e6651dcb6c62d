package layout

import (
	"strings"
)

// 本包实现文本排版：贪心折行、多行定位、字符/单词单元布局与包围盒聚合。
// 所有坐标与宽度单位均为 px，y 轴向下，基线语义与渲染后端保持一致。

// heuristicGlyphWidth 是测量失败时按字符数估算宽度的系数。
const heuristicGlyphWidth = 0.6

// MeasureText 返回文本宽度。字体面缺失或返回非正值时退化为
// len(text)·fontSize·0.6 的估算，保证布局总能完成。
func MeasureText(text string, opts Options) float64 {
	if text == "" {
		return 0
	}
	if opts.Face != nil {
		if w := opts.Face.TextWidth(text); w > 0 {
			return w
		}
	}
	return float64(len([]rune(text))) * opts.FontSize * heuristicGlyphWidth
}

// MeasureWithSpacing 测量附加字符间距后的文本宽度：
// letterSpacing ≠ 0 时为逐字符推进之和加 (n−1)·letterSpacing，否则整体测量一次。
func MeasureWithSpacing(text string, opts Options) float64 {
	if opts.LetterSpacing == 0 {
		return MeasureText(text, opts)
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range runes {
		total += MeasureText(string(r), opts)
	}
	return total + float64(len(runes)-1)*opts.LetterSpacing
}

// NeedsWrap 判断文本是否需要折行：宽度超限或包含显式换行。
func NeedsWrap(text string, maxWidth float64, opts Options) bool {
	if strings.ContainsRune(text, '\n') {
		return true
	}
	return MeasureWithSpacing(text, opts) > maxWidth
}

// WrapText 对单个段落做贪心折行：单词依次累入候选行，加入某词会超宽且
// 候选行非空时先输出该行，再以该词开启新行。超宽的单个长词不再拆分。
// 始终返回至少一行。
func WrapText(text string, maxWidth float64, opts Options) []Line {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []Line{{Text: text, Width: MeasureWithSpacing(text, opts)}}
	}

	var lines []Line
	current := ""
	flush := func() {
		lines = append(lines, Line{Text: current, Width: MeasureWithSpacing(current, opts)})
		current = ""
	}
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current != "" && MeasureWithSpacing(candidate, opts) > maxWidth {
			flush()
			current = word
			continue
		}
		current = candidate
	}
	flush()
	return lines
}

// ProcessText 先按显式换行拆段（空段保留为一行空文本），再对每段独立折行，
// 段落顺序保持不变。
func ProcessText(text string, maxWidth float64, opts Options) []Line {
	paragraphs := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var lines []Line
	for _, p := range paragraphs {
		if p == "" {
			lines = append(lines, Line{})
			continue
		}
		lines = append(lines, WrapText(p, maxWidth, opts)...)
	}
	if len(lines) == 0 {
		lines = append(lines, Line{})
	}
	return lines
}

// faceMetrics 返回字体面纵向度量，缺失时按字号比例估算。
func faceMetrics(opts Options) Metrics {
	if opts.Face != nil {
		m := opts.Face.Metrics()
		if m.Ascent > 0 {
			return m
		}
	}
	return Metrics{
		Ascent:     opts.FontSize * 0.8,
		Descent:    opts.FontSize * 0.2,
		LineHeight: opts.FontSize * opts.lineHeightFactor(),
	}
}

// PlaceLines 计算每行的 x/y：
// x 由水平对齐决定（left=0，center=(W−w)/2，right=W−w）；
// 行距为 fontSize·lineHeight（默认 1.2）；首行基线由垂直锚定决定：
// top 为容器顶部加上升部，middle 将整块行居中于容器，bottom 将末行
// 下降部贴合容器底部。返回带坐标的新切片，入参不被修改。
func PlaceLines(lines []Line, containerW, containerH float64, opts Options) []Line {
	placed := make([]Line, len(lines))
	copy(placed, lines)

	metrics := faceMetrics(opts)
	lineH := opts.FontSize * opts.lineHeightFactor()
	n := len(placed)

	var firstBaseline float64
	switch opts.Baseline {
	case BaselineMiddle:
		blockH := float64(n) * lineH
		firstBaseline = (containerH-blockH)/2 + metrics.Ascent
	case BaselineBottom:
		lastBaseline := containerH - metrics.Descent
		firstBaseline = lastBaseline - float64(n-1)*lineH
	default: // top
		firstBaseline = metrics.Ascent
	}

	for i := range placed {
		switch opts.Align {
		case AlignCenter:
			placed[i].X = (containerW - placed[i].Width) / 2
		case AlignRight:
			placed[i].X = containerW - placed[i].Width
		default:
			placed[i].X = 0
		}
		placed[i].Y = firstBaseline + float64(i)*lineH
	}
	return placed
}

// CharacterUnits 将一行拆成字符单元，自行首起点从左到右排布；
// 每个单元宽度为测量推进加 letterSpacing。
func CharacterUnits(line Line, opts Options) []Unit {
	var units []Unit
	x := line.X
	for _, r := range line.Text {
		w := MeasureText(string(r), opts) + opts.LetterSpacing
		units = append(units, Unit{Text: string(r), X: x, Y: line.Y, Width: w})
		x += w
	}
	return units
}

// WordUnits 将一行拆成单词单元；单元宽度为测量推进，单元之间追加一个
// 测量空格宽度，行尾不追加。
func WordUnits(line Line, opts Options) []Unit {
	words := strings.Fields(line.Text)
	if len(words) == 0 {
		return nil
	}
	spaceW := MeasureText(" ", opts)
	units := make([]Unit, 0, len(words))
	x := line.X
	for i, word := range words {
		w := MeasureWithSpacing(word, opts)
		units = append(units, Unit{Text: word, X: x, Y: line.Y, Width: w})
		x += w
		if i < len(words)-1 {
			x += spaceW
		}
	}
	return units
}

// Bounds 聚合一组已定位行的包围盒，供动画变体居中或计算起始位置。
func Bounds(lines []Line, opts Options) Rect {
	if len(lines) == 0 {
		return Rect{}
	}
	metrics := faceMetrics(opts)
	minX, maxX := lines[0].X, lines[0].X+lines[0].Width
	minY := lines[0].Y - metrics.Ascent
	maxY := lines[0].Y + metrics.Descent
	for _, ln := range lines[1:] {
		if ln.X < minX {
			minX = ln.X
		}
		if ln.X+ln.Width > maxX {
			maxX = ln.X + ln.Width
		}
		if top := ln.Y - metrics.Ascent; top < minY {
			minY = top
		}
		if bottom := ln.Y + metrics.Descent; bottom > maxY {
			maxY = bottom
		}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
