package style

import (
	"fmt"
	"math"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// 颜色字符串解析：支持 #RRGGBB / #RRGGBBAA 与 rgb() / rgba() 两类写法。
// 任何无法识别的输入都退化为不透明黑色，而不是返回错误。

var (
	colorLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Hex", Pattern: `#[0-9A-Fa-f]+`},
		{Name: "Number", Pattern: `\d+(?:\.\d+)?`},
		{Name: "Ident", Pattern: `[A-Za-z]+`},
		{Name: "Symbol", Pattern: `[(),]`},
	})

	colorParser = participle.MustBuild[colorExpr](
		participle.Lexer(colorLexer),
		participle.Elide("Whitespace"),
	)
)

// colorExpr 是颜色表达式的根节点：十六进制或函数式写法。
type colorExpr struct {
	Hex  string    `parser:"  @Hex"`
	Func *funcExpr `parser:"| @@"`
}

// funcExpr 对应 rgb(...) / rgba(...)。
type funcExpr struct {
	Name string    `parser:"@Ident"`
	Args []float64 `parser:"'(' @Number ( ',' @Number )* ')'"`
}

// Color 为非预乘颜色：RGB 取 0–255，A 取 [0,1]。
type Color struct {
	R uint8   `json:"r"`
	G uint8   `json:"g"`
	B uint8   `json:"b"`
	A float64 `json:"a"`
}

// Black 是所有解析失败路径的兜底颜色。
var Black = Color{A: 1}

// WithAlpha 返回 alpha 乘以 mul 后的颜色，结果限制在 [0,1]。
func (c Color) WithAlpha(mul float64) Color {
	a := c.A * mul
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	c.A = a
	return c
}

// ParseColor 解析颜色字符串；无法识别时返回不透明黑色。
func ParseColor(s string) Color {
	c, err := parseColor(s)
	if err != nil {
		return Black
	}
	return c
}

func parseColor(s string) (Color, error) {
	expr, err := colorParser.ParseString("", s)
	if err != nil {
		return Black, fmt.Errorf("解析颜色 %q 失败: %w", s, err)
	}
	switch {
	case expr.Hex != "":
		return parseHex(expr.Hex)
	case expr.Func != nil:
		return parseFunc(expr.Func)
	default:
		return Black, fmt.Errorf("颜色 %q 为空表达式", s)
	}
}

func parseHex(hex string) (Color, error) {
	digits := hex[1:]
	if len(digits) != 6 && len(digits) != 8 {
		return Black, fmt.Errorf("十六进制颜色 %q 长度无效", hex)
	}
	v, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return Black, fmt.Errorf("十六进制颜色 %q 无法解析: %w", hex, err)
	}
	if len(digits) == 6 {
		return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 1}, nil
	}
	return Color{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: float64(uint8(v)) / 255,
	}, nil
}

func parseFunc(fn *funcExpr) (Color, error) {
	switch fn.Name {
	case "rgb":
		if len(fn.Args) != 3 {
			return Black, fmt.Errorf("rgb() 需要 3 个分量，实际 %d 个", len(fn.Args))
		}
	case "rgba":
		if len(fn.Args) != 4 {
			return Black, fmt.Errorf("rgba() 需要 4 个分量，实际 %d 个", len(fn.Args))
		}
	default:
		return Black, fmt.Errorf("未知颜色函数 %q", fn.Name)
	}
	c := Color{
		R: clampChannel(fn.Args[0]),
		G: clampChannel(fn.Args[1]),
		B: clampChannel(fn.Args[2]),
		A: 1,
	}
	if len(fn.Args) == 4 {
		c.A = clamp01(fn.Args[3])
	}
	return c, nil
}

func clampChannel(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
