package anim

import (
	"math"

	"github.com/ByLCY/kinetext/layout"
)

// 动画引擎核心：把已定位的文本单元编成按单元错峰的补间时间表，
// 并在离散的 progress 采样点上求每个单元的瞬时状态。
// 所有状态都是 (unitIndex, progress) 的纯函数，不依赖真实时钟。

// Preset 枚举六种动画变体。
type Preset string

const (
	Typewriter    Preset = "typewriter"
	MovingLetters Preset = "movingLetters"
	Ascend        Preset = "ascend"
	Shift         Preset = "shift"
	FadeIn        Preset = "fadeIn"
	SlideIn       Preset = "slideIn"
)

// Granularity 为动画单元粒度。
type Granularity string

const (
	ByCharacter Granularity = "character"
	ByWord      Granularity = "word"
)

// Direction 为动画方向。
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// 各变体的位移常量（px）与时间表比例。
const (
	ascendOffset  = 50.0
	shiftOffset   = 30.0
	lettersOffset = 40.0

	// 错峰窗口：单元起点分布在时间表前 60%，每个单元占 40%。
	staggerSpread = 0.6
	unitWindow    = 0.4

	// 末端强制完成阈值：最后约 20% 的帧必须等于静态终局。
	settleProgress = 0.8

	// 打字机：显示比例走完全程的 90%，光标以固定节奏闪烁。
	typewriterSpan = 0.9
	cursorBlinkHz  = 2.0
)

// Options 配置一次动画补间。Duration 为配置时长（秒），Speed 压缩补间
// 时间表但不改变帧数与时间戳。Width/Height 为容器尺寸，slideIn 依赖
// 它们计算屏外起点。
type Options struct {
	Preset      Preset
	Speed       float64
	Granularity Granularity
	Direction   Direction
	Duration    float64
	FPS         float64
	Width       float64
	Height      float64
}

// EffectiveGranularity 返回生效的单元粒度：未显式指定时按变体默认
//（ascend 默认按词，其余按字符；整块变体不区分）。
func (o Options) EffectiveGranularity() Granularity {
	if o.Granularity == ByCharacter || o.Granularity == ByWord {
		return o.Granularity
	}
	if o.Preset == Ascend {
		return ByWord
	}
	return ByCharacter
}

func (o Options) speed() float64 {
	if o.Speed > 0 {
		return o.Speed
	}
	return 1
}

func (o Options) direction() Direction {
	switch o.Direction {
	case DirDown, DirLeft, DirRight:
		return o.Direction
	default:
		return DirUp
	}
}

// FrameCount 返回离散帧数 ceil(duration·fps)，至少为 1。
func FrameCount(duration, fps float64) int {
	n := int(math.Ceil(duration * fps))
	if n < 1 {
		return 1
	}
	return n
}

// Timestamp 返回第 i 帧的时间戳：(i/(count−1))·duration，单帧时为 0。
func Timestamp(i, count int, duration float64) float64 {
	if count <= 1 {
		return 0
	}
	return float64(i) / float64(count-1) * duration
}

// UnitState 是某个采样点上一个单元的瞬时状态。
type UnitState struct {
	Text     string
	X, Y     float64
	Opacity  float64
	Scale    float64
	Rotation float64
	FinalX   float64
	FinalY   float64
}

// Schedule 保存一次动画的补间时间表。
type Schedule struct {
	units   []layout.Unit
	bounds  layout.Rect
	opts    Options
	effSpan float64 // 补间占据时间表的比例 = min(1, 1/speed)
}

// BuildSchedule 依据变体为每个单元确定起始状态与动画窗口。
func BuildSchedule(units []layout.Unit, bounds layout.Rect, opts Options) *Schedule {
	span := 1.0 / opts.speed()
	if span > 1 {
		span = 1
	}
	return &Schedule{units: units, bounds: bounds, opts: opts, effSpan: span}
}

// Units 返回时间表覆盖的布局单元。
func (s *Schedule) Units() []layout.Unit { return s.units }

// UnitStates 在 progress ∈ [0,1] 处采样所有单元。progress 进入末端
// 强制完成区后，返回值恒等于静态终局，保证最后一帧与静态布局一致。
func (s *Schedule) UnitStates(progress float64) []UnitState {
	progress = clampT(progress)
	states := make([]UnitState, len(s.units))
	for i, u := range s.units {
		states[i] = s.unitState(i, u, progress)
	}
	return states
}

func (s *Schedule) unitState(index int, u layout.Unit, progress float64) UnitState {
	final := UnitState{
		Text: u.Text, X: u.X, Y: u.Y,
		Opacity: 1, Scale: 1,
		FinalX: u.X, FinalY: u.Y,
	}
	if progress >= settleProgress {
		return final
	}

	switch s.opts.Preset {
	case Typewriter:
		st := final
		if index >= s.revealedCount(progress) {
			st.Opacity = 0
		}
		return st
	case FadeIn, SlideIn:
		return s.blockState(final, progress)
	default:
		return s.staggerState(final, index, progress)
	}
}

// revealedCount 返回打字机在 progress 处已显示的单元数。
func (s *Schedule) revealedCount(progress float64) int {
	span := typewriterSpan * s.effSpan
	if progress >= span {
		return len(s.units)
	}
	n := int(math.Floor(progress / span * float64(len(s.units))))
	if n > len(s.units) {
		n = len(s.units)
	}
	return n
}

// staggerState 处理逐单元错峰的变体（movingLetters/ascend/shift）。
func (s *Schedule) staggerState(final UnitState, index int, progress float64) UnitState {
	n := len(s.units)
	start := 0.0
	if n > 1 {
		start = float64(index) / float64(n-1) * staggerSpread * s.effSpan
	}
	window := unitWindow * s.effSpan
	t := clampT((progress - start) / window)

	dx, dy := s.startOffset()
	eased := EaseOutCubic(t)
	if s.opts.Preset == MovingLetters {
		eased = EaseOutBack(t)
	}

	st := final
	st.X = final.FinalX + dx*(1-eased)
	st.Y = final.FinalY + dy*(1-eased)
	st.Opacity = t
	return st
}

// blockState 处理整块变体（fadeIn/slideIn），单一窗口覆盖全部补间时间。
func (s *Schedule) blockState(final UnitState, progress float64) UnitState {
	t := clampT(progress / s.effSpan)
	st := final
	switch s.opts.Preset {
	case FadeIn:
		eased := EaseInOutCosine(t)
		st.Opacity = eased
		st.Scale = 0.8 + 0.2*eased
		// 围绕文本块中心缩放
		cx := s.bounds.X + s.bounds.W/2
		cy := s.bounds.Y + s.bounds.H/2
		st.X = cx + (final.FinalX-cx)*st.Scale
		st.Y = cy + (final.FinalY-cy)*st.Scale
	case SlideIn:
		dx, dy := s.offscreenOffset()
		eased := EaseOutCubic(t)
		st.X = final.FinalX + dx*(1-eased)
		st.Y = final.FinalY + dy*(1-eased)
		st.Opacity = EaseInOutCosine(t)
	}
	return st
}

// startOffset 返回错峰变体的起始位移。
func (s *Schedule) startOffset() (dx, dy float64) {
	dir := s.opts.direction()
	switch s.opts.Preset {
	case MovingLetters:
		// 与方向垂直的固定幅度位移
		if dir == DirLeft || dir == DirRight {
			return 0, -lettersOffset
		}
		return lettersOffset, 0
	case Ascend:
		if dir == DirDown {
			return 0, -ascendOffset
		}
		return 0, ascendOffset
	case Shift:
		switch dir {
		case DirLeft:
			return shiftOffset, 0
		case DirRight:
			return -shiftOffset, 0
		case DirDown:
			return 0, -shiftOffset
		default:
			return 0, shiftOffset
		}
	}
	return 0, 0
}

// offscreenOffset 返回 slideIn 的屏外起始位移：文本块完全移出对应边。
func (s *Schedule) offscreenOffset() (dx, dy float64) {
	switch s.opts.direction() {
	case DirLeft:
		return -(s.bounds.X + s.bounds.W), 0
	case DirRight:
		return s.opts.Width - s.bounds.X, 0
	case DirDown:
		return 0, s.opts.Height - s.bounds.Y
	default: // up
		return 0, -(s.bounds.Y + s.bounds.H)
	}
}

// CursorState 描述打字机光标。
type CursorState struct {
	X, Y    float64
	Visible bool
}

// Cursor 返回打字机在 progress 处的光标状态；非打字机变体或进入
// 末端完成区后 ok 为 false（最终帧不出现光标）。
func (s *Schedule) Cursor(progress float64) (CursorState, bool) {
	if s.opts.Preset != Typewriter || len(s.units) == 0 {
		return CursorState{}, false
	}
	progress = clampT(progress)
	if progress >= typewriterSpan {
		return CursorState{}, false
	}
	revealed := s.revealedCount(progress)
	var cs CursorState
	if revealed == 0 {
		cs.X = s.units[0].X
		cs.Y = s.units[0].Y
	} else {
		last := s.units[revealed-1]
		cs.X = last.X + last.Width
		cs.Y = last.Y
	}
	phase := int(math.Floor(progress * s.opts.Duration * cursorBlinkHz * 2))
	cs.Visible = phase%2 == 0
	return cs, true
}
