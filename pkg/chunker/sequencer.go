package chunker

import (
	"errors"
	"fmt"
)

// ErrInvalidWindow is returned when window is smaller than 1.
var ErrInvalidWindow = errors.New("window must be greater than 0")

// Span 是 buffer 中的一个只读视图 [Offset, Offset+Length)
// 它不持有数据，buffer 的生命周期必须长于 Span
type Span struct {
	Offset int
	Length int
}

// End 返回切块的结束偏移量 (不包含)
func (s Span) End() int { return s.Offset + s.Length }

// Bytes 返回 buf 中对应的子切片。
// 容量被截断到 End()，对返回值 append 不会覆盖后面的数据。
func (s Span) Bytes(buf []byte) []byte {
	return buf[s.Offset:s.End():s.End()]
}

// Sequencer 在一个 buffer 上逐块产出切块。
//
// 状态机只有两个状态：Scanning 和 Done。每次 Next 只扫描一次剩余的后缀，
// 不会提前计算后面的切块。Sequencer 不是并发安全的。
type Sequencer struct {
	buf    []byte
	window int
	cursor int
	done   bool
}

// NewSequencer 创建一个新的 Sequencer。window < 1 时返回 ErrInvalidWindow，
// 不会产出任何切块。
func NewSequencer(buf []byte, window int) (*Sequencer, error) {
	if err := validateWindow(window); err != nil {
		return nil, err
	}
	return &Sequencer{buf: buf, window: window}, nil
}

func validateWindow(window int) error {
	if window < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}
	return nil
}

// Next 返回下一个切块。第二个返回值为 false 表示已经结束 (Done)，
// 之后的调用都会返回 (Span{}, false)。
func (s *Sequencer) Next() (Span, bool) {
	if s.done {
		return Span{}, false
	}

	// 空输入：产出唯一的空切块 [0,0)
	// 下游 (ingester / manifest) 约定每个输入至少有一个切块
	if len(s.buf) == 0 {
		s.done = true
		return Span{}, true
	}

	rel := FindBoundary(s.buf[s.cursor:], s.window)
	span := Span{Offset: s.cursor, Length: rel}
	s.cursor += rel

	if s.cursor == len(s.buf) {
		s.done = true
	}
	return span, true
}

// Done 报告是否已经产出了最后一个切块
func (s *Sequencer) Done() bool { return s.done }

// Offset 返回当前游标的绝对位置
func (s *Sequencer) Offset() int { return s.cursor }

// Window 返回该 Sequencer 使用的窗口
func (s *Sequencer) Window() int { return s.window }

// Reset 回到初始状态，之后会重新产出完全相同的切块序列
func (s *Sequencer) Reset() {
	s.cursor = 0
	s.done = false
}
