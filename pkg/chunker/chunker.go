package chunker

// DefaultWindow 默认窗口 (单位: 字节)
// 随机数据上平均块大小约为 window + 几百字节
const DefaultWindow = 8 * 1024

// Chunker 是一个无状态的切分工具 (只保存窗口配置)
// 创建后不可变，可以被多个 goroutine 同时使用
type Chunker struct {
	window int
}

func NewChunker(window int) (*Chunker, error) {
	if err := validateWindow(window); err != nil {
		return nil, err
	}
	return &Chunker{window: window}, nil
}

func (c *Chunker) Window() int { return c.window }

// Sequencer 返回 data 上的一个惰性迭代器
func (c *Chunker) Sequencer(data []byte) *Sequencer {
	return &Sequencer{buf: data, window: c.window}
}

// Spans 返回 data 的完整切分结果
func (c *Chunker) Spans(data []byte) []Span {
	var spans []Span
	seq := c.Sequencer(data)
	for {
		span, ok := seq.Next()
		if !ok {
			return spans
		}
		spans = append(spans, span)
	}
}

// Cut 将数据切分成一系列的切点。
// 返回值:
//
//	[]int: 每个切块的结束 offset，最后一个总是 len(data)。
//	       空输入返回 [0] (一个空块)。
func (c *Chunker) Cut(data []byte) []int {
	spans := c.Spans(data)
	cutPoints := make([]int, len(spans))
	for i, s := range spans {
		cutPoints[i] = s.End()
	}
	return cutPoints
}

// Split 返回切块视图 (不拷贝数据)
func (c *Chunker) Split(data []byte) [][]byte {
	spans := c.Spans(data)
	chunks := make([][]byte, len(spans))
	for i, s := range spans {
		chunks[i] = s.Bytes(data)
	}
	return chunks
}

// Split 按给定窗口切分 buf。
// 返回的每个切片都指向 buf 本身，按顺序拼接即可还原 buf。
func Split(buf []byte, window int) ([][]byte, error) {
	c, err := NewChunker(window)
	if err != nil {
		return nil, err
	}
	return c.Split(buf), nil
}
