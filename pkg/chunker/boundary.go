package chunker

// anchor 是一次扫描中的 "局部最大值"
// 每次 FindBoundary 调用都会重新初始化，调用返回即丢弃
type anchor struct {
	value    byte
	position int
}

// FindBoundary 返回 data 中下一个切点的偏移量。
// 如果在末尾之前没有切点，返回 len(data)；空切片返回 0。
//
// 规则：切点出现在最近一次 **严格** 局部最大值之后的 window+1 处，
// 且期间没有出现更大的字节。与最大值相等的字节不会重置锚点 (plateau 延长而不是重启)。
//
// window 必须 >= 1，这里不做校验 (由 NewSequencer / NewChunker 负责)。
func FindBoundary(data []byte, window int) int {
	// 空切片没有首字节，必须在读取 data[0] 之前短路
	if len(data) == 0 {
		return 0
	}

	top := anchor{value: data[0], position: 0}
	for pos, val := range data {
		if val > top.value {
			top.value = val
			top.position = pos
			continue
		}
		// val <= top.value (包括相等)
		if pos == top.position+window+1 {
			return pos
		}
	}

	return len(data)
}
