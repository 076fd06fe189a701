// Package chunker 实现基于局部最大值的内容定义切分 (CDC)。
//
// 切点只由附近的字节内容决定：在最近一次严格的局部最大值之后，
// 如果连续 window 个字节都没有超过它，就在 window+1 处切开。
// 因此对 buffer 的局部修改只会影响附近的切点。
//
// FindBoundary 是无状态的扫描函数；Sequencer 在其之上维护游标，
// 惰性地产出切块视图 (Span)。Chunker 和 Split 是基于 Sequencer 的便捷封装。
//
//	seq, err := chunker.NewSequencer(buf, chunker.DefaultWindow)
//	if err != nil {
//	    return err
//	}
//	for {
//	    span, ok := seq.Next()
//	    if !ok {
//	        break
//	    }
//	    process(span.Bytes(buf))
//	}
package chunker
