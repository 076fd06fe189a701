package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(seq *Sequencer) []Span {
	var spans []Span
	for {
		s, ok := seq.Next()
		if !ok {
			return spans
		}
		spans = append(spans, s)
	}
}

func TestNewSequencer_InvalidWindow(t *testing.T) {
	for _, window := range []int{0, -1, -100} {
		seq, err := NewSequencer([]byte{1, 2, 3}, window)
		assert.ErrorIs(t, err, ErrInvalidWindow, "window=%d", window)
		assert.Nil(t, seq)
	}
}

func TestSequencer_EmptyInputYieldsOneEmptyChunk(t *testing.T) {
	seq, err := NewSequencer(nil, 4)
	require.NoError(t, err)
	assert.False(t, seq.Done())

	span, ok := seq.Next()
	require.True(t, ok)
	assert.Equal(t, Span{Offset: 0, Length: 0}, span)
	assert.True(t, seq.Done())

	// Done 是终态
	_, ok = seq.Next()
	assert.False(t, ok)
	_, ok = seq.Next()
	assert.False(t, ok)
}

func TestSequencer_Spans(t *testing.T) {
	data := []byte{3, 1, 1, 7, 2, 2, 2, 9, 1, 1, 1, 1}
	seq, err := NewSequencer(data, 2)
	require.NoError(t, err)

	spans := drain(seq)
	assert.Equal(t, []Span{
		{Offset: 0, Length: 6},
		{Offset: 6, Length: 4},
		{Offset: 10, Length: 2},
	}, spans)
	assert.Equal(t, len(data), seq.Offset())
}

func TestSequencer_StateMachine(t *testing.T) {
	data := []byte{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	seq, err := NewSequencer(data, 3)
	require.NoError(t, err)

	span, ok := seq.Next()
	require.True(t, ok)
	assert.Equal(t, Span{Offset: 0, Length: 4}, span)
	assert.False(t, seq.Done())
	assert.Equal(t, 4, seq.Offset())

	rest := drain(seq)
	require.NotEmpty(t, rest)
	assert.True(t, seq.Done())
	assert.Equal(t, len(data), rest[len(rest)-1].End())
}

func TestSequencer_ResetReproducesSequence(t *testing.T) {
	data := randomData(t, 64*1024, 3)
	seq, err := NewSequencer(data, 128)
	require.NoError(t, err)

	first := drain(seq)
	seq.Reset()
	second := drain(seq)

	assert.Equal(t, first, second, "对于相同数据，切分点必须完全一致")
}

func TestSpan_BytesIsCapacityClipped(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 6}
	s := Span{Offset: 1, Length: 2}

	view := s.Bytes(buf)
	assert.Equal(t, []byte{2, 3}, view)
	assert.Equal(t, 2, cap(view))

	// append 必须重新分配，不能覆盖 buf[3]
	_ = append(view, 99)
	assert.Equal(t, byte(4), buf[3])
}
