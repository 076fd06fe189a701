package chunker_test

import (
	"bytes"
	"errors"
	"testing"

	"maxcdc/pkg/chunker"
)

func FuzzSplit(f *testing.F) {
	f.Add([]byte("content to be chunked into multiple pieces to verify the chunker works correctly"), 3)
	f.Add([]byte{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, 1)
	f.Add(make([]byte, 1024), 16)
	f.Add([]byte{}, 1)
	f.Add([]byte{1, 2, 3}, 0)

	f.Fuzz(func(t *testing.T, data []byte, window int) {
		chunks, err := chunker.Split(data, window)
		if window < 1 {
			if !errors.Is(err, chunker.ErrInvalidWindow) {
				t.Fatalf("expected ErrInvalidWindow for window %d, got %v", window, err)
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(chunks) == 0 {
			t.Fatal("no chunks returned")
		}

		var total int
		for i, c := range chunks {
			// The last chunk is allowed to be shorter than window+1.
			if i < len(chunks)-1 && len(c) < window+1 {
				t.Fatalf("chunk %d length %d is less than window+1 (%d)", i, len(c), window+1)
			}
			total += len(c)
		}

		if total != len(data) {
			t.Fatalf("total length mismatch: got %d, want %d", total, len(data))
		}

		if !bytes.Equal(bytes.Join(chunks, nil), data) {
			t.Fatal("chunks do not reassemble to the original data")
		}
	})
}

func FuzzFindBoundary(f *testing.F) {
	f.Add([]byte("some data to find boundary in"), 4)
	f.Fuzz(func(t *testing.T, data []byte, window int) {
		if window < 1 {
			return
		}

		boundary := chunker.FindBoundary(data, window)
		if boundary > len(data) {
			t.Fatalf("boundary %d exceeds data length %d", boundary, len(data))
		}

		if len(data) > 0 && boundary < len(data) && boundary < window+1 {
			t.Fatalf("boundary %d is less than window+1 (%d)", boundary, window+1)
		}
	})
}
