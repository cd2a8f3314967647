package client

import (
	"testing"

	"github.com/anant1857/canvaschat/internal/canvas"
)

func segAt(x, y float64) canvas.Segment {
	return canvas.Segment{Curr: canvas.Point{X: x, Y: y}, Color: "#000000", Width: 5}
}

func TestBufferOnlyWhilePending(t *testing.T) {
	var b bootstrapState

	if b.buffer(segAt(1, 1), 1) {
		t.Fatal("buffered with no request pending")
	}

	b.begin()
	if !b.buffer(segAt(1, 1), 1) {
		t.Fatal("refused to buffer while pending")
	}
	if !b.buffer(segAt(2, 2), 2) {
		t.Fatal("refused to buffer second segment")
	}

	buffered := b.complete()
	if len(buffered) != 2 {
		t.Fatalf("got %d buffered segments, want 2", len(buffered))
	}
	if buffered[0].seq != 1 || buffered[1].seq != 2 {
		t.Fatal("replay order differs from receipt order")
	}
	if b.pending {
		t.Fatal("still pending after complete")
	}
}

func TestCancelDiscardsBuffer(t *testing.T) {
	var b bootstrapState
	b.begin()
	b.buffer(segAt(1, 1), 1)

	b.cancel()
	if b.pending {
		t.Fatal("still pending after cancel")
	}
	if got := b.complete(); len(got) != 0 {
		t.Fatalf("cancelled buffer leaked %d segments", len(got))
	}
}

func TestBeginResetsPreviousBuffer(t *testing.T) {
	var b bootstrapState
	b.begin()
	b.buffer(segAt(1, 1), 1)

	b.begin()
	if got := b.complete(); len(got) != 0 {
		t.Fatalf("new request inherited %d segments from the old one", len(got))
	}
}

func TestDropStaleKeepsOnlyPostClearSegments(t *testing.T) {
	var b bootstrapState
	b.begin()
	b.buffer(segAt(1, 1), 3)
	b.buffer(segAt(2, 2), 4)
	b.buffer(segAt(3, 3), 6)

	b.dropStale(4)

	buffered := b.complete()
	if len(buffered) != 1 || buffered[0].seq != 6 {
		t.Fatalf("expected only seq 6 to survive the clear, got %+v", buffered)
	}
}
