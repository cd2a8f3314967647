package client

import "github.com/anant1857/canvaschat/internal/canvas"

// bufferedSegment is a live segment that arrived while a snapshot was
// still pending, held for replay in receipt order.
type bufferedSegment struct {
	seg canvas.Segment
	seq uint64
}

// bootstrapState tracks one in-flight canvas state request. Responses
// are only applied while pending is set, so a response for an
// abandoned request (layer switch, disconnect) is silently discarded
// instead of painting a different layer.
type bootstrapState struct {
	pending  bool
	buffered []bufferedSegment
}

// begin starts a new request and invalidates any previous one.
func (b *bootstrapState) begin() {
	b.pending = true
	b.buffered = nil
}

// cancel abandons the in-flight request, if any.
func (b *bootstrapState) cancel() {
	b.pending = false
	b.buffered = nil
}

// buffer holds a segment until the snapshot lands. Returns false when
// no request is pending and the segment should be applied directly.
func (b *bootstrapState) buffer(seg canvas.Segment, seq uint64) bool {
	if !b.pending {
		return false
	}
	b.buffered = append(b.buffered, bufferedSegment{seg: seg, seq: seq})
	return true
}

// dropStale removes buffered segments older than a clear. Called when
// a clear event lands mid-bootstrap so replay cannot resurrect erased
// strokes.
func (b *bootstrapState) dropStale(clearSeq uint64) {
	if !b.pending {
		return
	}
	kept := b.buffered[:0]
	for _, bs := range b.buffered {
		if bs.seq > clearSeq {
			kept = append(kept, bs)
		}
	}
	b.buffered = kept
}

// complete finishes the request, returning the segments to replay in
// receipt order. The first response wins; callers must check pending
// before applying and ignore everything after.
func (b *bootstrapState) complete() []bufferedSegment {
	buffered := b.buffered
	b.pending = false
	b.buffered = nil
	return buffered
}
