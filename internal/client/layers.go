package client

import "github.com/anant1857/canvaschat/internal/canvas"

// The two layers every client carries. The shared layer is networked
// and ephemeral; the private layer is local-only and durably persisted
// per user.
const (
	LayerShared  = "shared"
	LayerPrivate = "private"
)

// LayerSet holds the two raster surfaces and tracks which one receives
// pointer input. Incoming network events always target the shared
// surface no matter which layer is active.
type LayerSet struct {
	shared  *canvas.Surface
	private *canvas.Surface
	active  string

	privateDirty bool
}

// NewLayerSet returns a layer set with blank surfaces and the shared
// layer active.
func NewLayerSet() *LayerSet {
	return &LayerSet{
		shared:  canvas.NewDefaultSurface(),
		private: canvas.NewDefaultSurface(),
		active:  LayerShared,
	}
}

// Active returns the name of the layer receiving pointer input.
func (l *LayerSet) Active() string { return l.active }

// SharedActive reports whether pointer input currently routes to the
// network.
func (l *LayerSet) SharedActive() bool { return l.active == LayerShared }

// Shared returns the shared surface.
func (l *LayerSet) Shared() *canvas.Surface { return l.shared }

// Private returns the private surface.
func (l *LayerSet) Private() *canvas.Surface { return l.private }

// ActiveSurface returns the surface of the active layer.
func (l *LayerSet) ActiveSurface() *canvas.Surface {
	if l.active == LayerPrivate {
		return l.private
	}
	return l.shared
}

// SetActive switches the active layer. Returns false if the name is
// unknown or already active.
func (l *LayerSet) SetActive(name string) bool {
	if name != LayerShared && name != LayerPrivate {
		return false
	}
	if name == l.active {
		return false
	}
	l.active = name
	return true
}

// ResetShared replaces the shared surface with a blank one, ahead of a
// bootstrap repopulating it.
func (l *LayerSet) ResetShared() {
	l.shared = canvas.NewDefaultSurface()
}

// ReplacePrivate installs a surface loaded from the durable store.
func (l *LayerSet) ReplacePrivate(s *canvas.Surface) {
	if s == nil {
		s = canvas.NewDefaultSurface()
	}
	l.private = s
	l.privateDirty = false
}

// DrawActive applies a locally captured segment to the active surface
// and marks the private layer dirty when it is the target.
func (l *LayerSet) DrawActive(seg canvas.Segment) {
	l.ActiveSurface().DrawSegment(seg)
	if l.active == LayerPrivate {
		l.privateDirty = true
	}
}

// PrivateDirty reports whether the private layer changed since the
// last durable snapshot.
func (l *LayerSet) PrivateDirty() bool { return l.privateDirty }

// MarkPrivateClean records that the private layer was just persisted.
func (l *LayerSet) MarkPrivateClean() { l.privateDirty = false }
