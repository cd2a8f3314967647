package client

import (
	"time"

	"github.com/anant1857/canvaschat/internal/canvas"
)

// PresenceTTL is how long a label stays rendered, measured from each
// holder's own receipt time. There is no synchronized clock; labels
// disappear independently on every participant.
const PresenceTTL = 4 * time.Second

// Label is an ephemeral presence marker announcing who is drawing.
type Label struct {
	ID        string
	Username  string
	Pos       canvas.Point
	Color     string
	CreatedAt time.Time
}

// presenceSet owns the live labels and their expiry timers. Expiries
// are delivered through the expired channel so removal happens on the
// session loop, never from a timer goroutine.
type presenceSet struct {
	ttl     time.Duration
	labels  map[string]Label
	timers  map[string]*time.Timer
	expired chan string
}

func newPresenceSet(ttl time.Duration) *presenceSet {
	if ttl <= 0 {
		ttl = PresenceTTL
	}
	return &presenceSet{
		ttl:     ttl,
		labels:  make(map[string]Label),
		timers:  make(map[string]*time.Timer),
		expired: make(chan string, 64),
	}
}

// add renders a label and schedules its expiry. Duplicate delivery is
// suppressed by id: the label is neither re-rendered nor re-scheduled.
func (p *presenceSet) add(label Label) bool {
	if _, exists := p.labels[label.ID]; exists {
		return false
	}
	label.CreatedAt = time.Now()
	p.labels[label.ID] = label

	id := label.ID
	p.timers[id] = time.AfterFunc(p.ttl, func() {
		select {
		case p.expired <- id:
		default:
		}
	})
	return true
}

// remove drops one label and stops its timer.
func (p *presenceSet) remove(id string) {
	if timer, ok := p.timers[id]; ok {
		timer.Stop()
		delete(p.timers, id)
	}
	delete(p.labels, id)
}

// clear drops every label and cancels all pending timers, as on a
// shared-surface clear, a layer switch, or a disconnect.
func (p *presenceSet) clear() {
	for id, timer := range p.timers {
		timer.Stop()
		delete(p.timers, id)
	}
	for id := range p.labels {
		delete(p.labels, id)
	}
}

// snapshot returns the currently rendered labels.
func (p *presenceSet) snapshot() []Label {
	out := make([]Label, 0, len(p.labels))
	for _, label := range p.labels {
		out = append(out, label)
	}
	return out
}
