package sim

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/samuelfneumann/walker/physics"
)

// eventTags is the order in which events of one body are sent
var eventTags = [...]physics.Tag{
	physics.Ground,
	physics.Wall,
	physics.Target,
	physics.Agent,
}

type contactEvent struct {
	listeners []physics.ContactListener
	tag       physics.Tag
	kind      int
}

const (
	enter = iota
	stay
	exit
)

// touches computes which kinds of colliders each body touches now
func (w *World) touches() map[*Body]map[physics.Tag]bool {
	platform := w.config.Platform
	skin := w.config.ContactSkin

	now := make(map[*Body]map[physics.Tag]bool, len(w.bodies))
	for _, b := range w.bodies {
		t := make(map[physics.Tag]bool)
		if platform.Contains(b.pos.X, b.pos.Z) &&
			b.bottom() <= platform.Height()+skin {
			t[physics.Ground] = true
		}
		if w.arena.Overlaps(b.pos, b.radius+skin) {
			t[physics.Wall] = true
		}
		now[b] = t
	}

	for _, target := range w.bodies {
		if target.tag != physics.Target {
			continue
		}
		for _, b := range w.bodies {
			if b.tag != physics.Agent {
				continue
			}
			d := r3.Norm(r3.Sub(b.pos, target.pos))
			if d <= b.radius+target.radius+skin {
				now[b][physics.Target] = true
				now[target][physics.Agent] = true
			}
		}
	}
	return now
}

// updateContacts records the new contact state of every body, then
// sends Enter, Stay, and Exit events. Events are sent only after all
// state is recorded, so listeners may move bodies.
func (w *World) updateContacts() {
	now := w.touches()

	var events []contactEvent
	for _, b := range w.bodies {
		for _, tag := range eventTags {
			was, is := b.touching[tag], now[b][tag]
			if !was && !is {
				continue
			}
			e := contactEvent{listeners: b.listeners, tag: tag, kind: stay}
			if !was {
				e.kind = enter
			} else if !is {
				e.kind = exit
			}
			if len(b.listeners) > 0 {
				events = append(events, e)
			}
		}
		b.touching = now[b]
	}

	for _, e := range events {
		for _, l := range e.listeners {
			switch e.kind {
			case enter:
				l.OnCollisionEnter(e.tag)
			case stay:
				l.OnCollisionStay(e.tag)
			case exit:
				l.OnCollisionExit(e.tag)
			}
		}
	}
}
