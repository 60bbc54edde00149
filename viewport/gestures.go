package viewport

import "math"

// PointerPhase is the lifecycle stage of a pointer event.
type PointerPhase int

const (
	PointerDown PointerPhase = iota
	PointerMove
	PointerUp
	PointerCancel
)

// PointerEvent is one input sample from the embedding display layer.
// Coordinates are container pixels.
type PointerEvent struct {
	ID    int
	Phase PointerPhase
	X, Y  float64
}

// ActionKind classifies the outcome of feeding an event to the
// interpreter.
type ActionKind int

const (
	// ActionNone means the event changed internal state only.
	ActionNone ActionKind = iota
	// ActionPan carries a DX/DY delta to scroll the content by.
	ActionPan
	// ActionPinch carries a Factor to multiply the scale by.
	ActionPinch
	// ActionPrevPage and ActionNextPage are swipe navigations.
	ActionPrevPage
	ActionNextPage
)

// Action is the interpreter's verdict for a single event.
type Action struct {
	Kind   ActionKind
	DX, DY float64
	// Factor is the pinch scale multiplier relative to the previous
	// event, not the gesture start.
	Factor float64
}

// Swipe tuning. A horizontal swipe must travel at least swipeMinDist
// pixels and its horizontal component must dominate the vertical one
// by swipeAxisRatio, otherwise the gesture is absorbed silently.
const (
	swipeMinDist   = 50.0
	swipeAxisRatio = 1.5
)

type pointer struct {
	startX, startY float64
	x, y           float64
}

// Gestures disambiguates pan, pinch and swipe from a raw pointer
// stream. Panning requires the content to overflow its container;
// swiping requires the opposite on the horizontal axis, which is the
// only way the two gestures can be told apart at their start.
type Gestures struct {
	pointers map[int]*pointer
	order    []int

	// Overflow flags, updated by the layout whenever content or
	// container geometry changes.
	overflowX bool
	overflowY bool

	pinchActive   bool
	pinchLastDist float64
	// pinchTainted stays set until every pointer of a gesture that
	// ever pinched has lifted, so no finger of a pinch can swipe.
	pinchTainted bool
}

// NewGestures returns an interpreter with no active pointers.
func NewGestures() *Gestures {
	return &Gestures{pointers: make(map[int]*pointer)}
}

// SetOverflow records whether the scroll dimensions currently exceed
// the client dimensions on each axis.
func (g *Gestures) SetOverflow(x, y bool) {
	g.overflowX = x
	g.overflowY = y
}

// Handle consumes one pointer event and returns the resulting action.
// Ambiguous or unrecognized input yields ActionNone; the interpreter
// never errors.
func (g *Gestures) Handle(ev PointerEvent) Action {
	switch ev.Phase {
	case PointerDown:
		g.pointers[ev.ID] = &pointer{startX: ev.X, startY: ev.Y, x: ev.X, y: ev.Y}
		g.order = append(g.order, ev.ID)
		if len(g.order) == 2 {
			g.pinchActive = true
			g.pinchTainted = true
			g.pinchLastDist = g.pairDistance()
		}
		return Action{Kind: ActionNone}

	case PointerMove:
		p, ok := g.pointers[ev.ID]
		if !ok {
			return Action{Kind: ActionNone}
		}
		dx, dy := ev.X-p.x, ev.Y-p.y
		p.x, p.y = ev.X, ev.Y

		if g.pinchActive {
			return g.pinchAction()
		}
		if len(g.order) == 1 && (g.overflowX || g.overflowY) {
			return Action{Kind: ActionPan, DX: dx, DY: dy}
		}
		return Action{Kind: ActionNone}

	case PointerUp:
		return g.release(ev.ID)

	case PointerCancel:
		g.remove(ev.ID)
		if len(g.order) < 2 {
			g.pinchActive = false
		}
		if len(g.order) == 0 {
			g.pinchTainted = false
		}
		return Action{Kind: ActionNone}
	}
	return Action{Kind: ActionNone}
}

func (g *Gestures) pinchAction() Action {
	dist := g.pairDistance()
	if dist <= 0 || g.pinchLastDist <= 0 {
		return Action{Kind: ActionNone}
	}
	factor := dist / g.pinchLastDist
	g.pinchLastDist = dist
	return Action{Kind: ActionPinch, Factor: factor}
}

func (g *Gestures) release(id int) Action {
	p, ok := g.pointers[id]
	if !ok {
		return Action{Kind: ActionNone}
	}
	tainted := g.pinchTainted
	g.remove(id)
	if len(g.order) < 2 {
		g.pinchActive = false
	}
	if len(g.order) == 0 {
		g.pinchTainted = false
	}
	if tainted {
		return Action{Kind: ActionNone}
	}

	// Single-pointer release: consider swipe navigation, which is only
	// available when the content has no horizontal overflow (otherwise
	// the motion was a pan).
	if g.overflowX {
		return Action{Kind: ActionNone}
	}
	dx := p.x - p.startX
	dy := p.y - p.startY
	if math.Abs(dx) < swipeMinDist || math.Abs(dx) < swipeAxisRatio*math.Abs(dy) {
		return Action{Kind: ActionNone}
	}
	if dx > 0 {
		return Action{Kind: ActionPrevPage}
	}
	return Action{Kind: ActionNextPage}
}

func (g *Gestures) remove(id int) {
	delete(g.pointers, id)
	for i, v := range g.order {
		if v == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

func (g *Gestures) pairDistance() float64 {
	if len(g.order) < 2 {
		return 0
	}
	a := g.pointers[g.order[0]]
	b := g.pointers[g.order[1]]
	return math.Hypot(a.x-b.x, a.y-b.y)
}
