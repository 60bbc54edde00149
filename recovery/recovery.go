// Package recovery defines the policy layer that decides what happens
// when a page fails to render: viewing keeps going with a per-page
// error state, export fails fast. Cancellations never reach a
// strategy; they are filtered out upstream.
package recovery

// Location identifies where a failure happened.
type Location struct {
	Page      int
	Component string
}

// Action is a strategy's verdict for one failure.
type Action int

const (
	// ActionFail aborts the surrounding operation.
	ActionFail Action = iota
	// ActionSkip records the failure against the page and continues.
	ActionSkip
)

// Strategy decides per-failure handling.
type Strategy interface {
	OnError(err error, loc Location) Action
}
