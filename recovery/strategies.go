package recovery

import (
	"fmt"
	"sync"
)

// StrictStrategy fails the surrounding operation on the first error.
// Export pipelines use this: a partial artifact must never be
// persisted.
type StrictStrategy struct{}

func NewStrictStrategy() *StrictStrategy { return &StrictStrategy{} }

func (s *StrictStrategy) OnError(err error, loc Location) Action {
	return ActionFail
}

// LenientStrategy records failures and continues, which is the viewing
// policy: one broken page shows an error indicator while the rest of
// the document stays usable.
type LenientStrategy struct {
	mu     sync.Mutex
	errors []error
}

func NewLenientStrategy() *LenientStrategy { return &LenientStrategy{} }

func (s *LenientStrategy) OnError(err error, loc Location) Action {
	s.mu.Lock()
	s.errors = append(s.errors, fmt.Errorf("%s page %d: %w", loc.Component, loc.Page, err))
	s.mu.Unlock()
	return ActionSkip
}

// Errors returns the failures accumulated so far.
func (s *LenientStrategy) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errors...)
}
