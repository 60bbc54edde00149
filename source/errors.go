package source

import "fmt"

// LoadErrorKind distinguishes the user-facing load failure classes:
// a blocked (cross-origin style) response, a plain network failure, or
// corrupt/undecodable content.
type LoadErrorKind int

const (
	LoadGeneric LoadErrorKind = iota
	LoadNetwork
	LoadBlocked
	LoadCorrupt
)

func (k LoadErrorKind) String() string {
	switch k {
	case LoadNetwork:
		return "network"
	case LoadBlocked:
		return "blocked"
	case LoadCorrupt:
		return "corrupt"
	default:
		return "generic"
	}
}

// LoadError is a terminal document-load failure. Viewing halts until
// the user supplies a new document, so the message carries enough to
// distinguish the failure class.
type LoadError struct {
	Kind LoadErrorKind
	URL  string
	// Title is the parsed page title when a server answered with an
	// HTML error page instead of document bytes.
	Title string
	Err   error
}

func (e *LoadError) Error() string {
	switch {
	case e.Title != "":
		return fmt.Sprintf("load %s: %s response (%q)", e.URL, e.Kind, e.Title)
	case e.URL != "":
		return fmt.Sprintf("load %s: %s: %v", e.URL, e.Kind, e.Err)
	default:
		return fmt.Sprintf("load: %s: %v", e.Kind, e.Err)
	}
}

func (e *LoadError) Unwrap() error { return e.Err }
