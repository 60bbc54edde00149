package render

import (
	"github.com/duskview/duskview/coords"
)

// LinkTarget is the destination of a link annotation: either an
// internal page or an external URL.
type LinkTarget interface{ isLinkTarget() }

// InternalTarget points at a 1-based page of the same document.
type InternalTarget struct{ Page int }

// ExternalTarget carries an opaque URL.
type ExternalTarget struct{ URL string }

func (InternalTarget) isLinkTarget() {}
func (ExternalTarget) isLinkTarget() {}

// LinkAnnotation is a clickable region in viewport pixel space. Its
// lifetime is one render generation: every re-render of the page
// discards and recomputes the page's annotations.
type LinkAnnotation struct {
	Bounds coords.Rect
	Target LinkTarget
}

// projectLinks maps raw link descriptors into viewport space using one
// geometry snapshot and resolves internal destinations to page
// numbers. Descriptors that resolve to nothing are dropped.
func projectLinks(refs []LinkRef, scale float64, rotation int, pageW, pageH float64, src Source) []LinkAnnotation {
	if len(refs) == 0 {
		return nil
	}
	m := coords.PageToViewport(scale, rotation, pageW, pageH)
	resolver, _ := src.(DestResolver)

	annots := make([]LinkAnnotation, 0, len(refs))
	for _, ref := range refs {
		target := resolveTarget(ref, resolver)
		if target == nil {
			continue
		}
		annots = append(annots, LinkAnnotation{
			Bounds: m.TransformRect(ref.Rect),
			Target: target,
		})
	}
	return annots
}

func resolveTarget(ref LinkRef, resolver DestResolver) LinkTarget {
	if ref.URI != "" {
		return ExternalTarget{URL: ref.URI}
	}
	if ref.DestPage > 0 {
		return InternalTarget{Page: ref.DestPage}
	}
	if ref.DestName != "" && resolver != nil {
		if page, ok := resolver.ResolveDest(ref.DestName); ok {
			return InternalTarget{Page: page}
		}
	}
	return nil
}
