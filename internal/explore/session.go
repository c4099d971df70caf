// File: internal/explore/session.go
package explore

import (
	"sort"

	"github.com/mkaresz/locascope/api/schemas"
)

// State tracks what a single exploration session has already seen. It lives
// exactly as long as one run and is owned by the Explorer; nothing about it
// is global. Not safe for concurrent use.
type State struct {
	baseOrigin      string
	visitedPages    map[string]struct{}
	visitedModals   map[string]struct{}
	discoveredPages map[string]struct{}
}

// NewState creates an empty session state scoped to the given origin
// (scheme://host of the start URL).
func NewState(baseOrigin string) *State {
	return &State{
		baseOrigin:      baseOrigin,
		visitedPages:    make(map[string]struct{}),
		visitedModals:   make(map[string]struct{}),
		discoveredPages: make(map[string]struct{}),
	}
}

// BaseOrigin returns the origin the session is scoped to.
func (s *State) BaseOrigin() string { return s.baseOrigin }

// MarkPageVisited records that a page URL or path has been processed.
func (s *State) MarkPageVisited(page string) {
	s.visitedPages[page] = struct{}{}
}

// PageVisited reports whether the page has already been processed.
func (s *State) PageVisited(page string) bool {
	_, ok := s.visitedPages[page]
	return ok
}

// AddDiscovered records a harvested page path. It reports whether the path
// was new, so repeated harvests of the same page are idempotent.
func (s *State) AddDiscovered(path string) bool {
	if _, ok := s.discoveredPages[path]; ok {
		return false
	}
	s.discoveredPages[path] = struct{}{}
	return true
}

// DiscoveredCount returns how many distinct paths have been harvested.
func (s *State) DiscoveredCount() int { return len(s.discoveredPages) }

// NextUnvisited returns up to limit discovered paths that have not been
// visited yet. The order is lexicographic so runs are reproducible; callers
// must not read meaning into it.
func (s *State) NextUnvisited(limit int) []string {
	if limit <= 0 {
		return nil
	}
	unvisited := make([]string, 0, len(s.discoveredPages))
	for path := range s.discoveredPages {
		if !s.PageVisited(path) {
			unvisited = append(unvisited, path)
		}
	}
	sort.Strings(unvisited)
	if len(unvisited) > limit {
		unvisited = unvisited[:limit]
	}
	return unvisited
}

// MarkModalVisited records a modal by its derived name.
func (s *State) MarkModalVisited(name string) {
	s.visitedModals[name] = struct{}{}
}

// ModalVisited reports whether a modal with this name was already probed.
// Distinct modals that derive to the same name are treated as one; the
// first wins.
func (s *State) ModalVisited(name string) bool {
	_, ok := s.visitedModals[name]
	return ok
}

// Stats summarizes the session for logging and the report envelope.
func (s *State) Stats() schemas.SessionStats {
	pages := make([]string, 0, len(s.visitedPages))
	for page := range s.visitedPages {
		pages = append(pages, page)
	}
	modals := make([]string, 0, len(s.visitedModals))
	for modal := range s.visitedModals {
		modals = append(modals, modal)
	}
	sort.Strings(pages)
	sort.Strings(modals)
	return schemas.SessionStats{
		PagesVisited:    len(pages),
		ModalsVisited:   len(modals),
		PagesDiscovered: len(s.discoveredPages),
		Pages:           pages,
		Modals:          modals,
	}
}
