package scraper

import (
	"errors"
	"strings"
)

// ErrNoScraper is returned when no registered scraper matches a URL.
var ErrNoScraper = errors.New("scraper: no registered scraper matches this url")

// Registry holds the fixed set of organiser scrapers known at startup.
// Selection is by organiser hint first, then by each scraper's URL
// predicate in registration order - never by reflection or type switch.
type Registry struct {
	scrapers []Scraper
	byName   map[string]Scraper
}

// NewRegistry builds a registry from the given scrapers. Construction
// happens directly in cmd/main.go; there is no global init()-based
// plugin registration.
func NewRegistry(scrapers ...Scraper) *Registry {
	r := &Registry{
		scrapers: scrapers,
		byName:   make(map[string]Scraper, len(scrapers)),
	}
	for _, s := range scrapers {
		r.byName[strings.ToLower(s.Name())] = s
	}
	return r
}

// Resolve picks a scraper for url. If organiserHint is non-empty and
// names a registered scraper, that scraper is used directly without
// consulting Matches. Otherwise the first scraper whose Matches(url)
// returns true wins.
func (r *Registry) Resolve(url string, organiserHint string) (Scraper, error) {
	if organiserHint != "" {
		if s, ok := r.byName[strings.ToLower(organiserHint)]; ok {
			return s, nil
		}
	}
	for _, s := range r.scrapers {
		if s.Matches(url) {
			return s, nil
		}
	}
	return nil, ErrNoScraper
}

// Names lists the registered scraper names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.scrapers))
	for i, s := range r.scrapers {
		names[i] = s.Name()
	}
	return names
}

// Count returns the number of registered scrapers.
func (r *Registry) Count() int { return len(r.scrapers) }
