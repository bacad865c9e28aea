package scanner

import (
	"context"
	"fmt"

	"OpinionDigest/internal/domain"
)

// CourtSite captures everything markup-specific about one court's
// notification format: how its links are embedded in email bodies and how
// its landing pages are scraped. Markup drift stays localized to the
// strategy implementing this interface.
type CourtSite interface {
	Name() string
	ExtractLinks(body string) []string
	Resolve(ctx context.Context, landingURL string) (domain.OpinionMetadata, error)
}

// Registry keeps a mapping from court-site names to their implementations.
type Registry struct {
	sites map[string]CourtSite
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sites: map[string]CourtSite{}}
}

// Register adds or replaces a court-site strategy.
func (r *Registry) Register(site CourtSite) {
	if r.sites == nil {
		r.sites = map[string]CourtSite{}
	}
	r.sites[site.Name()] = site
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (CourtSite, error) {
	if site, ok := r.sites[name]; ok {
		return site, nil
	}
	return nil, fmt.Errorf("court site %s is not registered", name)
}
