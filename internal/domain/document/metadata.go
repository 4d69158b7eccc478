package document

import (
	"slices"
	"strings"

	"github.com/kailas-cloud/wayfarer/internal/domain"
)

// Source describes where a knowledge snippet came from.
type Source struct {
	Name string
	URL  string
	Type string // blog, guidebook, forum, ...
}

// Metadata is the typed record attached to every document.
type Metadata struct {
	destination string
	categories  []string
	locations   []string
	source      Source
}

// NewMetadata validates and normalizes metadata.
// Categories are trimmed, lower-cased and de-duplicated in first-seen order.
func NewMetadata(destination string, categories, locations []string, source Source) (Metadata, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return Metadata{}, domain.NewFieldError("metadata.destination", "is required")
	}

	cats, err := NormalizeTerms("metadata.categories", categories)
	if err != nil {
		return Metadata{}, err
	}

	var locs []string
	for _, l := range locations {
		if l = strings.TrimSpace(l); l != "" {
			locs = append(locs, l)
		}
	}

	return Metadata{
		destination: destination,
		categories:  cats,
		locations:   locs,
		source: Source{
			Name: strings.TrimSpace(source.Name),
			URL:  strings.TrimSpace(source.URL),
			Type: strings.TrimSpace(source.Type),
		},
	}, nil
}

// ReconstructMetadata creates Metadata without validation (snapshot hydration).
func ReconstructMetadata(destination string, categories, locations []string, source Source) Metadata {
	return Metadata{destination: destination, categories: categories, locations: locations, source: source}
}

// NormalizeTerms lower-cases, trims and de-duplicates terms. Empty entries are rejected.
func NormalizeTerms(field string, terms []string) ([]string, error) {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			return nil, domain.NewFieldError(field, "must not contain empty entries")
		}
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Destination returns the destination name as stored.
func (m Metadata) Destination() string { return m.destination }

// Categories returns a copy of the normalized categories.
func (m Metadata) Categories() []string { return slices.Clone(m.categories) }

// Locations returns a copy of the mentioned locations.
func (m Metadata) Locations() []string { return slices.Clone(m.locations) }

// Source returns the provenance of the snippet.
func (m Metadata) Source() Source { return m.source }

// MatchesLocation reports whether the destination contains location, ignoring case.
// An empty location matches everything.
func (m Metadata) MatchesLocation(location string) bool {
	return strings.Contains(strings.ToLower(m.destination), strings.ToLower(strings.TrimSpace(location)))
}

// InterestOverlap counts categories present in the normalized interests.
func (m Metadata) InterestOverlap(interests []string) int {
	n := 0
	for _, c := range m.categories {
		if slices.Contains(interests, c) {
			n++
		}
	}
	return n
}
