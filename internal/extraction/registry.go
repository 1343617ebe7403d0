package extraction

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/a3tai/mcp-assessment-import/internal/intelligence"
)

// Registry maps document types to extractors
type Registry struct {
	mu          sync.RWMutex
	extractors  map[string]Extractor
	defaultType string
}

// NewRegistry creates a registry holding the built-in extractors. OT_ASSESSMENT is the
// default.
func NewRegistry() *Registry {
	r := &Registry{
		extractors:  make(map[string]Extractor),
		defaultType: DocumentTypeOTAssessment,
	}
	r.Register(NewOTAssessmentExtractor())
	r.Register(NewAttendantCareExtractor())
	return r
}

// Register adds or replaces the extractor for its document type
func (r *Registry) Register(e Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[strings.ToUpper(e.DocumentType())] = e
}

// Get returns the extractor for a document type. Lookup is case-insensitive.
func (r *Registry) Get(documentType string) (Extractor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.extractors[strings.ToUpper(strings.TrimSpace(documentType))]
	return e, ok
}

// Default returns the extractor used when no document type is requested
func (r *Registry) Default() Extractor {
	e, _ := r.Get(r.defaultType)
	return e
}

// Types lists the registered document types, sorted
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.extractors))
	for t := range r.extractors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Resolve picks the extractor for an explicit document type, falling back to the type implied
// by a classifier label such as "attendant-care-assessment".
func (r *Registry) Resolve(documentType, classification string) (Extractor, error) {
	if documentType != "" {
		e, ok := r.Get(documentType)
		if !ok {
			return nil, fmt.Errorf("unsupported document type %q (supported: %s)", documentType, strings.Join(r.Types(), ", "))
		}
		return e, nil
	}

	if classification == intelligence.TypeAttendantCareAssessment {
		if e, ok := r.Get(DocumentTypeAttendantCare); ok {
			return e, nil
		}
	}
	return r.Default(), nil
}
