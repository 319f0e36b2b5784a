package mapping

import (
	"sort"
	"sync"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

// TemplateStore keeps saved FieldMappings keyed by header fingerprint.
// It is an explicit dependency injected where needed, not package state.
// Entries never expire and a save overwrites the whole slot; writes happen
// only on explicit user action, so concurrent overwrites of the same
// fingerprint cannot interleave partial state.
type TemplateStore struct {
	mu        sync.RWMutex
	templates map[string]domain.FieldMapping
}

// NewTemplateStore creates an empty store.
func NewTemplateStore() *TemplateStore {
	return &TemplateStore{templates: make(map[string]domain.FieldMapping)}
}

// Get returns the saved mapping for a fingerprint, if any. The copy is
// deep enough that callers cannot mutate stored state.
func (s *TemplateStore) Get(fingerprint string) (domain.FieldMapping, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.templates[fingerprint]
	if !ok {
		return nil, false
	}
	return copyMapping(m), true
}

// Save stores a mapping for a fingerprint, replacing any previous value
// wholesale.
func (s *TemplateStore) Save(fingerprint string, m domain.FieldMapping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[fingerprint] = copyMapping(m)
}

// Fingerprints lists the stored keys in sorted order.
func (s *TemplateStore) Fingerprints() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.templates))
	for k := range s.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyMapping(m domain.FieldMapping) domain.FieldMapping {
	out := make(domain.FieldMapping, len(m))
	for k, v := range m {
		cols := make([]string, len(v.Columns))
		copy(cols, v.Columns)
		out[k] = domain.FieldSource{Columns: cols, Absent: v.Absent}
	}
	return out
}
