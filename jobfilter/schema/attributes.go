package schema

import (
	"context"
	"sync"
)

// AttributeSet is an in-memory AttributeLookup. It backs tests and
// deployments that declare their attributes in configuration.
type AttributeSet struct {
	mu    sync.RWMutex
	attrs map[string]Attribute
}

func NewAttributeSet(attrs ...Attribute) *AttributeSet {
	s := &AttributeSet{attrs: make(map[string]Attribute, len(attrs))}
	for _, a := range attrs {
		s.attrs[a.Name] = a
	}
	return s
}

// Add registers or replaces an attribute.
func (s *AttributeSet) Add(a Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs[a.Name] = a
}

func (s *AttributeSet) FindByName(_ context.Context, name string) (Attribute, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attrs[name]
	return a, ok, nil
}
