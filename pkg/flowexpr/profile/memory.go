package profile

import (
	"sort"
	"sync"
)

// MemoryStore keeps encoded profiles in memory. Useful for tests and for
// processes that only inspect profiles while running.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]entry
	closed   bool
}

type entry struct {
	info Info
	data []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]entry)}
}

// Save implements Store. The profile is encoded, so later changes to p
// are not visible through the store.
func (s *MemoryStore) Save(p *Profile) error {
	if err := validate(p); err != nil {
		return err
	}
	data, err := p.Marshal()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.profiles[p.ID] = entry{
		info: Info{ID: p.ID, Source: p.Source, Timestamp: p.Timestamp, Size: int64(len(data))},
		data: data,
	}
	return nil
}

// Load implements Store.
func (s *MemoryStore) Load(id string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	e, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return Unmarshal(e.data)
}

// List implements Store.
func (s *MemoryStore) List() ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	infos := make([]Info, 0, len(s.profiles))
	for _, e := range s.profiles {
		infos = append(infos, e.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	delete(s.profiles, id)
	return nil
}

// Close implements Store. Closing twice is safe.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.profiles = nil
	return nil
}

var _ Store = (*MemoryStore)(nil)
