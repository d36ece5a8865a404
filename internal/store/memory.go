package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/usercue/thematic-cli/internal/model"
)

// MemoryStore implements Store entirely in memory. It is used for tests and
// for one-shot CLI runs that do not need persistence. Projects are deep-copied
// through JSON on every read so callers never share pointers with the store.
type MemoryStore struct {
	mu       sync.Mutex
	projects map[string]*model.ProjectContext
	locks    map[string]*sync.Mutex
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		projects: make(map[string]*model.ProjectContext),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *MemoryStore) Migrate(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) lockFor(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, name string, seed func() *model.ProjectContext) (*model.ProjectContext, error) {
	l := s.lockFor(name)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	p, ok := s.projects[name]
	s.mu.Unlock()
	if !ok {
		p = seed()
		p.ID = uuid.New().String()
		p.Name = name
		s.mu.Lock()
		s.projects[name] = p
		s.mu.Unlock()
	}
	return copyProject(p)
}

func (s *MemoryStore) Get(ctx context.Context, name string) (*model.ProjectContext, error) {
	s.mu.Lock()
	p, ok := s.projects[name]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return copyProject(p)
}

func (s *MemoryStore) Mutate(ctx context.Context, name string, fn func(*model.ProjectContext) error) (*model.ProjectContext, error) {
	l := s.lockFor(name)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	stored, ok := s.projects[name]
	s.mu.Unlock()
	if !ok {
		return nil, eris.Errorf("memory: project not found: %s", name)
	}

	p, err := copyProject(stored)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.projects[name] = p
	s.mu.Unlock()

	return copyProject(p)
}

func copyProject(p *model.ProjectContext) (*model.ProjectContext, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, eris.Wrap(err, "memory: copy project")
	}
	var out model.ProjectContext
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, eris.Wrap(err, "memory: copy project")
	}
	return &out, nil
}
