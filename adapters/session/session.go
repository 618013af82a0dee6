package session

import (
	"context"
	"fmt"
)

type sessionImpl struct {
	id    string
	ctx   context.Context
	data  map[string]string
	dirty bool
	store IStore
}

// NewSession returns a lazily loaded session backed by store.
func NewSession(ctx context.Context, id string, store IStore) ISession {
	if ctx == nil {
		ctx = context.Background()
	}
	return &sessionImpl{
		id:    id,
		ctx:   ctx,
		store: store,
	}
}

func (s *sessionImpl) ID() string {
	return s.id
}

// Load reads the data once; later calls are no-ops.
func (s *sessionImpl) Load() error {
	const op = "sessionImpl.Load"
	if s.data != nil {
		return nil
	}

	data, err := s.store.Load(s.ctx, s.id)
	if err != nil {
		return fmt.Errorf("[%s] Fail to load session, err=%w", op, err)
	}

	s.data = data
	if s.data == nil {
		s.data = make(map[string]string)
	}
	return nil
}

func (s *sessionImpl) Get(key string) string {
	if s.data == nil {
		return ""
	}
	return s.data[key]
}

func (s *sessionImpl) Set(key string, value string) {
	if s.data == nil {
		s.data = make(map[string]string)
	}
	s.data[key] = value
	s.dirty = true
}

func (s *sessionImpl) Delete(key string) {
	if _, ok := s.data[key]; ok {
		delete(s.data, key)
		s.dirty = true
	}
}

func (s *sessionImpl) Clear() {
	s.data = make(map[string]string)
	s.dirty = true
}

// Save writes the data back when it changed since Load.
func (s *sessionImpl) Save() error {
	const op = "sessionImpl.Save"
	if !s.dirty {
		return nil
	}
	if err := s.store.Save(s.ctx, s.id, s.data); err != nil {
		return fmt.Errorf("[%s] Fail to save session, err=%w", op, err)
	}
	s.dirty = false
	return nil
}
