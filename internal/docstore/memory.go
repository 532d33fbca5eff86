package docstore

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Backend.  Commits are serialized by a single
// mutex, which makes validation and apply one atomic step.
type Memory struct {
	mu   sync.RWMutex
	docs map[Key]Doc
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{docs: make(map[Key]Doc)}
}

func (m *Memory) Get(ctx context.Context, collection, id string) (Doc, error) {
	if err := ctx.Err(); err != nil {
		return Doc{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[Key{Collection: collection, ID: id}]
	if !ok {
		return Doc{}, ErrNotFound
	}
	return clone(d), nil
}

func (m *Memory) Query(ctx context.Context, collection string, filter *Filter) ([]Doc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want, err := filter.encoded()
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.queryLocked(collection, filter, want), nil
}

func (m *Memory) queryLocked(collection string, filter *Filter, want []byte) []Doc {
	var out []Doc
	for k, d := range m.docs {
		if k.Collection != collection {
			continue
		}
		if filter != nil && !matches(d.Body, filter.Field, want) {
			continue
		}
		out = append(out, clone(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Memory) Commit(ctx context.Context, c Commit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range sortedKeys(c.Reads) {
		if m.docs[k].Version != c.Reads[k] {
			return ErrStale
		}
	}
	for _, q := range c.Queries {
		want, err := q.Filter.encoded()
		if err != nil {
			return err
		}
		if !sameResult(q.Seen, m.queryLocked(q.Collection, q.Filter, want)) {
			return ErrStale
		}
	}
	for _, w := range c.Writes {
		if w.Kind == WriteCreate {
			if _, exists := m.docs[w.Key]; exists {
				return ErrStale
			}
		}
	}

	for _, w := range c.Writes {
		switch w.Kind {
		case WriteDelete:
			delete(m.docs, w.Key)
		default:
			prev := m.docs[w.Key]
			m.docs[w.Key] = Doc{Key: w.Key, Version: prev.Version + 1, Body: append([]byte(nil), w.Body...)}
		}
	}
	return nil
}

func clone(d Doc) Doc {
	d.Body = append([]byte(nil), d.Body...)
	return d
}
