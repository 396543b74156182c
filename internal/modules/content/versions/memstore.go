package versions

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/neurobridge-content/internal/platform/dbctx"
)

type memKey struct {
	templateID uuid.UUID
	version    int
}

type memTemplate struct {
	version int
	live    Fields
	updated time.Time
}

// MemStore is an in-memory Store. It is safe for concurrent use and copies
// fields on the way in and out, so stored snapshots cannot be mutated.
type MemStore struct {
	mu        sync.Mutex
	now       func() time.Time
	templates map[uuid.UUID]*memTemplate
	snapshots map[memKey]Snapshot
}

func NewMemStore() *MemStore {
	return &MemStore{
		now:       func() time.Time { return time.Now().UTC() },
		templates: map[uuid.UUID]*memTemplate{},
		snapshots: map[memKey]Snapshot{},
	}
}

// Put registers a template at version 1 with its first snapshot.
func (m *MemStore) Put(templateID uuid.UUID, fields Fields) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.templates[templateID] = &memTemplate{version: 1, live: fields.Clone(), updated: now}
	m.snapshots[memKey{templateID, 1}] = Snapshot{TemplateID: templateID, Version: 1, Fields: fields.Clone(), CreatedAt: now}
}

// Drop removes one snapshot row, leaving the pointer untouched.
func (m *MemStore) Drop(templateID uuid.UUID, version int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, memKey{templateID, version})
}

func (m *MemStore) Current(_ dbctx.Context, templateID uuid.UUID) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[templateID]
	if !ok {
		return nil, nil
	}
	return &Snapshot{TemplateID: templateID, Version: t.version, Fields: t.live.Clone(), CreatedAt: t.updated}, nil
}

func (m *MemStore) CurrentVersion(_ dbctx.Context, templateID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[templateID]
	if !ok {
		return 0, ErrTemplateNotFound
	}
	return t.version, nil
}

func (m *MemStore) SnapshotAt(_ dbctx.Context, templateID uuid.UUID, version int) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snapshots[memKey{templateID, version}]
	if !ok {
		return nil, nil
	}
	s.Fields = s.Fields.Clone()
	return &s, nil
}

func (m *MemStore) UpdateCurrentSnapshot(_ dbctx.Context, templateID uuid.UUID, fields Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[templateID]
	if !ok {
		return ErrTemplateNotFound
	}
	key := memKey{templateID, t.version}
	snap, ok := m.snapshots[key]
	if !ok {
		snap = Snapshot{TemplateID: templateID, Version: t.version, CreatedAt: m.now()}
	}
	snap.Fields = fields.Clone()
	m.snapshots[key] = snap
	t.live = fields.Clone()
	t.updated = m.now()
	return nil
}

func (m *MemStore) CreateVersion(_ dbctx.Context, templateID uuid.UUID, fields Fields) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[templateID]
	if !ok {
		return 0, ErrTemplateNotFound
	}
	next := t.version + 1
	now := m.now()
	m.snapshots[memKey{templateID, next}] = Snapshot{TemplateID: templateID, Version: next, Fields: fields.Clone(), CreatedAt: now}
	t.version = next
	t.live = fields.Clone()
	t.updated = now
	return next, nil
}

func (m *MemStore) ListVersions(_ dbctx.Context, templateID uuid.UUID) ([]VersionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []VersionInfo{}
	for k, s := range m.snapshots {
		if k.templateID == templateID {
			out = append(out, VersionInfo{Version: s.Version, CreatedAt: s.CreatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
