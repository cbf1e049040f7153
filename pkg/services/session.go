package services

import (
	"fmt"
	"sync"

	"github.com/contractpulse/flowdesigner/pkg/canvas"
	"github.com/contractpulse/flowdesigner/pkg/graph"
	"github.com/contractpulse/flowdesigner/pkg/models"
)

// Session is one open workflow: its graph store, the canvas looking at it and the
// revision last written to the repository.
type Session struct {
	Store  *graph.Store
	Canvas *canvas.Controller

	// edit serializes graph mutations, saves and publishing.
	edit sync.Mutex

	mu            sync.Mutex
	savedRevision uint64
	saved         bool
}

func newSession(store *graph.Store) *Session {
	return &Session{
		Store:  store,
		Canvas: canvas.NewController(draftMover{store}),
	}
}

// ID returns the workflow id.
func (s *Session) ID() string {
	return s.Store.ID()
}

// Dirty reports whether the graph changed since the last save. A session that was
// never saved is dirty once it has been edited.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.saved {
		return s.Store.Revision() > 0
	}

	return s.Store.Revision() != s.savedRevision
}

func (s *Session) markSaved(revision uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saved = true
	s.savedRevision = revision
}

// draftMover lets the canvas drag nodes only while the workflow is a draft.
type draftMover struct {
	*graph.Store
}

func (m draftMover) MoveNode(id string, position models.Position) error {
	if m.Status() == models.WorkflowStatusPublished {
		return fmt.Errorf("%w: %s", ErrCannotModifyPublished, m.ID())
	}

	return m.Store.MoveNode(id, position)
}
