// Package store holds the client-side copy of every LockieMedia collection.
//
// The Store is the only source of truth the UI reads from. Reads return deep
// copies; writes replace a whole collection, persist the full snapshot to the
// data service and then publish a change event on the bus. Failed saves are
// reported to the user and are not rolled back.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lockiemedia/lockie/internal/api"
	"github.com/lockiemedia/lockie/internal/events"
	"github.com/lockiemedia/lockie/internal/notify"
	"go.uber.org/zap"
)

var (
	// ErrInitFailed is returned when the initial snapshot cannot be loaded.
	ErrInitFailed = errors.New("failed to load initial data")

	// ErrUnauthorized is returned alongside ErrInitFailed when the service
	// rejected the API key.
	ErrUnauthorized = errors.New("api key rejected")
)

// Backend is the data service the store syncs with. *api.Client implements it.
type Backend interface {
	GetSnapshot(ctx context.Context) (*api.Snapshot, error)
	SaveSnapshot(ctx context.Context, snap *api.Snapshot) error
	SaveTicketSubtasks(ctx context.Context, ticketID api.ID, subtasks []api.Record) error
}

// Store is the reactive client-side data store.
type Store struct {
	backend  Backend
	bus      *events.Bus
	notifier notify.Notifier
	logger   *zap.Logger

	mu             sync.RWMutex
	data           *api.Snapshot
	uniqueLabels   []string
	uniqueProjects []api.Project
}

// New creates a store with empty collections. Call Initialize to load data.
// A nil bus, notifier or logger is replaced by a working default.
func New(backend Backend, bus *events.Bus, notifier notify.Notifier, logger *zap.Logger) *Store {
	if bus == nil {
		bus = events.NewBus()
	}
	if notifier == nil {
		notifier = notify.Nop
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	data := api.NewSnapshot()
	data.Projects = ensureNoProject(data.Projects)

	return &Store{
		backend:        backend,
		bus:            bus,
		notifier:       notifier,
		logger:         logger.Named("store"),
		data:           data,
		uniqueLabels:   []string{},
		uniqueProjects: []api.Project{},
	}
}

// Bus returns the bus the store publishes on.
func (s *Store) Bus() *events.Bus {
	return s.bus
}

// Initialize loads the full snapshot from the backend. On success it
// publishes StoreInitialized followed by one change event per collection.
// On failure the user is notified, every collection keeps its default value
// and the returned error wraps ErrInitFailed; the application cannot work
// without initial data.
func (s *Store) Initialize(ctx context.Context) error {
	snap, err := s.backend.GetSnapshot(ctx)
	if err != nil {
		return s.initFailed(err)
	}

	snap = snap.Clone()
	snap.Normalize()
	snap.Projects = ensureNoProject(snap.Projects)

	s.mu.Lock()
	s.data = snap
	labelsChanged, projectsChanged := s.recomputeLocked()
	s.mu.Unlock()

	s.logger.Info("store initialized",
		zap.Int("tasks", len(snap.Tasks)),
		zap.Int("projects", len(snap.Projects)),
	)

	events.Publish(s.bus, events.StoreInitialized, struct{}{})
	for _, name := range api.Collections {
		s.publish(name)
	}
	s.publishProjections(labelsChanged, projectsChanged)

	return nil
}

func (s *Store) initFailed(err error) error {
	s.logger.Error("failed to load initial data", zap.Error(err))

	if api.IsUnauthorized(err) {
		s.notifier.Notify(notify.Notification{
			Level:   notify.LevelError,
			Title:   "Access denied",
			Message: "The server rejected the API key. Update it with 'lockie login' and restart.",
			Fatal:   true,
		})
		return fmt.Errorf("%w: %w: %w", ErrInitFailed, ErrUnauthorized, err)
	}

	s.notifier.Notify(notify.Notification{
		Level:   notify.LevelError,
		Title:   "Could not load data",
		Message: "The data service is unreachable. Check that it is running and restart.",
		Fatal:   true,
	})
	return fmt.Errorf("%w: %w", ErrInitFailed, err)
}

// Snapshot returns a deep copy of every collection.
func (s *Store) Snapshot() *api.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// commit applies a mutation under the lock, then persists (when asked) and
// publishes. apply reports whether it changed anything; when it did not,
// nothing is saved or published.
func (s *Store) commit(ctx context.Context, collection, source string, persist bool, apply func(d *api.Snapshot) bool) bool {
	s.mu.Lock()
	if !apply(s.data) {
		s.mu.Unlock()
		return false
	}
	labelsChanged, projectsChanged := s.recomputeLocked()

	var payload *api.Snapshot
	if persist {
		payload = s.payloadLocked()
	}
	s.mu.Unlock()

	s.logger.Debug("collection updated",
		zap.String("collection", collection),
		zap.String("source", source),
	)

	if persist {
		s.save(ctx, payload, collection, source)
	}
	s.publish(collection)
	s.publishProjections(labelsChanged, projectsChanged)

	return true
}

// payloadLocked builds the snapshot sent to the backend. Subtasks are synced
// through their own endpoint and never travel with the snapshot.
func (s *Store) payloadLocked() *api.Snapshot {
	payload := s.data.Clone()
	payload.DevSubtasks = nil
	return payload
}

func (s *Store) save(ctx context.Context, payload *api.Snapshot, collection, source string) {
	err := s.backend.SaveSnapshot(ctx, payload)
	if err == nil {
		return
	}
	s.saveFailed(err, collection, source)
}

func (s *Store) saveFailed(err error, collection, source string) {
	s.logger.Error("failed to save data",
		zap.String("collection", collection),
		zap.String("source", source),
		zap.Error(err),
	)

	if api.IsUnauthorized(err) {
		s.notifier.Notify(notify.Notification{
			Level:   notify.LevelError,
			Title:   "Access denied",
			Message: "The server rejected the API key. Changes are no longer being saved.",
			Fatal:   true,
		})
		return
	}

	s.notifier.Notify(notify.Notification{
		Level:   notify.LevelWarning,
		Title:   "Could not save",
		Message: "Your change is shown locally but could not be saved to the server.",
	})
}

func (s *Store) recomputeLocked() (labelsChanged, projectsChanged bool) {
	labels := computeUniqueLabels(s.data.Tasks)
	projects := computeUniqueProjects(s.data.Projects)

	labelsChanged = !equalLabels(labels, s.uniqueLabels)
	projectsChanged = !equalProjects(projects, s.uniqueProjects)

	s.uniqueLabels = labels
	s.uniqueProjects = projects
	return labelsChanged, projectsChanged
}

func (s *Store) publishProjections(labelsChanged, projectsChanged bool) {
	if labelsChanged {
		events.Publish(s.bus, events.UniqueLabelsChanged, s.UniqueLabels())
	}
	if projectsChanged {
		events.Publish(s.bus, events.UniqueProjectsChanged, s.UniqueProjects())
	}
}
