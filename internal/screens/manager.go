package screens

import (
	"context"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/bkral/blogsync/internal/guard"
	"github.com/bkral/blogsync/internal/session"
)

// Manager gates screen activations on the session and tracks every live
// subscription a screen opens, keyed by (screen, query). At most one
// subscription per key is ever live: tracking a duplicate closes the
// previous one first, so a re-activated screen can never accumulate
// concurrent callback streams.
type Manager struct {
	sessions session.Store

	mutex sync.Mutex
	subs  map[string]map[string]io.Closer // screen name -> query key -> live query
}

func NewManager(sessions session.Store) *Manager {
	return &Manager{
		sessions: sessions,
		subs:     make(map[string]map[string]io.Closer),
	}
}

// Activate re-checks the session and returns the access decision. On
// anything but Allow the screen's leftover subscriptions are closed, so
// a revoked session also tears its live data down.
func (m *Manager) Activate(ctx context.Context, screen Screen) (guard.Access, error) {
	token, err := m.sessions.Get(ctx)
	if err != nil {
		return guard.RedirectToLogin, err
	}

	access := guard.CheckAccess(screen.Class, token)
	log.Debugf("screen %s activated: %s", screen.Name, access)

	if access != guard.Allow {
		if err := m.Deactivate(screen); err != nil {
			log.Errorf("deactivate %s on %s: %s", screen.Name, access, err)
		}
	}

	return access, nil
}

// Track registers a live subscription under (screen, query). A previous
// subscription under the same key is closed first.
func (m *Manager) Track(screen Screen, queryKey string, sub io.Closer) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	screenSubs, ok := m.subs[screen.Name]
	if !ok {
		screenSubs = make(map[string]io.Closer)
		m.subs[screen.Name] = screenSubs
	}

	if previous, exists := screenSubs[queryKey]; exists {
		log.Warnf("screen %s re-subscribed %s without deactivating, closing previous", screen.Name, queryKey)
		if err := previous.Close(); err != nil {
			log.Errorf("close previous subscription %s/%s: %s", screen.Name, queryKey, err)
		}
	}

	screenSubs[queryKey] = sub
}

// Deactivate closes every subscription the screen opened.
func (m *Manager) Deactivate(screen Screen) error {
	m.mutex.Lock()
	screenSubs := m.subs[screen.Name]
	delete(m.subs, screen.Name)
	m.mutex.Unlock()

	var errs error
	for queryKey, sub := range screenSubs {
		if err := sub.Close(); err != nil {
			errs = multierr.Append(errs, err)
		}
		log.Debugf("screen %s: closed subscription %s", screen.Name, queryKey)
	}
	return errs
}

// LiveCount reports the number of open subscriptions for one screen.
func (m *Manager) LiveCount(screen Screen) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.subs[screen.Name])
}

// Close deactivates all screens.
func (m *Manager) Close() error {
	m.mutex.Lock()
	all := m.subs
	m.subs = make(map[string]map[string]io.Closer)
	m.mutex.Unlock()

	var errs error
	for _, screenSubs := range all {
		for _, sub := range screenSubs {
			if err := sub.Close(); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	}
	return errs
}
