package docstore

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Subscription is a live query. Every time the matched remote set
// changes, the full current result is re-read and emitted on Updates;
// each emission replaces the previous one entirely, there are no diffs.
// A slow consumer only ever sees the latest snapshot. After Close
// returns, nothing is emitted anymore and the channel is closed.
//
// S is the snapshot type: a record slice for list queries, a record
// pointer for single-document queries (nil when the document is gone).
type Subscription[S any] struct {
	updates chan S
	cancel  context.CancelFunc
	// closes the underlying event stream
	closeEvents func() error
	done        chan struct{}
	closeOnce   sync.Once
	closeErr    error
}

// newSubscription runs the query once synchronously, so a query error
// surfaces here and a successful subscription always starts with a
// snapshot already buffered.
func newSubscription[S any](
	ctx context.Context,
	events <-chan Event,
	closeEvents func() error,
	matches func(Event) bool,
	query func(ctx context.Context) (S, error),
) (*Subscription[S], error) {
	initial, err := query(ctx)
	if err != nil {
		_ = closeEvents()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription[S]{
		updates:     make(chan S, 1),
		cancel:      cancel,
		closeEvents: closeEvents,
		done:        make(chan struct{}),
	}
	s.emit(initial)

	go s.run(ctx, events, matches, query)

	return s, nil
}

// Updates delivers result-set snapshots. Closed after Close.
func (s *Subscription[S]) Updates() <-chan S {
	return s.updates
}

// Close stops the live query. No snapshot is delivered after it returns.
func (s *Subscription[S]) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.closeErr = s.closeEvents()
		<-s.done
		close(s.updates)
	})
	return s.closeErr
}

func (s *Subscription[S]) run(
	ctx context.Context,
	events <-chan Event,
	matches func(Event) bool,
	query func(ctx context.Context) (S, error),
) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if !matches(event) {
				continue
			}

			snapshot, err := query(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				// keep the last good snapshot, wait for the next change
				log.Errorf("subscription: re-query after %s %s/%s: %s",
					event.Op, event.Collection, event.ID, err)
				continue
			}
			s.emit(snapshot)
		}
	}
}

// emit replaces a not-yet-consumed snapshot instead of blocking, so the
// consumer always observes the most recent state.
func (s *Subscription[S]) emit(snapshot S) {
	for {
		select {
		case s.updates <- snapshot:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}

func matchAll(Event) bool { return true }

// SubscribeBlogs opens a live list query over blogs.
func (r *Repo) SubscribeBlogs(ctx context.Context, query BlogQuery) (*Subscription[[]Blog], error) {
	events, closeEvents, err := r.notifier.Subscribe(ctx, CollectionBlogs)
	if err != nil {
		return nil, err
	}
	return newSubscription(ctx, events, closeEvents, matchAll,
		func(ctx context.Context) ([]Blog, error) {
			return r.QueryBlogs(ctx, query)
		},
	)
}

// SubscribeBlog opens a live single-document query; a nil snapshot means
// the blog does not (or no longer does) exist.
func (r *Repo) SubscribeBlog(ctx context.Context, id string) (*Subscription[*Blog], error) {
	events, closeEvents, err := r.notifier.Subscribe(ctx, CollectionBlogs)
	if err != nil {
		return nil, err
	}
	return newSubscription(ctx, events, closeEvents,
		func(event Event) bool { return event.ID == id },
		func(ctx context.Context) (*Blog, error) {
			blog, err := r.GetBlog(ctx, id)
			if errors.Is(err, ErrBlogNotFound) {
				return nil, nil
			}
			return blog, err
		},
	)
}

// SubscribeComments opens a live list query over comments.
func (r *Repo) SubscribeComments(ctx context.Context, query CommentQuery) (*Subscription[[]Comment], error) {
	events, closeEvents, err := r.notifier.Subscribe(ctx, CollectionComments)
	if err != nil {
		return nil, err
	}
	return newSubscription(ctx, events, closeEvents, matchAll,
		func(ctx context.Context) ([]Comment, error) {
			return r.QueryComments(ctx, query)
		},
	)
}

// SubscribeUser opens a live single-document query over one user profile.
func (r *Repo) SubscribeUser(ctx context.Context, id string) (*Subscription[*User], error) {
	events, closeEvents, err := r.notifier.Subscribe(ctx, CollectionUsers)
	if err != nil {
		return nil, err
	}
	return newSubscription(ctx, events, closeEvents,
		func(event Event) bool { return event.ID == id },
		func(ctx context.Context) (*User, error) {
			user, err := r.GetUser(ctx, id)
			if errors.Is(err, ErrUserNotFound) {
				return nil, nil
			}
			return user, err
		},
	)
}
