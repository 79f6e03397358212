// Package coordinator sequences every multi-step write in one place:
// images are uploaded before the referencing document is written, and
// documents are deleted before their blob is cleaned up. Screens never
// re-implement these orders individually.
//
// Successful writes are never mirrored into local state here; the live
// subscriptions pick the change up from the store, closing the loop.
package coordinator

import (
	"context"
	"io"

	"github.com/bkral/blogsync/internal/docstore"
	"github.com/bkral/blogsync/internal/session"
)

type documentRepo interface {
	CreateUser(ctx context.Context, user *docstore.User) error
	UpdateUser(ctx context.Context, id string, fields docstore.UserFields) error
	CreateBlog(ctx context.Context, blog *docstore.Blog) (string, error)
	GetBlog(ctx context.Context, id string) (*docstore.Blog, error)
	UpdateBlog(ctx context.Context, id string, fields docstore.BlogFields) error
	DeleteBlog(ctx context.Context, id string) error
	CreateComment(ctx context.Context, comment *docstore.Comment) (string, error)
	GetComment(ctx context.Context, id string) (*docstore.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

type blobStore interface {
	Upload(ctx context.Context, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, blobURL string) error
}

type credentialGateway interface {
	Register(ctx context.Context, email, secret string) (string, error)
	Login(ctx context.Context, email, secret string) (string, error)
	Logout(ctx context.Context) error
}

// ImageRef points at local image bytes that have not been uploaded yet.
type ImageRef struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

func (r ImageRef) IsZero() bool {
	return r.Reader == nil
}

type Coordinator struct {
	repo     documentRepo
	blobs    blobStore
	gateway  credentialGateway
	sessions session.Store
}

func NewCoordinator(
	repo documentRepo,
	blobs blobStore,
	gateway credentialGateway,
	sessions session.Store,
) *Coordinator {
	return &Coordinator{
		repo:     repo,
		blobs:    blobs,
		gateway:  gateway,
		sessions: sessions,
	}
}

// uploadImage resolves a local image reference into a fetchable URL.
// Document payloads only ever carry the resolved URL.
func (c *Coordinator) uploadImage(ctx context.Context, image ImageRef) (string, error) {
	imageURL, err := c.blobs.Upload(ctx, image.Reader, image.Size, image.ContentType)
	if err != nil {
		return "", &WriteFailedError{Step: "image upload", Err: err}
	}
	return imageURL, nil
}

// currentUser reads the session token; an empty token fails validation
// before any network effect.
func (c *Coordinator) currentUser(ctx context.Context) (string, error) {
	token, err := c.sessions.Get(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", &ValidationError{Field: "session", Reason: "no logged in user"}
	}
	return token, nil
}

func requireFields(fields map[string]string) error {
	// deterministic order, so the reported field is stable
	for _, name := range fieldOrder {
		value, ok := fields[name]
		if !ok {
			continue
		}
		if value == "" {
			return &ValidationError{Field: name}
		}
	}
	return nil
}

var fieldOrder = []string{
	"name", "email", "secret", "gender", "age", "zip", "state",
	"address", "country", "title", "description", "content",
	"blog", "owner", "author", "image",
}
