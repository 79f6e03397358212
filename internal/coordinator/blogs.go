package coordinator

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bkral/blogsync/internal/docstore"
	"github.com/bkral/blogsync/internal/telemetry/tracing"
)

type BlogParams struct {
	Title       string
	Description string
	Content     string
}

func (p BlogParams) validate() error {
	return requireFields(map[string]string{
		"title":       p.Title,
		"description": p.Description,
		"content":     p.Content,
	})
}

// CreateBlog uploads the image and then writes the blog document, in
// that order: by the time subscribers see the new blog, its image is
// already fetchable. The returned id comes from the store.
func (c *Coordinator) CreateBlog(
	ctx context.Context,
	params BlogParams,
	image ImageRef,
	ownerID string,
) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coordinator.createBlog")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := params.validate(); err != nil {
		return "", err
	}
	if image.IsZero() {
		return "", &ValidationError{Field: "image"}
	}
	if ownerID == "" {
		return "", &ValidationError{Field: "owner"}
	}

	currentUser, err := c.currentUser(ctx)
	if err != nil {
		return "", err
	}
	if ownerID != currentUser {
		return "", &ValidationError{Field: "owner", Reason: "does not match the logged in user"}
	}

	imageURL, err := c.uploadImage(ctx, image)
	if err != nil {
		return "", err
	}

	blogID, err := c.repo.CreateBlog(ctx, &docstore.Blog{
		Title:       params.Title,
		Description: params.Description,
		Content:     params.Content,
		ImageURL:    imageURL,
		OwnerID:     ownerID,
	})
	if err != nil {
		return "", &WriteFailedError{Step: "blog write", Err: err}
	}

	log.Debugf("user %s created blog %s", ownerID, blogID)
	return blogID, nil
}

// UpdateBlog rewrites an existing blog. With a new image the
// upload-before-write order applies and the old blob stays behind;
// without one the current image URL is kept.
func (c *Coordinator) UpdateBlog(
	ctx context.Context,
	blogID string,
	params BlogParams,
	image ImageRef,
) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coordinator.updateBlog")
	span.SetAttributes(attribute.String("blogID", blogID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := params.validate(); err != nil {
		return err
	}
	if blogID == "" {
		return &ValidationError{Field: "blog"}
	}

	currentUser, err := c.currentUser(ctx)
	if err != nil {
		return err
	}

	blog, err := c.repo.GetBlog(ctx, blogID)
	if err != nil {
		return err
	}
	if blog.OwnerID != currentUser {
		return &ValidationError{Field: "owner", Reason: "does not match the logged in user"}
	}

	imageURL := blog.ImageURL
	if !image.IsZero() {
		imageURL, err = c.uploadImage(ctx, image)
		if err != nil {
			return err
		}
	}

	if err := c.repo.UpdateBlog(ctx, blogID, docstore.BlogFields{
		Title:       params.Title,
		Description: params.Description,
		Content:     params.Content,
		ImageURL:    imageURL,
	}); err != nil {
		return &WriteFailedError{Step: "blog write", Err: err}
	}

	return nil
}

// DeleteBlog removes the blog document first and its image blob second.
// A missing blog counts as already deleted. A failed blob delete leaves
// an orphan behind; the document stays gone either way.
func (c *Coordinator) DeleteBlog(ctx context.Context, blogID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coordinator.deleteBlog")
	span.SetAttributes(attribute.String("blogID", blogID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	blog, err := c.repo.GetBlog(ctx, blogID)
	if errors.Is(err, docstore.ErrBlogNotFound) {
		log.Tracef("blog %s already gone", blogID)
		return nil
	}
	if err != nil {
		return err
	}

	if err := c.repo.DeleteBlog(ctx, blogID); err != nil {
		if errors.Is(err, docstore.ErrBlogNotFound) {
			return nil
		}
		return &WriteFailedError{Step: "blog delete", Err: err}
	}

	if blog.ImageURL != "" {
		if err := c.blobs.Delete(ctx, blog.ImageURL); err != nil {
			log.Errorf("delete blog %s: blob cleanup: %s", blogID, err)
		}
	}

	return nil
}
