package coordinator

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/bkral/blogsync/internal/docstore"
)

// CreateComment writes a comment on a blog. Comments carry no image and
// are never updated afterwards.
func (c *Coordinator) CreateComment(
	ctx context.Context,
	blogID, title, description, authorID string,
) (string, error) {
	if err := requireFields(map[string]string{
		"blog":        blogID,
		"title":       title,
		"description": description,
		"author":      authorID,
	}); err != nil {
		return "", err
	}

	currentUser, err := c.currentUser(ctx)
	if err != nil {
		return "", err
	}
	if authorID != currentUser {
		return "", &ValidationError{Field: "author", Reason: "does not match the logged in user"}
	}

	commentID, err := c.repo.CreateComment(ctx, &docstore.Comment{
		Title:       title,
		Description: description,
		BlogID:      blogID,
		AuthorID:    authorID,
	})
	if err != nil {
		return "", &WriteFailedError{Step: "comment write", Err: err}
	}

	return commentID, nil
}

// DeleteComment removes a comment; a missing one counts as already
// deleted.
func (c *Coordinator) DeleteComment(ctx context.Context, commentID string) error {
	_, err := c.repo.GetComment(ctx, commentID)
	if errors.Is(err, docstore.ErrCommentNotFound) {
		log.Tracef("comment %s already gone", commentID)
		return nil
	}
	if err != nil {
		return err
	}

	if err := c.repo.DeleteComment(ctx, commentID); err != nil {
		if errors.Is(err, docstore.ErrCommentNotFound) {
			return nil
		}
		return &WriteFailedError{Step: "comment delete", Err: err}
	}

	return nil
}
