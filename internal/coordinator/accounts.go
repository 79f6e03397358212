package coordinator

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/bkral/blogsync/internal/docstore"
	"github.com/bkral/blogsync/internal/telemetry/tracing"
)

type RegisterParams struct {
	Name    string
	Email   string
	Secret  string
	Gender  string
	Age     string
	Zip     string
	State   string
	Address string
	Country string
	Image   ImageRef
}

// Register creates the account, uploads the profile image, writes the
// user document under the new user id and starts the local session.
// The session token equals the new user id.
func (c *Coordinator) Register(ctx context.Context, params RegisterParams) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coordinator.register")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := requireFields(map[string]string{
		"name":    params.Name,
		"email":   params.Email,
		"secret":  params.Secret,
		"gender":  params.Gender,
		"age":     params.Age,
		"zip":     params.Zip,
		"state":   params.State,
		"address": params.Address,
		"country": params.Country,
	}); err != nil {
		return "", err
	}
	if params.Image.IsZero() {
		return "", &ValidationError{Field: "image"}
	}

	userID, err := c.gateway.Register(ctx, params.Email, params.Secret)
	if err != nil {
		return "", err
	}

	imageURL, err := c.uploadImage(ctx, params.Image)
	if err != nil {
		return "", err
	}

	user := &docstore.User{
		ID:       userID,
		Name:     params.Name,
		Email:    params.Email,
		Gender:   params.Gender,
		Age:      params.Age,
		Zip:      params.Zip,
		State:    params.State,
		Address:  params.Address,
		Country:  params.Country,
		ImageURL: imageURL,
	}
	if err := c.repo.CreateUser(ctx, user); err != nil {
		return "", &WriteFailedError{Step: "user write", Err: err}
	}

	if err := c.sessions.Set(ctx, userID); err != nil {
		return "", err
	}

	log.Debugf("registered user %s", userID)
	return userID, nil
}

// Login verifies the credentials and starts the local session.
func (c *Coordinator) Login(ctx context.Context, email, secret string) (string, error) {
	if err := requireFields(map[string]string{
		"email":  email,
		"secret": secret,
	}); err != nil {
		return "", err
	}

	userID, err := c.gateway.Login(ctx, email, secret)
	if err != nil {
		return "", err
	}

	if err := c.sessions.Set(ctx, userID); err != nil {
		return "", err
	}

	return userID, nil
}

// Logout invalidates the remote session first and then clears the local
// one unconditionally: the user always ends up logged out on this
// device, and a remote failure is still reported.
func (c *Coordinator) Logout(ctx context.Context) error {
	remoteErr := c.gateway.Logout(ctx)
	if remoteErr != nil {
		log.Errorf("logout: remote session invalidation: %s", remoteErr)
	}

	return multierr.Append(remoteErr, c.sessions.Clear(ctx))
}

// UpdateProfile rewrites the logged-in user's profile. A new image is
// uploaded before the document write; without one the already resolved
// URL in the fields is kept. A replaced blob stays behind, it is not
// cleaned up.
func (c *Coordinator) UpdateProfile(
	ctx context.Context,
	fields docstore.UserFields,
	image ImageRef,
) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coordinator.updateProfile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := requireFields(map[string]string{
		"name":    fields.Name,
		"email":   fields.Email,
		"gender":  fields.Gender,
		"age":     fields.Age,
		"zip":     fields.Zip,
		"state":   fields.State,
		"address": fields.Address,
		"country": fields.Country,
	}); err != nil {
		return err
	}
	if image.IsZero() && fields.ImageURL == "" {
		return &ValidationError{Field: "image"}
	}

	userID, err := c.currentUser(ctx)
	if err != nil {
		return err
	}

	if !image.IsZero() {
		imageURL, err := c.uploadImage(ctx, image)
		if err != nil {
			return err
		}
		fields.ImageURL = imageURL
	}

	if err := c.repo.UpdateUser(ctx, userID, fields); err != nil {
		return &WriteFailedError{Step: "profile write", Err: err}
	}

	return nil
}
