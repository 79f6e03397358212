package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bkral/blogsync/internal/telemetry/tracing"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrBlogNotFound    = errors.New("blog not found")
	ErrCommentNotFound = errors.New("comment not found")
)

type Repo struct {
	db       *pgxpool.Pool
	notifier Notifier
}

func NewRepo(db *pgxpool.Pool, notifier Notifier) *Repo {
	return &Repo{
		db:       db,
		notifier: notifier,
	}
}

// notifyChange fans a successful write out to live subscriptions. The
// write already happened; a notification failure is logged, not returned.
func (r *Repo) notifyChange(ctx context.Context, collection, id, op string) {
	if err := r.notifier.Publish(ctx, Event{
		Collection: collection,
		ID:         id,
		Op:         op,
	}); err != nil {
		log.Errorf("docstore: notify %s %s %s: %s", collection, op, id, err)
	}
}

// CreateUser writes a new user record. The id comes from the identity
// service, the timestamp from the store.
func (r *Repo) CreateUser(ctx context.Context, user *User) error {
	rows, err := r.db.Query(
		ctx,
		`INSERT INTO users (id, name, email, gender, age, zip, state, address, country, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at;`,
		user.ID, user.Name, user.Email, user.Gender, user.Age,
		user.Zip, user.State, user.Address, user.Country, user.ImageURL,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return err
	}

	if !rows.Next() {
		return errors.New("unexpected error, failed to insert user")
	}
	var createdAt time.Time
	if err := rows.Scan(&createdAt); err != nil {
		return err
	}
	user.CreatedAt = createdAt
	rows.Close()

	r.notifyChange(ctx, CollectionUsers, user.ID, OpCreated)
	return nil
}

func (r *Repo) GetUser(ctx context.Context, id string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "docstore.getUser")
	span.SetAttributes(attribute.String("id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, email, gender, age, zip, state, address, country, image_url, created_at
		FROM users WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, ErrUserNotFound
	}

	var user User
	if err := rows.Scan(
		&user.ID, &user.Name, &user.Email, &user.Gender, &user.Age,
		&user.Zip, &user.State, &user.Address, &user.Country,
		&user.ImageURL, &user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates all mutable fields; id and created_at never change.
func (r *Repo) UpdateUser(ctx context.Context, id string, fields UserFields) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE users SET name = $1, email = $2, gender = $3, age = $4, zip = $5,
		state = $6, address = $7, country = $8, image_url = $9 WHERE id = $10`,
		fields.Name, fields.Email, fields.Gender, fields.Age, fields.Zip,
		fields.State, fields.Address, fields.Country, fields.ImageURL, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	r.notifyChange(ctx, CollectionUsers, id, OpUpdated)
	return nil
}

// CreateBlog writes a new blog record and returns its generated id.
// The timestamp is assigned by the store at write time, not here.
func (r *Repo) CreateBlog(ctx context.Context, blog *Blog) (string, error) {
	if blog.ID == "" {
		blog.ID = uuid.NewString()
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO blogs (id, title, description, content, image_url, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at;`,
		blog.ID, blog.Title, blog.Description, blog.Content, blog.ImageURL, blog.OwnerID,
	)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return "", err
	}

	if !rows.Next() {
		return "", errors.New("unexpected error, failed to insert blog")
	}
	var createdAt time.Time
	if err := rows.Scan(&createdAt); err != nil {
		return "", err
	}
	blog.CreatedAt = createdAt
	rows.Close()

	r.notifyChange(ctx, CollectionBlogs, blog.ID, OpCreated)
	return blog.ID, nil
}

func (r *Repo) GetBlog(ctx context.Context, id string) (_ *Blog, err error) {
	log.Tracef("getting blog %s", id)

	ctx, span := tracing.GlobalTracer.Start(ctx, "docstore.getBlog")
	span.SetAttributes(attribute.String("id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, title, description, content, image_url, owner_id, created_at
		FROM blogs WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, ErrBlogNotFound
	}

	var blog Blog
	if err := rows.Scan(
		&blog.ID, &blog.Title, &blog.Description, &blog.Content,
		&blog.ImageURL, &blog.OwnerID, &blog.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &blog, nil
}

// UpdateBlog updates the mutable blog fields; owner and created_at stay.
func (r *Repo) UpdateBlog(ctx context.Context, id string, fields BlogFields) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE blogs SET title = $1, description = $2, content = $3, image_url = $4 WHERE id = $5`,
		fields.Title, fields.Description, fields.Content, fields.ImageURL, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBlogNotFound
	}

	r.notifyChange(ctx, CollectionBlogs, id, OpUpdated)
	return nil
}

func (r *Repo) DeleteBlog(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBlogNotFound
	}

	r.notifyChange(ctx, CollectionBlogs, id, OpDeleted)
	return nil
}

func (r *Repo) QueryBlogs(ctx context.Context, query BlogQuery) (_ []Blog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "docstore.queryBlogs")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sql := `SELECT id, title, description, content, image_url, owner_id, created_at FROM blogs`
	var args []any
	if query.OwnerID != "" {
		sql += ` WHERE owner_id = $1`
		args = append(args, query.OwnerID)
	}
	if query.OrderByCreatedAsc {
		sql += ` ORDER BY created_at ASC`
	} else {
		sql += ` ORDER BY id ASC`
	}

	rows, err := r.db.Query(ctx, sql+";", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rows2blogs(rows)
}

// CreateComment writes a new comment and returns its generated id.
func (r *Repo) CreateComment(ctx context.Context, comment *Comment) (string, error) {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO comments (id, title, description, blog_id, author_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at;`,
		comment.ID, comment.Title, comment.Description, comment.BlogID, comment.AuthorID,
	)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return "", err
	}

	if !rows.Next() {
		return "", errors.New("unexpected error, failed to insert comment")
	}
	var createdAt time.Time
	if err := rows.Scan(&createdAt); err != nil {
		return "", err
	}
	comment.CreatedAt = createdAt
	rows.Close()

	r.notifyChange(ctx, CollectionComments, comment.ID, OpCreated)
	return comment.ID, nil
}

func (r *Repo) GetComment(ctx context.Context, id string) (_ *Comment, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "docstore.getComment")
	span.SetAttributes(attribute.String("id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, title, description, blog_id, author_id, created_at
		FROM comments WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, ErrCommentNotFound
	}

	var comment Comment
	if err := rows.Scan(
		&comment.ID, &comment.Title, &comment.Description,
		&comment.BlogID, &comment.AuthorID, &comment.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *Repo) DeleteComment(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}

	r.notifyChange(ctx, CollectionComments, id, OpDeleted)
	return nil
}

func (r *Repo) QueryComments(ctx context.Context, query CommentQuery) (_ []Comment, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "docstore.queryComments")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sql := `SELECT id, title, description, blog_id, author_id, created_at FROM comments`
	var args []any
	switch {
	case query.BlogID != "":
		sql += ` WHERE blog_id = $1`
		args = append(args, query.BlogID)
	case query.AuthorID != "":
		sql += ` WHERE author_id = $1`
		args = append(args, query.AuthorID)
	}
	sql += ` ORDER BY id ASC`

	rows, err := r.db.Query(ctx, sql+";", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rows2comments(rows)
}

func rows2blogs(rows pgx.Rows) ([]Blog, error) {
	var blogs []Blog
	for rows.Next() {
		var blog Blog
		if err := rows.Scan(
			&blog.ID, &blog.Title, &blog.Description, &blog.Content,
			&blog.ImageURL, &blog.OwnerID, &blog.CreatedAt,
		); err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)
	}
	return blogs, nil
}

func rows2comments(rows pgx.Rows) ([]Comment, error) {
	var comments []Comment
	for rows.Next() {
		var comment Comment
		if err := rows.Scan(
			&comment.ID, &comment.Title, &comment.Description,
			&comment.BlogID, &comment.AuthorID, &comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, nil
}
