package coordinator

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bkral/blogsync/internal/docstore"
)

type repoMock struct {
	mutex    sync.Mutex
	users    map[string]*docstore.User
	blogs    map[string]*docstore.Blog
	comments map[string]*docstore.Comment
	nextID   int

	createBlogErr error
	deleteBlogErr error
	createUserErr error
}

func newRepoMock() *repoMock {
	return &repoMock{
		users:    make(map[string]*docstore.User),
		blogs:    make(map[string]*docstore.Blog),
		comments: make(map[string]*docstore.Comment),
	}
}

func (r *repoMock) newID() string {
	r.nextID++
	return fmt.Sprintf("doc-%d", r.nextID)
}

func (r *repoMock) CreateUser(_ context.Context, user *docstore.User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.createUserErr != nil {
		return r.createUserErr
	}
	user.CreatedAt = time.Now()
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *repoMock) UpdateUser(_ context.Context, id string, fields docstore.UserFields) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	user, found := r.users[id]
	if !found {
		return docstore.ErrUserNotFound
	}
	user.Name = fields.Name
	user.Email = fields.Email
	user.Gender = fields.Gender
	user.Age = fields.Age
	user.Zip = fields.Zip
	user.State = fields.State
	user.Address = fields.Address
	user.Country = fields.Country
	user.ImageURL = fields.ImageURL
	return nil
}

func (r *repoMock) CreateBlog(_ context.Context, blog *docstore.Blog) (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.createBlogErr != nil {
		return "", r.createBlogErr
	}
	blog.ID = r.newID()
	blog.CreatedAt = time.Now()
	stored := *blog
	r.blogs[blog.ID] = &stored
	return blog.ID, nil
}

func (r *repoMock) GetBlog(_ context.Context, id string) (*docstore.Blog, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	blog, found := r.blogs[id]
	if !found {
		return nil, docstore.ErrBlogNotFound
	}
	copied := *blog
	return &copied, nil
}

func (r *repoMock) UpdateBlog(_ context.Context, id string, fields docstore.BlogFields) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	blog, found := r.blogs[id]
	if !found {
		return docstore.ErrBlogNotFound
	}
	blog.Title = fields.Title
	blog.Description = fields.Description
	blog.Content = fields.Content
	blog.ImageURL = fields.ImageURL
	return nil
}

func (r *repoMock) DeleteBlog(_ context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.deleteBlogErr != nil {
		return r.deleteBlogErr
	}
	if _, found := r.blogs[id]; !found {
		return docstore.ErrBlogNotFound
	}
	delete(r.blogs, id)
	return nil
}

func (r *repoMock) CreateComment(_ context.Context, comment *docstore.Comment) (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	comment.ID = r.newID()
	comment.CreatedAt = time.Now()
	stored := *comment
	r.comments[comment.ID] = &stored
	return comment.ID, nil
}

func (r *repoMock) GetComment(_ context.Context, id string) (*docstore.Comment, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	comment, found := r.comments[id]
	if !found {
		return nil, docstore.ErrCommentNotFound
	}
	copied := *comment
	return &copied, nil
}

func (r *repoMock) DeleteComment(_ context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, found := r.comments[id]; !found {
		return docstore.ErrCommentNotFound
	}
	delete(r.comments, id)
	return nil
}

type blobsMock struct {
	mutex   sync.Mutex
	uploads []string
	deleted []string

	uploadErr error
	deleteErr error
}

func newBlobsMock() *blobsMock {
	return &blobsMock{}
}

func (b *blobsMock) Upload(_ context.Context, _ io.Reader, _ int64, _ string) (string, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.uploadErr != nil {
		return "", b.uploadErr
	}
	blobURL := fmt.Sprintf("http://localhost:9000/blog-images/user-%d", len(b.uploads)+1)
	b.uploads = append(b.uploads, blobURL)
	return blobURL, nil
}

func (b *blobsMock) Delete(_ context.Context, blobURL string) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.deleted = append(b.deleted, blobURL)
	return nil
}

func (b *blobsMock) uploadCount() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.uploads)
}

func (b *blobsMock) lastUpload() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if len(b.uploads) == 0 {
		return ""
	}
	return b.uploads[len(b.uploads)-1]
}

type gatewayMock struct {
	mutex       sync.Mutex
	userID      string
	registerErr error
	loginErr    error
	logoutErr   error

	registerCalls int
	loginCalls    int
	logoutCalls   int
}

func (g *gatewayMock) Register(_ context.Context, _, _ string) (string, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.registerCalls++
	if g.registerErr != nil {
		return "", g.registerErr
	}
	return g.userID, nil
}

func (g *gatewayMock) Login(_ context.Context, _, _ string) (string, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.loginCalls++
	if g.loginErr != nil {
		return "", g.loginErr
	}
	return g.userID, nil
}

func (g *gatewayMock) Logout(_ context.Context) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.logoutCalls++
	return g.logoutErr
}
