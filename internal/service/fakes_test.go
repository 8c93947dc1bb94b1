package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sort"
	"testing"
	"time"

	"github.com/maheshrc27/linkfeed/internal/models"
	"github.com/maheshrc27/linkfeed/internal/repository"
	"github.com/stretchr/testify/require"
)

// memDB backs the fake repositories. Names are resolved at read time, the
// same way the SQL joins do.
type memDB struct {
	nextID   int64
	clock    time.Time
	users    map[int64]*models.User
	posts    map[int64]*models.Post
	media    map[int64][]models.Media
	likes    map[int64][]int64
	comments map[int64][]models.Comment

	userLookups int
	failTx      error
}

func newMemDB() *memDB {
	return &memDB{
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:    make(map[int64]*models.User),
		posts:    make(map[int64]*models.Post),
		media:    make(map[int64][]models.Media),
		likes:    make(map[int64][]int64),
		comments: make(map[int64][]models.Comment),
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func (db *memDB) addUser(name string) *models.User {
	u := &models.User{ID: db.id(), Name: name, Email: fmt.Sprintf("%s@example.com", name)}
	db.users[u.ID] = u
	return u
}

type fakeTransactor struct{ db *memDB }

func (t fakeTransactor) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if t.db.failTx != nil {
		return t.db.failTx
	}
	return fn(nil)
}

type fakeUserRepo struct{ db *memDB }

func (r fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	u, ok := r.db.users[id]
	if !ok {
		return nil, false, nil
	}
	cp := *u
	return &cp, true, nil
}

func (r fakeUserRepo) GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	r.db.userLookups++
	var users []*models.User
	for _, id := range ids {
		if u, ok := r.db.users[id]; ok {
			cp := *u
			users = append(users, &cp)
		}
	}
	return users, nil
}

func (r fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	for _, u := range r.db.users {
		if u.Email == email {
			cp := *u
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (r fakeUserRepo) Create(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error) {
	for _, u := range r.db.users {
		if u.Email == user.Email {
			return 0, repository.ErrDuplicateEmail
		}
	}
	cp := *user
	cp.ID = r.db.id()
	r.db.users[cp.ID] = &cp
	return cp.ID, nil
}

func (r fakeUserRepo) UpdateName(ctx context.Context, id int64, name string) error {
	r.db.users[id].Name = name
	return nil
}

func (r fakeUserRepo) UpdateProfilePhoto(ctx context.Context, id int64, photo string) error {
	r.db.users[id].ProfilePhoto = &photo
	return nil
}

type fakePostRepo struct{ db *memDB }

func (r fakePostRepo) read(p *models.Post) *models.Post {
	cp := *p
	cp.Username = r.db.users[p.UserID].Name
	return &cp
}

func (r fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	p, ok := r.db.posts[id]
	if !ok {
		return nil, nil
	}
	return r.read(p), nil
}

func (r fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	cp := *post
	cp.ID = r.db.id()
	cp.CreatedAt = r.db.tick()
	cp.UpdatedAt = cp.CreatedAt
	r.db.posts[cp.ID] = &cp
	return cp.ID, nil
}

func (r fakePostRepo) List(ctx context.Context) ([]*models.Post, error) {
	return r.filter(func(*models.Post) bool { return true }), nil
}

func (r fakePostRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	return r.filter(func(p *models.Post) bool { return p.UserID == userID }), nil
}

func (r fakePostRepo) filter(keep func(*models.Post) bool) []*models.Post {
	var posts []*models.Post
	for _, p := range r.db.posts {
		if keep(p) {
			posts = append(posts, r.read(p))
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	return posts
}

func (r fakePostRepo) Update(ctx context.Context, tx *sql.Tx, post *models.Post) error {
	stored := r.db.posts[post.ID]
	stored.Content = post.Content
	stored.Image = post.Image
	stored.UpdatedAt = r.db.tick()
	return nil
}

func (r fakePostRepo) Remove(ctx context.Context, id int64) error {
	delete(r.db.posts, id)
	delete(r.db.media, id)
	delete(r.db.likes, id)
	delete(r.db.comments, id)
	return nil
}

type fakeMediaRepo struct{ db *memDB }

func (r fakeMediaRepo) Create(ctx context.Context, tx *sql.Tx, pm *models.Media) error {
	pm.ID = r.db.id()
	r.db.media[pm.PostID] = append(r.db.media[pm.PostID], *pm)
	return nil
}

func (r fakeMediaRepo) ListByPostID(ctx context.Context, postID int64) ([]models.Media, error) {
	return append([]models.Media(nil), r.db.media[postID]...), nil
}

func (r fakeMediaRepo) ListByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]models.Media, error) {
	out := make(map[int64][]models.Media)
	for _, id := range postIDs {
		if m := r.db.media[id]; len(m) > 0 {
			out[id] = append([]models.Media(nil), m...)
		}
	}
	return out, nil
}

func (r fakeMediaRepo) ReplaceForPost(ctx context.Context, tx *sql.Tx, postID int64, media []models.Media) error {
	delete(r.db.media, postID)
	for i := range media {
		media[i].PostID = postID
		media[i].DisplayOrder = i
		if err := r.Create(ctx, tx, &media[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r fakeMediaRepo) IsPathReferenced(ctx context.Context, path string) (bool, error) {
	for _, items := range r.db.media {
		for _, m := range items {
			if m.Path == path {
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeLikeRepo struct{ db *memDB }

func (r fakeLikeRepo) Toggle(ctx context.Context, postID, userID int64) (bool, error) {
	likes := r.db.likes[postID]
	for i, id := range likes {
		if id == userID {
			r.db.likes[postID] = append(likes[:i:i], likes[i+1:]...)
			return false, nil
		}
	}
	r.db.likes[postID] = append(likes, userID)
	return true, nil
}

func (r fakeLikeRepo) ListByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64)
	for _, id := range postIDs {
		if l := r.db.likes[id]; len(l) > 0 {
			out[id] = append([]int64(nil), l...)
		}
	}
	return out, nil
}

type fakeCommentRepo struct{ db *memDB }

func (r fakeCommentRepo) Create(ctx context.Context, comment *models.Comment) (int64, error) {
	cp := *comment
	cp.ID = r.db.id()
	cp.CreatedAt = r.db.tick()
	r.db.comments[cp.PostID] = append(r.db.comments[cp.PostID], cp)
	comment.CreatedAt = cp.CreatedAt
	return cp.ID, nil
}

func (r fakeCommentRepo) ListByPostIDs(ctx context.Context, postIDs []int64) (map[int64][]models.Comment, error) {
	out := make(map[int64][]models.Comment)
	for _, id := range postIDs {
		for _, c := range r.db.comments[id] {
			c.Username = r.db.users[c.UserID].Name
			out[id] = append(out[id], c)
		}
	}
	return out, nil
}

// fakeStorage records stores and deletes. With external set it hands out
// external ids like an object store would.
type fakeStorage struct {
	external  bool
	stored    []string
	deleted   []string
	failStore int
	deleteErr error
}

func (s *fakeStorage) Store(ctx context.Context, name, contentType string, data []byte) (*StoredObject, error) {
	if s.failStore > 0 && len(s.stored)+1 == s.failStore {
		return nil, errors.New("bucket unavailable")
	}
	s.stored = append(s.stored, name)
	if s.external {
		return &StoredObject{Path: "https://cdn.example.com/linkfeed/" + name, ExternalID: "linkfeed/" + name}, nil
	}
	return &StoredObject{Path: UploadsPrefix + name}, nil
}

func (s *fakeStorage) Delete(ctx context.Context, externalID string) error {
	s.deleted = append(s.deleted, externalID)
	return s.deleteErr
}

type recordingPublisher struct {
	events []models.PostEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event models.PostEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingCleanup struct {
	purged map[int64][]models.Media
	err    error
}

func (c *recordingCleanup) PurgeMedia(ctx context.Context, postID int64, media []models.Media) error {
	if c.purged == nil {
		c.purged = make(map[int64][]models.Media)
	}
	c.purged[postID] = media
	return c.err
}

type testFile struct {
	name        string
	contentType string
	data        []byte
}

var (
	pngData  = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
	jpegData = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0}, 32)...)
	pdfData  = []byte("%PDF-1.4\n%fake document body")
)

func pngFile(name string) testFile {
	return testFile{name: name, contentType: "image/png", data: pngData}
}

func videoFile(name string) testFile {
	return testFile{name: name, contentType: "video/mp4", data: []byte("not a real video stream")}
}

// fileHeaders builds multipart headers the way an HTTP request parse would.
func fileHeaders(t *testing.T, files ...testFile) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="media"; filename="%s"`, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	return form.File["media"]
}

type testEnv struct {
	db        *memDB
	storage   *fakeStorage
	publisher *recordingPublisher
	cleanup   *recordingCleanup
	media     MediaService
	posts     PostService
	users     UserService
}

func newTestEnv(external bool) *testEnv {
	db := newMemDB()
	storage := &fakeStorage{external: external}
	publisher := &recordingPublisher{}
	cleanup := &recordingCleanup{}
	ms := NewMediaService(storage)

	return &testEnv{
		db:        db,
		storage:   storage,
		publisher: publisher,
		cleanup:   cleanup,
		media:     ms,
		posts: NewPostService(
			fakeTransactor{db},
			fakePostRepo{db},
			fakeMediaRepo{db},
			fakeLikeRepo{db},
			fakeCommentRepo{db},
			ms,
			NewPostAggregator(fakeUserRepo{db}),
			cleanup,
			publisher,
		),
		users: NewUserService(fakeUserRepo{db}, ms),
	}
}
