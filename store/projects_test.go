package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/reunionrs/reunion-site-backend/errs"
	"github.com/reunionrs/reunion-site-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepo keeps projects in a map and can be told to fail.
type memoryRepo struct {
	mu       sync.Mutex
	projects map[uuid.UUID]models.Project
	clock    time.Time
	fail     error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		projects: make(map[uuid.UUID]models.Project),
		clock:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *memoryRepo) FindAll(ctx context.Context) ([]*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	out := make([]*models.Project, 0, len(r.projects))
	for _, project := range r.projects {
		project := project
		out = append(out, &project)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	project, ok := r.projects[id]
	if !ok {
		return nil, nil
	}
	return &project, nil
}

func (r *memoryRepo) Add(ctx context.Context, project *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.clock = r.clock.Add(time.Minute)
	project.ID = uuid.New()
	project.CreatedAt = r.clock
	r.projects[project.ID] = *project
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	project, ok := r.projects[id]
	if !ok {
		return errs.NewNotFound("project")
	}
	if title, ok := columns["title"].(string); ok {
		project.Title = title
	}
	if status, ok := columns["status"].(string); ok {
		project.Status = status
	}
	r.projects[id] = project
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	if _, ok := r.projects[id]; !ok {
		return errs.NewNotFound("project")
	}
	delete(r.projects, id)
	return nil
}

func (r *memoryRepo) setFail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

func validInput() models.ProjectInput {
	return models.ProjectInput{
		Title:       "X",
		Status:      "Draft",
		Description: "Y",
		PosterURL:   "http://p",
		VideoURL:    "http://v",
	}
}

func ptr[T any](v T) *T { return &v }

// recorder collects subscription deliveries.
type recorder struct {
	deliveries chan []models.Project
}

func newRecorder() *recorder {
	return &recorder{deliveries: make(chan []models.Project, 16)}
}

func (r *recorder) onChange(projects []models.Project) {
	r.deliveries <- projects
}

func (r *recorder) next(t *testing.T) []models.Project {
	t.Helper()
	select {
	case projects := <-r.deliveries:
		return projects
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
		return nil
	}
}

func TestCreateThenRead(t *testing.T) {
	projects := NewProjects(newMemoryRepo(), nil)
	ctx := context.Background()

	id, err := projects.Create(ctx, validInput())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	project, err := projects.Read(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.Equal(t, "X", project.Title)
	assert.Equal(t, "Y", project.FullDescription, "falls back to description")
	assert.Equal(t, models.DefaultColor, project.Color)
	assert.NotNil(t, project.Screenshots)
	assert.Empty(t, project.Screenshots)
	assert.False(t, project.CreatedAt.IsZero())
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	repo := newMemoryRepo()
	projects := NewProjects(repo, nil)

	in := validInput()
	in.PosterURL = ""
	_, err := projects.Create(context.Background(), in)
	assert.True(t, errs.IsMissingRequiredFieldError(err))
	assert.Empty(t, repo.projects)
}

func TestReadMissing(t *testing.T) {
	projects := NewProjects(newMemoryRepo(), nil)

	project, err := projects.Read(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, project)
}

func TestUpdateKeepsIdentity(t *testing.T) {
	projects := NewProjects(newMemoryRepo(), nil)
	ctx := context.Background()

	id, err := projects.Create(ctx, validInput())
	require.NoError(t, err)
	created, err := projects.Read(ctx, id)
	require.NoError(t, err)

	require.NoError(t, projects.Update(ctx, id, models.ProjectPatch{Title: ptr("Imperial Commando")}))

	updated, err := projects.Read(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Imperial Commando", updated.Title)
	assert.Equal(t, "Draft", updated.Status)
}

func TestUpdateRevalidatesMergedRecord(t *testing.T) {
	projects := NewProjects(newMemoryRepo(), nil)
	ctx := context.Background()

	id, err := projects.Create(ctx, validInput())
	require.NoError(t, err)

	err = projects.Update(ctx, id, models.ProjectPatch{Title: ptr("  ")})
	assert.True(t, errs.IsValidationError(err))

	project, err := projects.Read(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "X", project.Title)
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	projects := NewProjects(newMemoryRepo(), nil)
	ctx := context.Background()

	assert.True(t, errs.IsNotFound(projects.Update(ctx, uuid.New(), models.ProjectPatch{Title: ptr("ghost")})))
	assert.True(t, errs.IsNotFound(projects.Delete(ctx, uuid.New())))
}

func TestStoreFailureIsStoreError(t *testing.T) {
	repo := newMemoryRepo()
	projects := NewProjects(repo, nil)
	repo.setFail(errors.New("dial tcp: connection refused"))

	_, err := projects.Create(context.Background(), validInput())
	assert.True(t, errs.IsStoreError(err))
	assert.True(t, errs.IsDatabaseConnectionError(err))

	_, err = projects.ListAll(context.Background())
	assert.True(t, errs.IsStoreError(err))
}

func TestCreateThenDeleteLeavesNothing(t *testing.T) {
	projects := NewProjects(newMemoryRepo(), nil)
	ctx := context.Background()

	id, err := projects.Create(ctx, validInput())
	require.NoError(t, err)
	require.NoError(t, projects.Delete(ctx, id))

	all, err := projects.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	projects := NewProjects(newMemoryRepo(), nil)
	ctx := context.Background()

	rec := newRecorder()
	unsubscribe, err := projects.Subscribe(ctx, rec.onChange)
	require.NoError(t, err)
	assert.Empty(t, rec.next(t), "initial snapshot of an empty collection")

	id, err := projects.Create(ctx, validInput())
	require.NoError(t, err)
	snapshot := rec.next(t)
	require.Len(t, snapshot, 1)
	assert.Equal(t, id, snapshot[0].ID)

	require.NoError(t, projects.Delete(ctx, id))
	assert.Empty(t, rec.next(t))

	unsubscribe()
	assert.Equal(t, 0, projects.Subscribers())

	_, err = projects.Create(ctx, validInput())
	require.NoError(t, err)
	select {
	case <-rec.deliveries:
		t.Fatal("delivery after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFailedWriteIsNotPublished(t *testing.T) {
	repo := newMemoryRepo()
	projects := NewProjects(repo, nil)
	ctx := context.Background()

	rec := newRecorder()
	unsubscribe, err := projects.Subscribe(ctx, rec.onChange)
	require.NoError(t, err)
	defer unsubscribe()
	rec.next(t)

	in := validInput()
	in.Title = ""
	_, err = projects.Create(ctx, in)
	require.Error(t, err)

	select {
	case <-rec.deliveries:
		t.Fatal("snapshot published for a rejected write")
	case <-time.After(100 * time.Millisecond):
	}
}

// pausingRepo holds the first FindAll after it has read, so a write can land
// between the read and whatever the caller does with it.
type pausingRepo struct {
	*memoryRepo
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (r *pausingRepo) FindAll(ctx context.Context) ([]*models.Project, error) {
	found, err := r.memoryRepo.FindAll(ctx)
	r.once.Do(func() {
		close(r.read)
		<-r.release
	})
	return found, err
}

func (r *memoryRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.projects)
}

func TestSubscribeSeesWriteDuringFirstRead(t *testing.T) {
	repo := &pausingRepo{memoryRepo: newMemoryRepo(), read: make(chan struct{}), release: make(chan struct{})}
	projects := NewProjects(repo, nil)
	ctx := context.Background()
	rec := newRecorder()

	subscribed := make(chan func(), 1)
	go func() {
		unsubscribe, err := projects.Subscribe(ctx, rec.onChange)
		assert.NoError(t, err)
		subscribed <- unsubscribe
	}()
	<-repo.read

	created := make(chan error, 1)
	go func() {
		_, err := projects.Create(ctx, validInput())
		created <- err
	}()
	require.Eventually(t, func() bool { return repo.count() == 1 }, time.Second, 5*time.Millisecond)
	close(repo.release)

	require.NoError(t, <-created)
	unsubscribe := <-subscribed
	require.NotNil(t, unsubscribe)
	defer unsubscribe()

	var latest []models.Project
	require.Eventually(t, func() bool {
		for {
			select {
			case latest = <-rec.deliveries:
			default:
				return len(latest) == 1
			}
		}
	}, 2*time.Second, 10*time.Millisecond)
}

// cancellingRepo cancels the writer's context right after the write commits,
// like a client hanging up.
type cancellingRepo struct {
	*memoryRepo
	cancel context.CancelFunc
}

func (r *cancellingRepo) Add(ctx context.Context, project *models.Project) error {
	err := r.memoryRepo.Add(ctx, project)
	r.cancel()
	return err
}

func (r *cancellingRepo) FindAll(ctx context.Context) ([]*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.memoryRepo.FindAll(ctx)
}

func TestCommittedWriteReachesSubscribersAfterCallerLeaves(t *testing.T) {
	requestCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := &cancellingRepo{memoryRepo: newMemoryRepo(), cancel: cancel}
	projects := NewProjects(repo, nil)

	rec := newRecorder()
	unsubscribe, err := projects.Subscribe(context.Background(), rec.onChange)
	require.NoError(t, err)
	defer unsubscribe()
	rec.next(t)

	_, err = projects.Create(requestCtx, validInput())
	require.NoError(t, err)
	require.Error(t, requestCtx.Err())
	assert.Len(t, rec.next(t), 1)
}

func TestRelayConvergesInstances(t *testing.T) {
	repo := newMemoryRepo()
	relay := NewLocalRelay()
	writer := NewProjects(repo, relay)
	reader := NewProjects(repo, relay)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reader.Start(ctx)
	go writer.Start(ctx)

	require.Eventually(t, func() bool {
		relay.mu.RLock()
		defer relay.mu.RUnlock()
		return len(relay.listeners) == 2
	}, time.Second, 10*time.Millisecond)

	rec := newRecorder()
	unsubscribe, err := reader.Subscribe(ctx, rec.onChange)
	require.NoError(t, err)
	defer unsubscribe()
	rec.next(t)

	_, err = writer.Create(ctx, validInput())
	require.NoError(t, err)
	assert.Len(t, rec.next(t), 1)
}
