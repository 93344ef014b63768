package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/survey/backend/internal/domain"
	"github.com/survey/backend/internal/repository/memory"
	"github.com/survey/backend/internal/service/trainee"
)

// countingRepo counts reads that reach the underlying repository.
type countingRepo struct {
	trainee.Repository
	findAll  atomic.Int32
	findByID atomic.Int32
}

func (c *countingRepo) FindAll(ctx context.Context) ([]domain.Trainee, error) {
	c.findAll.Add(1)
	return c.Repository.FindAll(ctx)
}

func (c *countingRepo) FindByID(ctx context.Context, id int) (*domain.Trainee, error) {
	c.findByID.Add(1)
	return c.Repository.FindByID(ctx, id)
}

func setup(t *testing.T) (*TraineeRepo, *countingRepo, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	inner := &countingRepo{Repository: memory.NewTraineeRepo()}
	return NewTraineeRepo(inner, client, "test:", time.Minute), inner, mr
}

func TestFindByID_ServedFromCacheOnSecondRead(t *testing.T) {
	repo, inner, mr := setup(t)
	ctx := context.Background()
	tr := &domain.Trainee{Lastname: "Doe", Firstname: "Jane"}
	require.NoError(t, repo.Create(ctx, tr))

	first, err := repo.FindByID(ctx, tr.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, tr.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, inner.findByID.Load())
	assert.True(t, mr.Exists("test:trainee:1"))
	assert.Equal(t, time.Minute, mr.TTL("test:trainee:1"))
}

func TestFindByID_NotFoundIsNotCached(t *testing.T) {
	repo, inner, mr := setup(t)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, 9)
	assert.ErrorIs(t, err, trainee.ErrNotFound)
	_, err = repo.FindByID(ctx, 9)
	assert.ErrorIs(t, err, trainee.ErrNotFound)

	assert.EqualValues(t, 2, inner.findByID.Load())
	assert.False(t, mr.Exists("test:trainee:9"))
}

func TestWritesInvalidate(t *testing.T) {
	repo, inner, mr := setup(t)
	ctx := context.Background()
	tr := &domain.Trainee{Lastname: "Doe", Firstname: "Jane"}
	require.NoError(t, repo.Create(ctx, tr))

	_, _ = repo.FindAll(ctx)
	_, _ = repo.FindByID(ctx, tr.ID)
	require.True(t, mr.Exists("test:trainee:all"))

	tr.Lastname = "Smith"
	require.NoError(t, repo.Update(ctx, tr))
	assert.False(t, mr.Exists("test:trainee:all"))
	assert.False(t, mr.Exists("test:trainee:1"))

	got, err := repo.FindByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Smith", got.Lastname)

	require.NoError(t, repo.Delete(ctx, tr.ID))
	_, err = repo.FindByID(ctx, tr.ID)
	assert.ErrorIs(t, err, trainee.ErrNotFound)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.EqualValues(t, 2, inner.findAll.Load())
}

func TestRedisDown_FallsBackToRepository(t *testing.T) {
	repo, inner, mr := setup(t)
	ctx := context.Background()
	tr := &domain.Trainee{Lastname: "Doe", Firstname: "Jane"}
	require.NoError(t, repo.Create(ctx, tr))

	mr.Close()

	got, err := repo.FindByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Doe", got.Lastname)
	assert.EqualValues(t, 1, inner.findByID.Load())
}

func TestCorruptEntry_IsIgnored(t *testing.T) {
	repo, inner, mr := setup(t)
	ctx := context.Background()
	tr := &domain.Trainee{Lastname: "Doe", Firstname: "Jane"}
	require.NoError(t, repo.Create(ctx, tr))
	require.NoError(t, mr.Set("test:trainee:1", "{not json"))

	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Doe", got.Lastname)
	assert.EqualValues(t, 1, inner.findByID.Load())
}

// pausingRepo holds the next FindByID after the row has been read, until
// release is closed.
type pausingRepo struct {
	trainee.Repository
	read    chan struct{}
	release chan struct{}
	once    sync.Once
}

func (p *pausingRepo) FindByID(ctx context.Context, id int) (*domain.Trainee, error) {
	t, err := p.Repository.FindByID(ctx, id)
	p.once.Do(func() {
		close(p.read)
		<-p.release
	})
	return t, err
}

func setupPausing(t *testing.T) (*TraineeRepo, *pausingRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	inner := &pausingRepo{
		Repository: memory.NewTraineeRepo(),
		read:       make(chan struct{}),
		release:    make(chan struct{}),
	}
	return NewTraineeRepo(inner, client, "test:", time.Minute), inner
}

func TestFindByID_ReadRacingDeleteIsNotCached(t *testing.T) {
	repo, inner := setupPausing(t)
	ctx := context.Background()
	tr := &domain.Trainee{Lastname: "A", Firstname: "B"}
	require.NoError(t, repo.Create(ctx, tr))

	done := make(chan struct{})
	go func() {
		defer close(done)
		got, err := repo.FindByID(ctx, tr.ID)
		assert.NoError(t, err)
		assert.NotNil(t, got)
	}()

	<-inner.read
	require.NoError(t, repo.Delete(ctx, tr.ID))
	close(inner.release)
	<-done

	_, err := repo.FindByID(ctx, tr.ID)
	assert.ErrorIs(t, err, trainee.ErrNotFound)
}

func TestFindByID_ReadRacingUpdateIsNotCached(t *testing.T) {
	repo, inner := setupPausing(t)
	ctx := context.Background()
	tr := &domain.Trainee{Lastname: "Old", Firstname: "B"}
	require.NoError(t, repo.Create(ctx, tr))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = repo.FindByID(ctx, tr.ID)
	}()

	<-inner.read
	updated := *tr
	updated.Lastname = "New"
	require.NoError(t, repo.Update(ctx, &updated))
	close(inner.release)
	<-done

	got, err := repo.FindByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Lastname)
}

func TestFindAll_ReadRacingCreateIsNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()

	inner := memory.NewTraineeRepo()
	repo := NewTraineeRepo(inner, client, "test:", time.Minute)

	gen, ok := repo.generation(ctx)
	require.True(t, ok)
	stale, err := inner.FindAll(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, &domain.Trainee{Lastname: "A", Firstname: "B"}))
	repo.set(ctx, gen, repo.key(allKey), stale)

	assert.False(t, mr.Exists("test:trainee:all"))
	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
