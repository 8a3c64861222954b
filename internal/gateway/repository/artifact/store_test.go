package artifact

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "p1", "itinerary.md", []byte("# Plan")))
	require.NoError(t, s.Put(ctx, " p1 ", "itinerary.docx", []byte("zip")))
	require.NoError(t, s.Put(ctx, "p2", "itinerary.md", []byte("other")))

	got, err := s.Get(ctx, "p1", "itinerary.md")
	require.NoError(t, err)
	assert.Equal(t, "# Plan", string(got))

	got[0] = 'X'
	again, _ := s.Get(ctx, "p1", "itinerary.md")
	assert.Equal(t, "# Plan", string(again))

	names, err := s.List(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"itinerary.docx", "itinerary.md"}, names)

	_, err = s.Get(ctx, "p1", "missing.md")
	assert.ErrorIs(t, err, ErrNotFound)

	u, err := s.GetURL(ctx, "p1", "itinerary.md")
	require.NoError(t, err)
	assert.Empty(t, u)
}

func TestNormalizeRejectsPaths(t *testing.T) {
	for _, tc := range []struct{ plan, name string }{
		{"", "a.md"},
		{"p", ""},
		{"p", "../secret"},
		{"p", "dir/a.md"},
		{"p/q", "a.md"},
		{"p", ".."},
	} {
		_, _, err := normalize(tc.plan, tc.name)
		assert.Error(t, err, "%q %q", tc.plan, tc.name)
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("Trip.PDF"))
	assert.Equal(t, "text/markdown; charset=utf-8", ContentType("a.md"))
	assert.Equal(t, "application/octet-stream", ContentType("a.bin"))
}

type countingStore struct {
	*MemoryStore
	gets, lists, urls int
	failGet           bool
}

func (c *countingStore) Get(ctx context.Context, planID, name string) ([]byte, error) {
	c.gets++
	if c.failGet {
		return nil, errors.New("origin down")
	}
	return c.MemoryStore.Get(ctx, planID, name)
}

func (c *countingStore) List(ctx context.Context, planID string) ([]string, error) {
	c.lists++
	return c.MemoryStore.List(ctx, planID)
}

func (c *countingStore) GetURL(context.Context, string, string) (string, error) {
	c.urls++
	return "https://s3.example.com/signed", nil
}

func TestCachedStore(t *testing.T) {
	ctx := context.Background()
	origin := &countingStore{MemoryStore: NewMemoryStore()}
	require.NoError(t, origin.MemoryStore.Put(ctx, "p1", "seed.md", []byte("seed")))
	s := NewCachedStore(origin, CacheConfig{})

	for i := 0; i < 3; i++ {
		b, err := s.Get(ctx, "p1", "seed.md")
		require.NoError(t, err)
		assert.Equal(t, "seed", string(b))
	}
	assert.Equal(t, 1, origin.gets)

	names, err := s.List(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"seed.md"}, names)
	_, _ = s.List(ctx, "p1")
	assert.Equal(t, 1, origin.lists)

	// a write invalidates the listing and primes the blob cache
	require.NoError(t, s.Put(ctx, "p1", "new.md", []byte("new")))
	names, err = s.List(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"new.md", "seed.md"}, names)
	assert.Equal(t, 2, origin.lists)
	b, err := s.Get(ctx, "p1", "new.md")
	require.NoError(t, err)
	assert.Equal(t, "new", string(b))
	assert.Equal(t, 1, origin.gets)

	for i := 0; i < 2; i++ {
		u, err := s.GetURL(ctx, "p1", "new.md")
		require.NoError(t, err)
		assert.Equal(t, "https://s3.example.com/signed", u)
	}
	assert.Equal(t, 1, origin.urls)

	origin.failGet = true
	_, err = s.Get(ctx, "p1", "absent.md")
	assert.Error(t, err)

	m := s.Metrics()
	assert.Equal(t, uint64(3), m.BlobHits)
	assert.Equal(t, uint64(2), m.BlobMisses)
	assert.Equal(t, uint64(1), m.URLHits)
	assert.Equal(t, uint64(1), m.OriginWrites)
	assert.Equal(t, uint64(1), m.OriginReadErr)
}

func TestPostgresStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	s := NewPostgresStore(db)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS plan_files").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO plan_files").
		WithArgs("p1", "itinerary.md", []byte("# Plan"), int64(6), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT content FROM plan_files").
		WithArgs("p1", "itinerary.md").
		WillReturnRows(sqlmock.NewRows([]string{"content"}).AddRow([]byte("# Plan")))
	mock.ExpectQuery("SELECT content FROM plan_files").
		WithArgs("p1", "missing.md").
		WillReturnRows(sqlmock.NewRows([]string{"content"}))
	mock.ExpectQuery("SELECT name FROM plan_files").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("itinerary.docx").AddRow("itinerary.md"))

	require.NoError(t, s.Put(ctx, "p1", "itinerary.md", []byte("# Plan")))

	got, err := s.Get(ctx, "p1", "itinerary.md")
	require.NoError(t, err)
	assert.Equal(t, "# Plan", string(got))

	_, err = s.Get(ctx, "p1", "missing.md")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := s.List(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"itinerary.docx", "itinerary.md"}, names)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SchemaErrorIsSticky(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS plan_files").WillReturnError(errors.New("permission denied"))
	s := NewPostgresStore(db)
	err = s.Put(context.Background(), "p1", "a.md", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	_, err = s.List(context.Background(), "p1")
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewS3StoreValidatesConfig(t *testing.T) {
	_, err := NewS3Store(S3Config{})
	assert.Error(t, err)
	_, err = NewS3Store(S3Config{Endpoint: "minio:9000", Bucket: "plans"})
	assert.Error(t, err)

	s, err := NewS3Store(S3Config{Endpoint: "minio:9000", AccessKey: "a", SecretKey: "b", Bucket: "plans"})
	require.NoError(t, err)
	u, err := s.GetURL(context.Background(), "p1", "itinerary.md")
	require.NoError(t, err)
	assert.Contains(t, u, "http://minio:9000/plans/p1/itinerary.md")
	assert.Contains(t, u, "response-content-disposition")
}
