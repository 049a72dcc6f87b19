package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"harvest/config"
	"harvest/internal/domain"
)

func openTestCache(t *testing.T) *BoltCache {
	t.Helper()
	s, err := NewBoltCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltCache_PutGet(t *testing.T) {
	s := openTestCache(t)

	fetched := time.Unix(1700000000, 0)
	doc := domain.Document{ID: "6334220", URL: "http://example.com/6334220.txt", Text: "a claim", FetchedAt: fetched}
	require.NoError(t, s.PutDoc(doc))

	got, ok, err := s.GetDoc("6334220")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, doc.Text, got.Text)
	assert.Equal(t, doc.URL, got.URL)
	assert.True(t, got.FetchedAt.Equal(fetched))

	_, ok, err = s.GetDoc("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoltCache_ListStatsDelete(t *testing.T) {
	s := openTestCache(t)

	require.NoError(t, s.PutDoc(domain.Document{ID: "b", Text: "12345"}))
	require.NoError(t, s.PutDoc(domain.Document{ID: "a", Text: "123"}))

	docs, err := s.ListDocs()
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, domain.CacheStats{Documents: 2, Bytes: 8}, stats)

	require.NoError(t, s.DeleteDoc("a"))
	_, ok, err := s.GetDoc("a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoltCache_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := NewBoltCache(path)
	require.NoError(t, err)
	require.NoError(t, s.PutDoc(domain.Document{ID: "1", Text: "persisted"}))
	require.NoError(t, s.Close())

	s, err = NewBoltCache(path)
	require.NoError(t, err)
	defer s.Close()

	got, ok, err := s.GetDoc("1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "persisted", got.Text)
}

func TestBoltCache_MigrationFresh(t *testing.T) {
	s := openTestCache(t)
	cfg := config.DefaultConfig()

	result, err := s.CheckMigration(cfg)
	require.NoError(t, err)
	assert.True(t, result.NeedsMigration)
	assert.False(t, result.NeedsRebuild)

	require.NoError(t, s.Migrate(cfg))

	result, err = s.CheckMigration(cfg)
	require.NoError(t, err)
	assert.False(t, result.NeedsMigration)
	assert.False(t, result.NeedsRebuild)
}

func TestBoltCache_SourceChangeRebuilds(t *testing.T) {
	s := openTestCache(t)
	cfg := config.DefaultConfig()

	_, err := s.Prepare(cfg)
	require.NoError(t, err)
	require.NoError(t, s.PutDoc(domain.Document{ID: "1", Text: "old corpus"}))

	other := config.DefaultConfig()
	other.Corpus.BaseURL = "http://elsewhere.example/"

	result, err := s.Prepare(other)
	require.NoError(t, err)
	assert.True(t, result.NeedsRebuild)
	assert.Equal(t, "document source changed", result.Reason)

	_, ok, err := s.GetDoc("1")
	require.NoError(t, err)
	assert.False(t, ok, "cache should be cleared after source change")

	info, err := s.GetSchemaInfo()
	require.NoError(t, err)
	assert.Equal(t, ComputeSourceHash(other), info.SourceHash)
}

func TestBoltCache_MigrateV1InlineText(t *testing.T) {
	s := openTestCache(t)
	cfg := config.DefaultConfig()

	require.NoError(t, s.SetSchemaInfo(&SchemaInfo{Version: 1, SourceHash: ComputeSourceHash(cfg)}))
	require.NoError(t, s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).Put([]byte("9"), []byte(`{"url":"u","fetched_at":1,"text":"inline body"}`))
	}))

	result, err := s.Prepare(cfg)
	require.NoError(t, err)
	assert.True(t, result.NeedsMigration)
	assert.Equal(t, 1, result.OldVersion)

	got, ok, err := s.GetDoc("9")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "inline body", got.Text)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(len("inline body")), stats.Bytes)
}

func TestComputeSourceHash(t *testing.T) {
	a := config.DefaultConfig()
	b := config.DefaultConfig()
	assert.Equal(t, ComputeSourceHash(a), ComputeSourceHash(b))

	b.Analysis.TopN = 99
	assert.Equal(t, ComputeSourceHash(a), ComputeSourceHash(b), "analysis settings do not affect the source")

	b.Corpus.Suffix = ".xml"
	assert.NotEqual(t, ComputeSourceHash(a), ComputeSourceHash(b))
}
