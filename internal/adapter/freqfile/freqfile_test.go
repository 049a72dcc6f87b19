package freqfile

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harvest/internal/domain"
)

func TestFileNames(t *testing.T) {
	assert.Equal(t, "unigrams-6334220.csv", FileName(1, "6334220"))
	assert.Equal(t, "bigrams-combined.csv", CombinedName(2))
	assert.Equal(t, "trigrams-combined.csv", CombinedName(3))
}

func TestWriteRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	table := domain.FrequencyTable{
		{Gram: domain.NGram{"quick", "quick"}, Count: 3},
		{Gram: domain.NGram{"quick", "fox"}, Count: 1},
		{Gram: domain.NGram{"fox", "jump"}, Count: 1},
	}

	path, err := Write(dir, FileName(2, "doc"), table)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bigrams-doc.csv"), path)

	got, err := Read(path)
	require.NoError(t, err)

	byGram := func(ft domain.FrequencyTable) {
		sort.Slice(ft, func(i, j int) bool { return ft[i].Gram.String() < ft[j].Gram.String() })
	}
	byGram(table)
	byGram(got)
	if diff := cmp.Diff(table, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_Format(t *testing.T) {
	dir := t.TempDir()
	table := domain.FrequencyTable{
		{Gram: domain.NGram{"quick"}, Count: 2},
		{Gram: domain.NGram{"fox"}, Count: 1},
	}

	path, err := Write(dir, FileName(1, "x"), table)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "quick,2\nfox,1\n", string(data))
}

func TestWrite_EmptyTable(t *testing.T) {
	dir := t.TempDir()

	path, err := Write(dir, CombinedName(3), nil)
	require.NoError(t, err)

	got, err := Read(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWrite_MissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does-not-exist")

	_, err := Write(dir, "unigrams-x.csv", domain.FrequencyTable{{Gram: domain.NGram{"a"}, Count: 1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOutputDirMissing))

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "writer must not create the directory")
}

func TestDecode_InvalidCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("quick,many\n"), 0644))

	_, err := Read(path)
	assert.Error(t, err)
}
