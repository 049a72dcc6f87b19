package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"harvest/internal/domain"
	"harvest/internal/port"
)

var (
	bucketDocs  = []byte("docs")
	bucketBlobs = []byte("blobs")
	bucketMeta  = []byte("meta")
)

// BoltCache persists fetched documents across runs.
type BoltCache struct {
	db *bbolt.DB
}

var _ port.DocumentCache = (*BoltCache)(nil)

func NewBoltCache(path string) (*BoltCache, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketDocs, bucketBlobs, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltCache{db: db}, nil
}

type docMeta struct {
	URL       string `json:"url"`
	FetchedAt int64  `json:"fetched_at"`
	Size      int    `json:"size"`
}

func (s *BoltCache) PutDoc(doc domain.Document) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta := docMeta{
			URL:       doc.URL,
			FetchedAt: doc.FetchedAt.Unix(),
			Size:      len(doc.Text),
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketDocs).Put([]byte(doc.ID), data); err != nil {
			return err
		}
		return tx.Bucket(bucketBlobs).Put([]byte(doc.ID), []byte(doc.Text))
	})
}

func (s *BoltCache) GetDoc(id string) (domain.Document, bool, error) {
	var doc domain.Document
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(id))
		if data == nil {
			return nil
		}
		var meta docMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return fmt.Errorf("corrupt cache entry %s: %w", id, err)
		}
		text := tx.Bucket(bucketBlobs).Get([]byte(id))
		if text == nil {
			return nil
		}
		doc = domain.Document{
			ID:        id,
			URL:       meta.URL,
			Text:      string(text),
			FetchedAt: time.Unix(meta.FetchedAt, 0),
		}
		found = true
		return nil
	})
	return doc, found, err
}

func (s *BoltCache) DeleteDoc(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketDocs).Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(bucketBlobs).Delete([]byte(id))
	})
}

// ListDocs returns cached document metadata ordered by id. Text is not loaded.
func (s *BoltCache) ListDocs() ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			var meta docMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return err
			}
			docs = append(docs, domain.Document{
				ID:        string(k),
				URL:       meta.URL,
				FetchedAt: time.Unix(meta.FetchedAt, 0),
			})
			return nil
		})
	})
	return docs, err
}

func (s *BoltCache) Stats() (domain.CacheStats, error) {
	var stats domain.CacheStats
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			var meta docMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return err
			}
			stats.Documents++
			stats.Bytes += int64(meta.Size)
			return nil
		})
	})
	return stats, err
}

func (s *BoltCache) Close() error {
	return s.db.Close()
}
