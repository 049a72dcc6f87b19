package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"harvest/config"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 2

var (
	keySchemaVersion = []byte("schema_version")
	keySourceHash    = []byte("source_hash")
)

// SchemaInfo stores schema version and the hash of the document source.
type SchemaInfo struct {
	Version    int    `json:"version"`
	SourceHash string `json:"source_hash"`
}

// GetSchemaInfo retrieves the current schema info from the database.
func (s *BoltCache) GetSchemaInfo() (*SchemaInfo, error) {
	var info SchemaInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if b == nil {
			return nil
		}

		versionData := b.Get(keySchemaVersion)
		if versionData != nil {
			if err := json.Unmarshal(versionData, &info.Version); err != nil {
				info.Version = 1
			}
		}

		hashData := b.Get(keySourceHash)
		if hashData != nil {
			info.SourceHash = string(hashData)
		}

		return nil
	})
	return &info, err
}

// SetSchemaInfo stores the schema info in the database.
func (s *BoltCache) SetSchemaInfo(info *SchemaInfo) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)

		versionData, err := json.Marshal(info.Version)
		if err != nil {
			return err
		}
		if err := b.Put(keySchemaVersion, versionData); err != nil {
			return err
		}

		return b.Put(keySourceHash, []byte(info.SourceHash))
	})
}

// ComputeSourceHash hashes the settings that determine what a cached id refers to.
// A different hash means cached documents may belong to another corpus.
func ComputeSourceHash(cfg *config.Config) string {
	relevant := struct {
		BaseURL string `json:"base_url"`
		Suffix  string `json:"suffix"`
	}{
		BaseURL: cfg.Corpus.BaseURL,
		Suffix:  cfg.Corpus.Suffix,
	}

	data, _ := json.Marshal(relevant)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}

// MigrationResult describes the result of a migration check.
type MigrationResult struct {
	NeedsMigration bool
	NeedsRebuild   bool
	OldVersion     int
	NewVersion     int
	Reason         string
}

// CheckMigration checks if migration or rebuild is needed.
func (s *BoltCache) CheckMigration(cfg *config.Config) (*MigrationResult, error) {
	info, err := s.GetSchemaInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get schema info: %w", err)
	}

	result := &MigrationResult{
		OldVersion: info.Version,
		NewVersion: CurrentSchemaVersion,
	}

	if info.Version == 0 {
		result.NeedsMigration = true
		result.Reason = "initializing schema version"
	} else if info.Version < CurrentSchemaVersion {
		result.NeedsMigration = true
		result.Reason = fmt.Sprintf("schema upgrade from v%d to v%d", info.Version, CurrentSchemaVersion)
	} else if info.Version > CurrentSchemaVersion {
		result.NeedsRebuild = true
		result.Reason = fmt.Sprintf("cache created by newer version (v%d > v%d)", info.Version, CurrentSchemaVersion)
		return result, nil
	}

	newHash := ComputeSourceHash(cfg)
	if info.SourceHash != "" && info.SourceHash != newHash {
		result.NeedsRebuild = true
		result.Reason = "document source changed"
	}

	return result, nil
}

// Migrate performs any necessary schema migrations.
func (s *BoltCache) Migrate(cfg *config.Config) error {
	info, err := s.GetSchemaInfo()
	if err != nil {
		return err
	}

	for v := info.Version; v < CurrentSchemaVersion; v++ {
		if err := s.runMigration(v, v+1); err != nil {
			return fmt.Errorf("migration from v%d to v%d failed: %w", v, v+1, err)
		}
	}

	return s.SetSchemaInfo(&SchemaInfo{
		Version:    CurrentSchemaVersion,
		SourceHash: ComputeSourceHash(cfg),
	})
}

// Prepare runs CheckMigration and then clears or migrates as required.
func (s *BoltCache) Prepare(cfg *config.Config) (*MigrationResult, error) {
	result, err := s.CheckMigration(cfg)
	if err != nil {
		return nil, err
	}
	if result.NeedsRebuild {
		if err := s.Clear(); err != nil {
			return nil, fmt.Errorf("failed to clear cache: %w", err)
		}
	}
	if err := s.Migrate(cfg); err != nil {
		return nil, err
	}
	return result, nil
}

// runMigration runs a specific version migration.
func (s *BoltCache) runMigration(from, to int) error {
	switch {
	case from == 0 && to == 1:
		return nil
	case from == 1 && to == 2:
		// v1 stored text inline in docs; v2 keeps metadata in docs and text in blobs.
		return s.db.Update(func(tx *bbolt.Tx) error {
			docs := tx.Bucket(bucketDocs)
			blobs := tx.Bucket(bucketBlobs)
			type v1Doc struct {
				URL       string `json:"url"`
				FetchedAt int64  `json:"fetched_at"`
				Text      string `json:"text"`
			}
			var rewrites []struct {
				id   []byte
				meta []byte
				text []byte
			}
			err := docs.ForEach(func(k, v []byte) error {
				var old v1Doc
				if err := json.Unmarshal(v, &old); err != nil {
					return err
				}
				if blobs.Get(k) != nil {
					return nil
				}
				meta, err := json.Marshal(docMeta{URL: old.URL, FetchedAt: old.FetchedAt, Size: len(old.Text)})
				if err != nil {
					return err
				}
				rewrites = append(rewrites, struct {
					id   []byte
					meta []byte
					text []byte
				}{append([]byte(nil), k...), meta, []byte(old.Text)})
				return nil
			})
			if err != nil {
				return err
			}
			for _, r := range rewrites {
				if err := docs.Put(r.id, r.meta); err != nil {
					return err
				}
				if err := blobs.Put(r.id, r.text); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		return nil
	}
}

// Clear removes all cached documents, keeping schema information.
func (s *BoltCache) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketDocs, bucketBlobs} {
			b := tx.Bucket(name)
			if b == nil {
				continue
			}

			c := b.Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
