package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"harvest/internal/domain"
	"harvest/internal/port"
)

// UploadUseCase uploads local files and issues a signed link for each.
type UploadUseCase struct {
	store  port.ObjectStore
	walker port.FileWalker
}

// NewUploadUseCase creates a new upload use case.
func NewUploadUseCase(store port.ObjectStore, walker port.FileWalker) *UploadUseCase {
	return &UploadUseCase{
		store:  store,
		walker: walker,
	}
}

// UploadRequest describes what to upload and how links are issued.
type UploadRequest struct {
	SourceDir string
	Prefix    string
	Expiry    time.Duration
	RunID     string
}

// ObjectKey returns the object key for a file at relPath under prefix.
func ObjectKey(prefix, relPath string) string {
	relPath = filepath.ToSlash(relPath)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return relPath
	}
	return path.Join(prefix, relPath)
}

func contentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".csv" {
		return "text/csv"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// Upload uploads every file the walker selects under req.SourceDir. It stops
// at the first failure and returns the objects already uploaded with the error.
func (u *UploadUseCase) Upload(ctx context.Context, req UploadRequest, progress func(domain.UploadedObject)) ([]domain.UploadedObject, error) {
	files, err := u.walker.Walk(req.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", req.SourceDir, err)
	}

	var metadata map[string]string
	if req.RunID != "" {
		metadata = map[string]string{"run-id": req.RunID}
	}

	uploaded := make([]domain.UploadedObject, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return uploaded, err
		}

		obj, err := u.uploadFile(ctx, file, req, metadata)
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, obj)

		slog.DebugContext(ctx, "uploaded file", "path", file.RelPath, "key", obj.Key, "bytes", obj.Size)
		if progress != nil {
			progress(obj)
		}
	}

	return uploaded, nil
}

func (u *UploadUseCase) uploadFile(ctx context.Context, file port.FileInfo, req UploadRequest, metadata map[string]string) (domain.UploadedObject, error) {
	f, err := os.Open(file.Path)
	if err != nil {
		return domain.UploadedObject{}, fmt.Errorf("failed to open %s: %w", file.Path, err)
	}
	defer f.Close()

	key := ObjectKey(req.Prefix, file.RelPath)
	err = u.store.Put(ctx, port.PutObject{
		Key:         key,
		Body:        f,
		Size:        file.Size,
		ContentType: contentType(file.Path),
		Metadata:    metadata,
	})
	if err != nil {
		return domain.UploadedObject{}, fmt.Errorf("failed to upload %s: %w", file.RelPath, err)
	}

	link, err := u.store.PresignGet(ctx, key, req.Expiry)
	if err != nil {
		return domain.UploadedObject{}, fmt.Errorf("failed to sign %s: %w", key, err)
	}

	return domain.UploadedObject{
		Path:      file.Path,
		Key:       key,
		Size:      file.Size,
		SignedURL: link,
	}, nil
}
