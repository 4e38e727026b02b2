package evidence

import (
	"context"
	"crypto/sha256"
	"sync"

	"github.com/mr-tron/base58"
	"golang.org/x/sync/errgroup"

	dErrors "lexara/pkg/domain-errors"
)

// uploadConcurrency bounds parallel uploads in UploadMany.
const uploadConcurrency = 4

// InMemoryStore is a content-addressed in-memory evidence store for tests and
// local use. CIDs are base58-encoded SHA-256 digests of the file bytes.
type InMemoryStore struct {
	mu    sync.RWMutex
	files map[string]File
}

// NewInMemoryStore constructs an empty in-memory evidence store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{files: make(map[string]File)}
}

// CID computes the content identifier for a byte slice.
func CID(data []byte) string {
	sum := sha256.Sum256(data)
	return base58.Encode(sum[:])
}

// Upload stores the file under its content identifier. Uploading identical
// bytes twice is a no-op returning the same CID.
func (s *InMemoryStore) Upload(ctx context.Context, file File) (string, error) {
	if len(file.Data) == 0 {
		return "", ErrEmptyFile
	}
	if err := ctx.Err(); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeStorage, "upload cancelled")
	}

	cid := CID(file.Data)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.files[cid]; !exists {
		s.files[cid] = file
	}
	return cid, nil
}

// UploadMany uploads files in parallel, preserving input order in the result.
// Any failure aborts the batch.
func (s *InMemoryStore) UploadMany(ctx context.Context, files []File) ([]string, error) {
	cids := make([]string, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, file := range files {
		g.Go(func() error {
			cid, err := s.Upload(ctx, file)
			if err != nil {
				return err
			}
			cids[i] = cid
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cids, nil
}

// Fetch retrieves a stored file by CID.
func (s *InMemoryStore) Fetch(_ context.Context, cid string) (File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if file, ok := s.files[cid]; ok {
		return file, nil
	}
	return File{}, ErrNotFound
}
