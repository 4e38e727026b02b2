// Package evidence defines the content-addressed store for supporting
// documents: credential scans, dispute records, work artifacts. The engine
// only depends on the port; storage backends are collaborators.
package evidence

import (
	"context"

	dErrors "lexara/pkg/domain-errors"
)

// File is an evidence document to upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
	Metadata    map[string]string
}

// Store is the evidence storage port. Upload returns a content identifier
// (CID) derived from the file bytes, so identical content always yields the
// same CID.
type Store interface {
	Upload(ctx context.Context, file File) (cid string, err error)
	UploadMany(ctx context.Context, files []File) (cids []string, err error)
	Fetch(ctx context.Context, cid string) (File, error)
}

// ErrNotFound is returned by Fetch for an unknown CID.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "evidence not found")

// ErrEmptyFile is returned when an upload carries no bytes.
var ErrEmptyFile = dErrors.New(dErrors.CodeValidation, "evidence file is empty")
