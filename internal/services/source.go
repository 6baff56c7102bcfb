package services

import (
	"context"
	"time"

	"github.com/otcheredev/ris-dicom-imaging/internal/imaging"
	"github.com/otcheredev/ris-dicom-imaging/internal/storage"
)

// storageSource opens an image file held in storage. Every Open fetches the
// object again, so a lazily loaded image reads it twice at most.
type storageSource struct {
	store   storage.Storage
	path    string
	timeout time.Duration
}

func (s *storageSource) Name() string { return s.path }

func (s *storageSource) Open() (imaging.SourceReader, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	data, err := s.store.Get(ctx, s.path)
	if err != nil {
		return nil, err
	}
	return imaging.NewBytesSource(s.path, data).Open()
}
