package kms

import (
	"context"
	"os"

	"github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/pkg/errors"
)

// FileKeySource reads the PEM file on every call so a rotated key is picked up without a restart.
type FileKeySource struct {
	path string
}

var _ service.KeySource = (*FileKeySource)(nil)

func NewFileKeySource(path string) *FileKeySource {
	return &FileKeySource{path: path}
}

func (s *FileKeySource) PrivateKeyPEM(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", errors.ErrKeyLoad(s.Name(), "cannot read private key file").WithCause(err)
	}
	return string(data), nil
}

func (s *FileKeySource) Name() string {
	return "file:" + s.path
}
