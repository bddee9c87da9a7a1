package service

import (
	"errors"
	"io"

	"github.com/vdappdev2/vtimestamp/internal/hash"
	"github.com/vdappdev2/vtimestamp/internal/model"
)

var ErrContentRequired = errors.New("content is required")

// HashService computes content digests for clients that cannot hash locally.
// It is a convenience only; the proof flows accept a client-supplied hash.
type HashService struct{}

// NewHashService creates a new HashService.
func NewHashService() *HashService {
	return &HashService{}
}

// HashText digests a text snippet.
func (s *HashService) HashText(text string) (model.HashResponse, error) {
	if text == "" {
		return model.HashResponse{}, ErrContentRequired
	}
	return model.HashResponse{
		SHA256: hash.Text(text),
		Size:   int64(len(text)),
	}, nil
}

// HashFile digests an uploaded file stream of known size.
func (s *HashService) HashFile(r io.Reader, size int64) (model.HashResponse, error) {
	digest, err := hash.Reader(r)
	if err != nil {
		return model.HashResponse{}, err
	}
	return model.HashResponse{SHA256: digest, Size: size}, nil
}
