package service

import (
	"strings"

	"github.com/noah-isme/lostid-api/pkg/storage"
)

// ImageLinks turns stored image references into signed download URLs.
type ImageLinks struct {
	signer *storage.SignedURLSigner
	prefix string
}

// NewImageLinks builds links under prefix, e.g. "/uploads".
func NewImageLinks(signer *storage.SignedURLSigner, prefix string) *ImageLinks {
	return &ImageLinks{signer: signer, prefix: prefix}
}

// Link returns a signed URL for filename or nil when there is no image.
func (l *ImageLinks) Link(filename *string) *string {
	if l == nil || l.signer == nil || filename == nil || *filename == "" {
		return nil
	}
	url, err := l.signer.URL(l.prefix, *filename)
	if err != nil {
		return nil
	}
	return &url
}

// Path returns the unsigned public path stored alongside an item.
func (l *ImageLinks) Path(filename string) string {
	if l == nil {
		return "/uploads/" + filename
	}
	return strings.TrimRight(l.prefix, "/") + "/" + filename
}

// Verify checks a download token for filename.
func (l *ImageLinks) Verify(filename, token string) error {
	if l == nil || l.signer == nil {
		return storage.ErrInvalidToken
	}
	return l.signer.Verify(filename, token)
}
