// Package localfile provides a source fetcher for files on disk.
package localfile

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/askdoc-labs/askdoc-cli/internal/core/domain"
	"github.com/askdoc-labs/askdoc-cli/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.SourceFetcher = (*Fetcher)(nil)

// Fetcher reads document sources from the local filesystem. The MIME
// type is derived from the file extension; extraction falls back to
// content sniffing when the extension is unknown.
type Fetcher struct{}

// NewFetcher creates a local file fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{}
}

// Fetch reads the file at ref.
func (f *Fetcher) Fetch(_ context.Context, ref string) (*domain.RawSource, error) {
	content, err := os.ReadFile(ref)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", ref, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(ref))

	return &domain.RawSource{
		Ref:      ref,
		Content:  content,
		MIMEType: mimeType,
	}, nil
}
