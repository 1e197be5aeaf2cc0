// Package fetch routes source references to the fetcher that can serve
// them: http(s) URLs to the HTTP fetcher, everything else to the local
// file fetcher.
package fetch

import (
	"context"
	"strings"

	"github.com/askdoc-labs/askdoc-cli/internal/core/domain"
	"github.com/askdoc-labs/askdoc-cli/internal/core/ports/driven"
)

// Ensure Router implements the interface.
var _ driven.SourceFetcher = (*Router)(nil)

// Router dispatches Fetch calls by reference scheme.
type Router struct {
	remote driven.SourceFetcher
	local  driven.SourceFetcher
}

// NewRouter creates a scheme-dispatching fetcher.
func NewRouter(remote, local driven.SourceFetcher) *Router {
	return &Router{remote: remote, local: local}
}

// Fetch delegates to the remote fetcher for http(s) references and to
// the local fetcher otherwise.
func (r *Router) Fetch(ctx context.Context, ref string) (*domain.RawSource, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return r.remote.Fetch(ctx, ref)
	}
	return r.local.Fetch(ctx, ref)
}
