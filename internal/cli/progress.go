package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/vvka-141/flywaysum/internal/repair"
	"github.com/vvka-141/flywaysum/internal/search"
	"github.com/vvka-141/flywaysum/internal/tui"
	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// spinnerSearcher renders search progress with a bubbletea spinner.
type spinnerSearcher struct {
	forcer *search.Forcer
	out    io.Writer
}

func (s spinnerSearcher) FindMatchingComment(ctx context.Context, content []byte, target flywaysum.Checksum) (string, bool, error) {
	title := fmt.Sprintf("Searching for '--<chars>' producing %s", target)
	return tui.RunSearch(ctx, s.out, title, func(ctx context.Context, onEvent func(search.Event)) (string, bool, error) {
		return s.forcer.WithProgress(onEvent).FindMatchingComment(ctx, content, target)
	})
}

// newSearcher returns a spinner in interactive terminals and plain progress
// lines through logger otherwise.
func newSearcher(forcer *search.Forcer, interactive bool, out io.Writer, logger flywaysum.Logger) repair.Searcher {
	if interactive {
		return spinnerSearcher{forcer: forcer, out: out}
	}
	return forcer.WithProgress(search.LogProgress(logger))
}
