package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/esprov/internal/ui/tui"
)

// Health prints the cluster health. A red cluster is printed and then
// returned as an error.
func Health(ctx context.Context, opts *GlobalOptions) error {
	s, err := newSession(opts)
	if err != nil {
		return err
	}
	defer s.close()

	h, err := s.provisioner.Health(ctx)
	if h == nil {
		return err
	}

	if opts.JSON {
		if jerr := printJSON(stdout, h); jerr != nil {
			return jerr
		}
	} else {
		fmt.Fprint(stdout, tui.RenderHealth(h))
	}
	return err
}
