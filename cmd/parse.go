package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/callmesh/dialogrt/internal/callparse"
	"github.com/callmesh/dialogrt/internal/config"
	"github.com/callmesh/dialogrt/internal/dispatch"
	"github.com/callmesh/dialogrt/internal/render"
)

// renderWidth prefers the real terminal width on stdout, falling back to
// the configured default when stdout isn't a terminal (a pipe, a file
// redirect) or its size can't be queried.
func renderWidth(cfgWidth int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return cfgWidth
}

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a transcript and render its events to the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParse,
}

func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(args[0])
}

// splitUTF8 separates b into a leading portion that ends on a complete
// rune and a trailing portion holding a rune left incomplete by a read
// boundary, so a chunk boundary landing mid-sequence never gets handed to
// the parser as raw bytes (which would decode to U+FFFD and corrupt the
// transcript).
func splitUTF8(b []byte) (complete, pending []byte) {
	if len(b) == 0 {
		return b, nil
	}
	lim := len(b) - utf8.UTFMax
	if lim < 0 {
		lim = 0
	}
	for i := len(b) - 1; i >= lim; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return b, nil
		}
		pending = make([]byte, len(b)-i)
		copy(pending, b[i:])
		return b[:i], pending
	}
	return b, nil
}

func runParse(cmd *cobra.Command, args []string) error {
	in, err := openInput(args)
	if err != nil {
		return fmt.Errorf("parse: open input: %w", err)
	}
	defer in.Close()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("parse: load config: %w", err)
	}

	recv, err := render.NewTermReceiver(cmd.OutOrStdout(), renderWidth(cfg.RenderWidth))
	if err != nil {
		return fmt.Errorf("parse: build renderer: %w", err)
	}

	reg, err := registryFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("parse: load agent registry: %w", err)
	}
	router, err := dispatch.NewRouter(reg, cfg.AllowMention)
	if err != nil {
		return fmt.Errorf("parse: build router: %w", err)
	}
	recv.Router = router

	p := callparse.New(recv)

	// Feed the parser in fixed-size reads rather than slurping the whole
	// file, exercising the same chunk-boundary handling a live LLM stream
	// would hit. A read boundary that lands mid-rune is held back in
	// pending until enough bytes arrive to complete it.
	const chunkSize = 256
	buf := make([]byte, chunkSize)
	var pending []byte
	r := bufio.NewReader(in)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			complete, rest := splitUTF8(pending)
			if len(complete) > 0 {
				if err := p.Consume(string(complete)); err != nil {
					return fmt.Errorf("parse: consume: %w", err)
				}
			}
			pending = rest
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("parse: read input: %w", readErr)
		}
	}
	if len(pending) > 0 {
		if err := p.Consume(string(pending)); err != nil {
			return fmt.Errorf("parse: consume: %w", err)
		}
	}
	if err := p.Finish(); err != nil {
		return fmt.Errorf("parse: finish: %w", err)
	}
	return nil
}
