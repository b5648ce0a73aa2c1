package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/scott-cotton/cli"
	"github.com/signadot/gatherconv/gather"
	"github.com/signadot/gatherconv/libdiff"
)

const diffContext = 3

func check(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Check.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: check requires 1 arg, got %v", cli.ErrUsage, args)
	}
	differ, err := runCheck(context.Background(), cfg, cc.In, cc.Out, args[0])
	if err != nil {
		return err
	}
	if differ {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// runCheck converts the input and other with the same options and writes
// a line diff of the outputs to w, reporting whether they differ.
func runCheck(ctx context.Context, cfg *CheckConfig, stdin io.Reader, w io.Writer, other string) (bool, error) {
	path, err := cfg.inputPath()
	if err != nil {
		return false, err
	}
	if path == "-" && other == "-" {
		return false, fmt.Errorf("%w: only one of -input and <other> can be stdin", cli.ErrUsage)
	}
	from, err := cfg.render(ctx, stdin, path)
	if err != nil {
		return false, fmt.Errorf("error converting %s: %w", path, err)
	}
	to, err := cfg.render(ctx, stdin, other)
	if err != nil {
		return false, fmt.Errorf("error converting %s: %w", other, err)
	}
	if from == to {
		return false, nil
	}
	if cfg.Quiet {
		return true, nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", path, other)
	sb.WriteString(libdiff.Hunks(libdiff.DiffLines(from, to), diffContext))
	return true, gather.Emit(w, []byte(sb.String()))
}

func (cfg *CheckConfig) render(ctx context.Context, stdin io.Reader, path string) (string, error) {
	node, err := convertFile(ctx, cfg.MainConfig, stdin, path)
	if err != nil {
		return "", err
	}
	d, err := gather.Render(node, cfg.encOpts(io.Discard)...)
	if err != nil {
		return "", err
	}
	return string(d), nil
}
