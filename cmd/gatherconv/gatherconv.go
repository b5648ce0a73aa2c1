package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/scott-cotton/cli"
	"github.com/signadot/gatherconv/encode"
	"github.com/signadot/gatherconv/gather"
	"github.com/signadot/gatherconv/ir"
	"github.com/signadot/gatherconv/source"
)

func gatherMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return runConvert(context.Background(), cfg, cc.In, cc.Out)
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func convert(cfg *ConvertConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Convert.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: convert takes no arguments", cli.ErrUsage)
	}
	return runConvert(context.Background(), cfg.MainConfig, cc.In, cc.Out)
}

func runConvert(ctx context.Context, cfg *MainConfig, stdin io.Reader, stdout io.Writer) error {
	path, err := cfg.inputPath()
	if err != nil {
		return err
	}
	node, err := convertFile(ctx, cfg, stdin, path)
	if err != nil {
		return err
	}
	return cfg.emit(stdout, node, cfg.encOpts(stdout)...)
}

func convertFile(ctx context.Context, cfg *MainConfig, stdin io.Reader, path string) (*ir.Node, error) {
	mapping, err := cfg.load(ctx, stdin, path)
	if err != nil {
		return nil, err
	}
	doc, err := gather.Convert(ctx, mapping, cfg.convOpts()...)
	if err != nil {
		return nil, err
	}
	return doc.ToIR(), nil
}

func (cfg *MainConfig) load(ctx context.Context, stdin io.Reader, path string) (*ir.Node, error) {
	if path == "-" {
		return source.Read(ctx, stdin, "-", cfg.loadOpts()...)
	}
	return source.Load(ctx, path, cfg.loadOpts()...)
}

// emit renders node and only then opens the output, so a failed run
// leaves an existing output file untouched.
func (cfg *MainConfig) emit(stdout io.Writer, node *ir.Node, opts ...encode.EncodeOption) error {
	d, err := gather.Render(node, opts...)
	if err != nil {
		return err
	}
	if cfg.Out == "" || cfg.Out == "-" {
		return gather.Emit(stdout, d)
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: %w", gather.ErrOutputWrite, err)
	}
	if err := gather.Emit(f, d); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", gather.ErrOutputWrite, err)
	}
	return nil
}
