package main

import (
	"context"
	"fmt"
	"io"

	"github.com/scott-cotton/cli"
	"github.com/signadot/gatherconv/encode"
	"github.com/signadot/gatherconv/source"
)

func migrate(cfg *MigrateConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Migrate.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: migrate takes no arguments", cli.ErrUsage)
	}
	return runMigrate(context.Background(), cfg.MainConfig, cc.In, cc.Out)
}

func runMigrate(ctx context.Context, cfg *MainConfig, stdin io.Reader, stdout io.Writer) error {
	path, err := cfg.inputPath()
	if err != nil {
		return err
	}
	servers, err := cfg.load(ctx, stdin, path)
	if err != nil {
		return err
	}
	theLog.Info("migrating", "input", path, "servers", len(servers.Fields))
	opts := append(cfg.encOpts(stdout), encode.EncodeSortKeys(false))
	return cfg.emit(stdout, source.Sidecar(servers), opts...)
}
