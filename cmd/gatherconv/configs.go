package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"github.com/signadot/gatherconv/encode"
	"github.com/signadot/gatherconv/format"
	"github.com/signadot/gatherconv/gather"
	"github.com/signadot/gatherconv/source"
)

type MainConfig struct {
	Input   string `cli:"name=input aliases=i desc='input file, - for stdin (default $HOME/.gatherer/stats.pickle)'"`
	Lenient bool   `cli:"name=lenient desc='skip servers with missing fields instead of failing'"`
	Summary bool   `cli:"name=summary desc='add transfer totals to the output'"`
	Select  string `cli:"name=select desc='only output servers for which this expression is true'"`
	Color   bool   `cli:"name=color desc='encode with color'"`
	UTF8    bool   `cli:"name=utf8 desc='write non-ascii characters unescaped'"`

	InFormat, OutFormat *format.Format
	Indent              *int

	Out string

	Main *cli.Command
}

func (cfg *MainConfig) fmtFunc(fp **format.Format, output bool) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := format.ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		if output && !f.IsOutput() {
			return nil, fmt.Errorf("%w: %s is not an output format", cli.ErrUsage, f)
		}
		*fp = &f
		return f, nil
	})
}

func (cfg *MainConfig) indentOpt(_ *cli.Context, v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%w: bad indent %q", cli.ErrUsage, v)
	}
	cfg.Indent = &n
	return n, nil
}

func (cfg *MainConfig) outOpt(_ *cli.Context, a string) (any, error) {
	cfg.Out = a
	return nil, nil
}

func (cfg *MainConfig) inputPath() (string, error) {
	if cfg.Input != "" {
		return cfg.Input, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: no -input given and no home directory: %w", cli.ErrUsage, err)
	}
	return filepath.Join(home, ".gatherer", "stats.pickle"), nil
}

func (cfg *MainConfig) loadOpts() []source.LoadOption {
	if cfg.InFormat == nil {
		return nil
	}
	return []source.LoadOption{source.WithFormat(*cfg.InFormat)}
}

func (cfg *MainConfig) convOpts() []gather.ConvertOption {
	return []gather.ConvertOption{
		gather.WithLenient(cfg.Lenient),
		gather.WithSummary(cfg.Summary),
		gather.WithSelect(cfg.Select),
		gather.WithLogger(theLog),
	}
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	fmat := format.JSONFormat
	if cfg.OutFormat != nil {
		fmat = *cfg.OutFormat
	}
	res := []encode.EncodeOption{
		encode.EncodeFormat(fmat),
		encode.EncodeASCII(!cfg.UTF8),
	}
	if cfg.Indent != nil {
		res = append(res, encode.EncodeIndent(*cfg.Indent))
	}
	if !fmat.IsJSON() {
		return res
	}
	if cfg.Color {
		return append(res, encode.EncodeColors(encode.NewColors()))
	}
	if cfg.colorSet() || (cfg.Out != "" && cfg.Out != "-") {
		return res
	}
	f, ok := w.(*os.File)
	if !ok {
		return res
	}
	if isatty.IsTerminal(f.Fd()) {
		res = append(res, encode.EncodeColors(encode.NewColors()))
	}
	return res
}

func (cfg *MainConfig) colorSet() bool {
	if cfg.Main == nil {
		return false
	}
	for _, opt := range cfg.Main.Opts {
		if opt.Name == "color" {
			return opt.Value != nil
		}
	}
	return false
}

type ConvertConfig struct {
	*MainConfig

	Convert *cli.Command
}

type MigrateConfig struct {
	*MainConfig

	Migrate *cli.Command
}

type CheckConfig struct {
	*MainConfig
	Quiet bool `cli:"name=q desc='only set the exit status'"`

	Check *cli.Command
}
