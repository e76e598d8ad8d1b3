//go:build unix

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/containerd/log"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/spin-stack/streamio/internal/config"
	"github.com/spin-stack/streamio/internal/descriptor"
	"github.com/spin-stack/streamio/internal/fileio"
	"github.com/spin-stack/streamio/internal/version"
)

type globalOptions struct {
	configFile string
	debug      bool
	bufferSize int
	unbuffered bool
	timeout    string
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.L.WithError(err).Fatal("streamio failed")
	}
}

func newRootCommand() *cobra.Command {
	var g globalOptions
	root := &cobra.Command{
		Use:           "streamio",
		Short:         "Buffered file and pipe I/O.",
		Version:       version.Info(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&g.configFile, "config", "", "Path to configuration file (default $"+config.ConfigEnvVar+" or "+config.DefaultConfigPath+")")
	flags.BoolVar(&g.debug, "debug", false, "Debug log level")
	flags.IntVar(&g.bufferSize, "buffer-size", 0, "Stream buffer size in bytes")
	flags.BoolVarP(&g.unbuffered, "unbuffered", "u", false, "Disable stream buffering")
	flags.StringVarP(&g.timeout, "timeout", "t", "", "Pipe read timeout; 0s never waits, negative blocks")

	root.AddCommand(
		newCatCommand(&g),
		newLinesCommand(&g),
		newWriteCommand(&g),
		newWaitCommand(&g),
	)
	return root
}

// load resolves the configuration for cmd. An explicit --config must exist;
// a missing default file falls back to the built-in defaults. Flags win over
// the file.
func (g *globalOptions) load(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configFile != "" {
		cfg, err = config.LoadFrom(g.configFile)
	} else {
		cfg, err = config.Get()
		if errors.Is(err, os.ErrNotExist) {
			cfg, err = config.DefaultConfig(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	c := *cfg
	if cmd.Flags().Changed("buffer-size") {
		c.Buffer.Size = g.bufferSize
	}
	if g.unbuffered {
		c.Buffer.Disabled = true
	}
	if cmd.Flags().Changed("timeout") {
		c.Pipe.Timeout = g.timeout
	}
	if g.debug {
		c.Log.Level = "debug"
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	if err := log.SetLevel(c.Log.Level); err != nil {
		return nil, err
	}
	return &c, nil
}

// streamOptions converts the buffer settings into handle options.
func streamOptions(cfg *config.Config) []fileio.Opt {
	if cfg.Buffer.Disabled {
		return nil
	}
	return []fileio.Opt{fileio.WithBuffer(cfg.Buffer.Size)}
}

// openInput opens path for reading, "-" meaning standard input. Pipes get
// the configured timeout; a FIFO that cannot switch modes keeps blocking.
func openInput(ctx context.Context, cfg *config.Config, path string, opts ...fileio.Opt) (*fileio.File, error) {
	var (
		f   *fileio.File
		err error
	)
	if path == "-" {
		f, err = openInherited(ctx, unix.Stdin, "stdin", opts...)
	} else {
		f, err = fileio.Open(ctx, path, os.O_RDONLY, 0, opts...)
	}
	if err != nil {
		return nil, err
	}

	if f.IsPipe() {
		if err := f.SetPipeTimeout(cfg.Pipe.GetTimeout()); err != nil {
			if !errors.Is(err, fileio.ErrNotImplemented) {
				f.Close()
				return nil, err
			}
			log.G(ctx).WithError(err).WithField("file", f.Name()).Warn("pipe timeout not applied")
		}
	}
	return f, nil
}

// openOutput opens path for writing, "-" meaning standard output.
func openOutput(ctx context.Context, path string, flag int, opts ...fileio.Opt) (*fileio.File, error) {
	if path == "-" {
		return openInherited(ctx, unix.Stdout, "stdout", opts...)
	}
	return fileio.Open(ctx, path, os.O_WRONLY|os.O_CREATE|flag, 0o644, opts...)
}

func openInherited(ctx context.Context, fd int, name string, opts ...fileio.Opt) (*fileio.File, error) {
	d, err := descriptor.Dup(fd)
	if err != nil {
		return nil, err
	}
	f, err := fileio.New(ctx, d, name, opts...)
	if err != nil {
		d.Close()
		return nil, err
	}
	return f, nil
}

// closeAll closes every handle and returns the first error.
func closeAll(files ...*fileio.File) error {
	var first error
	for _, f := range files {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && first == nil {
			first = fmt.Errorf("close %s: %w", f.Name(), err)
		}
	}
	return first
}
