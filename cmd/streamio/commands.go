//go:build unix

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/containerd/log"
	"github.com/spf13/cobra"

	"github.com/spin-stack/streamio/internal/fileio"
)

func newCatCommand(g *globalOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "cat [file...]",
		Short:   "Copy files or pipes to an output stream.",
		Example: "streamio cat --buffer-size 8192 /var/log/app.log -",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{"-"}
			}
			ctx := cmd.Context()

			out, err := openOutput(ctx, output, os.O_TRUNC, streamOptions(cfg)...)
			if err != nil {
				return err
			}
			for _, path := range args {
				in, err := openInput(ctx, cfg, path, streamOptions(cfg)...)
				if err != nil {
					closeAll(out)
					return err
				}
				n, err := io.Copy(out, in)
				if err != nil {
					closeAll(in, out)
					return fmt.Errorf("copy %s: %w", path, err)
				}
				log.G(ctx).WithField("file", path).WithField("bytes", n).Debug("copied")
				if err := closeAll(in); err != nil {
					closeAll(out)
					return err
				}
			}
			return closeAll(out)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file")
	return cmd
}

func newLinesCommand(g *globalOptions) *cobra.Command {
	var (
		output  string
		maxLen  int
		numbers bool
	)
	cmd := &cobra.Command{
		Use:   "lines [file]",
		Short: "Rewrite text as LF-terminated lines.",
		Long: "Rewrite text as LF-terminated lines.\n\n" +
			"Carriage returns and 0x1a bytes are dropped and lines longer than\n" +
			"--max-length are split.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			if maxLen < 2 {
				return fmt.Errorf("max-length must be at least 2, got %d", maxLen)
			}
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			ctx := cmd.Context()

			in, err := openInput(ctx, cfg, path, streamOptions(cfg)...)
			if err != nil {
				return err
			}
			out, err := openOutput(ctx, output, os.O_TRUNC, streamOptions(cfg)...)
			if err != nil {
				closeAll(in)
				return err
			}

			buf := make([]byte, maxLen)
			for line := 1; ; line++ {
				n, err := in.ReadLine(buf)
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					closeAll(in, out)
					return fmt.Errorf("read %s: %w", path, err)
				}
				if numbers {
					_, err = out.Printf("%6d\t%s\n", line, buf[:n])
				} else {
					_, err = out.Printf("%s\n", buf[:n])
				}
				if err != nil {
					closeAll(in, out)
					return fmt.Errorf("write %s: %w", output, err)
				}
			}
			return closeAll(in, out)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file")
	cmd.Flags().IntVar(&maxLen, "max-length", 4096, "Line buffer size, including the terminator")
	cmd.Flags().BoolVarP(&numbers, "number", "n", false, "Number output lines")
	return cmd
}

func newWriteCommand(g *globalOptions) *cobra.Command {
	var appendMode bool
	cmd := &cobra.Command{
		Use:   "write <file> [text...]",
		Short: "Write text, or standard input, to a file.",
		Example: "streamio write --append /tmp/notes.txt hello world\n" +
			"echo hello | streamio write /tmp/notes.txt",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			flag := os.O_TRUNC
			if appendMode {
				flag = os.O_APPEND
			}
			out, err := openOutput(ctx, args[0], flag, streamOptions(cfg)...)
			if err != nil {
				return err
			}

			if len(args) > 1 {
				if _, err := out.WriteString(strings.Join(args[1:], " ") + "\n"); err != nil {
					closeAll(out)
					return fmt.Errorf("write %s: %w", args[0], err)
				}
				return closeAll(out)
			}

			in, err := openInput(ctx, cfg, "-", streamOptions(cfg)...)
			if err != nil {
				closeAll(out)
				return err
			}
			if _, err := io.Copy(out, in); err != nil {
				closeAll(in, out)
				return fmt.Errorf("write %s: %w", args[0], err)
			}
			return closeAll(in, out)
		},
	}
	cmd.Flags().BoolVarP(&appendMode, "append", "a", false, "Append instead of truncating")
	return cmd
}

func newWaitCommand(g *globalOptions) *cobra.Command {
	var (
		check bool
		size  int
	)
	cmd := &cobra.Command{
		Use:   "wait [pipe]",
		Short: "Wait for data on a pipe and copy the first chunk to standard output.",
		Long: "Wait for data on a pipe and copy the first chunk to standard output.\n\n" +
			"The wait honours --timeout: 0s fails at once when the pipe is empty,\n" +
			"a negative value blocks until data or end of stream arrives.",
		Example: "streamio wait --timeout 0s /run/app/events.fifo",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			if size < 1 {
				return fmt.Errorf("size must be at least 1, got %d", size)
			}
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			ctx := cmd.Context()

			// unbuffered, so a read returns as soon as any data is ready
			in, err := openInput(ctx, cfg, path)
			if err != nil {
				return err
			}
			if !in.IsPipe() {
				log.G(ctx).WithField("file", path).Debug("not a pipe, always readable")
			}

			if check {
				err := in.CheckRead()
				closeAll(in)
				if errors.Is(err, fileio.ErrTimeout) {
					return fmt.Errorf("%s: no data ready: %w", path, err)
				}
				return err
			}

			buf := make([]byte, size)
			n, err := in.Read(buf)
			if err != nil && !errors.Is(err, io.EOF) {
				closeAll(in)
				return fmt.Errorf("read %s: %w", path, err)
			}
			if err := closeAll(in); err != nil {
				return err
			}

			out, err := openOutput(ctx, "-", 0)
			if err != nil {
				return err
			}
			if _, err := out.Write(buf[:n]); err != nil {
				closeAll(out)
				return err
			}
			return closeAll(out)
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Only report whether data is ready, without reading")
	cmd.Flags().IntVar(&size, "size", 4096, "Maximum number of bytes to copy")
	return cmd
}
