// ovmf-prebuilt downloads OVMF firmware releases into a local cache and
// prints paths to their artifacts.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath  string
	cacheDir    string
	baseURL     string
	userAgent   string
	maxDownload string
	verbose     bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var g globalFlags
	flagSet := pflag.NewFlagSet("ovmf-prebuilt", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&g.configPath, "config", "", "path to a YAML config file")
	flagSet.StringVar(&g.cacheDir, "cache-dir", "", "cache root (default: <user cache dir>/ovmf-prebuilt)")
	flagSet.StringVar(&g.baseURL, "base-url", "", "release download base URL")
	flagSet.StringVar(&g.userAgent, "user-agent", "", "HTTP User-Agent")
	flagSet.StringVar(&g.maxDownload, "max-download", "", "maximum archive size, e.g. \"8 MiB\"")
	flagSet.BoolVarP(&g.verbose, "verbose", "v", false, "log pipeline progress to stderr")
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	rest := flagSet.Args()
	if len(rest) == 0 {
		printUsage(stderr, flagSet)
		return errors.New("missing command")
	}

	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "help":
		printUsage(stdout, flagSet)
		return nil
	case "parse-tag":
		return parseTag(cmdArgs, stdout)
	case "list", "fetch", "path":
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	e, err := newEnv(g, logger)
	if err != nil {
		return err
	}
	switch cmd {
	case "list":
		return e.list(stdout)
	case "fetch":
		return e.fetch(ctx, cmdArgs, stdout, stderr)
	default:
		return e.path(ctx, cmdArgs, stdout)
	}
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `Usage: ovmf-prebuilt [flags] <command> [args]

Commands:
  list                        List known releases
  fetch [--all] [tag...]      Download releases into the cache (default: latest)
  path <tag> <arch> <file>    Print an artifact path, fetching the release if needed
  parse-tag <tag>             Print the components of a release tag

Architectures: ia32, x64, aarch64, riscv64
Files: code, vars, shell

Flags:
%s`, flagSet.FlagUsages())
}

func defaultCacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir (use --cache-dir): %w", err)
	}
	return filepath.Join(dir, "ovmf-prebuilt"), nil
}
