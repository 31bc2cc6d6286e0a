package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/ovmf"
	"github.com/meigma/ovmf/internal/config"
)

// env holds what every cache-backed command needs.
type env struct {
	cfg    *config.Config
	cache  *ovmf.Cache
	logger *slog.Logger
}

// newEnv layers flags over the config file over library defaults.
func newEnv(g globalFlags, logger *slog.Logger) (*env, error) {
	cfg := &config.Config{}
	if g.configPath != "" {
		loaded, err := config.Load(g.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if g.cacheDir != "" {
		cfg.CacheDir = g.cacheDir
	}
	if g.baseURL != "" {
		cfg.BaseURL = g.baseURL
	}
	if g.userAgent != "" {
		cfg.UserAgent = g.userAgent
	}
	if g.maxDownload != "" {
		cfg.MaxDownload = g.maxDownload
	}
	if cfg.CacheDir == "" {
		dir, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}
		cfg.CacheDir = dir
	}

	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, ovmf.WithLogger(logger))
	cache, err := ovmf.New(cfg.CacheDir, opts...)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, cache: cache, logger: logger}, nil
}

func (e *env) list(stdout io.Writer) error {
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tSHA256\tCACHED")
	for _, r := range e.cfg.KnownReleases() {
		cached := "no"
		if e.cache.Has(r) {
			cached = "yes"
		}
		if r.Tag == ovmf.Latest.Tag {
			cached += " (latest)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Tag, r.SHA256, cached)
	}
	return tw.Flush()
}

func (e *env) fetch(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var all bool
	var jobs int
	flagSet := pflag.NewFlagSet("fetch", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVar(&all, "all", false, "fetch every known release")
	flagSet.IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "releases to fetch in parallel")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	var releases []ovmf.Release
	switch {
	case all:
		releases = e.cfg.KnownReleases()
	case flagSet.NArg() == 0:
		r, err := e.lookup("latest")
		if err != nil {
			return err
		}
		releases = []ovmf.Release{r}
	default:
		for _, tag := range flagSet.Args() {
			r, err := e.lookup(tag)
			if err != nil {
				return err
			}
			releases = append(releases, r)
		}
	}
	releases = dedupe(releases)

	// Distinct tags occupy disjoint directories, so they can be populated
	// concurrently.
	dirs := make([]string, len(releases))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, r := range releases {
		g.Go(func() error {
			p, err := e.cache.Get(ctx, r)
			if err != nil {
				return fmt.Errorf("%s: %w", r.Tag, err)
			}
			dirs[i] = p.Dir()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, r := range releases {
		fmt.Fprintf(stdout, "%s\t%s\n", r.Tag, dirs[i])
	}
	return nil
}

func (e *env) path(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) != 3 {
		return errors.New("usage: path <tag> <arch> <file>")
	}
	rel, err := e.lookup(args[0])
	if err != nil {
		return err
	}
	arch, err := ovmf.ParseArch(args[1])
	if err != nil {
		return err
	}
	ft, err := ovmf.ParseFileType(args[2])
	if err != nil {
		return err
	}

	p, err := e.cache.Get(ctx, rel)
	if err != nil {
		return err
	}
	path := p.Path(arch, ft)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s does not ship %s/%s", rel.Tag, arch, ft.FileName())
	}
	if err != nil {
		return err
	}
	e.logger.Debug("artifact", "path", path, "size", humanize.IBytes(uint64(info.Size()))) //nolint:gosec // size is non-negative
	fmt.Fprintln(stdout, path)
	return nil
}

// lookup resolves a tag against the release table; "latest" is an alias.
func (e *env) lookup(tag string) (ovmf.Release, error) {
	if tag == "latest" {
		tag = ovmf.Latest.Tag
	}
	r, ok := e.cfg.Lookup(tag)
	if !ok {
		return ovmf.Release{}, fmt.Errorf("unknown release %q (add it to the config file's releases)", tag)
	}
	return r, nil
}

func parseTag(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: parse-tag <tag>")
	}
	tag, err := ovmf.ParseTag(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "release: %s\nbase: %s\nnumber: %d\n", tag.Release, tag.Base, tag.Number)
	return nil
}

func dedupe(releases []ovmf.Release) []ovmf.Release {
	seen := make(map[string]bool, len(releases))
	out := releases[:0]
	for _, r := range releases {
		if seen[r.Tag] {
			continue
		}
		seen[r.Tag] = true
		out = append(out, r)
	}
	return out
}
