package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"cstyle/css"
	"cstyle/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("flatten")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")
	env.Scope = cmd.String("scope")

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// process handles the core flattening logic independently of CLI framework.
// It determines the input type (directory or single file) and processes
// accordingly.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}

	if fi.Mode().IsDir() {
		if len(env.Scope) != 0 {
			// scope makes sense for a single source only, every file needs its own
			log.Warn("Explicit scope is ignored when processing directories", zap.String("scope", env.Scope))
			env.Scope = ""
		}
		if err := processDir(ctx, src, dst, log); err != nil {
			return errors.New("unable to process directory")
		}
		return nil
	}

	if !fi.Mode().IsRegular() {
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}
	return processFile(ctx, src, filepath.Base(src), dst, log)
}

// processDir walks directory tree finding nested-CSS sources and processes
// them in natural order.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if !hasSourceExt(path, env.Cfg.Styling.SourceExtensions) {
			log.Debug("Skipping file, not recognized as nested-CSS source", zap.String("file", path))
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return err
	}

	if len(files) == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
		return nil
	}
	sort.Slice(files, func(i, j int) bool { return natural.Less(files[i], files[j]) })

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := processFile(ctx, path, src, dst, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
	}
	return nil
}

// processFile flattens single nested-CSS source. "src" is part of the source
// path (always including file name) relative to the original path. When
// actual file was specified it will be just base file name without a path.
// When looking inside directory it will be relative path inside directory
// (including base file name). "dst" is the destination directory where the
// flattened file should be written.
func processFile(ctx context.Context, path, src, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Flattening starting", zap.String("from", src))
	defer func(start time.Time) {
		log.Info("Flattening completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
	}(time.Now())

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read nested-CSS source (%s): %w", src, err)
	}

	scope := scopeSelector(src, env)
	flat := css.NewFlattener(log).Flatten(string(data), scope)

	// Determine output file name and path based on input and configuration.
	outputName = buildOutputPath(src, dst, scope, env)

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := os.WriteFile(outputName, []byte(flat), 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	// Store flattening results for debugging, keyed by relative source path
	// since scopes may repeat between subdirectories
	env.Rpt.StoreData("source-"+filepath.ToSlash(src), data)
	env.Rpt.Store("result-"+filepath.ToSlash(src), outputName)

	return nil
}

// hasSourceExt reports whether file name carries one of the configured source
// suffixes. Suffixes may span several dots (".nested.css") so filepath.Ext is
// of no use here.
func hasSourceExt(path string, exts []string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, ext := range exts {
		if strings.HasSuffix(name, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
