// Package cli implements the cirrus command line client.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"cirrus/internal/client"
	wsSvc "cirrus/internal/domain/services/workspace"
	wsService "cirrus/internal/service/workspace"
)

// Env holds what the commands need from the process environment
type Env struct {
	ServerURL string
	Token     string
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
}

// EnvFromOS reads CIRRUS_URL and CIRRUS_TOKEN
func EnvFromOS(logger *slog.Logger) *Env {
	serverURL := os.Getenv("CIRRUS_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}
	return &Env{
		ServerURL: serverURL,
		Token:     os.Getenv("CIRRUS_TOKEN"),
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Logger:    logger,
	}
}

const usage = `usage: cirrus upload <dir> [--parent id] [--skip-duplicates]`

// Run dispatches a command and returns the process exit code
func Run(ctx context.Context, env *Env, args []string) int {
	if len(args) == 0 || args[0] != "upload" {
		fmt.Fprintln(env.Stderr, usage)
		return 2
	}

	if err := Upload(ctx, env, args[1:]); err != nil {
		var failures *batchFailures
		if !errors.As(err, &failures) {
			fmt.Fprintln(env.Stderr, "error:", err)
		}
		return 1
	}
	return 0
}

// batchFailures reports that some files of a finished batch failed
type batchFailures struct {
	failed int
}

func (b *batchFailures) Error() string { return fmt.Sprintf("%d files failed", b.failed) }

// Upload ingests a local directory tree into the remote workspace
func Upload(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	parent := fs.String("parent", "", "destination folder id (default root)")
	skip := fs.Bool("skip-duplicates", false, "skip files whose name already exists in the target folder")

	if err := fs.Parse(args); err != nil {
		return err
	}
	// Allow flags after the directory argument
	if fs.NArg() > 1 {
		rest := fs.Args()
		if err := fs.Parse(rest[1:]); err != nil {
			return err
		}
		if fs.NArg() > 0 {
			return fmt.Errorf("unexpected arguments %v\n%s", fs.Args(), usage)
		}
		args = rest[:1]
	} else {
		args = fs.Args()
	}
	if len(args) != 1 {
		return errors.New(usage)
	}
	dir := args[0]

	files, err := CollectFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(env.Stdout, "No files under %s\n", dir)
		return nil
	}

	token := env.Token
	if token == "" {
		if token, err = promptToken(env.Stderr); err != nil {
			return err
		}
	}

	api := client.New(env.ServerURL, token, &http.Client{Timeout: 10 * time.Minute}, env.Logger)
	if *parent != "" && *parent != wsService.RootID {
		if _, err := api.GetFolder(ctx, *parent); err != nil {
			return fmt.Errorf("destination %s: %w", *parent, err)
		}
	}

	policy := wsSvc.DuplicateKeep
	if *skip {
		policy = wsSvc.DuplicateSkip
	}

	coord := wsService.NewCoordinator(api, api, env.Logger)
	result, err := coord.Ingest(ctx, &wsSvc.IngestRequest{
		DestinationID: parent,
		Files:         files,
		OnDuplicate:   policy,
		Progress: func(done, total int) {
			fmt.Fprintf(env.Stdout, "\rUploading %d/%d", done, total)
		},
	})
	fmt.Fprintln(env.Stdout)
	if result != nil {
		printResult(env.Stdout, result)
	}
	if err != nil {
		return err
	}
	if result.Summary.Failed > 0 {
		return &batchFailures{failed: result.Summary.Failed}
	}
	return nil
}

func printResult(w io.Writer, result *wsSvc.IngestResult) {
	for _, f := range result.Files {
		if f.Status != wsSvc.StatusUploaded {
			fmt.Fprintf(w, "  %s %s: %s\n", f.Status, f.Path, f.Error)
		}
	}

	s := result.Summary
	fmt.Fprintf(w, "%d uploaded, %d skipped, %d failed (%d folders created)\n",
		s.Uploaded, s.Skipped, s.Failed, result.FoldersCreated)
	if result.Canceled {
		fmt.Fprintf(w, "Canceled after %d of %d files\n", len(result.Files), s.Total)
	}
}
