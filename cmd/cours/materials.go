package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/cli"
	"github.com/nathbrawlstatsr-afk/cours/internal/config"
	"github.com/nathbrawlstatsr-afk/cours/internal/index"
	"github.com/nathbrawlstatsr-afk/cours/internal/indexer"
)

// indexConfiguredMaterials ingests the configured material directories into a local
// index, for commands that run without a server.
func indexConfiguredMaterials(ctx context.Context, c *Components, logger *zap.Logger) {
	recursive := c.Config.Materials.RecursiveOrDefault()
	for _, dir := range c.Config.Materials.Directories {
		if _, err := c.Ingester.IngestDir(ctx, dir, recursive); err != nil {
			logger.Warn("some materials could not be indexed", zap.String("dir", dir), zap.Error(err))
		}
	}
	c.Enrich(ctx, logger)
}

type indexReport struct {
	Path   string   `json:"path"`
	Files  []string `json:"files"`
	Chunks int      `json:"chunks"`
}

func newIndexCmd(opts *rootOptions) *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "index <file-or-directory>",
		Short: "Check how course materials are extracted and chunked",
		Long: `Index extracts and chunks a file or directory the way the server does and
reports what would be searchable. The server indexes its configured directories
itself; add a directory to a running server with "cours watch add".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.format()
			if err != nil {
				return err
			}
			cfg, logger, err := opts.setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			report, err := previewIndex(commandContext(cmd), args[0], recursive, &cfg.Materials, logger)
			if report == nil {
				return err
			}
			if werr := cli.Write(cmd.OutOrStdout(), format, report, func(w io.Writer) {
				for _, f := range report.Files {
					fmt.Fprintln(w, f)
				}
				fmt.Fprintf(w, "Indexed %d chunk(s) from %d file(s) in %s\n", report.Chunks, len(report.Files), report.Path)
			}); werr != nil {
				return werr
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "descend into subdirectories")
	return cmd
}

// previewIndex ingests path into a throwaway index. A directory with some unreadable
// files still yields a report alongside the joined errors.
func previewIndex(ctx context.Context, path string, recursive bool, cfg *config.MaterialsConfig, logger *zap.Logger) (*indexReport, error) {
	idx := index.New()
	ing := indexer.NewIngester(idx, cfg, indexer.WithLogger(logger))
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	report := &indexReport{Path: abs}
	if info.IsDir() {
		_, err = ing.IngestDir(ctx, abs, recursive)
	} else {
		_, err = ing.IngestFile(ctx, abs)
		if errors.Is(err, indexer.ErrNotAllowed) {
			return nil, fmt.Errorf("%s: unsupported or excluded file type", abs)
		}
		if err != nil {
			return nil, err
		}
	}
	report.Files = ing.Files()
	report.Chunks = idx.Len()
	return report, err
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage the material directories watched by a running server",
	}
	server := func() (*apiClient, error) {
		if opts.serverURL == "" {
			return nil, errors.New("watch needs a running server: pass --server")
		}
		return newAPIClient(opts.serverURL), nil
	}
	var noSync bool
	add := &cobra.Command{
		Use:   "add <dir>",
		Short: "Watch a directory and index its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := server()
			if err != nil {
				return err
			}
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			syncExisting := !noSync
			body := map[string]any{"path": abs, "sync": syncExisting}
			if err := c.do(commandContext(cmd), http.MethodPost, "/api/v1/materials/directories", body, nil, http.StatusCreated); err != nil {
				return fmt.Errorf("add failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching: %s\n", abs)
			return nil
		},
	}
	add.Flags().BoolVar(&noSync, "no-sync", false, "only index files changed from now on")

	remove := &cobra.Command{
		Use:   "remove <dir>",
		Short: "Stop watching a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := server()
			if err != nil {
				return err
			}
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			path := "/api/v1/materials/directories?path=" + url.QueryEscape(abs)
			if err := c.do(commandContext(cmd), http.MethodDelete, path, nil, nil, http.StatusOK); err != nil {
				return fmt.Errorf("remove failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed: %s\n", abs)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List watched directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := server()
			if err != nil {
				return err
			}
			var out struct {
				Directories []string `json:"directories"`
			}
			if err := c.do(commandContext(cmd), http.MethodGet, "/api/v1/materials/directories", nil, &out, http.StatusOK); err != nil {
				return fmt.Errorf("list failed: %w", err)
			}
			for _, d := range out.Directories {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}
	cmd.AddCommand(add, remove, list)
	return cmd
}
