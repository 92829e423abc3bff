package main

import (
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nathbrawlstatsr-afk/cours/internal/cli"
	"github.com/nathbrawlstatsr-afk/cours/internal/storage"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show index size, storage usage, and configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := opts.format()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			status := map[string]any{}
			if opts.serverURL != "" {
				if err := newAPIClient(opts.serverURL).do(ctx, http.MethodGet, "/api/v1/status", nil, &status, http.StatusOK); err != nil {
					return fmt.Errorf("status failed: %w", err)
				}
			} else {
				cfg, logger, err := opts.setup()
				if err != nil {
					return err
				}
				defer func() { _ = logger.Sync() }()
				components, err := initializeComponents(ctx, cfg, logger)
				if err != nil {
					return err
				}
				defer components.Close()
				indexConfiguredMaterials(ctx, components, logger)
				status = localStatus(components)
			}
			return cli.Write(cmd.OutOrStdout(), format, status, func(w io.Writer) {
				writeStatus(w, status)
			})
		},
	}
}

// localStatus mirrors GET /api/v1/status for a process without a server.
func localStatus(c *Components) map[string]any {
	cfg := c.Config
	status := map[string]any{
		"documents":      c.Index.Len(),
		"material_files": len(c.Ingester.Files()),
		"config": map[string]any{
			"completion_provider": cfg.Completion.Provider,
			"completion_model":    cfg.Completion.Model,
			"embedding_provider":  cfg.Embedding.Provider,
			"storage_driver":      cfg.Storage.Driver,
			"material_dirs":       cfg.Materials.Directories,
		},
	}
	if paths := storage.Paths(&cfg.Storage); len(paths) > 0 {
		if n, err := storage.DiskUsageBytes(paths...); err == nil {
			status["disk_usage_bytes"] = n
		}
	}
	return status
}

// writeStatus prints top-level values first, then nested sections, with sorted keys.
func writeStatus(w io.Writer, status map[string]any) {
	keys := make([]string, 0, len(status))
	for k := range status {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sections []string
	for _, k := range keys {
		if _, nested := status[k].(map[string]any); nested {
			sections = append(sections, k)
			continue
		}
		fmt.Fprintf(w, "%-22s %v\n", k+":", status[k])
	}
	for _, k := range sections {
		fmt.Fprintf(w, "\n# %s\n", k)
		writeStatus(w, status[k].(map[string]any))
	}
}
