package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nathbrawlstatsr-afk/cours/internal/cli"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

type searchFlags struct {
	limit        int
	threshold    float64
	thresholdSet bool
	noSimilarity bool
	subject      string
	level        string
	docType      string
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	f := &searchFlags{}
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search courses and materials",
		Long: `Search ranks every indexed document against the query. The query is all
remaining arguments joined by spaces, so quoting is optional.

Examples:
  cours search fractions
  cours search --subject mathematics --limit 5 nombres décimaux
  cours search --server http://localhost:8080 -o json révolution française`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.thresholdSet = cmd.Flags().Changed("threshold")
			return runSearch(cmd, opts, f, buildQuery(args))
		},
	}
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 0, "maximum number of results (default from config)")
	cmd.Flags().Float64Var(&f.threshold, "threshold", 0, "minimum score (default from config)")
	cmd.Flags().BoolVar(&f.noSimilarity, "no-similarity", false, "disable the similarity term")
	cmd.Flags().StringVar(&f.subject, "subject", "", "only documents with this subject")
	cmd.Flags().StringVar(&f.level, "level", "", "only documents with this level")
	cmd.Flags().StringVar(&f.docType, "type", "", "only documents of this type (course, material, ...)")
	return cmd
}

// buildQuery joins positional args so multi-word queries work with or without quotes.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func (f *searchFlags) filters() map[string]string {
	filters := map[string]string{}
	for k, v := range map[string]string{"subject": f.subject, "level": f.level, "type": f.docType} {
		if v != "" {
			filters[k] = v
		}
	}
	if len(filters) == 0 {
		return nil
	}
	return filters
}

// options starts from the given defaults and applies the flags that were set.
func (f *searchFlags) options(defaults models.SearchOptions) models.SearchOptions {
	o := defaults
	if f.limit != 0 {
		o.Limit = f.limit
	}
	if f.thresholdSet {
		o.Threshold = f.threshold
	}
	o.UseSimilarity = !f.noSimilarity
	o.Filters = f.filters()
	return o
}

func runSearch(cmd *cobra.Command, opts *rootOptions, f *searchFlags, query string) error {
	if query == "" {
		return cmd.Help()
	}
	format, err := opts.format()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	if opts.serverURL != "" {
		req := models.SearchRequest{Query: query, SearchOptions: f.options(models.DefaultSearchOptions())}
		var resp models.SearchResponse
		if err := newAPIClient(opts.serverURL).do(ctx, http.MethodPost, "/api/v1/search", req, &resp, http.StatusOK); err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return cli.WriteSearchResults(cmd.OutOrStdout(), &resp, format)
	}

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

	defaults := models.DefaultSearchOptions()
	defaults.Limit = cfg.Search.DefaultLimit
	defaults.Threshold = cfg.Search.DefaultThreshold
	start := time.Now()
	results, err := components.Engine.Search(ctx, query, f.options(defaults))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return cli.WriteSearchResults(cmd.OutOrStdout(), &models.SearchResponse{
		Query:     query,
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
	}, format)
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	f := &searchFlags{}
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Intelligent search with categories, suggestions, and alternative queries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := buildQuery(args)
			if query == "" {
				return cmd.Help()
			}
			format, err := opts.format()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			var resp *models.IntelligentSearchResponse
			if opts.serverURL != "" {
				resp = &models.IntelligentSearchResponse{}
				body := map[string]any{"query": query, "filters": f.filters()}
				err = newAPIClient(opts.serverURL).do(ctx, http.MethodPost, "/api/v1/search/intelligent", body, resp, http.StatusOK)
			} else {
				resp, err = askDirect(ctx, opts, query, f.filters())
			}
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			return cli.WriteIntelligentSearch(cmd.OutOrStdout(), resp, format)
		},
	}
	cmd.Flags().StringVar(&f.subject, "subject", "", "only documents with this subject")
	cmd.Flags().StringVar(&f.level, "level", "", "only documents with this level")
	cmd.Flags().StringVar(&f.docType, "type", "", "only documents of this type")
	return cmd
}

func askDirect(ctx context.Context, opts *rootOptions, query string, filters map[string]string) (*models.IntelligentSearchResponse, error) {
	cfg, logger, err := opts.setup()
	if err != nil {
		return nil, err
	}
	defer func() { _ = logger.Sync() }()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer components.Close()
	indexConfiguredMaterials(ctx, components, logger)
	return components.Engine.IntelligentSearch(ctx, query, filters)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
