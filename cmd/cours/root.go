package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/cli"
	"github.com/nathbrawlstatsr-afk/cours/internal/config"
	"github.com/nathbrawlstatsr-afk/cours/pkg/utils"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	debug      bool
	output     string
	serverURL  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "cours",
		Short:         "cours - search and generate educational content",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `cours indexes a course catalog and local course materials, ranks them for
learner queries, and generates courses, quizzes, flashcards, and tutoring answers
through a language-model completion service.`,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultConfigPath(), "config file path")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text or json")
	root.PersistentFlags().StringVar(&opts.serverURL, "server", "", "server URL; when empty commands run against local components")

	root.AddCommand(
		newServeCmd(opts),
		newSearchCmd(opts),
		newAskCmd(opts),
		newCourseCmd(opts),
		newQuizCmd(opts),
		newFlashcardsCmd(opts),
		newSummaryCmd(opts),
		newIndexCmd(opts),
		newWatchCmd(opts),
		newStatusCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cours version %s\n", version)
		},
	}
}

// loadConfig loads the config at path. When path is the default and a config.yaml
// exists in the working directory, that file is used instead so running from a project
// checkout picks up the project config. A missing default file yields the defaults.
// It returns the config and the path actually used.
func loadConfig(path string) (*config.Config, string, error) {
	if path == config.DefaultConfigPath() {
		if cwd, err := os.Getwd(); err == nil {
			local := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(local); err == nil {
				cfg, err := config.Load(local)
				if err != nil {
					return nil, "", err
				}
				return cfg, local, nil
			}
		}
		cfg, err := config.LoadOrDefault(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// setup loads the config and builds the logger for a one-shot command.
func (o *rootOptions) setup() (*config.Config, *zap.Logger, error) {
	cfg, _, err := loadConfig(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := utils.NewCLILogger(cfg.Debug || o.debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

func (o *rootOptions) format() (cli.OutputFormat, error) {
	return cli.ParseFormat(o.output)
}
