package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/cli"
	"github.com/nathbrawlstatsr-afk/cours/internal/extract"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

// withGenerators runs fn against local generators built from the config. Generated
// content is not saved; use the server for that.
func withGenerators(opts *rootOptions, fn func(*generators) error) error {
	cfg, logger, err := opts.setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	gen, err := newGenerators(cfg, nil, nil, logger)
	if err != nil {
		return err
	}
	defer gen.content.Close()
	if gen.llm.Offline() {
		logger.Warn("no completion service configured: answers are fallbacks", zap.String("provider", cfg.Completion.Provider))
	}
	return fn(gen)
}

func newCourseCmd(opts *rootOptions) *cobra.Command {
	req := models.CourseRequest{}
	cmd := &cobra.Command{
		Use:   "course <topic>",
		Short: "Generate a course on a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Topic = buildQuery(args)
			format, err := opts.format()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			course := &models.GeneratedCourse{}
			if opts.serverURL != "" {
				err = newAPIClient(opts.serverURL).do(ctx, http.MethodPost, "/api/v1/courses/generate", req, course, http.StatusCreated)
			} else {
				err = withGenerators(opts, func(g *generators) error {
					course = g.content.GenerateCourse(ctx, req)
					return nil
				})
			}
			if err != nil {
				return fmt.Errorf("course generation failed: %w", err)
			}
			return cli.WriteCourse(cmd.OutOrStdout(), course, format)
		},
	}
	cmd.Flags().StringVar(&req.Subject, "subject", "general", "subject of the course")
	cmd.Flags().StringVar(&req.Level, "level", "college", "target level")
	cmd.Flags().StringVar(&req.LearningStyle, "style", "", "learning style: visual, auditory, reading, or kinesthetic")
	return cmd
}

type quizFlags struct {
	opts     models.QuizOptions
	fromFile string
}

func newQuizCmd(opts *rootOptions) *cobra.Command {
	f := &quizFlags{}
	cmd := &cobra.Command{
		Use:   "quiz [topic]",
		Short: "Generate a quiz on a topic or from a document",
		Long: `Generate a quiz on a topic, or with --from-file from the text of a course
document (any format the indexer reads: txt, md, pdf, docx, pptx, xlsx, ...).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.format()
			if err != nil {
				return err
			}
			f.opts.Topic = buildQuery(args)
			if f.fromFile == "" && f.opts.Topic == "" {
				return cmd.Help()
			}
			q, err := runQuiz(commandContext(cmd), opts, f)
			if err != nil {
				return fmt.Errorf("quiz generation failed: %w", err)
			}
			return cli.WriteQuiz(cmd.OutOrStdout(), q, format)
		},
	}
	cmd.Flags().StringVar(&f.opts.Subject, "subject", "general", "subject of the quiz")
	cmd.Flags().StringVar(&f.opts.Level, "level", "college", "target level")
	cmd.Flags().StringVar(&f.opts.Difficulty, "difficulty", models.DifficultyMedium, "easy, medium, or hard")
	cmd.Flags().IntVar(&f.opts.QuestionCount, "questions", 0, "number of questions (default 5)")
	cmd.Flags().StringVar(&f.fromFile, "from-file", "", "build the quiz from the text of this document")
	return cmd
}

func runQuiz(ctx context.Context, opts *rootOptions, f *quizFlags) (*models.Quiz, error) {
	var text string
	if f.fromFile != "" {
		var err error
		text, err = extract.NewExtractor().Extract(f.fromFile)
		if err != nil {
			return nil, err
		}
	}
	if opts.serverURL != "" {
		client := newAPIClient(opts.serverURL)
		q := &models.Quiz{}
		if text != "" {
			body := map[string]string{"text": text, "subject": f.opts.Subject}
			return q, client.do(ctx, http.MethodPost, "/api/v1/quizzes/from-text", body, q, http.StatusCreated)
		}
		return q, client.do(ctx, http.MethodPost, "/api/v1/quizzes/generate", f.opts, q, http.StatusCreated)
	}
	var q *models.Quiz
	err := withGenerators(opts, func(g *generators) error {
		if text != "" {
			var err error
			q, err = g.quiz.GenerateFromText(ctx, text, f.opts.Subject)
			return err
		}
		q = g.quiz.Generate(ctx, f.opts)
		return nil
	})
	return q, err
}

func newFlashcardsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flashcards <concept>...",
		Short: "Generate one revision card per concept",
		Long: `Generate one revision card per concept. Each argument is a concept; quote
multi-word concepts.

Example:
  cours flashcards photosynthèse "cycle de l'eau" atome`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.format()
			if err != nil {
				return err
			}
			concepts := nonBlank(args)
			if len(concepts) == 0 {
				return cmd.Help()
			}
			ctx := commandContext(cmd)
			var cards []models.Flashcard
			if opts.serverURL != "" {
				var resp struct {
					Flashcards []models.Flashcard `json:"flashcards"`
				}
				err = newAPIClient(opts.serverURL).do(ctx, http.MethodPost, "/api/v1/flashcards",
					map[string][]string{"concepts": concepts}, &resp, http.StatusOK)
				cards = resp.Flashcards
			} else {
				err = withGenerators(opts, func(g *generators) error {
					cards = g.content.GenerateFlashcards(ctx, concepts)
					return nil
				})
			}
			if err != nil {
				return fmt.Errorf("flashcard generation failed: %w", err)
			}
			return cli.WriteFlashcards(cmd.OutOrStdout(), cards, format)
		},
	}
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <topic>",
		Short: "Generate a revision sheet on a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.format()
			if err != nil {
				return err
			}
			topic := buildQuery(args)
			ctx := commandContext(cmd)
			var sheet string
			if opts.serverURL != "" {
				var resp struct {
					Sheet string `json:"sheet"`
				}
				err = newAPIClient(opts.serverURL).do(ctx, http.MethodPost, "/api/v1/summary-sheets",
					models.SummarySheetInput{Topic: topic}, &resp, http.StatusOK)
				sheet = resp.Sheet
			} else {
				err = withGenerators(opts, func(g *generators) error {
					sheet = g.content.GenerateSummarySheet(ctx, topic)
					return nil
				})
			}
			if err != nil {
				return fmt.Errorf("summary generation failed: %w", err)
			}
			out := map[string]string{"topic": topic, "sheet": sheet}
			return cli.Write(cmd.OutOrStdout(), format, out, func(w io.Writer) {
				fmt.Fprintln(w, sheet)
			})
		},
	}
}

func nonBlank(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}
