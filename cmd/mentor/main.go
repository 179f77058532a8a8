package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"mentor/internal/advice"
	"mentor/internal/agent"
	"mentor/internal/chat"
	"mentor/internal/client"
	"mentor/internal/config"
	"mentor/internal/knowledge"
	"mentor/internal/logging"
	"mentor/internal/state"
	"mentor/internal/ui"
	"mentor/internal/workflow"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"

	cfgFile    string
	model      string
	dynamic    bool
	singleShot bool
	verbose    bool
	resumeID   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mentor",
		Short: "AI mentor grounded in Ray Dalio's Principles",
		Long: `Mentor is an interactive chat assistant for personal development.
It interviews you about your profile, collects case reflections, hands
out advice grounded in the Principles book, and maintains a daily
journal template shaped by the advice you accept.`,
		RunE: runChat,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/mentor/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "model to use (default is gemini-2.5-flash)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "trace agent activity to the console")
	rootCmd.Flags().BoolVar(&dynamic, "dynamic", false, "let the advice agents route control themselves")
	rootCmd.Flags().BoolVar(&singleShot, "single-shot", false, "end the session after the first advice answer")
	rootCmd.Flags().StringVar(&resumeID, "resume", "", "resume a saved session by id")

	rootCmd.AddCommand(newIndexCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mentor version %s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Version = version
	if model != "" {
		cfg.Model.Name = model
	}
	if dynamic {
		cfg.Flow.DynamicAdvice = true
	}
	if singleShot {
		cfg.Flow.SingleShotAdvice = true
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) {
	configDir, err := config.ConfigDir()
	if err != nil {
		return
	}
	if err := logging.EnableFileLogging(configDir, logging.ParseLevel(cfg.Logging.Level)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg)
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c, err := client.NewClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer c.Close()

	console := ui.NewConsole(os.Stdin, os.Stdout)
	var tracer *ui.VerboseTracer
	if verbose {
		tracer = ui.NewVerboseTracer(os.Stdout)
	}

	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}
	transcripts, err := chat.NewTranscriptStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to open transcript store: %w", err)
	}

	session, err := openSession(cfg, transcripts)
	if err != nil {
		return err
	}

	stores := state.NewRegistry(cfg.Storage.NotesDir, cfg.Storage.JournalDir)
	store := stores.ForSession(session.ID)

	searcher := openIndex(ctx, cfg, console)

	router := workflow.NewIntentRouter(c, session, console, console, cfg.Flow.MaxClarifications, tracerOrNil(tracer))

	var opts []workflow.EngineOption
	if cfg.Flow.SingleShotAdvice {
		opts = append(opts, workflow.WithSingleShotAdvice())
	}
	engine := workflow.NewEngine(session, router, console, opts...)
	engine.Register(workflow.StageCaseReflection,
		workflow.NewCaseReflectionRunner(c, store, console, console, session.ID, cfg.Session.TokenLimit, cfg.Flow.MaxTurns, tracerOrNil(tracer)))
	engine.Register(workflow.StageRecordProfile,
		workflow.NewRecordProfileRunner(c, store, console, console, cfg.Session.TokenLimit, cfg.Flow.MaxEvalTurns, tracerOrNil(tracer)))
	engine.Register(workflow.StageJournal, workflow.NewJournalRunner(store, console))

	strategy := advice.NewStrategy(c, searcher, store, console, tracerOrNil(tracer), cfg)
	gate := advice.NewTemplateGate(c, store, console, console, cfg.Session.TokenLimit, tracerOrNil(tracer))
	engine.Register(workflow.StageAdvice, advice.NewRunner(strategy, gate, console, console))

	err = engine.Start(ctx)

	if saveErr := transcripts.Save(session); saveErr != nil {
		logging.Warn("failed to save transcript", "error", saveErr)
	}

	if errors.Is(err, ui.ErrInputClosed) || errors.Is(err, context.Canceled) {
		console.System("Goodbye.")
		return nil
	}
	if err == nil {
		console.System("Goodbye.")
	}
	return err
}

// openSession starts a fresh session or restores a saved one.
func openSession(cfg *config.Config, transcripts *chat.TranscriptStore) (*chat.Session, error) {
	if resumeID == "" {
		return chat.NewSession(cfg.Session.TokenLimit), nil
	}
	file, err := transcripts.Load(resumeID)
	if err != nil {
		return nil, fmt.Errorf("failed to resume session %s: %w", resumeID, err)
	}
	return chat.RestoreHistory(file, cfg.Session.TokenLimit), nil
}

// openIndex loads the knowledge index, degrading to an empty searcher
// when no index or embedding credentials are available.
func openIndex(ctx context.Context, cfg *config.Config, console *ui.Console) knowledge.Searcher {
	embedder, err := knowledge.NewGeminiEmbedder(ctx, cfg.API.GeminiKey, cfg.Embedding.Model)
	if err == nil {
		index, loadErr := knowledge.LoadIndex(cfg.Retrieval.IndexDir, embedder)
		if loadErr == nil {
			return index
		}
		err = loadErr
	}
	logging.Warn("knowledge index unavailable", "error", err)
	console.System("Principle book index not available; advice will not cite the book. " +
		"Run 'mentor index <file>' to build it.")
	return emptySearcher{}
}

// emptySearcher stands in when the knowledge index cannot be loaded.
type emptySearcher struct{}

func (emptySearcher) Search(ctx context.Context, query string, topK int) ([]knowledge.SearchResult, error) {
	return nil, nil
}

// tracerOrNil avoids handing components a non-nil interface wrapping a
// nil tracer.
func tracerOrNil(t *ui.VerboseTracer) agent.Tracer {
	if t == nil {
		return nil
	}
	return t
}

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index <file>...",
		Short: "Build the principle book index from PDF, markdown, or text files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			setupLogging(cfg)
			defer logging.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			embedder, err := knowledge.NewGeminiEmbedder(ctx, cfg.API.GeminiKey, cfg.Embedding.Model)
			if err != nil {
				return err
			}

			index := knowledge.NewIndex(embedder)
			chunker := knowledge.NewChunker(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
			for _, path := range args {
				content, err := knowledge.ExtractText(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				if err := index.AddDocument(ctx, filepath.Base(path), content, chunker); err != nil {
					return err
				}
				fmt.Printf("indexed %s\n", path)
			}

			if err := index.Save(cfg.Retrieval.IndexDir); err != nil {
				return fmt.Errorf("failed to save index: %w", err)
			}
			fmt.Printf("saved %d chunks to %s\n", index.ChunkCount(), cfg.Retrieval.IndexDir)
			return nil
		},
	}
}

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List saved session transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := config.DataDir()
			if err != nil {
				return err
			}
			transcripts, err := chat.NewTranscriptStore(dataDir)
			if err != nil {
				return err
			}
			ids, err := transcripts.List()
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Println("no saved sessions")
				return nil
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}
