package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pavelanni/quizzer/internal/bank"
	"github.com/pavelanni/quizzer/internal/export"
	"github.com/pavelanni/quizzer/internal/handler"
	appI18n "github.com/pavelanni/quizzer/internal/i18n"
	"github.com/pavelanni/quizzer/internal/identity"
	"github.com/pavelanni/quizzer/internal/recorder"
	"github.com/pavelanni/quizzer/internal/report"
	"github.com/pavelanni/quizzer/internal/store"
	"github.com/pavelanni/quizzer/internal/submission"
)

func main() {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quizzer",
		Short: "Quiz backend with scoring and generated performance reports",
	}

	serve := serveCmd()
	root.AddCommand(serve, initDBCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `quizzer --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func commonFlags(f *pflag.FlagSet) {
	f.String("database-url", "", "Database URL: postgres://... or a SQLite path (or set DATABASE_URL)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP quiz server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8000", "HTTP listen address")
	f.StringP("questions", "q", "data/questions.json", "Question bank file (.json or .xlsx)")
	f.String("subjects", "Maths,Science,Social Science", "Comma-separated subjects served by /quiz, in order")
	f.Int("per-subject", 10, "Questions sampled per subject")
	f.Int("total-questions", 30, "Fixed test length used as the score denominator")
	f.String("test-label", "Unified Entrance Test", "Test label returned with the quiz")
	f.String("llm-provider", providerGroq, "Report generator (groq, openai, gemini)")
	f.String("llm-url", "", "OpenAI-compatible API base URL (default depends on provider)")
	f.String("llm-model", "", "Model name (default depends on provider)")
	f.Duration("llm-timeout", report.DefaultTimeout, "Timeout for one report generation call")
	f.Duration("db-timeout", 5*time.Second, "Timeout for a single database operation during submission")
	f.StringP("lang", "l", "en", "Default language for generated text (en, hi)")
	f.Bool("auto-migrate", false, "Create database tables at startup")
	commonFlags(f)
	return cmd
}

func initDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the database tables",
		RunE:  runInitDB,
	}
	commonFlags(cmd.Flags())
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded test results as JSON or XLSX",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.StringP("format", "f", string(export.FormatJSON), "Output format (json, xlsx)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	commonFlags(f)
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
// DATABASE_URL and the provider API keys keep their conventional unprefixed names.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("QUIZZER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database-url", "DATABASE_URL", "QUIZZER_DATABASE_URL")
	_ = v.BindEnv("groq-api-key", "GROQ_API_KEY")
	_ = v.BindEnv("openai-api-key", "OPENAI_API_KEY")
	_ = v.BindEnv("gemini-api-key", "GEMINI_API_KEY")

	v.SetConfigName("quizzer")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/quizzer")
	v.AddConfigPath("/etc/quizzer")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// openStore opens the configured database. It returns nil without error
// when no database URL is set.
func openStore(v *viper.Viper) (*store.Store, error) {
	dsn := strings.TrimSpace(v.GetString("database-url"))
	if dsn == "" {
		return nil, nil
	}
	return store.New(dsn)
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	quizCfg, err := quizConfig(v)
	if err != nil {
		return err
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	questions := bank.LoadOrEmpty(v.GetString("questions"))

	db, err := openStore(v)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	// Interfaces stay nil when no database is configured.
	var (
		students identity.StudentStore
		names    submission.NameLookup
		saver    recorder.Saver
		migrator handler.Migrator
	)
	if db != nil {
		defer db.Close()
		ctx, cancel := context.WithTimeout(context.Background(), quizCfg.DBTimeout)
		if err := db.Ping(ctx); err != nil {
			slog.Warn("database unreachable, requests will degrade until it recovers", "dialect", db.Dialect(), "error", err)
		} else if v.GetBool("auto-migrate") {
			if err := db.Migrate(ctx); err != nil {
				slog.Warn("auto-migrate failed", "error", err)
			}
		}
		cancel()
		students, names, saver, migrator = db, db, db, db
	} else {
		slog.Warn("DATABASE_URL not set, running without persistence")
	}

	gen, credential, err := newGenerator(v)
	if err != nil {
		return err
	}
	if gen == nil {
		slog.Warn("report generator credential not set, using fallback reports", "credential", credential)
	}

	reporter := report.New(gen, quizCfg.LLMTimeout, report.WithCredentialName(credential))
	svc := submission.New(questions, names, reporter, recorder.New(saver), submission.Config{
		TotalQuestions: quizCfg.TotalQuestions,
		DBTimeout:      quizCfg.DBTimeout,
	})
	h := handler.New(questions, identity.New(students), svc, migrator, quizCfg)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"questions", questions.Len(),
		"subjects", quizCfg.Subjects,
		"per_subject", quizCfg.PerSubject,
		"total_questions", quizCfg.TotalQuestions,
		"llm_provider", v.GetString("llm-provider"),
		"database", db != nil,
		"lang", lang,
	)
	return http.ListenAndServe(addr, r)
}

func runInitDB(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := openStore(v)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if db == nil {
		return fmt.Errorf("DATABASE_URL not set")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Migrate(ctx); err != nil {
		return err
	}
	slog.Info("database tables initialized", "dialect", db.Dialect())
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	format, err := export.ParseFormat(v.GetString("format"))
	if err != nil {
		return err
	}

	db, err := openStore(v)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if db == nil {
		return fmt.Errorf("DATABASE_URL not set")
	}
	defer db.Close()

	results, err := db.ListResults(context.Background())
	if err != nil {
		return fmt.Errorf("export results: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := export.Write(w, format, results); err != nil {
		return err
	}
	slog.Info("exported test results", "count", len(results), "format", format, "output", outPath)
	return nil
}
