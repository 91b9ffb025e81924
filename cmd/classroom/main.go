package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/pavelanni/classroom/internal/fetch"
	"github.com/pavelanni/classroom/internal/handler"
	appI18n "github.com/pavelanni/classroom/internal/i18n"
	"github.com/pavelanni/classroom/internal/model"
	"github.com/pavelanni/classroom/internal/store"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

func main() {
	loadDotEnv(".env")
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadDotEnv exports variables from path into the environment when the file exists.
// Variables already set are not overridden.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "warning: load %s: %v\n", path, err)
		}
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "classroom",
		Short:        "Classroom code submission server",
		SilenceUsage: true,
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func addStorageFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("data-dir", ".", "Directory holding the state and submission files")
	f.String("state-file", "state.json", "Progression state file (relative to data-dir)")
	f.String("submissions-file", "submissions.json", "Submission log file (relative to data-dir)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP classroom server",
		RunE:  runServe,
	}
	addStorageFlags(cmd)
	f := cmd.Flags()
	f.StringP("addr", "a", "", "HTTP listen address (overrides --port)")
	f.IntP("port", "p", 3000, "HTTP listen port")
	f.String("ref-files", "tutorCodeUrls.json", "Reference file URL list (relative to data-dir)")
	f.String("public-dir", "public", "Directory with the student and tutor pages")
	f.String("tutor-password", "", "Tutor password (or set TUTOR_PASSWORD)")
	f.String("tutor-password-hash", "", "bcrypt hash of the tutor password, preferred over --tutor-password")
	f.String("tutor-code-url", "", "URL of the tutor code shown on the tutor page (or set TUTOR_CODE_URL)")
	f.StringSlice("cors-origins", []string{"*"}, "Allowed CORS origins")
	f.Duration("fetch-timeout", 10*time.Second, "Timeout for fetching remote tutor code")
	f.StringP("lang", "l", "en", "Message language (en, ru)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export submissions as JSON",
		RunE:  runExport,
	}
	addStorageFlags(cmd)
	cmd.Flags().StringP("output", "o", "-", "Output file path (- for stdout)")
	return cmd
}

func setupLogging(v *viper.Viper) {
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

// legacyEnv maps config keys to the bare environment names older deployments use.
var legacyEnv = map[string]string{
	"port":           "PORT",
	"tutor-password": "TUTOR_PASSWORD",
	"tutor-code-url": "TUTOR_CODE_URL",
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("CLASSROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if cmd.Flags().Lookup(key) != nil {
			_ = v.BindEnv(key, "CLASSROOM_"+strings.ToUpper(strings.ReplaceAll(key, "-", "_")), env)
		}
	}

	v.SetConfigName("classroom")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/classroom")
	v.AddConfigPath("/etc/classroom")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// dataPath resolves name against the data directory unless it is absolute.
func dataPath(v *viper.Viper, key string) string {
	name := v.GetString(key)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(v.GetString("data-dir"), name)
}

func listenAddr(v *viper.Viper) string {
	if addr := v.GetString("addr"); addr != "" {
		return addr
	}
	return net.JoinHostPort("", strconv.Itoa(v.GetInt("port")))
}

func openStores(v *viper.Viper) (*store.StateStore, *store.SubmissionLog, error) {
	st, err := store.NewStateStore(dataPath(v, "state-file"))
	if err != nil {
		return nil, nil, fmt.Errorf("open state: %w", err)
	}
	subs, err := store.NewSubmissionLog(dataPath(v, "submissions-file"))
	if err != nil {
		return nil, nil, fmt.Errorf("open submissions: %w", err)
	}
	return st, subs, nil
}

// newRouter assembles the middleware stack and mounts the handler's routes.
func newRouter(h *handler.Handler, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.RequestSize(maxBodyBytes))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(appI18n.Middleware())
	h.Routes(r)
	return r
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	cfg := model.ServerConfig{
		PublicDir:     v.GetString("public-dir"),
		TutorCodeURL:  v.GetString("tutor-code-url"),
		MaxBodyBytes:  maxBodyBytes,
		TutorPassword: v.GetString("tutor-password"),
		TutorHash:     v.GetString("tutor-password-hash"),
	}
	if cfg.TutorPassword == "" && cfg.TutorHash == "" {
		return fmt.Errorf("tutor password is required: set --tutor-password, --tutor-password-hash or TUTOR_PASSWORD")
	}

	if err := os.MkdirAll(v.GetString("data-dir"), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	st, subs, err := openStores(v)
	if err != nil {
		return err
	}
	refs := store.NewRefList(dataPath(v, "ref-files"))
	if _, err := refs.Load(); err != nil {
		slog.Warn("reference file list unreadable", "path", refs.Path(), "error", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	h, err := handler.New(st, subs, refs, fetch.New(v.GetDuration("fetch-timeout"), 0), cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	addr := listenAddr(v)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(h, v.GetStringSlice("cors-origins")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server",
			"addr", addr,
			"state", st.Path(),
			"submissions", subs.Path(),
			"ref_files", refs.Path(),
			"public_dir", cfg.PublicDir,
			"lang", lang,
			"hashed_secret", cfg.TutorHash != "",
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runExport(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	st, subs, err := openStores(v)
	if err != nil {
		return err
	}
	export, err := store.Export(st, subs, time.Now())
	if err != nil {
		return fmt.Errorf("export submissions: %w", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
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

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, _ = fmt.Fprintln(w)

	slog.Info("exported submissions", "count", export.Count, "output", outPath)
	return nil
}
