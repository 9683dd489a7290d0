// Package main is the oralarg CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/oralarg/internal/cli"
	"github.com/hyperjump/oralarg/internal/config"
	"github.com/hyperjump/oralarg/internal/extract"
	"github.com/hyperjump/oralarg/internal/ingest"
	"github.com/hyperjump/oralarg/internal/keyword"
	"github.com/hyperjump/oralarg/internal/reconcile"
	"github.com/hyperjump/oralarg/internal/scdb"
	"github.com/hyperjump/oralarg/internal/server"
	"github.com/hyperjump/oralarg/internal/storage"
	"github.com/hyperjump/oralarg/internal/watcher"
	"github.com/hyperjump/oralarg/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/oralarg/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// A missing default config falls back to built-in defaults. VERBOSE is applied last.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	cfg, resolved, err := readConfig(path)
	if err != nil {
		return nil, "", err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, "", err
	}
	return cfg, resolved, nil
}

func readConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command, args := os.Args[1], os.Args[2:]
	var err error
	switch command {
	case "process":
		err = runProcess(args)
	case "load-cases":
		err = runLoadCases(args)
	case "reconcile":
		err = runReconcile(args)
	case "compile":
		err = runCompile(args)
	case "list":
		err = runList(args)
	case "show":
		err = runShow(args)
	case "search":
		err = runSearch(args)
	case "status":
		err = runStatus(args)
	case "serve", "server":
		err = runServe(args)
	case "watch":
		err = runWatch(args)
	case "version", "--version", "-v":
		fmt.Printf("oralarg version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", command, err)
		os.Exit(1)
	}
}

// commonFlags are accepted by every subcommand that touches the store.
type commonFlags struct {
	configPath *string
	debug      *bool
	output     *string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		configPath: fs.String("config", defaultConfigPath, "config file path"),
		debug:      fs.Bool("debug", false, "enable debug logging (also VERBOSE=true)"),
		output:     fs.String("output", "text", "output format: text, compact, or json"),
	}
}

// session is a loaded config, a logger and the open components.
type session struct {
	cfg        *config.Config
	logger     *zap.Logger
	format     cli.OutputFormat
	components *Components
}

func (s *session) Close() {
	if s.components != nil {
		s.components.Close()
	}
	_ = s.logger.Sync()
}

func openSession(flags *commonFlags) (*session, error) {
	format, err := cli.ParseFormat(*flags.output)
	if err != nil {
		return nil, err
	}
	cfg, resolved, err := loadConfig(*flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	debugMode := cfg.Debug || *flags.debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("config loaded",
		zap.String("config_path", resolved),
		zap.Bool("debug", debugMode),
	)
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, format: format, components: components}, nil
}

// processTargets processes the given paths, or every term directory under the
// configured transcripts root when none are given. A directory argument is
// treated as a transcripts root; a file argument must sit in a term directory.
func processTargets(ctx context.Context, s *session, paths []string) (*ingest.Summary, error) {
	in := s.components.Ingester
	var groups []ingest.TermGroup
	if len(paths) == 0 {
		paths = []string{s.cfg.Data.TranscriptsDir}
	}
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat path: %w", err)
		}
		if !info.IsDir() {
			abs, _ := filepath.Abs(p)
			files = append(files, abs)
			continue
		}
		g, err := ingest.ListTermGroups(p, in.Accepts, s.logger)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g...)
	}
	if len(files) > 0 {
		groups = append(groups, ingest.TermGroup{Files: files})
	}
	return in.ProcessAll(ctx, groups)
}

func runProcess(args []string) error {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	flags := addCommonFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: oralarg process [flags] [transcripts-root-or-file ...]\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	s, err := openSession(flags)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sum, err := processTargets(ctx, s, fs.Args())
	if err != nil {
		return err
	}
	return cli.WriteSummary(os.Stdout, sum, s.format)
}

func loadCases(ctx context.Context, s *session, path string) (*scdb.ImportResult, error) {
	if path == "" {
		path = s.cfg.Data.SCDBPath
	}
	cases, err := scdb.Load(path, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load cases: %w", err)
	}
	res, err := scdb.Import(ctx, s.components.Storage, cases, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to import cases: %w", err)
	}
	s.logger.Info("cases loaded",
		zap.String("path", path), zap.Int("created", res.Created), zap.Int("skipped", res.Skipped))
	return res, nil
}

func runLoadCases(args []string) error {
	fs := flag.NewFlagSet("load-cases", flag.ExitOnError)
	flags := addCommonFlags(fs)
	_ = fs.Parse(args)

	s, err := openSession(flags)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := loadCases(context.Background(), s, fs.Arg(0))
	if err != nil {
		return err
	}
	if s.format == cli.OutputJSON {
		return cli.WriteJSON(os.Stdout, res)
	}
	fmt.Printf("cases created %d, skipped %d\n", res.Created, res.Skipped)
	return nil
}

func runReconcile(args []string) error {
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
	flags := addCommonFlags(fs)
	_ = fs.Parse(args)

	s, err := openSession(flags)
	if err != nil {
		return err
	}
	defer s.Close()

	cov, err := reconcile.Reconcile(context.Background(), s.components.Storage, s.logger)
	if err != nil {
		return err
	}
	return cli.WriteCoverage(os.Stdout, cov, s.format)
}

// compileResult is the JSON shape of the compile command.
type compileResult struct {
	Processing *ingest.Summary     `json:"processing"`
	Cases      *scdb.ImportResult  `json:"cases"`
	Coverage   *reconcile.Coverage `json:"coverage"`
}

func runCompile(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	flags := addCommonFlags(fs)
	scdbPath := fs.String("scdb", "", "case database export (default from config)")
	_ = fs.Parse(args)

	s, err := openSession(flags)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var out compileResult
	if out.Processing, err = processTargets(ctx, s, fs.Args()); err != nil {
		return err
	}
	if out.Cases, err = loadCases(ctx, s, *scdbPath); err != nil {
		return err
	}
	if out.Coverage, err = reconcile.Reconcile(ctx, s.components.Storage, s.logger); err != nil {
		return err
	}

	if s.format == cli.OutputJSON {
		return cli.WriteJSON(os.Stdout, out)
	}
	if err := cli.WriteSummary(os.Stdout, out.Processing, s.format); err != nil {
		return err
	}
	fmt.Printf("cases created %d, skipped %d\n", out.Cases.Created, out.Cases.Skipped)
	return cli.WriteCoverage(os.Stdout, out.Coverage, s.format)
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	flags := addCommonFlags(fs)
	term := fs.Int("term", 0, "only transcripts argued in this term")
	flagged := fs.Bool("flagged", false, "only transcripts with red flags")
	limit := fs.Int("limit", 0, "maximum transcripts to list (0 = all)")
	offset := fs.Int("offset", 0, "transcripts to skip")
	_ = fs.Parse(args)

	s, err := openSession(flags)
	if err != nil {
		return err
	}
	defer s.Close()

	list, err := s.components.Storage.ListTranscripts(context.Background(), storage.TranscriptFilter{
		Term:        *term,
		FlaggedOnly: *flagged,
		Offset:      *offset,
		Limit:       *limit,
	})
	if err != nil {
		return err
	}
	return cli.WriteTranscripts(os.Stdout, list, s.format)
}

func runShow(args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	flags := addCommonFlags(fs)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return errors.New("usage: oralarg show [flags] <transcript-id>")
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid transcript id %q", fs.Arg(0))
	}

	s, err := openSession(flags)
	if err != nil {
		return err
	}
	defer s.Close()

	t, err := s.components.Storage.GetTranscript(context.Background(), id)
	if err != nil {
		return err
	}
	t.RawText = ""
	return cli.WriteTranscript(os.Stdout, t, s.format)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: oralarg search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
When an exact search finds nothing it is retried with fuzzy matching.

Examples:
  oralarg search preemption
  oralarg search --speaker "JUSTICE SCALIA" --term 2011 statute
  oralarg search --phrase "may it please the court"
  oralarg search --side respondent --fuzzy preemtion
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	flags := addCommonFlags(fs)
	serverURL := fs.String("server", "", "server URL; empty searches the local index directly")
	limit := fs.Int("limit", 0, "number of results (default from config)")
	speaker := fs.String("speaker", "", "only statements by this speaker label")
	side := fs.String("side", "", "only statements on this side: petitioner or respondent")
	term := fs.Int("term", 0, "only statements argued in this term")
	phrase := fs.Bool("phrase", false, "match the query as an exact phrase")
	fuzzy := fs.Bool("fuzzy", false, "enable fuzzy matching for OCR noise and typos")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(args))

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		return errors.New("query is required")
	}
	format, err := cli.ParseFormat(*flags.output)
	if err != nil {
		return err
	}
	q := &keyword.Query{
		Query:   queryStr,
		Limit:   *limit,
		Speaker: *speaker,
		Side:    *side,
		Term:    *term,
		Phrase:  *phrase,
		Fuzzy:   *fuzzy,
	}

	if *serverURL != "" {
		// Use the HTTP API when the server is running; it holds the Bleve lock.
		response, err := searchViaHTTP(*serverURL, q)
		if err != nil {
			return err
		}
		return cli.WriteSearchResults(os.Stdout, response, format)
	}

	s, err := openSession(flags)
	if err != nil {
		return err
	}
	defer s.Close()
	response, err := keyword.Run(context.Background(), s.components.KeywordIndex, q, &s.cfg.Search)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return cli.WriteSearchResults(os.Stdout, response, format)
}

func searchViaHTTP(serverURL string, query *keyword.Query) (*keyword.Response, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(strings.TrimRight(serverURL, "/")+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response keyword.Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	flags := addCommonFlags(fs)
	serverURL := fs.String("server", "", "server URL; empty reads the local store directly")
	_ = fs.Parse(args)

	format, err := cli.ParseFormat(*flags.output)
	if err != nil {
		return err
	}
	var status *server.StatusResponse
	if *serverURL != "" {
		if status, err = statusViaHTTP(*serverURL); err != nil {
			return err
		}
	} else {
		s, err := openSession(flags)
		if err != nil {
			return err
		}
		defer s.Close()
		if status, err = localStatus(context.Background(), s); err != nil {
			return err
		}
	}
	if format == cli.OutputJSON {
		return cli.WriteJSON(os.Stdout, status)
	}
	writeStatusText(os.Stdout, status)
	return nil
}

func localStatus(ctx context.Context, s *session) (*server.StatusResponse, error) {
	stats, err := s.components.Storage.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}
	status := &server.StatusResponse{
		Stats: stats,
		Config: &server.StatusConfig{
			DatabasePath:   s.cfg.Storage.DatabasePath,
			BleveIndexPath: s.cfg.Storage.BleveIndexPath,
			TranscriptsDir: s.cfg.Data.TranscriptsDir,
		},
	}
	if n, err := s.components.KeywordIndex.DocCount(); err == nil {
		status.IndexedStatements = n
	}
	if diskBytes, err := storage.DiskUsageBytes(s.cfg.Storage.DatabasePath, s.cfg.Storage.BleveIndexPath); err == nil {
		status.DiskUsageBytes = &diskBytes
	}
	return status, nil
}

func writeStatusText(w io.Writer, status *server.StatusResponse) {
	if st := status.Stats; st != nil {
		fmt.Fprintf(w, "transcripts:         %d   # %d with red flags\n", st.Transcripts, st.FlaggedTranscripts)
		fmt.Fprintf(w, "statements:          %d\n", st.Statements)
		fmt.Fprintf(w, "paragraphs:          %d\n", st.Paragraphs)
		fmt.Fprintf(w, "red_flags:           %d\n", st.RedFlags)
		fmt.Fprintf(w, "cases:               %d   # %d linked to a transcript\n", st.Cases, st.CasesWithTranscript)
	}
	fmt.Fprintf(w, "indexed_statements:  %d   # statements in the keyword index\n", status.IndexedStatements)
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:    %d   # database + index on disk\n", *status.DiskUsageBytes)
	}
	if status.Config != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		fmt.Fprintf(w, "database_path:       %s\n", status.Config.DatabasePath)
		fmt.Fprintf(w, "bleve_index_path:    %s\n", status.Config.BleveIndexPath)
		fmt.Fprintf(w, "transcripts_dir:     %s\n", status.Config.TranscriptsDir)
	}
}

func statusViaHTTP(serverURL string) (*server.StatusResponse, error) {
	resp, err := http.Get(strings.TrimRight(serverURL, "/") + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s server.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// newWatcher wires the transcripts watcher to the ingester.
func newWatcher(ctx context.Context, s *session) *watcher.Watcher {
	in := s.components.Ingester
	logger := s.logger
	handle := func(op string, fn func(ctx context.Context, path string) (*ingest.FileResult, error)) func(string) {
		return func(path string) {
			if _, err := fn(ctx, path); err != nil {
				logger.Warn("watch "+op+" failed", zap.String("path", path), zap.Error(err))
			}
		}
	}
	return watcher.NewWatcher(
		s.cfg.Data.TranscriptsDir,
		s.cfg.Watch.Extensions,
		watcher.Handlers{
			OnCreate: handle("process", in.ProcessFile),
			OnChange: handle("reprocess", in.ReprocessFile),
			OnRemove: func(path string) {
				if err := in.DeleteFile(ctx, path); err != nil {
					logger.Warn("watch delete failed", zap.String("path", path), zap.Error(err))
				}
			},
		},
		watcher.WithLogger(logger),
		watcher.WithDebounce(time.Duration(s.cfg.Watch.DebounceMS)*time.Millisecond),
		watcher.WithDirFilter(func(name string) bool {
			_, ok := ingest.ParseTerm(name)
			return ok
		}),
	)
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	flags := addCommonFlags(fs)
	watch := fs.Bool("watch", true, "process transcripts as they appear under the transcripts root")
	_ = fs.Parse(args)

	s, err := openSession(flags)
	if err != nil {
		return err
	}
	defer s.Close()
	logger := s.logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *watch {
		w := newWatcher(ctx, s)
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer w.Stop()
		w.SyncExistingFiles()
	}

	srv := server.NewServer(s.components.Storage, s.components.KeywordIndex, s.cfg, logger)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	flags := addCommonFlags(fs)
	sync := fs.Bool("sync", true, "process transcripts already present before watching")
	_ = fs.Parse(args)

	s, err := openSession(flags)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	w := newWatcher(ctx, s)
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()
	s.logger.Info("watching transcripts", zap.String("root", s.cfg.Data.TranscriptsDir),
		zap.Strings("terms", w.Directories()))
	if *sync {
		w.SyncExistingFiles()
	}
	<-ctx.Done()
	s.logger.Info("Shutting down...")
	return nil
}

// Components holds initialized services.
type Components struct {
	Storage      storage.Storage
	KeywordIndex keyword.StatementIndex
	Ingester     *ingest.Ingester
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	for _, p := range []string{cfg.Storage.DatabasePath, cfg.Storage.BleveIndexPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}
	in := ingest.NewIngester(store, extract.NewExtractor(),
		ingest.WithLogger(logger),
		ingest.WithKeywordIndex(keywordIndex),
		ingest.WithExtensions(cfg.Watch.Extensions),
	)
	return &Components{
		Storage:      store,
		KeywordIndex: keywordIndex,
		Ingester:     in,
	}, nil
}

func printUsage() {
	fmt.Println(`oralarg - Supreme Court oral argument transcript pipeline

Usage:
  oralarg process [flags] [path ...]    Segment transcripts into statements (default: transcripts root)
  oralarg load-cases [flags] [file]     Load the case database export (CSV or XLSX)
  oralarg reconcile [flags]             Link cases to transcripts by docket and report coverage
  oralarg compile [flags] [path ...]    process + load-cases + reconcile
  oralarg list [flags]                  List stored transcripts
  oralarg show [flags] <id>             Show one transcript's statements and red flags
  oralarg search [flags] <query>        Search what was said
  oralarg status [flags]                Show store and index status
  oralarg serve [flags]                 Start the HTTP API (and watch the transcripts root)
  oralarg watch [flags]                 Watch the transcripts root and process changes
  oralarg version                       Show version
  oralarg help                          Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/oralarg/config.yaml)
  --debug            Enable debug logging (VERBOSE=true does the same)
  --output string    Output format: text, compact, or json (default: text)

List Flags:
  --term int         Only this term
  --flagged          Only transcripts with red flags
  --limit, --offset  Paging

Search Flags:
  --server string    Server URL; empty (default) searches the local index
  --limit int        Number of results (default from config)
  --speaker string   Speaker label, e.g. "JUSTICE SCALIA"
  --side string      petitioner or respondent
  --term int         Argument term
  --phrase           Exact phrase
  --fuzzy            Fuzzy matching

Compile Flags:
  --scdb string      Case database export (default from config)

Serve Flags:
  --watch            Watch the transcripts root (default: true)

Watch Flags:
  --sync             Process files already present first (default: true)

Transcripts are read from <transcripts_dir>/<term>/<docket>.pdf; the term is the
four-digit directory name and the docket is taken from the file name.

Examples:
  oralarg compile
  oralarg process ./transcripts
  oralarg list --flagged
  oralarg show 12
  oralarg search --speaker "JUSTICE SCALIA" preemption
  oralarg status --output json
  oralarg serve`)
}
