// Package main is the bunko CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bunkolab/bunko/internal/answer"
	"github.com/bunkolab/bunko/internal/artifact"
	"github.com/bunkolab/bunko/internal/cli"
	"github.com/bunkolab/bunko/internal/config"
	"github.com/bunkolab/bunko/internal/embedding"
	"github.com/bunkolab/bunko/internal/models"
	"github.com/bunkolab/bunko/internal/pipeline"
	"github.com/bunkolab/bunko/internal/rag"
	"github.com/bunkolab/bunko/internal/server"
	"github.com/bunkolab/bunko/internal/store"
	"github.com/bunkolab/bunko/internal/watcher"
	"github.com/bunkolab/bunko/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/bunko/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence so running from the project dir
// picks up the project's config.
func loadConfig(path string) (*config.Config, string, error) {
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
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// API keys may live in a local .env; absence is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "upload":
		runUpload()
	case "ask":
		runAsk()
	case "list":
		runList()
	case "remove":
		runRemove()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("bunko version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`Usage: bunko <command> [flags]

Commands:
  server    run the HTTP server
  upload    upload a document to a running server
  ask       ask a question over the indexed documents
  list      list indexed documents
  remove    remove a document
  status    show server status
  version   print version
  help      show this help

Run "bunko <command> -h" for command flags.
`)
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedPath),
		zap.Bool("debug", debugMode))

	files, err := artifact.NewStore(cfg.Storage.DataDir)
	if err != nil {
		logger.Fatal("Failed to open data dir", zap.Error(err))
	}

	catalog := embedding.NewCatalog(cfg.Embedding)
	defer catalog.Close()

	var named []server.NamedStore
	var writeStores []store.VectorStore
	for _, name := range cfg.Storage.Backends {
		backend, err := store.New(name, files, cfg.Storage.DatabasePath, logger)
		if err != nil {
			logger.Fatal("Failed to create backend", zap.String("backend", name), zap.Error(err))
		}
		named = append(named, server.NamedStore{Name: name, Store: backend})
		writeStores = append(writeStores, backend)
	}
	defer func() {
		for _, n := range named {
			_ = n.Store.Close()
		}
	}()

	var readStore store.VectorStore
	for _, n := range named {
		if n.Name == cfg.Storage.ReadBackend {
			readStore = n.Store
		}
	}
	if readStore == nil {
		logger.Fatal("Read backend is not among the configured write backends",
			zap.String("read_backend", cfg.Storage.ReadBackend),
			zap.Strings("backends", cfg.Storage.Backends))
	}

	pipe := pipeline.New(files, catalog, writeStores, cfg, pipeline.WithLogger(logger))
	scheduler := pipeline.NewScheduler(pipe, logger)

	generator, err := answer.New(cfg.Answer)
	if err != nil {
		logger.Warn("answer generation disabled", zap.Error(err))
		generator = nil
	}
	ragEngine := rag.New(catalog, readStore, generator, cfg, rag.WithLogger(logger))

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Watch.Inbox != "" {
		inbox := watcher.New(cfg.Watch.Inbox, cfg.Watch.Extensions, func(path string) {
			name := filepath.Base(path)
			f, err := os.Open(path)
			if err != nil {
				logger.Warn("inbox file unreadable", zap.String("path", path), zap.Error(err))
				return
			}
			saveErr := files.SaveOriginal(name, f)
			f.Close()
			if saveErr != nil {
				logger.Warn("inbox file not stored", zap.String("path", path), zap.Error(saveErr))
				return
			}
			scheduler.Schedule(pipeline.Request{
				Name:      name,
				Org:       cfg.Retrieval.DefaultOrg,
				ChunkSize: cfg.Chunking.ChunkSize,
				Overlap:   cfg.Chunking.Overlap,
				Model:     cfg.Embedding.Model,
			})
		}, watcher.WithLogger(logger))
		if err := inbox.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start inbox watcher", zap.Error(err))
		}
		defer inbox.Stop()
	}

	srv := server.NewServer(cfg, logger, files, named, readStore, cfg.Storage.ReadBackend, scheduler, ragEngine)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runUpload() {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server base URL")
	chunkSize := fs.Int("chunk-size", 0, "words per chunk (0 = server default)")
	overlap := fs.Int("overlap", -1, "overlap words (-1 = server default)")
	model := fs.String("model", "", "embedding model id")
	org := fs.String("org", "", "organization")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fmt.Println("Usage: bunko upload [flags] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		fatalf("open file: %v", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		fatalf("build form: %v", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		fatalf("read file: %v", err)
	}
	if *chunkSize > 0 {
		_ = w.WriteField("chunk_size", fmt.Sprint(*chunkSize))
	}
	if *overlap >= 0 {
		_ = w.WriteField("overlap", fmt.Sprint(*overlap))
	}
	if *model != "" {
		_ = w.WriteField("model", *model)
	}
	if *org != "" {
		_ = w.WriteField("org", *org)
	}
	_ = w.Close()

	resp, err := http.Post(*serverURL+"/api/v1/documents", w.FormDataContentType(), &buf)
	if err != nil {
		fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	printResponse(resp)
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server base URL")
	topK := fs.Int("top-k", 0, "chunks of context to retrieve (0 = server default)")
	model := fs.String("model", "", "embedding model id")
	llmModel := fs.String("llm-model", "", "answer model id")
	org := fs.String("org", "", "organization")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		fmt.Println("Usage: bunko ask [flags] <question>")
		os.Exit(1)
	}

	body, err := json.Marshal(models.AskRequest{
		Question: question,
		TopK:     *topK,
		Model:    *model,
		LLMModel: *llmModel,
		Org:      *org,
	})
	if err != nil {
		fatalf("build request: %v", err)
	}
	resp, err := http.Post(*serverURL+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		fatalf("ask: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		printResponse(resp)
		os.Exit(1)
	}
	var ar models.AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		fatalf("decode response: %v", err)
	}
	if err := cli.WriteAskResult(os.Stdout, &ar, cli.OutputFormat(*output)); err != nil {
		fatalf("write result: %v", err)
	}
}

func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server base URL")
	org := fs.String("org", "", "organization")
	output := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	u := *serverURL + "/api/v1/documents"
	if *org != "" {
		u += "?org=" + url.QueryEscape(*org)
	}
	resp, err := http.Get(u)
	if err != nil {
		fatalf("list: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		printResponse(resp)
		os.Exit(1)
	}
	var lr struct {
		Documents []*models.Document `json:"documents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		fatalf("decode response: %v", err)
	}
	if err := cli.WriteDocumentList(os.Stdout, lr.Documents, cli.OutputFormat(*output)); err != nil {
		fatalf("write list: %v", err)
	}
}

func runRemove() {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server base URL")
	org := fs.String("org", "", "organization")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() < 1 {
		fmt.Println("Usage: bunko remove [flags] <name>")
		os.Exit(1)
	}
	name := fs.Arg(0)

	u := *serverURL + "/api/v1/documents/" + url.PathEscape(name)
	if *org != "" {
		u += "?org=" + url.QueryEscape(*org)
	}
	req, err := http.NewRequest(http.MethodDelete, u, nil)
	if err != nil {
		fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatalf("remove: %v", err)
	}
	defer resp.Body.Close()
	printResponse(resp)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server base URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fatalf("status: %v", err)
	}
	defer resp.Body.Close()
	printResponse(resp)
}

// printResponse pretty-prints a JSON response body.
func printResponse(resp *http.Response) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fatalf("read response: %v", err)
	}
	var pretty bytes.Buffer
	if json.Indent(&pretty, data, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(string(data))
	}
	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
	os.Exit(1)
}
