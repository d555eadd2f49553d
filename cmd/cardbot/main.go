// Package main is the cardbot CLI entry point.
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
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kektech/cardbot/internal/cli"
	"github.com/kektech/cardbot/internal/config"
	"github.com/kektech/cardbot/internal/models"
	"github.com/kektech/cardbot/internal/registry"
	"github.com/kektech/cardbot/internal/retrieval"
	"github.com/kektech/cardbot/internal/routecache"
	"github.com/kektech/cardbot/internal/router"
	"github.com/kektech/cardbot/internal/server"
	"github.com/kektech/cardbot/internal/snapshot"
	"github.com/kektech/cardbot/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/cardbot/config.yaml"

// loadConfig loads the app config from path. When path is the default, it
// first looks for config.yaml in the current directory (for development).
// A missing file is not fatal; defaults apply.
func loadConfig(path string) (*config.AppConfig, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.LoadApp(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.LoadApp(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			var empty config.AppConfig
			config.ApplyAppDefaults(&empty)
			return &empty, "", nil
		}
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "route":
		runRoute()
	case "card":
		runCard()
	case "version", "--version", "-v":
		fmt.Printf("cardbot version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	routerConfigPath := fs.String("router-config", "", "standalone router config file (yaml or json)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
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
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, *routerConfigPath, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Snapshot.Watch {
		if err := components.Watcher.Start(watchCtx); err != nil {
			logger.Warn("snapshot watcher failed to start", zap.Error(err))
		}
	}

	srv := server.NewServer(components.Router, components.Registry, cfg.Server, logger)
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

func runRoute() {
	fs := flag.NewFlagSet("route", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	routerConfigPath := fs.String("router-config", "", "standalone router config file (yaml or json)")
	serverURL := fs.String("server", "http://localhost:8090", "server URL (empty = run the router in-process)")
	roomID := fs.String("room", "", "room id for rollout and cache scoping")
	allowUncertain := fs.Bool("allow-uncertain", false, "let ambiguous queries return UNCERTAIN")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: cardbot route [flags] <query>")
		os.Exit(1)
	}
	queryStr := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if queryStr == "" {
		fmt.Println("Usage: cardbot route [flags] <query>")
		os.Exit(1)
	}

	var result *models.RouteResult
	if *serverURL != "" {
		res, err := routeViaHTTP(*serverURL, queryStr, *roomID, *allowUncertain)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Route failed: %v\n", err)
			os.Exit(1)
		}
		result = res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, *routerConfigPath, logger)
		if err != nil {
			logger.Fatal("Failed to initialize", zap.Error(err))
		}
		defer components.Close()
		result = components.Router.Route(context.Background(), queryStr,
			models.SearchScope{RoomID: *roomID},
			router.Options{AllowUncertain: *allowUncertain})
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
	if err := cli.WriteRouteResult(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func routeViaHTTP(serverURL, query, roomID string, allowUncertain bool) (*models.RouteResult, error) {
	body, err := json.Marshal(map[string]interface{}{
		"query":           query,
		"room_id":         roomID,
		"allow_uncertain": allowUncertain,
	})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/route", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var result models.RouteResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

func runCard() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: cardbot card <get|add> ...")
		fmt.Println("  cardbot card get <asset-or-token>   Look up a card by asset name or s<N>c<M> token")
		fmt.Println("  cardbot card add <asset> [flags]    Add or update a card")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("card", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8090", "server URL")
	series := fs.Int("series", 0, "card series")
	number := fs.Int("number", 0, "card number within the series")
	artist := fs.String("artist", "", "artist name")
	supply := fs.Int("supply", 0, "issued supply")
	_ = fs.Parse(os.Args[3:])

	switch sub {
	case "get":
		if fs.NArg() < 1 {
			fmt.Println("Usage: cardbot card get <asset-or-token>")
			os.Exit(1)
		}
		resp, err := http.Get(*serverURL + "/api/v1/cards/" + fs.Arg(0))
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Printf("Lookup failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Println(string(b))
	case "add":
		if fs.NArg() < 1 {
			fmt.Println("Usage: cardbot card add <asset> [flags]")
			os.Exit(1)
		}
		card := registry.Card{
			Asset:  fs.Arg(0),
			Series: *series,
			Number: *number,
			Artist: *artist,
			Supply: *supply,
		}
		body, _ := json.Marshal(card)
		req, _ := http.NewRequest(http.MethodPut, *serverURL+"/api/v1/cards", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Add failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Stored: %s\n", card.Asset)
	default:
		fmt.Printf("Unknown card subcommand: %s\n", sub)
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Registry *registry.Registry
	Snapshot *snapshot.Store
	Watcher  *snapshot.Watcher
	Router   *router.Router
}

func (c *Components) Close() {
	if c.Watcher != nil {
		c.Watcher.Stop()
	}
	if c.Snapshot != nil {
		_ = c.Snapshot.Close()
	}
	if c.Registry != nil {
		_ = c.Registry.Close()
	}
}

func initializeComponents(cfg *config.AppConfig, routerConfigPath string, logger *zap.Logger) (*Components, error) {
	fileCfg, err := config.RouterFile(routerConfigPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load router config: %w", err)
	}

	reg, err := registry.Open(cfg.Registry.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open card registry: %w", err)
	}

	snap, err := snapshot.NewStore(logger)
	if err != nil {
		reg.Close()
		return nil, fmt.Errorf("failed to create snapshot store: %w", err)
	}
	if err := snap.LoadDir(cfg.Snapshot.Dir, cfg.Snapshot.Extensions); err != nil {
		logger.Warn("snapshot load incomplete", zap.String("dir", cfg.Snapshot.Dir), zap.Error(err))
	}
	logger.Info("knowledge snapshot loaded",
		zap.String("dir", cfg.Snapshot.Dir),
		zap.Int("files", snap.Len()))
	watch := snapshot.NewWatcher(cfg.Snapshot.Dir, cfg.Snapshot.Extensions, snap, logger)

	capTimeout, err := time.ParseDuration(cfg.Capability.Timeout)
	if err != nil {
		capTimeout = 5 * time.Second
	}
	var primary retrieval.Searcher
	if cfg.Capability.BaseURL != "" {
		primary = retrieval.NewHTTPCapability(cfg.Capability.BaseURL, capTimeout)
	}

	routerCfg := config.Resolve(config.Defaults(), fileCfg, config.EnvSnapshot(os.LookupEnv))

	retriever := retrieval.NewRetriever(primary, snap, reg, routerCfg.SourceWeights, routerCfg.RetrievalTimeout, logger)

	cacheTTL, err := time.ParseDuration(cfg.Cache.TTL)
	if err != nil {
		cacheTTL = 90 * time.Second
	}
	cache := routecache.New(cacheTTL, cfg.Cache.MaxEntries)

	rt := router.New(routerCfg, retriever, cache, logger)

	return &Components{
		Registry: reg,
		Snapshot: snap,
		Watcher:  watch,
		Router:   rt,
	}, nil
}

func printUsage() {
	fmt.Println(`cardbot - knowledge retrieval and ranking router for the card community bot

Usage:
  cardbot server [flags]           Start the HTTP server
  cardbot route [flags] <query>    Route a query and print the assessment
  cardbot card <get|add> ...       Look up or store cards in the registry
  cardbot version                  Show version
  cardbot help                     Show this help

Server Flags:
  --config string           Config file path (default: /usr/local/etc/cardbot/config.yaml)
  --router-config string    Standalone router config file, yaml or json (default: $CARDBOT_CONFIG_FILE)
  --debug                   Enable debug logging

Route Flags:
  --config string           Config file path (for in-process mode)
  --router-config string    Standalone router config file, yaml or json (for in-process mode)
  --server string           Server URL (default: http://localhost:8090). Use empty (--server "") to run in-process.
  --room string             Room id for rollout and cache scoping
  --allow-uncertain         Let ambiguous queries return UNCERTAIN
  --output string           Output format: text or json (default: text)

Card Flags:
  --server string    Server URL (default: http://localhost:8090)
  --series int       Card series (add)
  --number int       Card number within the series (add)
  --artist string    Artist name (add)
  --supply int       Issued supply (add)

Environment overrides (also read from .env):
  CARDBOT_CONFIG_FILE,
  CARDBOT_TOP_K, CARDBOT_PREVIEW_LENGTH, CARDBOT_MIN_CONFIDENCE,
  CARDBOT_MAX_TOKENS, CARDBOT_MODEL_SIZE,
  CARDBOT_WEIGHT_CHAT, CARDBOT_WEIGHT_DOCS, CARDBOT_WEIGHT_MEMORY,
  CARDBOT_WEIGHT_CARD, CARDBOT_WEIGHT_UNKNOWN

Examples:
  cardbot server
  cardbot route "what is FREEDOMKEK?"
  cardbot route --room room-42 --output json "submission rules"
  cardbot card add FREEDOMKEK --series 1 --number 1 --artist anon --supply 300
  cardbot card get s1c1`)
}
