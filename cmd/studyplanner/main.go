package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/Joseda-hg/studyplanner/internal/cli"
	"github.com/Joseda-hg/studyplanner/internal/config"
	"github.com/Joseda-hg/studyplanner/internal/db"
	"github.com/Joseda-hg/studyplanner/internal/persist"
	"github.com/Joseda-hg/studyplanner/internal/task"
	"github.com/Joseda-hg/studyplanner/internal/tui"
	"github.com/Joseda-hg/studyplanner/internal/web"
)

type backend interface {
	persist.KV
	io.Closer
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	configPathFlag := flag.String("config", "", "config file path")
	dbPathFlag := flag.String("db", "", "sqlite db path")
	backendFlag := flag.String("backend", "", "storage backend (sqlite or file)")
	webFlag := flag.Bool("web", false, "enable web server")
	webOnlyFlag := flag.Bool("web-only", false, "run web server only")
	portFlag := flag.Int("port", 0, "web server port")
	flag.Parse()

	cfgPath, err := resolveConfigPath(*configPathFlag)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	cfg = config.ApplyEnv(cfg)

	if *dbPathFlag != "" {
		cfg.DBPath = *dbPathFlag
	}
	if *backendFlag != "" {
		cfg.Backend = *backendFlag
	}
	if *webFlag || *webOnlyFlag {
		cfg.WebEnabled = true
	}
	if *portFlag != 0 {
		cfg.WebPort = *portFlag
	}

	cfg, err = config.Resolve(cfg, cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		log.Fatal(err)
	}

	kv, err := openBackend(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer kv.Close()

	args := flag.Args()
	interactive := len(args) == 0 && !*webOnlyFlag

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if interactive {
		// The terminal belongs to the UI; storage warnings go to a file.
		logFile, err := openLogFile(filepath.Join(filepath.Dir(cfgPath), "studyplanner.log"))
		if err != nil {
			log.Fatal(err)
		}
		defer logFile.Close()
		logger = log.New(logFile, "", log.LstdFlags)
	}

	ctx := context.Background()
	bridge := persist.New(kv, log.New(logger.Writer(), "persist: ", log.LstdFlags))
	store := task.New(bridge.Load(ctx), task.WithObserver(bridge.Observer()))

	if len(args) > 0 {
		runner := &cli.Runner{
			Store:      store,
			Out:        os.Stdout,
			Err:        os.Stderr,
			ExportPath: cfg.ExportPath,
			SaveErr:    bridge.Err,
		}
		code := runner.Run(args)
		kv.Close()
		os.Exit(code)
	}

	if cfg.WebEnabled {
		addr := fmt.Sprintf(":%d", cfg.WebPort)
		handler := web.NewServer(store).Handler()
		if *webOnlyFlag {
			logger.Printf("Web server running at http://localhost%s", addr)
			logger.Fatal(http.ListenAndServe(addr, handler))
		}

		go func() {
			logger.Printf("Web server running at http://localhost%s", addr)
			if err := http.ListenAndServe(addr, handler); err != nil {
				logger.Printf("web server error: %v", err)
			}
		}()
	}

	err = tui.Run(store, tui.Options{
		ExportPath: cfg.ExportPath,
		SaveErr:    bridge.Err,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		kv.Close()
		os.Exit(1)
	}
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

func openBackend(cfg config.Config) (backend, error) {
	switch cfg.Backend {
	case config.BackendFile:
		store, err := db.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		if err := config.EnsureDir(cfg.DBPath); err != nil {
			return nil, err
		}
		sqlDB, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return db.NewKVStore(sqlDB), nil
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := config.EnsureDir(path); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
