package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"coros-export/internal/config"
	"coros-export/internal/coros"
	"coros-export/internal/service"
	"coros-export/internal/store"
	"coros-export/internal/tui"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	extractFlag := flag.Bool("extract", false, "run extraction headless and write the JSON document")
	downloadFlag := flag.String("download", "", "download export files headless (csv|gpx|kml|tcx|fit)")
	outFlag := flag.String("out", "", "override the JSON output path")
	limitFlag := flag.Int("limit", 0, "cap the number of activities requested (0 = all)")
	forceFlag := flag.Bool("force", false, "re-fetch activities already cached")
	flag.Parse()

	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("You need to add your COROS Training Hub credentials.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	// Open the local cache
	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	// Log in. The session lives for this run only: the vendor token has
	// no refresh flow, so a fresh login happens every start.
	client := coros.NewClient()
	sess, err := client.Login(ctx, cfg.Coros.Account, cfg.Coros.Password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	opts := service.Options{
		Filter: cfg.Filter(),
		Force:  cfg.Extract.Force || *forceFlag,
	}
	if *limitFlag > 0 {
		opts.Filter.Limit = *limitFlag
	}

	jsonPath := cfg.Export.JSONPath
	if *outFlag != "" {
		jsonPath = *outFlag
	}

	extractor := service.NewExtractor(client, db)

	// Headless paths
	if *extractFlag || *downloadFlag != "" {
		if *extractFlag {
			collection, result, err := extractor.ExtractAll(ctx, sess, opts, nil)
			if err != nil {
				return err
			}
			if err := service.WriteJSON(collection, jsonPath); err != nil {
				return err
			}
			fmt.Printf("Extracted %d of %d activities (%d cached, %d skipped) to %s\n",
				result.Extracted, result.Listed, result.Cached, result.Skipped, jsonPath)
		}

		if *downloadFlag != "" {
			ft, ok := coros.ParseFileType(*downloadFlag)
			if !ok {
				return fmt.Errorf("unknown file type %q (want csv, gpx, kml, tcx or fit)", *downloadFlag)
			}
			result, err := extractor.ExportFiles(ctx, sess, opts.Filter, ft, cfg.Export.Dir, nil)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %d %s files to %s/ (%d unsupported, %d errors)\n",
				result.Written, ft, cfg.Export.Dir, result.Skipped, len(result.Errors))
		}

		return nil
	}

	// Launch TUI
	extractScreen := tui.NewExtractModel(extractor, sess, opts, cfg.FileType(), cfg.Export.Dir, jsonPath)
	app := tui.NewApp(db, extractScreen)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}
