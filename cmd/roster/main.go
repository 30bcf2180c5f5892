package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"orangefrog/internal/config"
	"orangefrog/internal/database"
	"orangefrog/internal/repository"
	"orangefrog/internal/service"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	eventsCmd := flag.NewFlagSet("events", flag.ExitOnError)

	exportEvent := exportCmd.String("event", "", "Event ID (required)")
	exportOutput := exportCmd.String("output", "", "Output file path (default: stdout)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	events := service.NewEventService(
		repository.NewEventRepository(db),
		repository.NewContractorRepository(db),
		nil, nil, nil,
		cfg.MaxWriteAttempts, cfg.Debug,
	)
	ctx := context.Background()

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		if *exportEvent == "" {
			fmt.Println("Error: -event flag is required")
			exportCmd.PrintDefaults()
			os.Exit(1)
		}
		if err := handleExport(ctx, events, *exportEvent, *exportOutput); err != nil {
			log.Fatalf("Export failed: %v", err)
		}

	case "events":
		eventsCmd.Parse(os.Args[2:])
		if err := handleEvents(ctx, events, os.Stdout); err != nil {
			log.Fatalf("Listing events failed: %v", err)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(ctx context.Context, events *service.EventService, eventID, outputPath string) error {
	if outputPath == "" {
		return events.RosterCSV(ctx, eventID, os.Stdout)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := events.RosterCSV(ctx, eventID, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	log.Printf("Roster for event %s written to %s", eventID, outputPath)
	return nil
}

func handleEvents(ctx context.Context, events *service.EventService, w io.Writer) error {
	details, err := events.ListEvents(ctx)
	if err != nil {
		return err
	}
	for _, d := range details {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\tapproved=%d applied=%d pending=%d\n",
			d.Event.ID, d.Event.LoadIn.Format("2006-01-02 15:04"), d.Event.Status, d.Event.Name,
			len(d.Approved), len(d.Applied), len(d.Pending))
	}
	return nil
}

func printUsage() {
	fmt.Println("Orange Frog roster tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  roster export -event <id> [-output <file>]")
	fmt.Println("  roster events")
	fmt.Println()
	fmt.Println("Configuration is read from ORANGEFROG_* environment variables.")
}
