package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"notion-assistant/internal/logger"
	"notion-assistant/internal/match"
	"notion-assistant/internal/models"
	"notion-assistant/internal/notion"
	"notion-assistant/internal/webhook"
)

const version = "0.1.0"

func main() {
	// Parse command line flags
	databaseName := flag.String("database", "old media vault", "Name of the database to process, fuzzy matched against workspace databases")
	webhookURL := flag.String("webhook", "", "Webhook URL receiving one POST per page")
	delay := flag.Duration("delay", webhook.DefaultDelay, "Delay between webhook calls")
	since := flag.String("since", "", "Only process pages created at or after this ISO-8601 timestamp")
	dryRun := flag.Bool("dry-run", false, "List matched pages without triggering the webhook")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("notion-assistant " + version)
		return
	}

	// Load .env file if present
	_ = godotenv.Load()

	// Initialize logger
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	if err := logger.Init(logLevel); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	var cutoff *time.Time
	if *since != "" {
		parsed, err := models.ParseTime(*since)
		if err != nil {
			fmt.Printf("Error: invalid -since timestamp: %v\n", err)
			flag.Usage()
			os.Exit(1)
		}
		cutoff = &parsed
	}

	if !*dryRun && *webhookURL == "" {
		fmt.Println("Error: -webhook is required unless -dry-run is set")
		flag.Usage()
		os.Exit(1)
	}

	// Initialize Notion client
	client, err := notion.New()
	if err != nil {
		logger.Error("Failed to initialize Notion client", err, nil)
		os.Exit(1)
	}

	ctx := context.Background()

	// Enumerate databases, recovering faulty ones along the way
	databases, faulty, err := client.Databases(ctx)
	if err != nil {
		logger.Error("Failed to enumerate databases", err, nil)
		os.Exit(1)
	}
	logger.Info("Enumerated databases", map[string]interface{}{
		"databases": len(databases),
		"faulty":    len(faulty),
	})

	// Select the target database by approximate name
	target, err := match.Best(databases, *databaseName)
	if err != nil {
		logger.Error("Failed to match database", err, map[string]interface{}{
			"name": *databaseName,
		})
		os.Exit(1)
	}
	logger.Info("Matched database", map[string]interface{}{
		"database_id": target.ID,
		"title":       *target.Title,
	})

	// Fetch the pages to forward
	pages, err := client.Pages(ctx, target.ID, cutoff)
	if err != nil {
		logger.Error("Failed to fetch pages", err, map[string]interface{}{
			"database_id": target.ID,
		})
		os.Exit(1)
	}
	logger.Info(fmt.Sprintf("Found %d pages to process", len(pages)), nil)

	if *dryRun {
		for _, page := range pages {
			logger.Info("Would trigger webhook", map[string]interface{}{
				"page_id": page.ID,
				"title":   page.Title,
			})
		}
		return
	}

	// Forward each page to the automation pipeline
	notifier := webhook.New(*webhookURL, *delay)
	if err := notifier.TriggerAll(ctx, pages); err != nil {
		logger.Error("Webhook run failed", err, nil)
		os.Exit(1)
	}

	logger.Info("Webhook run completed", map[string]interface{}{
		"pages": len(pages),
	})
}
