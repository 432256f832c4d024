package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/yiblet/clippy/internal/blob"
	"github.com/yiblet/clippy/internal/config"
	"github.com/yiblet/clippy/internal/history"
	"github.com/yiblet/clippy/internal/logging"
	"github.com/yiblet/clippy/internal/store/memstore"
)

func main() {
	fmt.Println("clippy History Manager Demo")

	tmp, err := os.MkdirTemp("", "clippy-demo-")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmp)

	// Small limits so eviction shows up quickly
	cfg := config.DefaultConfig()
	cfg.MaxHistoryItems = 4
	cfg.MaxPins = 2

	now := time.Now()
	clock := func() time.Time { return now }

	logger := logging.New(os.Stderr, zerolog.InfoLevel, "demo")
	historyBackend := memstore.New("history")
	mgr := history.New(
		cfg,
		historyBackend,
		memstore.New("pins"),
		blob.New(filepath.Join(tmp, "images"), logger),
		history.WithClock(clock),
		history.WithLogger(logger),
	)

	testContent := []string{
		"Hello, World! This is the first clipboard entry.",
		"package main\n\nimport \"fmt\"\n\nfunc main() {\n    fmt.Println(\"Hello, Go!\")\n}",
		"SELECT * FROM users WHERE created_at > '2023-01-01' ORDER BY created_at DESC LIMIT 10;",
		"Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
		"https://example.com/a/very/long/link/that/was/copied",
	}

	fmt.Println("\nCopying entries (max_history_items=4):")
	for i, content := range testContent {
		now = now.Add(time.Minute)
		rec, err := mgr.AddText(content)
		if err != nil {
			log.Printf("Failed to add entry %d: %v", i, err)
			continue
		}
		fmt.Printf("%d. %s\n", i+1, history.Preview(rec))
	}

	// Re-copying moves the entry to the front instead of duplicating it
	now = now.Add(time.Minute)
	if _, err := mgr.AddText(testContent[2]); err != nil {
		log.Fatalf("Failed to re-add entry: %v", err)
	}

	if _, err := mgr.AddImage([]byte("\x89PNG\r\n\x1a\nnot really an image")); err != nil {
		log.Fatalf("Failed to add image: %v", err)
	}

	printList(mgr, history.KindHistory, now)

	fmt.Println("\nPinning entry 1:")
	rec, err := mgr.Pin(1)
	if err != nil {
		log.Fatalf("Failed to pin: %v", err)
	}
	fmt.Printf("Pinned: %s\n", history.Preview(rec))

	printList(mgr, history.KindHistory, now)
	printList(mgr, history.KindPins, now)

	// Jump ahead past max_age_days; pins survive the sweep
	now = now.Add(cfg.MaxAge() + time.Hour)
	expired, err := mgr.CleanupExpired()
	if err != nil {
		log.Fatalf("Cleanup failed: %v", err)
	}
	fmt.Printf("\nAfter %d days: removed %d expired entries\n", cfg.MaxAgeDays, expired)

	printList(mgr, history.KindHistory, now)
	printList(mgr, history.KindPins, now)

	fmt.Printf("\nRaw history file:\n%s\n", historyBackend.Raw())
}

func printList(mgr *history.Manager, kind history.Kind, now time.Time) {
	records := mgr.List(kind)
	fmt.Printf("\n%s (%d):\n", kind, len(records))
	for i, rec := range records {
		fmt.Printf("%3d  %-16s  %s\n", i, history.FormatTimestamp(rec, now), history.Preview(rec))
	}
}
