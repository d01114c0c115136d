package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Varun5711/shortlinks/internal/config"
	"github.com/Varun5711/shortlinks/internal/idgen"
	"github.com/Varun5711/shortlinks/internal/logger"
	"github.com/Varun5711/shortlinks/internal/models"
	"github.com/Varun5711/shortlinks/internal/qrcode"
	"github.com/Varun5711/shortlinks/internal/service"
	"github.com/Varun5711/shortlinks/internal/storage"
)

const defaultOwner = "user_39mKH9KgwsiREDdXMthQQKUUUQL"

var exampleLinks = []models.CreateLinkRequest{
	{ShortCode: "gh2024", OriginalURL: "https://github.com"},
	{ShortCode: "yt-vid", OriginalURL: "https://youtube.com/watch?v=dQw4w9WgXcQ"},
	{ShortCode: "docs", OriginalURL: "https://docs.google.com/document/d/1a2b3c4d5"},
	{ShortCode: "amzn", OriginalURL: "https://amazon.com/products/tech-gadget-2024"},
	{ShortCode: "blog", OriginalURL: "https://medium.com/@myusername/web-development-best-practices"},
	{ShortCode: "portfolio", OriginalURL: "https://myportfolio.dev/projects/featured"},
	{ShortCode: "wiki", OriginalURL: "https://en.wikipedia.org/wiki/Computer_science"},
	{ShortCode: "tweet", OriginalURL: "https://twitter.com/user/status/1234567890"},
	{ShortCode: "reddit", OriginalURL: "https://reddit.com/r/programming/comments/abc123"},
	{ShortCode: "npm-pkg", OriginalURL: "https://npmjs.com/package/my-awesome-package"},
}

func main() {
	owner := flag.String("owner", defaultOwner, "owner id the example links belong to")
	showQR := flag.Bool("qr", false, "print a terminal QR code for each link")
	flag.Parse()

	log := logger.New("seed")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: %v", err)
	}

	inserted, err := run(context.Background(), cfg, *owner, *showQR, os.Stdout, log)
	if err != nil {
		log.Error("Seeding stopped after %d links: %v", inserted, err)
		os.Exit(1)
	}
	log.Info("Seeded %d of %d example links for %s", inserted, len(exampleLinks), *owner)
}

// run inserts the example links that do not exist yet and reports how many
// it added. Codes that are already taken are skipped.
func run(ctx context.Context, cfg *config.Config, owner string, showQR bool, out io.Writer, log *logger.Logger) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer closeStore()

	gen, err := idgen.NewGenerator(cfg.Codes.Length)
	if err != nil {
		return 0, fmt.Errorf("failed to create code generator: %w", err)
	}

	svc := service.NewLinkService(store, gen, nil, service.Config{
		MaxAttempts: cfg.Codes.MaxAttempts,
		BaseURL:     cfg.Services.BaseURL,
	}, log.Named("service"))

	inserted := 0
	for _, req := range exampleLinks {
		link, err := svc.Create(ctx, owner, req)
		if errors.Is(err, service.ErrCodeTaken) {
			log.Warn("Skipping %s: already exists", req.ShortCode)
			continue
		}
		if err != nil {
			return inserted, fmt.Errorf("failed to seed %s: %w", req.ShortCode, err)
		}

		inserted++
		fmt.Fprintf(out, "  - %s → %s\n", link.ShortURL, link.OriginalURL)
		if showQR {
			art, err := qrcode.ASCII(link.ShortURL)
			if err != nil {
				log.Warn("QR code for %s: %v", link.ShortCode, err)
				continue
			}
			fmt.Fprintln(out, art)
		}
	}
	return inserted, nil
}
