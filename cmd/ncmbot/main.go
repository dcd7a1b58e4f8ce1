package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hxnx/ncmbot/config"
	"github.com/hxnx/ncmbot/internal/bot"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("ncmbot - NetEase Cloud Music Discord Bot")
	log.Println("========================================")

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Error: Failed to load configuration: %v", err)
		log.Println("")
		log.Println("Please ensure you have set the following environment variables:")
		log.Println("  DISCORD_TOKEN          - Your Discord bot token (required)")
		log.Println("  DISCORD_APPLICATION_ID - Your Discord application ID (required)")
		log.Println("")
		log.Println("Optional environment variables:")
		log.Println("  DISCORD_GUILD_ID       - Guild ID for development (registers commands to specific guild)")
		log.Println("  NETEASE_API_URL        - NeteaseCloudMusicApi base URL (default: http://127.0.0.1:3000)")
		log.Println("  NETEASE_QUALITY        - Preferred audio quality (default: exhigh)")
		log.Println("  NETEASE_SEARCH_LIMIT   - Search result count (default: 5)")
		log.Println("  NETEASE_MUSIC_U        - MUSIC_U cookie fragment")
		log.Println("  NETEASE_CSRF_TOKEN     - __csrf cookie fragment")
		log.Println("  NETEASE_MUSIC_R_U      - MUSIC_R_U cookie fragment")
		log.Println("  TRIGGER_WORDS          - Comma-separated natural-language triggers")
		log.Println("  COMMAND_PREFIXES       - Comma-separated command prefixes")
		log.Println("  COMMAND_ALIASES        - Comma-separated command aliases")
		log.Println("  MSG_*                  - User-facing message templates")
		log.Println("")
		log.Println("Database configuration:")
		log.Println("  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSLMODE")
		log.Println("")
		log.Println("Redis configuration:")
		log.Println("  REDIS_HOST, REDIS_PORT, REDIS_PASSWORD, REDIS_DB")
		os.Exit(1)
	}

	log.Println("")
	log.Println("Configuration loaded successfully")
	log.Println("---------------------------------")

	if cfg.IsDevelopment() {
		log.Printf("Mode: Development (Guild ID: %s)", cfg.GuildID)
	} else {
		log.Printf("Mode: Production (global commands)")
	}
	log.Printf("Log Level: %s", cfg.LogLevel)

	log.Println("")
	log.Println("Catalog API:")
	log.Printf("  URL: %s", cfg.APIURL)
	log.Printf("  Quality: %s", cfg.Quality)
	log.Printf("  Search Limit: %d", cfg.SearchLimit)
	if cfg.MusicU != "" {
		log.Printf("  Credentials: configured")
	} else {
		log.Printf("  Credentials: not configured (VIP tracks may not resolve)")
	}

	log.Println("")
	log.Println("Database:")
	log.Printf("  Host: %s:%d", cfg.DBHost, cfg.DBPort)
	log.Printf("  Database: %s", cfg.DBName)

	log.Println("")
	log.Println("Redis:")
	log.Printf("  Host: %s:%d", cfg.RedisHost, cfg.RedisPort)
	log.Printf("  Database: %d", cfg.RedisDB)

	log.Println("")
	log.Println("---------------------------------")

	b, err := bot.New(cfg)
	if err != nil {
		log.Fatalf("Error: Failed to create bot: %v", err)
	}

	log.Println("Starting bot...")
	if err := b.Start(); err != nil {
		log.Fatalf("Error: Bot error: %v", err)
	}

	log.Println("Bot is running. Press CTRL+C to exit.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	if err := b.Stop(); err != nil {
		log.Printf("Error: Failed to stop bot: %v", err)
	}
}
