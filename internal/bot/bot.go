package bot

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/ncmbot/config"
	"github.com/hxnx/ncmbot/internal/database"
	"github.com/hxnx/ncmbot/internal/features"
	musiclisteners "github.com/hxnx/ncmbot/internal/features/music/listeners"
	"github.com/hxnx/ncmbot/internal/netease"
	"github.com/hxnx/ncmbot/internal/picker"
	"github.com/hxnx/ncmbot/internal/redis"
	"github.com/hxnx/ncmbot/internal/selection"
)

type Bot struct {
	config  *config.Config
	session *discordgo.Session

	catalog  *netease.Client
	sessions *selection.SessionStore
	handler  *musiclisteners.Handler

	sweepCancel context.CancelFunc
	sweepDone   chan struct{}
	started     bool
}

func New(cfg *config.Config) (*Bot, error) {
	dbConfig := &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}

	if err := database.Initialize(dbConfig); err != nil {
		log.Printf("Warning: Database initialization failed: %v", err)
	}

	redisConfig := redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	if _, err := redis.Init(redisConfig); err != nil {
		log.Printf("Warning: Redis initialization failed: %v", err)
	}

	s, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	searchCache := netease.NewSearchCache(redis.Client())
	catalog := netease.NewClient(cfg.APIURL, cfg.Cookie(), searchCache)

	results := selection.NewResultCache()
	sessions := selection.NewSessionStore(results)

	templates := picker.Templates{
		NoKeyword:        cfg.Messages.NoKeyword,
		Searching:        cfg.Messages.Searching,
		APIError:         cfg.Messages.APIError,
		NoResults:        cfg.Messages.NoResults,
		SearchResults:    cfg.Messages.SearchResults,
		SongDetail:       cfg.Messages.SongDetail,
		NoAudioURL:       cfg.Messages.NoAudioURL,
		PlayError:        cfg.Messages.PlayError,
		CacheExpired:     cfg.Messages.CacheExpired,
		InvalidSelection: cfg.Messages.InvalidSelection,
		InitError:        cfg.Messages.InitError,
	}
	for _, warning := range templates.Validate() {
		log.Printf("Warning: %s", warning)
	}

	channels := database.NewChannelRepository()
	sender := musiclisteners.NewDiscordSender(s)
	pk := picker.New(catalog, sender, sessions, results, templates, cfg.Quality, cfg.SearchLimit).
		WithSettings(channels)

	matcher, err := musiclisteners.NewTriggerMatcher(
		cfg.Triggers, cfg.TriggerSuffixes, cfg.CommandPrefixes, cfg.CommandAliases)
	if err != nil {
		return nil, err
	}

	features.Configure(features.Deps{
		Picker:   pk,
		Channels: channels,
	})

	return &Bot{
		config:   cfg,
		session:  s,
		catalog:  catalog,
		sessions: sessions,
		handler:  musiclisteners.NewHandler(pk, matcher),
	}, nil
}

func (b *Bot) Start() error {
	if b.started {
		return nil
	}

	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		if s.State != nil && s.State.User != nil {
			log.Printf("Bot ready as %s#%s", s.State.User.Username, s.State.User.Discriminator)
		} else {
			log.Printf("Bot ready")
		}
		if err := s.UpdateGameStatus(0, "🎵 번호로 노래 고르는 중"); err != nil {
			log.Printf("failed to update presence: %v", err)
		}
	})

	features.AddHandlers(b.session, b.handler)

	if _, err := features.RegisterCommands(b.session, b.config.ApplicationID, b.config.GuildID); err != nil {
		log.Printf("Warning: failed to register slash commands: %v", err)
	}

	if err := b.session.Open(); err != nil {
		return err
	}

	b.startSweeper()
	b.started = true
	log.Printf("Bot session opened")
	return nil
}

func (b *Bot) startSweeper() {
	if b.sweepCancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.sweepCancel = cancel
	b.sweepDone = make(chan struct{})

	go func() {
		defer close(b.sweepDone)
		b.sessions.RunSweeper(ctx, selection.SweepInterval)
	}()
}

func (b *Bot) stopSweeper() {
	if b.sweepCancel == nil {
		return
	}
	b.sweepCancel()
	<-b.sweepDone
	b.sweepCancel = nil
	b.sweepDone = nil
}

func (b *Bot) Stop() error {
	if !b.started {
		return nil
	}

	b.started = false

	// The sweeper must be fully stopped before the catalog's HTTP resources
	// are released.
	b.stopSweeper()

	// A failed gateway close must not strand the remaining resources.
	if err := b.session.Close(); err != nil {
		log.Printf("Warning: failed to close discord session: %v", err)
	}

	b.catalog.Close()

	if err := database.Close(); err != nil {
		log.Printf("Warning: failed to close database: %v", err)
	}

	if err := redis.Close(); err != nil {
		log.Printf("Warning: failed to close redis: %v", err)
	}

	log.Printf("Bot session closed")
	return nil
}
