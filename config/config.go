package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken  string
	ApplicationID string

	GuildID string

	LogLevel string

	APIURL      string
	Quality     string
	SearchLimit int

	MusicU    string
	CSRFToken string
	MusicRU   string

	Triggers        []string
	TriggerSuffixes []string
	CommandPrefixes []string
	CommandAliases  []string

	Messages Messages

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int
}

// Messages holds every user-facing template. Placeholders use {name} syntax;
// see picker.Templates for the variables each template supports.
type Messages struct {
	NoKeyword        string
	Searching        string
	APIError         string
	NoResults        string
	SearchResults    string
	SongDetail       string
	NoAudioURL       string
	PlayError        string
	CacheExpired     string
	InvalidSelection string
	InitError        string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		ApplicationID: os.Getenv("DISCORD_APPLICATION_ID"),

		GuildID: os.Getenv("DISCORD_GUILD_ID"),

		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		APIURL:      getEnvWithDefault("NETEASE_API_URL", "http://127.0.0.1:3000"),
		Quality:     getEnvWithDefault("NETEASE_QUALITY", "exhigh"),
		SearchLimit: getEnvAsIntWithDefault("NETEASE_SEARCH_LIMIT", 5),

		MusicU:    strings.TrimSpace(os.Getenv("NETEASE_MUSIC_U")),
		CSRFToken: strings.TrimSpace(os.Getenv("NETEASE_CSRF_TOKEN")),
		MusicRU:   strings.TrimSpace(os.Getenv("NETEASE_MUSIC_R_U")),

		Triggers:        getEnvAsList("TRIGGER_WORDS", []string{"재생", "노래검색", "틀어", "点歌"}),
		TriggerSuffixes: getEnvAsList("TRIGGER_SUFFIXES", []string{"틀어줘", "들려줘", "재생해줘"}),
		CommandPrefixes: getEnvAsList("COMMAND_PREFIXES", []string{"/", "!", "?", "."}),
		CommandAliases:  getEnvAsList("COMMAND_ALIASES", []string{"노래", "music", "네이즈"}),

		Messages: Messages{
			NoKeyword:        getEnvWithDefault("MSG_NO_KEYWORD", "어떤 노래를 찾을까요? 예: /노래 Lemon"),
			Searching:        os.Getenv("MSG_SEARCHING"),
			APIError:         getEnvWithDefault("MSG_API_ERROR", "음악 서비스에 연결하지 못했어요. 잠시 후 다시 시도해 주세요."),
			NoResults:        getEnvWithDefault("MSG_NO_RESULTS", "「{keyword}」에 대한 검색 결과가 없어요."),
			SearchResults:    getEnvWithDefault("MSG_SEARCH_RESULTS", "{count}곡을 찾았어요. 번호로 골라 주세요!"),
			SongDetail:       getEnvWithDefault("MSG_SONG_DETAIL", "{num}번 곡을 준비했어요!\n\n♪ 곡명: {title}\n🎤 아티스트: {artists}\n💿 앨범: {album}\n⏳ 길이: {duration}\n✨ 음질: {quality}"),
			NoAudioURL:       getEnvWithDefault("MSG_NO_AUDIO_URL", "이 곡은 재생할 수 없어요. (저작권/VIP 제한)"),
			PlayError:        getEnvWithDefault("MSG_PLAY_ERROR", "곡을 가져오는 데 실패했어요."),
			CacheExpired:     getEnvWithDefault("MSG_CACHE_EXPIRED", "검색 결과가 만료되었어요. 다시 검색해 주세요."),
			InvalidSelection: getEnvWithDefault("MSG_INVALID_SELECTION", "1부터 {max} 사이의 번호를 골라 주세요."),
			InitError:        getEnvWithDefault("MSG_INIT_ERROR", "봇이 아직 초기화되지 않았어요. 관리자에게 문의해 주세요."),
		},

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnvAsInt("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  os.Getenv("DB_SSLMODE"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnvAsInt("REDIS_PORT"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvAsIntWithDefault("REDIS_DB", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is required")
	}

	if c.ApplicationID == "" {
		return errors.New("DISCORD_APPLICATION_ID is required")
	}

	if c.SearchLimit < 1 || c.SearchLimit > 30 {
		return errors.New("NETEASE_SEARCH_LIMIT must be between 1 and 30")
	}

	if c.Quality == "" {
		return errors.New("NETEASE_QUALITY must not be empty")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.GuildID != ""
}

// Cookie assembles the NetEase credential cookie from the three configured
// fragments. Empty fragments still appear so the string stays well-formed.
func (c *Config) Cookie() string {
	return "MUSIC_U=" + c.MusicU + "; __csrf=" + c.CSRFToken + "; MUSIC_R_U=" + c.MusicRU + ";"
}

func getEnvAsInt(key string) int {
	return getEnvAsIntWithDefault(key, 0)
}

func getEnvAsIntWithDefault(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvWithDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
