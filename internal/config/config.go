// internal/config/config.go
//
// Process configuration read from the environment (after godotenv has loaded .env).
// Every variable has a development default so `go run .` works out of the box.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/anagram-server/internal/transport"
	"github.com/robalobadob/anagram-server/internal/words"
)

// Seed modes for new sessions.
const (
	SeedRandom = "random"
	SeedDaily  = "daily"
)

// Config holds every tunable the server reads at startup.
type Config struct {
	Port         string
	LogLevel     string
	ClientOrigin string

	Words   words.Sources
	WordsDB string // SQLite path; empty reads the text lists directly

	Pusher transport.Config

	JWTSecret         string
	JWTExpires        time.Duration
	AdminUser         string
	AdminPasswordHash string // bcrypt; empty disables admin login

	DailySalt string
	SeedMode  string

	Priority   []string
	ClearDelay time.Duration
	SkipDelay  time.Duration
}

// Load reads the environment.
func Load() Config {
	c := Config{
		Port:         getEnv("PORT", "5175"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Words: words.Sources{
			TargetsFile:    os.Getenv("WORDS_TARGETS_FILE"),
			DictionaryFile: os.Getenv("WORDS_DICTIONARY_FILE"),
		},
		WordsDB: os.Getenv("WORDS_DB"),
		Pusher: transport.Config{
			Key:     getEnv("PUSHER_KEY", "eb1d5f283081a78b932c"),
			Cluster: getEnv("PUSHER_CLUSTER", "us2"),
			Host:    os.Getenv("PUSHER_HOST"),
		},
		JWTSecret:         getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpires:        time.Duration(getInt("JWT_EXPIRES_HOURS", 12)) * time.Hour,
		AdminUser:         getEnv("ADMIN_USER", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		DailySalt:         getEnv("DAILY_SALT", "local_dev_salt"),
		SeedMode:          strings.ToLower(getEnv("SEED_MODE", SeedRandom)),
		Priority:          splitList(os.Getenv("PRIORITY_WORDS")),
		ClearDelay:        time.Duration(getInt("CLEAR_DELAY_MS", 2000)) * time.Millisecond,
		SkipDelay:         time.Duration(getInt("SKIP_DELAY_MS", 500)) * time.Millisecond,
	}
	if c.SeedMode != SeedRandom && c.SeedMode != SeedDaily {
		log.Warn().Str("SEED_MODE", c.SeedMode).Msg("unknown seed mode, using random")
		c.SeedMode = SeedRandom
	}
	return c
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getInt parses k as an int, falling back to def when unset or malformed.
func getInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str(k, v).Msg("not an integer, using default")
		return def
	}
	return n
}

// splitList splits a comma- or space-separated list, dropping blanks.
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	if len(fields) == 0 {
		return nil
	}
	return fields
}
