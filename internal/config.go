package internal

import (
	"fmt"
	"strings"
	"time"
)

// Config is loaded from the environment at startup. Only the secret and
// the storage path have no safe default.
type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=8080"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	LimitMessages        *int          `env:"LIMIT_MESSAGES"`
	BlobQuota            int64         `env:"BLOB_QUOTA,default=1073741824"`
	CensoredWords        string        `env:"CENSORED_WORDS"`
	CensoredChar         string        `env:"CENSORED_CHAR,default=*"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
}

// Words splits the comma-separated censored word list, dropping blanks.
func (c Config) Words() []string {
	if strings.TrimSpace(c.CensoredWords) == "" {
		return nil
	}
	var words []string
	for _, word := range strings.Split(c.CensoredWords, ",") {
		if trimmed := strings.TrimSpace(word); trimmed != "" {
			words = append(words, trimmed)
		}
	}
	return words
}

// CharacterRune enforces that a replacement setting holds exactly one
// character.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CENSORED_CHAR must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
