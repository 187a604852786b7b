package internal

import (
	"dartboard/errors"
	stderrors "errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

type Config struct {
	TelegramToken     string        `env:"TELEGRAM_TOKEN,required=true" validate:"required"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
	FlushDelay        time.Duration `env:"FLUSH_DELAY,default=2.5s" validate:"gt=0"`
	SuppressThreshold int           `env:"SUPPRESS_THRESHOLD,default=100" validate:"gte=0"`
	BufferSize        int           `env:"BUFFER_SIZE,default=256" validate:"gt=0"`
	SendTimeout       time.Duration `env:"SEND_TIMEOUT,default=5s" validate:"gt=0"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	MetricInterval    time.Duration `env:"METRIC_INTERVAL,default=1m" validate:"gt=0"`
	PollTimeout       int           `env:"POLL_TIMEOUT,default=60" validate:"gte=0"`
	DartEmoji         string        `env:"DART_EMOJI,default=🎯" validate:"required"`
}

// LoadConfig reads the process environment, seeded from the optional dotenv files.
// Variables already set in the environment win over the files.
func LoadConfig(dotenv ...string) (Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}
	if err := validate.Struct(config); err != nil {
		return Config{}, fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err)
	}
	return config, nil
}
