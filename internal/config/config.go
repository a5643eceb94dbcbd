package config

import (
	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/nimasrn/retail-ledger/pkg/logger"
	"github.com/pkg/errors"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every runtime setting of the ledger. Only this struct
// should be used to read configuration values, no direct access to env,
// ini or any other config source should be made.
type Config struct {
	AppEnv   string `env:"APP_ENV" default:"dev"`
	AppName  string `env:"APP_NAME" default:"retail_ledger"`
	AppDebug bool   `env:"APP_DEBUG" default:"0"`

	HttpListenAddr            string `env:"HTTP_LISTEN_ADDR" validation:"mustExists"`
	HttpServerReadTimeout     int    `env:"HTTP_SERVER_READ_TIMEOUT"`
	HttpServerWriteTimeout    int    `env:"HTTP_SERVER_WRITE_TIMEOUT"`
	HttpServerReadBufferSize  int    `env:"HTTP_SERVER_READ_BUFFER_SIZE"`
	HttpServerWriteBufferSize int    `env:"HTTP_SERVER_WRITE_BUFFER_SIZE"`

	StorePath       string `env:"STORE_PATH" default:"ledger.db"`
	StoreMirrorPath string `env:"STORE_MIRROR_PATH" default:"ledger.mirror.db"`
	StoreDebug      bool   `env:"STORE_DEBUG"`
	MigrationsDir   string `env:"MIGRATIONS_DIR" default:"migrations"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX" default:"ledger:"`
	StatsCacheTTLSeconds    int    `env:"STATS_CACHE_TTL_SECONDS" default:"30"`

	PromNamespace string `env:"PROM_NAMESPACE" default:"retail_ledger"`
	PromAddr      string `env:"PROM_ADDR"`

	LogLevel []string `env:"LOG_LEVEL"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)

	if err != nil {
		return errors.New("failed to map env variables to Configuration object " + " error: " + err.Error())
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}
