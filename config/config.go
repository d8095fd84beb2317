package config

import (
	"time"

	"notetaker/utils"
)

// Backend names accepted for the STORE variable.
const (
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Port    string
	Storage StorageConfig
	LLM     LLMConfig
	Users   UsersConfig
}

type StorageConfig struct {
	// MongoURI selects the MongoDB backend when non-empty.
	MongoURI        string
	DatabaseName    string
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration

	// Backend is the fallback store used when MongoURI is empty:
	// "sqlite" (default) or "memory".
	Backend    string
	SQLitePath string
}

type LLMConfig struct {
	Endpoint string
	Model    string
	Token    string
}

type UsersConfig struct {
	// EnforceUnique rejects duplicate usernames/emails at creation.
	EnforceUnique bool
}

func Load() Config {
	token := utils.GetEnvAsString("LLM_TOKEN", "")
	if token == "" {
		token = utils.GetEnvAsString("GITHUB_TOKEN", "")
	}

	return Config{
		Port: utils.GetEnvAsString("PORT", "8080"),
		Storage: StorageConfig{
			MongoURI:        utils.GetEnvAsString("MONGO_URI", ""),
			DatabaseName:    utils.GetEnvAsString("MONGO_DB", "notetaker"),
			MaxPoolSize:     utils.GetEnvAsUint64("MONGO_MAX_POOL_SIZE", 100),
			MinPoolSize:     utils.GetEnvAsUint64("MONGO_MIN_POOL_SIZE", 10),
			MaxConnIdleTime: time.Duration(utils.GetEnvAsInt("MONGO_MAX_CONN_IDLE_TIME", 60)) * time.Second,
			ConnectTimeout:  utils.GetEnvAsDuration("STORE_CONNECT_TIMEOUT", 10*time.Second),
			Backend:         utils.GetEnvAsString("STORE", BackendSQLite),
			SQLitePath:      utils.GetEnvAsString("SQLITE_PATH", "notetaker.db"),
		},
		LLM: LLMConfig{
			Endpoint: utils.GetEnvAsString("LLM_ENDPOINT", "https://models.github.ai/inference"),
			Model:    utils.GetEnvAsString("LLM_MODEL", "openai/gpt-4.1-mini"),
			Token:    token,
		},
		Users: UsersConfig{
			EnforceUnique: utils.GetEnvAsBool("ENFORCE_UNIQUE_USERS", false),
		},
	}
}
