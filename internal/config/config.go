package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type HTTPServer struct {
	Host string
	Port string
}

type RedisRelay struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	Channel  string
}

type Database struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

type Log struct {
	Level  string
	Format string
}

type Sync struct {
	// Outgoing messages buffered per live connection before it is considered stalled.
	SendBuffer int
}

type Config struct {
	HTTP     HTTPServer
	Redis    RedisRelay
	Database Database
	Log      Log
	Sync     Sync
}

const logtag = "[config]"

// Load reads env from the file at path (or .env when path is empty) and
// builds a Config from the environment.
func Load(path string) *Config {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			log.Fatalf("%s err loading env from file : %v", logtag, err)
		}
		log.Printf("%s using env from : %s", logtag, path)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	cfg := LoadFromEnv()
	log.Printf("%s backend config : %s\n", logtag, cfg)
	return cfg
}

func LoadFromEnv() *Config {
	return &Config{
		HTTP:     *newHTTP(),
		Redis:    *newRedis(),
		Database: *newDatabase(),
		Log:      *newLog(),
		Sync:     *newSync(),
	}
}

func (c *Config) String() string {
	masked := *c
	if masked.Database.Password != "" {
		masked.Database.Password = "***"
	}
	if masked.Redis.Password != "" {
		masked.Redis.Password = "***"
	}
	return fmt.Sprintf("%+v", struct {
		HTTP     HTTPServer
		Redis    RedisRelay
		Database Database
		Log      Log
		Sync     Sync
	}(masked))
}

func newHTTP() *HTTPServer {
	return &HTTPServer{
		Port: getenv("HTTP_PORT", "8080"),
		Host: getenv("HTTP_HOST", "localhost"),
	}
}

func newRedis() *RedisRelay {
	return &RedisRelay{
		Enabled:  getbool("REDIS_RELAY_ENABLED", false),
		Port:     getenv("REDIS_PORT", "6379"),
		Host:     getenv("REDIS_HOST", "redis"),
		Password: getenv("REDIS_PASSWORD", ""),
		Channel:  getenv("REDIS_RELAY_CHANNEL", "lootsplit:records"),
	}
}

func newDatabase() *Database {
	return &Database{
		Driver:     getenv("DB_DRIVER", "postgres"),
		Host:       getenv("DB_HOST", "localhost"),
		Port:       getenv("DB_PORT", "5432"),
		User:       getenv("DB_USER", "admin"),
		Password:   getenv("DB_PASSWORD", "shared"),
		DBName:     getenv("DB_NAME", "lootsplit"),
		SSLMode:    getenv("DB_SSLMODE", "disable"),
		SQLitePath: getenv("DB_SQLITE_PATH", "lootsplit.sqlite3"),
	}
}

func newLog() *Log {
	return &Log{
		Level:  getenv("LOG_LEVEL", "info"),
		Format: getenv("LOG_FORMAT", "json"),
	}
}

func newSync() *Sync {
	return &Sync{
		SendBuffer: getint("SYNC_SEND_BUFFER", 64),
	}
}

func getenv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}

func getbool(key string, defaultValue bool) bool {
	val, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return val
}

func getint(key string, defaultValue int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil || val <= 0 {
		return defaultValue
	}
	return val
}
