package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Port          string
	AllowedOrigin string
	StoreBackend  string
	DataFile      string
	DatabaseURL   string
	MySQLDSN      string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CartTTL       time.Duration
	UploadDir     string
	StaticDir     string
	Location      *time.Location
	WeekStart     time.Weekday
	LogLevel      string
	LogFormat     string
	MaxBodyBytes  int64
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set win over the file.
func Load() Config {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil || redisDB < 0 {
		redisDB = 0
	}
	cartTTL, err := strconv.Atoi(getEnv("CART_TTL_MINUTES", "720"))
	if err != nil || cartTTL < 1 {
		cartTTL = 720
	}
	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", "10485760"), 10, 64)
	if err != nil || maxBody < 1024 {
		maxBody = 10 << 20
	}

	return Config{
		Port:          getEnv("PORT", "3000"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),
		StoreBackend:  parseBackend(os.Getenv("STORE_BACKEND")),
		DataFile:      getEnv("DATA_FILE", "data/db.json"),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MySQLDSN:      strings.TrimSpace(os.Getenv("MYSQL_DSN")),
		SQLitePath:    getEnv("SQLITE_PATH", "data/pos.db"),
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		CartTTL:       time.Duration(cartTTL) * time.Minute,
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		StaticDir:     strings.TrimSpace(os.Getenv("STATIC_DIR")),
		Location:      parseLocation(os.Getenv("STORE_TIMEZONE")),
		WeekStart:     parseWeekday(os.Getenv("WEEK_START")),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "json")),
		MaxBodyBytes:  maxBody,
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Validate reports settings the selected backend cannot start without.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORE_BACKEND=postgres requires DATABASE_URL")
		}
	case BackendMySQL:
		if c.MySQLDSN == "" {
			return fmt.Errorf("STORE_BACKEND=mysql requires MYSQL_DSN")
		}
	}
	return nil
}

func parseBackend(raw string) string {
	switch v := strings.ToLower(strings.TrimSpace(raw)); v {
	case BackendMemory, BackendPostgres, BackendMySQL, BackendSQLite:
		return v
	default:
		return BackendFile
	}
}

func parseLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

func parseWeekday(raw string) time.Weekday {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if raw == strings.ToLower(d.String()) {
			return d
		}
	}
	return time.Sunday
}

func getEnv(key string, fallback string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	return val
}
