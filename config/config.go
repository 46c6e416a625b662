package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultVenueTimezone = "America/Indiana/Indianapolis"

type Config struct {
	Port string

	// ✅ Database
	DBDriver   string // postgres | sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLiteDSN  string

	JWTAccessSecret string

	// ✅ Redis Config
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// ✅ Kafka Config
	KafkaBrokers     []string
	KafkaImportTopic string
	KafkaGroupID     string

	// ✅ Import
	VenueTimezone      string
	ImportLockTTL      time.Duration
	TournamentCacheTTL time.Duration
	RateLimitPerMinute int
	CORSOrigins        []string

	// ✅ Raw feed archive (S3 or MinIO)
	ArchiveBucket    string
	ArchiveRegion    string
	ArchiveEndpoint  string
	ArchivePathStyle bool

	// ✅ Scheduled feed sync
	FeedSyncEnabled bool
	FeedSyncCron    string
	FeedSyncURL     string
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))

	return &Config{
		Port: firstNonEmpty(os.Getenv("PORT"), "8080"),

		DBDriver:   firstNonEmpty(os.Getenv("DB_DRIVER"), "postgres"),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		SQLiteDSN:  firstNonEmpty(os.Getenv("SQLITE_DSN"), "file:schedule.db?cache=shared"),

		JWTAccessSecret: os.Getenv("JWT_ACCESS_SECRET"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaImportTopic: firstNonEmpty(os.Getenv("KAFKA_IMPORT_TOPIC"), "schedule.imports"),
		KafkaGroupID:     firstNonEmpty(os.Getenv("KAFKA_GROUP_ID"), "schedule-backend"),

		VenueTimezone:      firstNonEmpty(os.Getenv("VENUE_TIMEZONE"), defaultVenueTimezone),
		ImportLockTTL:      seconds("IMPORT_LOCK_TTL_SECONDS", 300),
		TournamentCacheTTL: seconds("TOURNAMENT_CACHE_TTL_SECONDS", 600),
		RateLimitPerMinute: intOr("RATE_LIMIT_PER_MINUTE", 100),
		CORSOrigins:        splitList(firstNonEmpty(os.Getenv("CORS_ORIGINS"), "http://localhost:3000")),

		ArchiveBucket:    os.Getenv("FEED_ARCHIVE_BUCKET"),
		ArchiveRegion:    os.Getenv("FEED_ARCHIVE_REGION"),
		ArchiveEndpoint:  os.Getenv("FEED_ARCHIVE_ENDPOINT"),
		ArchivePathStyle: strings.EqualFold(os.Getenv("FEED_ARCHIVE_PATH_STYLE"), "true"),

		FeedSyncEnabled: os.Getenv("FEED_SYNC_ENABLED") == "true" || os.Getenv("FEED_SYNC_ENABLED") == "1",
		FeedSyncCron:    firstNonEmpty(os.Getenv("FEED_SYNC_CRON"), "0 */6 * * *"),
		FeedSyncURL:     os.Getenv("FEED_SYNC_URL"),
	}
}

// Location loads the venue time zone, falling back to UTC when the zone
// database is unavailable.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.VenueTimezone)
	if err != nil {
		log.Printf("⚠️ Unknown VENUE_TIMEZONE %q, using UTC: %v", c.VenueTimezone, err)
		return time.UTC
	}
	return loc
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func intOr(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func seconds(key string, def int) time.Duration {
	return time.Duration(intOr(key, def)) * time.Second
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
