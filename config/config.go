package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort      string
	TicketSecret string
	DatabaseURI  string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	// Kakao channel handoff
	KakaoClientID     string
	KakaoClientSecret string
	OAuthRedirectBase string
	// Points economy
	SignupStartingPoints int
	FirstOfDayBonus      int
	StreakWeeklyBonus    int
	// Question dispatch
	DispatchIntervalMinutes int
	RateLimitPerMinute      int
	AllowedOrigins          []string
	// Gin framework configuration
	GinMode string
	GinPath string
	// SMTP for verification codes and question delivery
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      bool
	// Redis for caching/verification
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Signup abuse controls
	SignupMaxPerIPPerDay        int
	SignupAttemptCooldownSec    int
	SignupFailedMaxPerIPPerHour int
	SignupTempBanMinutes        int
	// External job postings feed (public open API, read-only)
	JobFeedBaseURL    string
	JobFeedServiceKey string
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = godotenv.Load()

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.TicketSecret == "" {
		// A missing secret only breaks the Kakao handoff, so boot with a
		// process-local one instead of refusing to start.
		cfg.TicketSecret = randomSecret()
		log.Println("TICKET_SECRET not set; using a generated per-process secret")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "prepair-dev-secret"
	}
	return hex.EncodeToString(b)
}

// loadJSONConfig reads a flat JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(key string) string {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(key string) int {
		if v, ok := raw[key]; ok {
			switch n := v.(type) {
			case float64:
				return int(n)
			case string:
				if i, err := strconv.Atoi(n); err == nil {
					return i
				}
			}
		}
		return 0
	}
	getBool := func(key string) bool {
		if v, ok := raw[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}

	out.AppPort = getString("app_port")
	out.TicketSecret = getString("ticket_secret")
	out.DatabaseURI = getString("database_uri")
	out.DBHost = getString("db_host")
	out.DBPort = getString("db_port")
	out.DBUser = getString("db_user")
	out.DBPassword = getString("db_password")
	out.DBName = getString("db_name")
	out.KakaoClientID = getString("kakao_client_id")
	out.KakaoClientSecret = getString("kakao_client_secret")
	out.OAuthRedirectBase = getString("oauth_redirect_base")
	out.SignupStartingPoints = getInt("signup_starting_points")
	out.FirstOfDayBonus = getInt("first_of_day_bonus")
	out.StreakWeeklyBonus = getInt("streak_weekly_bonus")
	out.DispatchIntervalMinutes = getInt("dispatch_interval_minutes")
	out.RateLimitPerMinute = getInt("rate_limit_per_minute")
	out.AllowedOrigins = splitAndTrim(getString("allowed_origins"))
	out.GinMode = getString("gin_mode")
	out.GinPath = getString("gin_path")
	out.SMTPHost = getString("smtp_host")
	out.SMTPPort = getInt("smtp_port")
	out.SMTPUsername = getString("smtp_username")
	out.SMTPPassword = getString("smtp_password")
	out.SMTPFrom = getString("smtp_from")
	out.SMTPFromName = getString("smtp_from_name")
	out.SMTPTLS = getBool("smtp_tls")
	out.RedisHost = getString("redis_host")
	out.RedisPort = getInt("redis_port")
	out.RedisDB = getInt("redis_db")
	out.RedisPassword = getString("redis_password")
	out.LogLevel = getString("log_level")
	out.LogPath = getString("log_path")
	out.LogMaxSizeMB = getInt("log_max_size_mb")
	out.LogMaxBackups = getInt("log_max_backups")
	out.LogMaxAgeDays = getInt("log_max_age_days")
	out.LogCompress = getBool("log_compress")
	out.SignupMaxPerIPPerDay = getInt("signup_max_per_ip_per_day")
	out.SignupAttemptCooldownSec = getInt("signup_attempt_cooldown_sec")
	out.SignupFailedMaxPerIPPerHour = getInt("signup_failed_max_per_ip_per_hour")
	out.SignupTempBanMinutes = getInt("signup_temp_ban_minutes")
	out.JobFeedBaseURL = getString("job_feed_base_url")
	out.JobFeedServiceKey = getString("job_feed_service_key")
	return nil
}

func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "prepair"
	}
	if c.DBName == "" {
		c.DBName = "prepair"
	}
	if c.SignupStartingPoints == 0 {
		c.SignupStartingPoints = 100
	}
	if c.FirstOfDayBonus == 0 {
		c.FirstOfDayBonus = 50
	}
	if c.StreakWeeklyBonus == 0 {
		c.StreakWeeklyBonus = 100
	}
	if c.DispatchIntervalMinutes == 0 {
		c.DispatchIntervalMinutes = 30
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/gin.log"
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/prepair.log"
	}
	if c.SignupMaxPerIPPerDay == 0 {
		c.SignupMaxPerIPPerDay = 5
	}
	if c.SignupAttemptCooldownSec == 0 {
		c.SignupAttemptCooldownSec = 10
	}
	if c.SignupFailedMaxPerIPPerHour == 0 {
		c.SignupFailedMaxPerIPPerHour = 10
	}
	if c.SignupTempBanMinutes == 0 {
		c.SignupTempBanMinutes = 30
	}
	if c.JobFeedBaseURL == "" {
		c.JobFeedBaseURL = "https://apis.data.go.kr/1051000/recruitment"
	}
}

func applyEnvOverrides(c *AppConfig) {
	setStr := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(dst *bool, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v == "1" || strings.EqualFold(v, "true")
		}
	}

	setStr(&c.AppPort, "APP_PORT")
	setStr(&c.TicketSecret, "TICKET_SECRET")
	setStr(&c.DatabaseURI, "DATABASE_URI")
	setStr(&c.DBHost, "DB_HOST")
	setStr(&c.DBPort, "DB_PORT")
	setStr(&c.DBUser, "DB_USER")
	setStr(&c.DBPassword, "DB_PASSWORD")
	setStr(&c.DBName, "DB_NAME")
	setStr(&c.KakaoClientID, "KAKAO_CLIENT_ID")
	setStr(&c.KakaoClientSecret, "KAKAO_CLIENT_SECRET")
	setStr(&c.OAuthRedirectBase, "OAUTH_REDIRECT_BASE")
	setInt(&c.SignupStartingPoints, "SIGNUP_STARTING_POINTS")
	setInt(&c.FirstOfDayBonus, "FIRST_OF_DAY_BONUS")
	setInt(&c.StreakWeeklyBonus, "STREAK_WEEKLY_BONUS")
	setInt(&c.DispatchIntervalMinutes, "DISPATCH_INTERVAL_MINUTES")
	setInt(&c.RateLimitPerMinute, "RATE_LIMIT_PER_MINUTE")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	setStr(&c.GinMode, "GIN_MODE")
	setStr(&c.GinPath, "GIN_PATH")
	setStr(&c.SMTPHost, "SMTP_HOST")
	setInt(&c.SMTPPort, "SMTP_PORT")
	setStr(&c.SMTPUsername, "SMTP_USERNAME")
	setStr(&c.SMTPPassword, "SMTP_PASSWORD")
	setStr(&c.SMTPFrom, "SMTP_FROM")
	setStr(&c.SMTPFromName, "SMTP_FROM_NAME")
	setBool(&c.SMTPTLS, "SMTP_TLS")
	setStr(&c.RedisHost, "REDIS_HOST")
	setInt(&c.RedisPort, "REDIS_PORT")
	setInt(&c.RedisDB, "REDIS_DB")
	setStr(&c.RedisPassword, "REDIS_PASSWORD")
	setStr(&c.LogLevel, "LOG_LEVEL")
	setStr(&c.LogPath, "LOG_PATH")
	setInt(&c.LogMaxSizeMB, "LOG_MAX_SIZE_MB")
	setInt(&c.LogMaxBackups, "LOG_MAX_BACKUPS")
	setInt(&c.LogMaxAgeDays, "LOG_MAX_AGE_DAYS")
	setBool(&c.LogCompress, "LOG_COMPRESS")
	setInt(&c.SignupMaxPerIPPerDay, "SIGNUP_MAX_PER_IP_PER_DAY")
	setInt(&c.SignupAttemptCooldownSec, "SIGNUP_ATTEMPT_COOLDOWN_SEC")
	setInt(&c.SignupFailedMaxPerIPPerHour, "SIGNUP_FAILED_MAX_PER_IP_PER_HOUR")
	setInt(&c.SignupTempBanMinutes, "SIGNUP_TEMP_BAN_MINUTES")
	setStr(&c.JobFeedBaseURL, "JOB_FEED_BASE_URL")
	setStr(&c.JobFeedServiceKey, "JOB_FEED_SERVICE_KEY")
}

func splitAndTrim(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
