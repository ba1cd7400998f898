package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Risk       RiskConfig       `mapstructure:"risk"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Assistant  AssistantConfig  `mapstructure:"assistant"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Schema          string        `mapstructure:"schema"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&search_path=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.Schema,
	)
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
	TLS       bool   `mapstructure:"tls"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
	Issuer     string        `mapstructure:"issuer"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	RequestsPerHour   int  `mapstructure:"requests_per_hour"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// RiskConfig centralizes every scoring weight, tier threshold and bonus used by
// the crisis-risk pipeline so they can be tuned without touching scorer code.
type RiskConfig struct {
	Weights          RiskWeights      `mapstructure:"weights"`
	Thresholds       RiskThresholds   `mapstructure:"thresholds"`
	Context          ContextConfig    `mapstructure:"context"`
	Confidence       ConfidenceConfig `mapstructure:"confidence"`
	SnapshotMaxChars int              `mapstructure:"snapshot_max_chars"`
}

// RiskWeights holds the per-category pattern weights
type RiskWeights struct {
	DirectThreat      int `mapstructure:"direct_threat"`
	MethodReference   int `mapstructure:"method_reference"`
	TemporalMarker    int `mapstructure:"temporal_marker"`
	IndirectIdeation  int `mapstructure:"indirect_ideation"`
	EmotionalDistress int `mapstructure:"emotional_distress"`
	PlanFormation     int `mapstructure:"plan_formation"`
	MeansAccess       int `mapstructure:"means_access"`
	Isolation         int `mapstructure:"isolation"`
	Timeline          int `mapstructure:"timeline"`
	Finality          int `mapstructure:"finality"`
}

// RiskThresholds maps a total score to a risk tier
type RiskThresholds struct {
	Critical int `mapstructure:"critical"`
	High     int `mapstructure:"high"`
	Medium   int `mapstructure:"medium"`
}

// ContextConfig tunes the conversation-history heuristics
type ContextConfig struct {
	HistoryWindow     int `mapstructure:"history_window"`
	EscalationMinHits int `mapstructure:"escalation_min_hits"`
	EscalationBonus   int `mapstructure:"escalation_bonus"`
}

// ConfidenceConfig tunes the confidence blend
type ConfidenceConfig struct {
	ScoreWeight    float64 `mapstructure:"score_weight"`
	ScoreCeiling   float64 `mapstructure:"score_ceiling"`
	ExternalWeight float64 `mapstructure:"external_weight"`
	BaselineWeight float64 `mapstructure:"baseline_weight"`
}

type ClassifierConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AssistantConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// DefaultRiskConfig returns the stock scoring configuration
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		Weights: RiskWeights{
			DirectThreat:      10,
			MethodReference:   8,
			TemporalMarker:    7,
			IndirectIdeation:  6,
			EmotionalDistress: 3,
			PlanFormation:     5,
			MeansAccess:       5,
			Isolation:         3,
			Timeline:          3,
			Finality:          3,
		},
		Thresholds: RiskThresholds{
			Critical: 15,
			High:     10,
			Medium:   5,
		},
		Context: ContextConfig{
			HistoryWindow:     5,
			EscalationMinHits: 2,
			EscalationBonus:   4,
		},
		Confidence: ConfidenceConfig{
			ScoreWeight:    0.7,
			ScoreCeiling:   20,
			ExternalWeight: 0.3,
			BaselineWeight: 0.2,
		},
		SnapshotMaxChars: 500,
	}
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/mindguard-lab")
	}

	// Environment variables
	v.SetEnvPrefix("MINDGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("redis.tls", "MINDGUARD_REDIS_TLS")
	v.BindEnv("redis.host", "MINDGUARD_REDIS_HOST")
	v.BindEnv("redis.port", "MINDGUARD_REDIS_PORT")
	v.BindEnv("redis.password", "MINDGUARD_REDIS_PASSWORD")
	v.BindEnv("database.host", "MINDGUARD_DATABASE_HOST")
	v.BindEnv("database.port", "MINDGUARD_DATABASE_PORT")
	v.BindEnv("database.user", "MINDGUARD_DATABASE_USER")
	v.BindEnv("database.password", "MINDGUARD_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "MINDGUARD_DATABASE_DBNAME")
	v.BindEnv("database.sslmode", "MINDGUARD_DATABASE_SSLMODE")
	v.BindEnv("jwt.secret", "MINDGUARD_JWT_SECRET")
	v.BindEnv("classifier.enabled", "MINDGUARD_CLASSIFIER_ENABLED")
	v.BindEnv("classifier.url", "MINDGUARD_CLASSIFIER_URL")
	v.BindEnv("assistant.api_key", "MINDGUARD_ASSISTANT_API_KEY")
	v.BindEnv("app.environment", "MINDGUARD_APP_ENVIRONMENT")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyRiskDefaults(&cfg.Risk)

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

// applyRiskDefaults fills zero-valued scoring knobs with the stock values so a
// config file only needs to name the knobs it overrides.
func applyRiskDefaults(rc *RiskConfig) {
	def := DefaultRiskConfig()

	fillInt(&rc.Weights.DirectThreat, def.Weights.DirectThreat)
	fillInt(&rc.Weights.MethodReference, def.Weights.MethodReference)
	fillInt(&rc.Weights.TemporalMarker, def.Weights.TemporalMarker)
	fillInt(&rc.Weights.IndirectIdeation, def.Weights.IndirectIdeation)
	fillInt(&rc.Weights.EmotionalDistress, def.Weights.EmotionalDistress)
	fillInt(&rc.Weights.PlanFormation, def.Weights.PlanFormation)
	fillInt(&rc.Weights.MeansAccess, def.Weights.MeansAccess)
	fillInt(&rc.Weights.Isolation, def.Weights.Isolation)
	fillInt(&rc.Weights.Timeline, def.Weights.Timeline)
	fillInt(&rc.Weights.Finality, def.Weights.Finality)

	fillInt(&rc.Thresholds.Critical, def.Thresholds.Critical)
	fillInt(&rc.Thresholds.High, def.Thresholds.High)
	fillInt(&rc.Thresholds.Medium, def.Thresholds.Medium)

	fillInt(&rc.Context.HistoryWindow, def.Context.HistoryWindow)
	fillInt(&rc.Context.EscalationMinHits, def.Context.EscalationMinHits)
	fillInt(&rc.Context.EscalationBonus, def.Context.EscalationBonus)

	fillFloat(&rc.Confidence.ScoreWeight, def.Confidence.ScoreWeight)
	fillFloat(&rc.Confidence.ScoreCeiling, def.Confidence.ScoreCeiling)
	fillFloat(&rc.Confidence.ExternalWeight, def.Confidence.ExternalWeight)
	fillFloat(&rc.Confidence.BaselineWeight, def.Confidence.BaselineWeight)

	fillInt(&rc.SnapshotMaxChars, def.SnapshotMaxChars)
}

func fillInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func fillFloat(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}
