package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	App struct {
		Port     string `mapstructure:"port"`
		Env      string `mapstructure:"env"`
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr      string        `mapstructure:"addr"`
		Password  string        `mapstructure:"password"`
		DB        int           `mapstructure:"db"`
		KeyPrefix string        `mapstructure:"key_prefix"`
		TTL       time.Duration `mapstructure:"ttl"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers        []string `mapstructure:"brokers"`
		ReconcileTopic string   `mapstructure:"reconcile_topic"`
		GroupID        string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"auth"`
	LLM struct {
		Provider     string        `mapstructure:"provider"`
		OpenAIAPIKey string        `mapstructure:"openai_api_key"`
		GeminiAPIKey string        `mapstructure:"gemini_api_key"`
		Model        string        `mapstructure:"model"`
		BaseURL      string        `mapstructure:"base_url"`
		Timeout      time.Duration `mapstructure:"timeout"`
	} `mapstructure:"llm"`
	Store struct {
		CallTimeout    time.Duration `mapstructure:"call_timeout"`
		SessionIdleTTL time.Duration `mapstructure:"session_idle_ttl"`
	} `mapstructure:"store"`
	Tracing struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
		ServiceName  string `mapstructure:"service_name"`
	} `mapstructure:"tracing"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
}

// LoadConfig reads .env, then config.yaml from the given paths (default "."),
// then environment overrides.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	envFiles := make([]string, 0, len(paths))
	for _, p := range paths {
		envFiles = append(envFiles, strings.TrimSuffix(p, "/")+"/.env")
	}
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	v := viper.New()
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read env only. Error: %v", err)
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.log_level", "LOG_LEVEL")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("redis.key_prefix", "REDIS_KEY_PREFIX")
	v.BindEnv("redis.ttl", "REDIS_TTL")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.reconcile_topic", "KAFKA_RECONCILE_TOPIC")
	v.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")

	v.BindEnv("llm.provider", "LLM_PROVIDER")
	v.BindEnv("llm.openai_api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.gemini_api_key", "GEMINI_API_KEY")
	v.BindEnv("llm.model", "LLM_MODEL")
	v.BindEnv("llm.base_url", "LLM_BASE_URL")
	v.BindEnv("llm.timeout", "LLM_TIMEOUT")

	v.BindEnv("store.call_timeout", "STORE_CALL_TIMEOUT")
	v.BindEnv("store.session_idle_ttl", "STORE_SESSION_IDLE_TTL")
	v.BindEnv("tracing.otlp_endpoint", "OTLP_ENDPOINT")
	v.BindEnv("tracing.service_name", "TRACING_SERVICE_NAME")
	v.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")

	err = v.Unmarshal(&cfg)
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.key_prefix", "pathwise")
	v.SetDefault("redis.ttl", 30*24*time.Hour)
	v.SetDefault("kafka.reconcile_topic", "store.reconcile")
	v.SetDefault("kafka.group_id", "store-reconciler-group")
	v.SetDefault("auth.token_lifespan", 24*time.Hour)
	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("store.call_timeout", 10*time.Second)
	v.SetDefault("store.session_idle_ttl", 30*time.Minute)
	v.SetDefault("tracing.service_name", "pathwise-api")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
}
