package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServiceName string
	Env         string
	Port        int
	LogLevel    string

	DatabaseURL string
	RabbitMQURL string

	CommitTimeout    time.Duration
	RequestTimeout   time.Duration
	SessionIdleTTL   time.Duration
	AllowedOrigins   []string
	CaptureRateLimit int
	WhatsAppNumber   string

	Mail  MailConfig
	Kommo KommoConfig
}

type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	AdminTo  string
}

type KommoConfig struct {
	BaseURL          string
	Token            string
	PipelineStatusID int
}

func (k KommoConfig) Enabled() bool {
	return k.BaseURL != "" && k.Token != ""
}

// SetDefaults registra os valores padrão no viper.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "ligue-imoveis")
	v.SetDefault("env", "development")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("database_url", "")
	v.SetDefault("rabbitmq_url", "")
	v.SetDefault("commit_timeout", "10s")
	v.SetDefault("request_timeout", "30s")
	v.SetDefault("session_idle_ttl", "30m")
	v.SetDefault("allowed_origins", "http://localhost:5173")
	v.SetDefault("capture_rate_limit", 10)
	v.SetDefault("whatsapp_number", "")
	v.SetDefault("mail_host", "")
	v.SetDefault("mail_port", 587)
	v.SetDefault("mail_user", "")
	v.SetDefault("mail_pass", "")
	v.SetDefault("mail_from", "")
	v.SetDefault("mail_admin_to", "")
	v.SetDefault("kommo_url", "")
	v.SetDefault("kommo_token", "")
	v.SetDefault("kommo_pipeline_status_id", 0)
}

// New prepara um viper com .env, variáveis de ambiente e (se existir)
// o arquivo de config.
func New(configFile string) (*viper.Viper, error) {
	// .env é opcional
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("erro ao ler config %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Load monta o Config tipado a partir do viper.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ServiceName:      v.GetString("service_name"),
		Env:              v.GetString("env"),
		Port:             v.GetInt("port"),
		LogLevel:         strings.ToLower(v.GetString("log_level")),
		DatabaseURL:      v.GetString("database_url"),
		RabbitMQURL:      v.GetString("rabbitmq_url"),
		CommitTimeout:    v.GetDuration("commit_timeout"),
		RequestTimeout:   v.GetDuration("request_timeout"),
		SessionIdleTTL:   v.GetDuration("session_idle_ttl"),
		AllowedOrigins:   splitList(v.GetString("allowed_origins")),
		CaptureRateLimit: v.GetInt("capture_rate_limit"),
		WhatsAppNumber:   v.GetString("whatsapp_number"),
		Mail: MailConfig{
			Host:     v.GetString("mail_host"),
			Port:     v.GetInt("mail_port"),
			User:     v.GetString("mail_user"),
			Password: v.GetString("mail_pass"),
			From:     v.GetString("mail_from"),
			AdminTo:  v.GetString("mail_admin_to"),
		},
		Kommo: KommoConfig{
			BaseURL:          v.GetString("kommo_url"),
			Token:            v.GetString("kommo_token"),
			PipelineStatusID: v.GetInt("kommo_pipeline_status_id"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT inválida: %d", c.Port)
	}
	if c.CommitTimeout <= 0 {
		return fmt.Errorf("COMMIT_TIMEOUT precisa ser positivo")
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL precisa ser positivo")
	}
	if c.CaptureRateLimit <= 0 {
		return fmt.Errorf("CAPTURE_RATE_LIMIT precisa ser positivo")
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_ORIGINS vazio")
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
