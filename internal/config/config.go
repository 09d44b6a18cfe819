package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server Server `mapstructure:"server"`
	Log    Log    `mapstructure:"log"`
	MySQL  MySQL  `mapstructure:"mysql"`
	Redis  Redis  `mapstructure:"redis"`
	Stripe Stripe `mapstructure:"stripe"`
	Mail   Mail   `mapstructure:"mail"`
	Upload Upload `mapstructure:"upload"`
	Chat   Chat   `mapstructure:"chat"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

type MySQL struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type Redis struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Stripe struct {
	SecretKey  string        `mapstructure:"secret_key"`
	SuccessURL string        `mapstructure:"success_url"`
	CancelURL  string        `mapstructure:"cancel_url"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type Mail struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	AdminAddr string `mapstructure:"admin_addr"`
}

type Upload struct {
	Dir string `mapstructure:"dir"`
}

type Chat struct {
	HistorySize int `mapstructure:"history_size"`
}

func Load() (*Config, error) {
	// Set default values
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("mysql.dsn", "liveshop:liveshop@tcp(localhost:3306)/liveshop?parseTime=true")
	viper.SetDefault("mysql.max_open_conns", 25)
	viper.SetDefault("mysql.max_idle_conns", 10)
	viper.SetDefault("mysql.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("stripe.secret_key", "")
	viper.SetDefault("stripe.success_url", "http://localhost:5173/payment-success")
	viper.SetDefault("stripe.cancel_url", "http://localhost:5173/payment-cancel")
	viper.SetDefault("stripe.session_ttl", 30*time.Minute)
	viper.SetDefault("mail.host", "smtp.gmail.com")
	viper.SetDefault("mail.port", 587)
	viper.SetDefault("mail.user", "")
	viper.SetDefault("mail.password", "")
	viper.SetDefault("mail.admin_addr", "")
	viper.SetDefault("upload.dir", "uploads")
	viper.SetDefault("chat.history_size", 50)

	// Configuration file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/liveshop/")

	// Environment variable support
	viper.AutomaticEnv()
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("log.level", "LOG_LEVEL")
	viper.BindEnv("mysql.dsn", "MYSQL_DSN")
	viper.BindEnv("redis.address", "REDIS_ADDRESS")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("stripe.secret_key", "STRIPE_SECRET_KEY")
	viper.BindEnv("stripe.success_url", "STRIPE_SUCCESS_URL")
	viper.BindEnv("stripe.cancel_url", "STRIPE_CANCEL_URL")
	viper.BindEnv("mail.host", "MAIL_HOST")
	viper.BindEnv("mail.port", "MAIL_PORT")
	viper.BindEnv("mail.user", "MAIL_USER")
	viper.BindEnv("mail.password", "MAIL_PASS")
	viper.BindEnv("mail.admin_addr", "MAIL_ADMIN_ADDR")
	viper.BindEnv("upload.dir", "UPLOAD_DIR")

	// Read configuration file (optional - defaults/env vars apply if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
