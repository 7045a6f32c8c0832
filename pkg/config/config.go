package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "CAMPUS"

type Config struct {
	Env    string
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	WS     WSConfig
	Admin  AdminConfig

	// DotEnvLoaded 表示啟動時讀到了 .env 檔
	DotEnvLoaded bool `mapstructure:"-"`
}

type ServerConfig struct {
	Address        string
	AllowedOrigins []string
}

type DBConfig struct {
	Driver   string // postgres 或 memory
	Host     string
	User     string
	Password string
	Name     string
	Port     int
	TimeZone string
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// WSConfig 定義 WebSocket 連線的緩衝與心跳參數
type WSConfig struct {
	SendBuffer   int
	PingInterval time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
}

// AdminConfig 控制管理員註冊，SecretKey 為空時停用
type AdminConfig struct {
	SecretKey string
}

// IsProduction 判斷是否為正式環境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load 從 ./pkg/config/config.yaml、.env 與環境變數載入配置
func Load() (*Config, error) {
	dotEnvLoaded := true
	if err := godotenv.Load(".env"); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		dotEnvLoaded = false
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./pkg/config")
	v.AddConfigPath(".")

	config, err := load(v)
	if err != nil {
		return nil, err
	}
	config.DotEnvLoaded = dotEnvLoaded
	return config, nil
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// 環境變數覆蓋，例如 CAMPUS_DB_HOST
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allowedOrigins", []string{})
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "campus_chat")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", 240*time.Hour)
	v.SetDefault("ws.sendBuffer", 256)
	v.SetDefault("ws.pingInterval", 54*time.Second)
	v.SetDefault("ws.pongWait", 60*time.Second)
	v.SetDefault("ws.writeWait", 10*time.Second)
	v.SetDefault("admin.secretKey", "")
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		if c.IsProduction() {
			return errors.New("jwt.secret is required in production")
		}
		c.JWT.Secret = "development_secret"
	}
	switch c.DB.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported db.driver %q", c.DB.Driver)
	}
	if c.WS.PingInterval >= c.WS.PongWait {
		return fmt.Errorf("ws.pingInterval (%s) must be shorter than ws.pongWait (%s)", c.WS.PingInterval, c.WS.PongWait)
	}
	if c.WS.SendBuffer <= 0 {
		return errors.New("ws.sendBuffer must be positive")
	}
	return nil
}
