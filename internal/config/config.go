package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 存储后端
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Game     GameConfig     `yaml:"game"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host           string          `yaml:"host"`
	Port           int             `yaml:"port"`
	PollInterval   int             `yaml:"poll_interval_ms"` // 建议客户端的轮询间隔（毫秒）
	AllowedOrigins []string        `yaml:"allowed_origins"`
	IPAllowlist    []string        `yaml:"ip_allowlist"` // 非空时只允许名单内的 IP
	IPBlocklist    []string        `yaml:"ip_blocklist"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	MaxPerSecond    int `yaml:"max_per_second"`    // 单个 IP 的突发上限
	MaxPerMinute    int `yaml:"max_per_minute"`    // 单个 IP 的持续速率
	BanDuration     int `yaml:"ban_duration"`      // 秒
	SeatPerSecond   int `yaml:"seat_per_second"`   // 同一房间同一玩家的出牌、过牌和轮询
	CreatePerMinute int `yaml:"create_per_minute"` // 单个 IP 创建房间
}

// StorageConfig 房间存储配置
type StorageConfig struct {
	Backend      string `yaml:"backend"` // memory | redis | postgres
	RoomTTLHours int    `yaml:"room_ttl_hours"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// PostgresConfig Postgres 配置
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// GameConfig 游戏配置
type GameConfig struct {
	MinPlayers     int           `yaml:"min_players"`
	CardsPerPlayer int           `yaml:"cards_per_player"`
	RulesetA       RulesetConfig `yaml:"ruleset_a"` // juego1
	RulesetB       RulesetConfig `yaml:"ruleset_b"` // juego2
}

// RulesetConfig 玩法规则开关，未设置的字段使用默认值
type RulesetConfig struct {
	OpeningThreeOfBastos *bool `yaml:"opening_three_of_bastos"`
	MaxComboSize         int   `yaml:"max_combo_size"`
	NoBeatShortCircuit   *bool `yaml:"no_beat_short_circuit"`
	AutoPass             *bool `yaml:"auto_pass"`
	DealAll              *bool `yaml:"deal_all"`
	RoleExchange         *bool `yaml:"role_exchange"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
	File   string `yaml:"file"`
}

// Addr 返回监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PollIntervalDuration 返回轮询间隔
func (c *ServerConfig) PollIntervalDuration() time.Duration {
	return time.Duration(c.PollInterval) * time.Millisecond
}

// BanDurationTime 返回封禁时长
func (c *RateLimitConfig) BanDurationTime() time.Duration {
	return time.Duration(c.BanDuration) * time.Second
}

// RoomTTL 返回房间过期时间
func (c *StorageConfig) RoomTTL() time.Duration {
	return time.Duration(c.RoomTTLHours) * time.Hour
}

// Load 加载配置文件，再用 .env 与环境变量覆盖
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, cfg.Validate()
}

// LoadDotEnv 加载 .env 文件（不存在时忽略），已有的环境变量不会被覆盖
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("加载 %s 失败: %w", p, err)
		}
	}
	return nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// FromEnv 默认配置加环境变量覆盖（没有配置文件时使用）
func FromEnv() (*Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// applyDefaults 设置默认值
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.PollInterval == 0 {
		c.Server.PollInterval = 1000
	}
	if c.Server.RateLimit.MaxPerSecond == 0 {
		c.Server.RateLimit.MaxPerSecond = 20
	}
	if c.Server.RateLimit.MaxPerMinute == 0 {
		c.Server.RateLimit.MaxPerMinute = 600
	}
	if c.Server.RateLimit.BanDuration == 0 {
		c.Server.RateLimit.BanDuration = 60
	}
	if c.Server.RateLimit.SeatPerSecond == 0 {
		c.Server.RateLimit.SeatPerSecond = 5
	}
	if c.Server.RateLimit.CreatePerMinute == 0 {
		c.Server.RateLimit.CreatePerMinute = 6
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendMemory
	}
	if c.Storage.RoomTTLHours == 0 {
		c.Storage.RoomTTLHours = 24
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Game.MinPlayers == 0 {
		c.Game.MinPlayers = 4
	}
	if c.Game.CardsPerPlayer == 0 {
		c.Game.CardsPerPlayer = 7
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// applyEnv 用 CARTAS_* 环境变量覆盖配置
func (c *Config) applyEnv() error {
	if v := os.Getenv("CARTAS_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("CARTAS_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("CARTAS_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("CARTAS_POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("CARTAS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CARTAS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CARTAS_PORT 不是有效的端口: %q", v)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate 检查配置是否合法
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres 存储需要配置 postgres.dsn")
		}
	default:
		return fmt.Errorf("未知的存储后端: %q", c.Storage.Backend)
	}
	if c.Game.MinPlayers < 2 {
		return fmt.Errorf("min_players 至少为 2，当前 %d", c.Game.MinPlayers)
	}
	for name, rs := range map[string]RulesetConfig{"ruleset_a": c.Game.RulesetA, "ruleset_b": c.Game.RulesetB} {
		if rs.MaxComboSize < 0 || rs.MaxComboSize > 4 {
			return fmt.Errorf("%s.max_combo_size 必须在 1 到 4 之间", name)
		}
	}
	return nil
}
