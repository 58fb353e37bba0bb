package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

// LumberjackConfig 日志滚动（lumberjack）配置
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig 日志级别与输出配置
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig Prometheus 指标暴露配置
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// SchemaConfig 报文模板目录配置
type SchemaConfig struct {
	Dir        string        `mapstructure:"dir"`
	Watch      bool          `mapstructure:"watch"`
	Debounce   time.Duration `mapstructure:"debounce"`
	Extensions []string      `mapstructure:"extensions"`
}

// 数据源类型
const (
	ResolverNone   = "none"
	ResolverStatic = "static"
	ResolverRedis  = "redis"
)

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"poolSize"`
	MinIdleConns int           `mapstructure:"minIdleConns"`
	DialTimeout  time.Duration `mapstructure:"dialTimeout"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	KeyPrefix    string        `mapstructure:"keyPrefix"`

	// 连续失败 BreakerThreshold 次后熔断 BreakerCooldown，0 表示不熔断
	BreakerThreshold int           `mapstructure:"breakerThreshold"`
	BreakerCooldown  time.Duration `mapstructure:"breakerCooldown"`
}

// ResolverConfig 非内联要素取值的数据源
type ResolverConfig struct {
	Kind   string             `mapstructure:"kind"`
	Static map[string]float64 `mapstructure:"static"`
	Redis  RedisConfig        `mapstructure:"redis"`
}

// ConsoleConfig 编解码控制台配置
type ConsoleConfig struct {
	Enable    bool     `mapstructure:"enable"`
	RateLimit float64  `mapstructure:"rateLimit"`
	Burst     int      `mapstructure:"burst"`
	APIKeys   []string `mapstructure:"apiKeys"`
}

// Config 顶层配置结构
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Schema   SchemaConfig   `mapstructure:"schema"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Console  ConsoleConfig  `mapstructure:"console"`
}

// Load 从 YAML/TOML/JSON 文件与环境变量加载配置。
// 若 path 为空，则尝试从环境变量 SL651_CONFIG 读取；否则回退到 configs/example.yaml。
func Load(path string) (*Config, error) {
	v := viper.New()

	// 环境变量覆盖：前缀 SL651_，并将点号替换为下划线
	v.SetEnvPrefix("SL651")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = v.GetString("config")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("example")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 首次运行允许缺少配置文件，依赖默认值与环境变量
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查取值组合
func (c *Config) Validate() error {
	switch c.Resolver.Kind {
	case ResolverNone, ResolverStatic, ResolverRedis:
	default:
		return fmt.Errorf("config: unknown resolver kind %q", c.Resolver.Kind)
	}
	if c.Schema.Watch && c.Schema.Dir == "" {
		return errors.New("config: schema.watch requires schema.dir")
	}
	if c.Console.RateLimit < 0 || c.Console.Burst < 0 {
		return errors.New("config: console rate limit must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sl651-console")
	v.SetDefault("app.env", "dev")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")
	v.SetDefault("http.shutdownTimeout", "5s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.filename", "logs/sl651.log")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("schema.dir", "schemas")
	v.SetDefault("schema.watch", false)
	v.SetDefault("schema.debounce", "200ms")
	v.SetDefault("schema.extensions", []string{".json", ".yaml", ".yml"})

	v.SetDefault("resolver.kind", ResolverNone)
	v.SetDefault("resolver.redis.addr", "localhost:6379")
	v.SetDefault("resolver.redis.db", 0)
	v.SetDefault("resolver.redis.poolSize", 10)
	v.SetDefault("resolver.redis.minIdleConns", 2)
	v.SetDefault("resolver.redis.dialTimeout", "5s")
	v.SetDefault("resolver.redis.readTimeout", "3s")
	v.SetDefault("resolver.redis.writeTimeout", "3s")
	v.SetDefault("resolver.redis.keyPrefix", "sl651:data:")
	v.SetDefault("resolver.redis.breakerThreshold", 5)
	v.SetDefault("resolver.redis.breakerCooldown", "30s")

	v.SetDefault("console.enable", true)
	v.SetDefault("console.rateLimit", 20)
	v.SetDefault("console.burst", 40)
}
