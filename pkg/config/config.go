package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"PatternRadar/pkg/model"
)

// Config 应用配置
type Config struct {
	App struct {
		Name     string `yaml:"name"`
		Env      string `yaml:"env" validate:"omitempty,oneof=dev test prod"`
		LogLevel string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	} `yaml:"app"`

	DataSources DataSourcesConfig `yaml:"data_sources"`
	LLM         LLMConfig         `yaml:"llm"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Database    DatabaseConfig    `yaml:"database"`
	NATS        NATSConfig        `yaml:"nats"`
	Notify      NotifyConfig      `yaml:"notify"`

	API struct {
		Port         string        `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"api"`

	Schedule ScheduleConfig `yaml:"schedule"`
}

// DataSourcesConfig 行情数据源
type DataSourcesConfig struct {
	// Order 数据源优先级，按顺序回退
	Order   []string      `yaml:"order" validate:"dive,oneof=tencent eastmoney"`
	Timeout time.Duration `yaml:"timeout"`

	Tencent struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"tencent"`

	EastMoney struct {
		QuoteURL string `yaml:"quote_url"`
		ListURL  string `yaml:"list_url"`
	} `yaml:"eastmoney"`

	// IndexCode 大盘参考指数，空则不抓取
	IndexCode string `yaml:"index_code"`
}

// LLMConfig 大模型配置
type LLMConfig struct {
	Provider    string        `yaml:"provider" validate:"omitempty,oneof=openai zhipu deepseek claude gemini mock"`
	APIURL      string        `yaml:"api_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens" validate:"gte=0"`
	Temperature float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Configured 是否配置了可用的密钥
func (c LLMConfig) Configured() bool {
	return c.APIKey != "" || c.Provider == "mock"
}

// AnalysisConfig 分析流程参数
type AnalysisConfig struct {
	TradingStyle   string                `yaml:"trading_style"`
	PositionStatus string                `yaml:"position_status"`
	Template       string                `yaml:"template" validate:"omitempty,oneof=full simplified 完整版 简化版"`
	BatchDelay     time.Duration         `yaml:"batch_delay"`
	Concurrency    int                   `yaml:"concurrency" validate:"gte=0,lte=32"`
	ScoringFile    string                `yaml:"scoring_file"`
	Defaults       model.MonitorDefaults `yaml:"monitor_defaults"`
}

// DatabaseConfig 自选股存储
type DatabaseConfig struct {
	Driver   string `yaml:"driver" validate:"omitempty,oneof=postgres sqlite memory"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	// Path sqlite 文件路径
	Path string `yaml:"path"`
}

// DSN postgres 连接串
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=Asia/Shanghai",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// NATSConfig 触发事件发布
type NATSConfig struct {
	URL     string `yaml:"url"`
	Stream  string `yaml:"stream"`
	Subject string `yaml:"subject"`
}

// Enabled 是否启用消息发布
func (c NATSConfig) Enabled() bool {
	return c.URL != ""
}

// NotifyConfig 触发事件的 webhook 推送
type NotifyConfig struct {
	WebhookURL string        `yaml:"webhook_url" validate:"omitempty,url"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ScheduleConfig 盘中定时扫描
type ScheduleConfig struct {
	// Spec cron 表达式（秒级）
	Spec          string `yaml:"spec"`
	TradingOnly   bool   `yaml:"trading_only"`
	AnalyzeOnHit  bool   `yaml:"analyze_on_hit"`
	SectorTop     int    `yaml:"sector_top" validate:"gte=0"`
	ConstituentsN int    `yaml:"constituents" validate:"gte=0"`
}

// Default 默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.App.Name = "PatternRadar"
	cfg.App.Env = "dev"
	cfg.App.LogLevel = "info"

	cfg.DataSources.Order = []string{"tencent", "eastmoney"}
	cfg.DataSources.Timeout = 10 * time.Second
	cfg.DataSources.IndexCode = "sh000001"

	cfg.LLM.Provider = "openai"
	cfg.LLM.MaxTokens = 1000
	cfg.LLM.Temperature = 0.3
	cfg.LLM.Timeout = 60 * time.Second

	cfg.Analysis.TradingStyle = "短线"
	cfg.Analysis.PositionStatus = "已持仓"
	cfg.Analysis.Template = "simplified"
	cfg.Analysis.BatchDelay = time.Second
	cfg.Analysis.Concurrency = 4
	cfg.Analysis.Defaults = model.DefaultMonitorDefaults()

	cfg.Database.Driver = "memory"
	cfg.Database.Port = 5432
	cfg.Database.SSLMode = "disable"

	cfg.NATS.Stream = "PATTERNS"
	cfg.NATS.Subject = "patterns.triggered"

	cfg.Notify.Timeout = 5 * time.Second

	cfg.API.Port = "8080"
	cfg.API.ReadTimeout = 30 * time.Second
	cfg.API.WriteTimeout = 120 * time.Second

	cfg.Schedule.Spec = "0 */5 * * * *"
	cfg.Schedule.TradingOnly = true
	cfg.Schedule.SectorTop = 5
	cfg.Schedule.ConstituentsN = 10
	return cfg
}

// LoadConfig 从文件加载配置，未出现的字段保留默认值
// 文件不存在时只使用默认值与环境变量
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return Parse(data)
}

// Parse 解析YAML配置并应用环境变量覆盖
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	overrideFromEnv(config)

	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate 校验配置
func Validate(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	return nil
}

// overrideFromEnv 使用环境变量覆盖配置
func overrideFromEnv(config *Config) {
	setString := func(key string, dst *string) {
		if env := os.Getenv(key); env != "" {
			*dst = env
		}
	}

	setString("APP_NAME", &config.App.Name)
	setString("APP_ENV", &config.App.Env)
	setString("LOG_LEVEL", &config.App.LogLevel)

	if env := os.Getenv("DATA_SOURCES"); env != "" {
		config.DataSources.Order = strings.Split(env, ",")
	}

	// LLM配置，兼容常见的密钥变量名
	setString("LLM_PROVIDER", &config.LLM.Provider)
	setString("LLM_API_URL", &config.LLM.APIURL)
	setString("LLM_MODEL", &config.LLM.Model)
	for _, key := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "LLM_API_KEY"} {
		setString(key, &config.LLM.APIKey)
	}

	setString("TRADING_STYLE", &config.Analysis.TradingStyle)
	setString("POSITION_STATUS", &config.Analysis.PositionStatus)
	setString("SCORING_FILE", &config.Analysis.ScoringFile)

	// 数据库配置
	setString("DB_DRIVER", &config.Database.Driver)
	setString("DB_HOST", &config.Database.Host)
	if env := os.Getenv("DB_PORT"); env != "" {
		if port, err := strconv.Atoi(env); err == nil && port > 0 {
			config.Database.Port = port
		}
	}
	setString("DB_USER", &config.Database.User)
	setString("DB_PASSWORD", &config.Database.Password)
	setString("DB_NAME", &config.Database.DBName)
	setString("DB_PATH", &config.Database.Path)

	setString("NATS_URL", &config.NATS.URL)
	setString("NOTIFY_WEBHOOK_URL", &config.Notify.WebhookURL)
	setString("API_PORT", &config.API.Port)
}

// GetDefaultConfigPath 获取默认配置文件路径
func GetDefaultConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	return fmt.Sprintf("configs/%s/app.yaml", env)
}
