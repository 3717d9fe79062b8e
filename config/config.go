package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port      string          `mapstructure:"port"`
	ServeName string          `mapstructure:"serve_name"`
	Log       LogConfig       `mapstructure:"log"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Character CharacterConfig `mapstructure:"character"`
	Assets    AssetsConfig    `mapstructure:"assets"`
	Command   CommandConfig   `mapstructure:"command"`
	Phrases   PhrasesConfig   `mapstructure:"phrases"`
}

type LogConfig struct {
	Level int `mapstructure:"level"`
}

// ChatConfig 上游对话服务
type ChatConfig struct {
	Provider  string        `mapstructure:"provider"` // dify, openai
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // /api/chat 每秒请求数，0 不限制
	Burst     int           `mapstructure:"burst"`
	Dify      DifyConfig    `mapstructure:"dify"`
	OpenAI    OpenAIConfig  `mapstructure:"openai"`
}

type DifyConfig struct {
	BaseUrl string `mapstructure:"base_url"`
	ApiKey  string `mapstructure:"api_key"`
	User    string `mapstructure:"user"`
}

type OpenAIConfig struct {
	BaseUrl      string `mapstructure:"base_url"`
	ApiKey       string `mapstructure:"api_key"`
	Model        string `mapstructure:"model"`
	SystemPrompt string `mapstructure:"system_prompt"`
	MaxHistory   int    `mapstructure:"max_history"` // 每个会话保留的消息条数
}

// CharacterConfig 视频控制器
type CharacterConfig struct {
	InitialMode       string                       `mapstructure:"initial_mode"`
	SettleDelay       time.Duration                `mapstructure:"settle_delay"`
	ReadyTimeout      time.Duration                `mapstructure:"ready_timeout"`
	TransitionTimeout time.Duration                `mapstructure:"transition_timeout"`
	GestureTier1      time.Duration                `mapstructure:"gesture_tier1"`
	GestureTier2      time.Duration                `mapstructure:"gesture_tier2"`
	Clips             map[string]map[string]string `mapstructure:"clips"` // mode → purpose → ref，缺省的用内置表
}

type AssetsConfig struct {
	Source string      `mapstructure:"source"` // static, minio
	Dir    string      `mapstructure:"dir"`
	Prefix string      `mapstructure:"prefix"`
	Minio  MinioConfig `mapstructure:"minio"`
}

type MinioConfig struct {
	EndPoint   string        `mapstructure:"endpoint"`
	AccessKey  string        `mapstructure:"access_key"`
	SecretKey  string        `mapstructure:"secret_key"`
	BucketName string        `mapstructure:"bucket"`
	Region     string        `mapstructure:"region"`
	Secure     bool          `mapstructure:"secure"`
	UrlExpiry  time.Duration `mapstructure:"url_expiry"`
}

// CommandConfig 切换命令关键字
type CommandConfig struct {
	Keywords []string `mapstructure:"keywords"` // 包含即命中
	Exact    []string `mapstructure:"exact"`    // 忽略大小写完全一致
}

// PhrasesConfig 固定播报
type PhrasesConfig struct {
	Armor   string `mapstructure:"armor"`
	Normal  string `mapstructure:"normal"`
	Error   string `mapstructure:"error"`
	Unknown string `mapstructure:"unknown"`
	Network string `mapstructure:"network"`
}

func NewConfig() *Config {
	c, err := NewConfigFrom("")
	if err != nil {
		panic(err)
	}
	return c
}

// NewConfigFrom 读取指定文件；path 为空时在 . 和 ./config 下找 config.yml，找不到只用默认值
func NewConfigFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("chat.dify.api_key", "DIFY_API_KEY")
	_ = v.BindEnv("chat.dify.base_url", "DIFY_API_URL")
	_ = v.BindEnv("chat.openai.api_key", "OPENAI_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.SetConfigName("config")
		v.SetConfigType("yml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", ":8080")
	v.SetDefault("serve_name", "r69")
	v.SetDefault("log.level", 0)

	v.SetDefault("chat.provider", "dify")
	v.SetDefault("chat.timeout", 60*time.Second)
	v.SetDefault("chat.rate_limit", 2.0)
	v.SetDefault("chat.burst", 5)
	v.SetDefault("chat.dify.base_url", "https://api.dify.ai/v1")
	v.SetDefault("chat.dify.api_key", "")
	v.SetDefault("chat.dify.user", "r69-user")
	v.SetDefault("chat.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("chat.openai.api_key", "")
	v.SetDefault("chat.openai.model", "gpt-4o-mini")
	v.SetDefault("chat.openai.system_prompt", "")
	v.SetDefault("chat.openai.max_history", 20)

	v.SetDefault("character.initial_mode", "armor")
	v.SetDefault("character.settle_delay", 50*time.Millisecond)
	v.SetDefault("character.ready_timeout", 5*time.Second)
	v.SetDefault("character.transition_timeout", 30*time.Second)
	v.SetDefault("character.gesture_tier1", 3*time.Second)
	v.SetDefault("character.gesture_tier2", 6*time.Second)

	v.SetDefault("assets.source", "static")
	v.SetDefault("assets.dir", "./public/videos")
	v.SetDefault("assets.prefix", "/videos")
	v.SetDefault("assets.minio.endpoint", "")
	v.SetDefault("assets.minio.access_key", "")
	v.SetDefault("assets.minio.secret_key", "")
	v.SetDefault("assets.minio.bucket", "r69-videos")
	v.SetDefault("assets.minio.region", "us-east-1")
	v.SetDefault("assets.minio.secure", false)
	v.SetDefault("assets.minio.url_expiry", time.Hour)

	v.SetDefault("command.keywords", []string{"キャストオフ", "チェンジ", "キャストオン"})
	v.SetDefault("command.exact", []string{"castoff", "change"})

	v.SetDefault("phrases.armor", "チェンジ")
	v.SetDefault("phrases.normal", "キャストオフ")
	v.SetDefault("phrases.error", "すみません、エラーが発生しました")
	v.SetDefault("phrases.unknown", "すみません、わかりませんでした")
	v.SetDefault("phrases.network", "通信エラーが発生しました")
}
