package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EmbeddingConfig 向量嵌入模型配置
type EmbeddingConfig struct {
	Model      string `yaml:"model"`      // 模型名称，如 text-embedding-v3
	Dimensions int    `yaml:"dimensions"` // 向量维度
	BaseURL    string `yaml:"base_url"`   // OpenAI 兼容的 embeddings 端点
}

// ScoringConfig 打分引擎配置
//
// 几个权重常量沿用产品确认过的默认值，修改前需要产品侧确认。
type ScoringConfig struct {
	VerbWeight        float64 `yaml:"verb_weight"`         // 含成果动词的加分，默认 0.4
	MetricWeight      float64 `yaml:"metric_weight"`       // 含量化指标的加分，默认 0.4
	DurationWeight    float64 `yaml:"duration_weight"`     // 持续时间达标的加分，默认 0.2
	MinDurationMonths int     `yaml:"min_duration_months"` // 持续时间加分的月数门槛，默认 6
	BulletCap         float64 `yaml:"bullet_cap"`          // 单条经历的得分上限，默认 1.0
}

// ParserConfig 文本解析配置
type ParserConfig struct {
	MaxBulletLength int `yaml:"max_bullet_length"` // 非列表行判定为经历条目的最大长度，默认 400
}

// RankerConfig 排序器配置
type RankerConfig struct {
	EvidenceBullets    int     `yaml:"evidence_bullets"`     // 每个候选人展示的证据条目数，默认 3
	DefaultTopK        int     `yaml:"default_top_k"`        // 未指定时的 top_k，默认 10
	DefaultSkillWeight float64 `yaml:"default_skill_weight"` // 未指定时的技能分权重，默认 0.5
	ScoreWorkers       int     `yaml:"score_workers"`        // 并行打分的 worker 数，默认 4
}

// VectorConfig 相似度索引配置
type VectorConfig struct {
	Dimension int `yaml:"dimension"` // 期望的向量维度；0 表示以首次写入为准
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// Config 应用程序配置
type Config struct {
	Aliyun struct {
		APIKey    string          `yaml:"api_key"`
		Embedding EmbeddingConfig `yaml:"embedding"`
	} `yaml:"aliyun"`

	Scoring ScoringConfig `yaml:"scoring"`
	Parser  ParserConfig  `yaml:"parser"`
	Ranker  RankerConfig  `yaml:"ranker"`
	Vector  VectorConfig  `yaml:"vector"`
	Logger  LoggerConfig  `yaml:"logger"`
}

// LoadConfig 从文件加载配置
//
// configPath 为空时在常见位置查找 config.yaml；文件不存在且处于测试环境时
// 直接返回默认配置而不报错。环境变量 ALIYUN_API_KEY 优先于文件内容。
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		searchPaths := []string{
			"config.yaml",
			"./config.yaml",
			"../config.yaml",
			filepath.Join(os.Getenv("HOME"), ".resume-ranker", "config.yaml"),
		}
		if execPath, err := os.Executable(); err == nil {
			searchPaths = append(searchPaths, filepath.Join(filepath.Dir(execPath), "config.yaml"))
		}

		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}
		if configPath == "" {
			return createDefaultConfig(), nil
		}
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	cfg, err := LoadConfigFromFileOnly(configPath)
	if err != nil {
		return nil, err
	}

	// 从环境变量覆盖配置（如果存在）
	if envKey := os.Getenv("ALIYUN_API_KEY"); envKey != "" {
		cfg.Aliyun.APIKey = envKey
	}
	if envModel := os.Getenv("ALIYUN_EMBEDDING_MODEL"); envModel != "" {
		cfg.Aliyun.Embedding.Model = envModel
	}

	return cfg, nil
}

// LoadConfigFromFileOnly 仅从指定文件加载配置，不读取环境变量
func LoadConfigFromFileOnly(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	applyDefaults(&cfg)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return &cfg, nil
}

// createDefaultConfig 创建带有默认值的配置，测试环境找不到配置文件时使用
func createDefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults 为零值字段填充默认值。必须在 yaml.Unmarshal 之前调用：
// 解析只覆盖文件中出现的字段，文件里显式写 0 的权重才能生效
func applyDefaults(cfg *Config) {
	if cfg.Scoring.VerbWeight == 0 {
		cfg.Scoring.VerbWeight = 0.4
	}
	if cfg.Scoring.MetricWeight == 0 {
		cfg.Scoring.MetricWeight = 0.4
	}
	if cfg.Scoring.DurationWeight == 0 {
		cfg.Scoring.DurationWeight = 0.2
	}
	if cfg.Scoring.MinDurationMonths == 0 {
		cfg.Scoring.MinDurationMonths = 6
	}
	if cfg.Scoring.BulletCap == 0 {
		cfg.Scoring.BulletCap = 1.0
	}
	if cfg.Parser.MaxBulletLength == 0 {
		cfg.Parser.MaxBulletLength = 400
	}
	if cfg.Ranker.EvidenceBullets == 0 {
		cfg.Ranker.EvidenceBullets = 3
	}
	if cfg.Ranker.DefaultTopK == 0 {
		cfg.Ranker.DefaultTopK = 10
	}
	if cfg.Ranker.DefaultSkillWeight == 0 {
		cfg.Ranker.DefaultSkillWeight = 0.5
	}
	if cfg.Ranker.ScoreWorkers == 0 {
		cfg.Ranker.ScoreWorkers = 4
	}
	if cfg.Aliyun.Embedding.Model == "" {
		cfg.Aliyun.Embedding.Model = "text-embedding-v3"
	}
	if cfg.Aliyun.Embedding.Dimensions == 0 {
		cfg.Aliyun.Embedding.Dimensions = 1024
	}
	if cfg.Aliyun.Embedding.BaseURL == "" {
		cfg.Aliyun.Embedding.BaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1/embeddings"
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "json"
	}
}
