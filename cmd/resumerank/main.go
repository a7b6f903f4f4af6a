package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"resume-ranker/internal/config"
	"resume-ranker/internal/ingest"
	"resume-ranker/internal/logger"
	"resume-ranker/internal/parser"
	"resume-ranker/internal/ranker"
	"resume-ranker/internal/scoring"
	"resume-ranker/internal/types"
	"resume-ranker/internal/vectorstore"
)

// 命令行参数定义
var (
	configPath string
	resumeDir  string
	jdPath     string
	topK       int
	weight     float64
)

func main() {
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径，留空则在默认位置查找")
	pflag.StringVarP(&resumeDir, "dir", "d", ".", "已提取文本的简历目录 (*.txt)")
	pflag.StringVar(&jdPath, "jd", "", "岗位描述文本文件路径 (必填)")
	pflag.IntVarP(&topK, "top-k", "k", 0, "返回的候选人数量，0 表示使用配置默认值")
	pflag.Float64VarP(&weight, "weight", "w", -1, "技能分权重 [0,1]，-1 表示使用配置默认值")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	if jdPath == "" {
		fmt.Fprintln(os.Stderr, "错误: 必须通过 --jd 指定岗位描述文件")
		pflag.Usage()
		os.Exit(1)
	}
	if topK == 0 {
		topK = cfg.Ranker.DefaultTopK
	}
	if weight < 0 {
		weight = cfg.Ranker.DefaultSkillWeight
	}

	if err := run(cfg, topK, weight); err != nil {
		logger.Fatal().Err(err).Msg("执行失败")
	}
}

func run(cfg *config.Config, topK int, weight float64) error {
	ctx := logger.WithContext(context.Background())

	jdBytes, err := os.ReadFile(jdPath)
	if err != nil {
		return fmt.Errorf("读取岗位描述失败: %w", err)
	}
	jobDescription := string(jdBytes)

	// 摄取侧与排序侧共用同一技能词表实例
	vocab := parser.DefaultSkillVocabulary()
	skillExtractor := parser.NewSkillExtractor(vocab)
	logger.Debug().Int("vocabulary_size", len(vocab.Skills())).Msg("技能词表加载完成")

	// 相似度索引是可选信号：未配置 API Key 时跳过，排序流程不受影响
	var index *vectorstore.Index
	if cfg.Aliyun.APIKey != "" {
		embedder, err := vectorstore.NewAliyunEmbedder(cfg.Aliyun.APIKey, cfg.Aliyun.Embedding)
		if err != nil {
			return fmt.Errorf("创建嵌入器失败: %w", err)
		}
		dimension := cfg.Vector.Dimension
		if dimension == 0 {
			dimension = embedder.GetDimensions()
		}
		index = vectorstore.NewIndex(embedder, dimension)
	} else {
		logger.Warn().Msg("未配置 ALIYUN_API_KEY，跳过相似度索引")
	}

	opts := []ingest.Option{ingest.WithSkillExtractor(skillExtractor)}
	if index != nil {
		opts = append(opts, ingest.WithSimilarityIndex(index))
	}
	ingestor := ingest.New(cfg, opts...)

	candidates, err := ingestResumes(ctx, ingestor)
	if err != nil {
		return err
	}
	logger.Info().Int("candidates", len(candidates)).Msg("简历摄取完成")

	r := ranker.New(skillExtractor, scoring.NewScorer(cfg.Scoring), cfg.Ranker)
	resp, err := r.Rank(ctx, candidates, jobDescription, topK, weight)
	if err != nil {
		return err
	}

	output := struct {
		JobSkills []string                   `json:"job_skills"`
		Results   []types.RankedResult       `json:"results"`
		Neighbors []vectorstore.SearchResult `json:"semantic_neighbors,omitempty"`
	}{
		JobSkills: resp.JobSkills,
		Results:   resp.Results,
	}

	if index != nil {
		neighbors, err := index.Query(ctx, jobDescription, topK)
		if err != nil {
			// 语义检索失败不影响词法排序结果
			logger.Warn().Err(err).Msg("相似度查询失败")
		} else {
			output.Neighbors = neighbors
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// ingestResumes 读取目录下的 *.txt 文件并逐个摄取，文件名排序保证顺序稳定
func ingestResumes(ctx context.Context, ingestor *ingest.Ingestor) ([]types.CandidateProfile, error) {
	entries, err := os.ReadDir(resumeDir)
	if err != nil {
		return nil, fmt.Errorf("读取简历目录失败: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".txt") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var candidates []types.CandidateProfile
	for _, name := range names {
		path := filepath.Join(resumeDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			// 单个文件失败只降级该候选人，不中断整批
			logger.Warn().Err(err).Str("file", name).Msg("读取简历文件失败，跳过")
			continue
		}

		profile, err := ingestor.Ingest(ctx, string(data), types.Provenance{SourceFile: name})
		if err != nil {
			logger.Warn().Err(err).Str("file", name).Msg("摄取失败，跳过")
			continue
		}
		candidates = append(candidates, *profile)
	}

	return candidates, nil
}
