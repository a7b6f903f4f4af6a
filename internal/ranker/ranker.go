package ranker

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"resume-ranker/internal/config"
	"resume-ranker/internal/logger"
	"resume-ranker/internal/parser"
	"resume-ranker/internal/scoring"
	"resume-ranker/internal/tracing"
	"resume-ranker/internal/types"
)

// 排序器专用 tracer
var rankerTracer = otel.Tracer("resume-ranker/ranker")

var (
	// ErrInvalidWeight skill_vs_exp_weight 超出 [0, 1]
	ErrInvalidWeight = errors.New("skill_vs_exp_weight 必须位于 [0, 1]")
	// ErrInvalidTopK top_k 必须为正整数
	ErrInvalidTopK = errors.New("top_k 必须为正整数")
)

// Ranker 编排整个排序流程：派生岗位需求、逐候选人打分、加权混合、
// 挑选证据、排序并截断到 top_k。
//
// JobRequirement 与候选人技能共用同一个 SkillExtractor 实例，两侧词表
// 不允许各自漂移，否则技能匹配分失去意义。
type Ranker struct {
	skills *parser.SkillExtractor
	scorer *scoring.Scorer
	cfg    config.RankerConfig
}

// New 创建排序器
func New(skills *parser.SkillExtractor, scorer *scoring.Scorer, cfg config.RankerConfig) *Ranker {
	return &Ranker{skills: skills, scorer: scorer, cfg: cfg}
}

// Rank 对全部候选人执行一次排序请求。
//
// 结构性非法的请求参数（权重越界、非正的 top_k）在任何打分开始前被
// 拒绝；候选人为空时返回空结果而不是错误。结果按 OverallScore 降序
// 稳定排序，同分保持摄取顺序，截断到 min(topK, 候选人数)。
func (r *Ranker) Rank(ctx context.Context, candidates []types.CandidateProfile, jobDescription string, topK int, skillVsExpWeight float64) (*types.RankResponse, error) {
	ctx, span := rankerTracer.Start(ctx, "ranker.Rank")
	defer span.End()

	span.SetAttributes(
		attribute.Int("rank.candidate_count", len(candidates)),
		attribute.Int("rank.top_k", topK),
		attribute.Float64("rank.skill_vs_exp_weight", skillVsExpWeight),
		attribute.String("rank.job_description", tracing.SafeJobDescription(jobDescription)),
	)

	if skillVsExpWeight < 0 || skillVsExpWeight > 1 {
		err := fmt.Errorf("%w: %v", ErrInvalidWeight, skillVsExpWeight)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}
	if topK <= 0 {
		err := fmt.Errorf("%w: %d", ErrInvalidTopK, topK)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	req := r.DeriveRequirement(jobDescription)
	span.SetAttributes(attribute.Int("rank.job_skill_count", len(req.RequiredSkills)))

	results := make([]types.RankedResult, len(candidates))

	// 候选人之间没有数据依赖，打分可以并行；全局排序前必须等待
	// 所有分数就绪（errgroup.Wait 即为屏障）
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i := range candidates {
		i := i
		g.Go(func() error {
			results[i] = r.scoreCandidate(&candidates[i], req.RequiredSkills, skillVsExpWeight)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, err
	}

	// 稳定排序：同分保持摄取顺序
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].OverallScore > results[j].OverallScore
	})

	if topK < len(results) {
		results = results[:topK]
	}

	logger.Ctx(ctx).Debug().
		Int("candidates", len(candidates)).
		Int("returned", len(results)).
		Strs("job_skills", req.RequiredSkills).
		Msg("排序完成")

	return &types.RankResponse{JobSkills: req.RequiredSkills, Results: results}, nil
}

// DeriveRequirement 从岗位描述文本派生需求集合。
// 与候选人技能提取共用同一词表实例，两侧不允许各自漂移。
func (r *Ranker) DeriveRequirement(jobDescription string) types.JobRequirement {
	return types.JobRequirement{RequiredSkills: r.skills.Extract(jobDescription)}
}

// workers 并行打分的 worker 数，配置缺省时退化为串行
func (r *Ranker) workers() int {
	if r.cfg.ScoreWorkers > 0 {
		return r.cfg.ScoreWorkers
	}
	return 1
}

// scoreCandidate 计算单个候选人的两个子分数、加权总分和证据
func (r *Ranker) scoreCandidate(c *types.CandidateProfile, jobSkills []string, weight float64) types.RankedResult {
	skillScore := r.scorer.SkillScore(c.Skills, jobSkills)
	expScore := r.scorer.ExperienceScore(c.Bullets)
	overall := scoring.Round2(weight*skillScore + (1-weight)*expScore)

	return types.RankedResult{
		CandidateID:             c.CandidateID,
		Name:                    c.Name,
		OverallScore:            overall,
		SkillMatchScore:         skillScore,
		ExperienceScore:         expScore,
		MatchedSkills:           c.Skills,
		DemonstratedExperiences: r.selectEvidence(c.Bullets),
		Provenance:              c.Provenance,
		Explainability:          fmt.Sprintf("skill_score=%.2f, exp_score=%.2f", skillScore, expScore),
	}
}

// selectEvidence 挑选至多 EvidenceBullets 条证据：优先含量化指标的条目，
// 其次持续月数更长的（缺失按 0 处理），稳定排序保持原有行序
func (r *Ranker) selectEvidence(bullets []types.ExperienceBullet) []types.ExperienceBullet {
	limit := r.cfg.EvidenceBullets
	if limit <= 0 {
		limit = 3
	}

	sorted := make([]types.ExperienceBullet, len(bullets))
	copy(sorted, bullets)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].HasMetric != sorted[j].HasMetric {
			return sorted[i].HasMetric
		}
		return durationOrZero(sorted[i]) > durationOrZero(sorted[j])
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func durationOrZero(b types.ExperienceBullet) int {
	if b.DurationMonths == nil {
		return 0
	}
	return *b.DurationMonths
}
