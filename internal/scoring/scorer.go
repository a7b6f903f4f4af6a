package scoring

import (
	"math"
	"strings"

	"resume-ranker/internal/config"
	"resume-ranker/internal/types"
)

// Scorer 把提取出的技能与经历条目转换为两个 [0, 100] 的归一化分数。
// 两个打分函数都是纯函数，不持有共享状态。
type Scorer struct {
	cfg config.ScoringConfig
}

// NewScorer 用给定的打分配置创建 Scorer
func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// ExperienceScore 计算经历质量分。
//
// 每条经历按配置的权重计分（默认动词 0.4、指标 0.4、持续时间达到
// MinDurationMonths 再加 0.2），单条封顶 BulletCap，取所有条目的平均值
// 后换算为 0-100 并保留两位小数。空条目序列得 0 分。
func (s *Scorer) ExperienceScore(bullets []types.ExperienceBullet) float64 {
	if len(bullets) == 0 {
		return 0.0
	}

	total := 0.0
	for _, b := range bullets {
		score := 0.0
		if b.HasVerb {
			score += s.cfg.VerbWeight
		}
		if b.HasMetric {
			score += s.cfg.MetricWeight
		}
		if b.DurationMonths != nil && *b.DurationMonths >= s.cfg.MinDurationMonths {
			score += s.cfg.DurationWeight
		}
		total += math.Min(score, s.cfg.BulletCap)
	}

	return round2(total / float64(len(bullets)) * 100)
}

// SkillScore 计算技能匹配分：requiredSkills 中被候选人技能（大小写不敏感）
// 覆盖的比例，换算为 0-100 并保留两位小数。
//
// requiredSkills 为空是已定义的行为而非错误：岗位描述没有命中任何技能
// 关键词时技能信号为 0 分。
func (s *Scorer) SkillScore(candidateSkills, requiredSkills []string) float64 {
	if len(requiredSkills) == 0 {
		return 0.0
	}

	have := make(map[string]bool, len(candidateSkills))
	for _, skill := range candidateSkills {
		have[strings.ToLower(skill)] = true
	}

	matched := 0
	for _, required := range requiredSkills {
		if have[strings.ToLower(required)] {
			matched++
		}
	}

	return round2(float64(matched) / float64(len(requiredSkills)) * 100)
}

// round2 四舍五入到两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round2 对外暴露的两位小数取整，供排序器混合总分时复用
func Round2(v float64) float64 {
	return round2(v)
}
