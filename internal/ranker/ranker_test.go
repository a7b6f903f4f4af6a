package ranker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-ranker/internal/config"
	"resume-ranker/internal/parser"
	"resume-ranker/internal/scoring"
	"resume-ranker/internal/types"
)

func newTestRanker() *Ranker {
	skills := parser.NewSkillExtractor(parser.DefaultSkillVocabulary())
	scorer := scoring.NewScorer(config.ScoringConfig{
		VerbWeight:        0.4,
		MetricWeight:      0.4,
		DurationWeight:    0.2,
		MinDurationMonths: 6,
		BulletCap:         1.0,
	})
	return New(skills, scorer, config.RankerConfig{
		EvidenceBullets: 3,
		ScoreWorkers:    4,
	})
}

func intPtr(v int) *int { return &v }

func candidate(id string, skills []string, bullets []types.ExperienceBullet) types.CandidateProfile {
	return types.CandidateProfile{
		CandidateID: id,
		Skills:      skills,
		Bullets:     bullets,
		Provenance:  types.Provenance{SourceFile: id + ".pdf"},
	}
}

// TestRankEndToEnd 端到端场景：有经历有技能的候选人排在前面
func TestRankEndToEnd(t *testing.T) {
	r := newTestRanker()

	a := candidate("a", []string{"Python"}, []types.ExperienceBullet{
		{Text: "Improved latency by 30% using caching", HasVerb: true, HasMetric: true},
	})
	b := candidate("b", nil, nil)

	resp, err := r.Rank(context.Background(), []types.CandidateProfile{a, b},
		"Looking for a Python engineer to improve performance", 10, 0.5)
	require.NoError(t, err)

	assert.Equal(t, []string{"Python"}, resp.JobSkills, "岗位描述应只命中 Python")
	require.Len(t, resp.Results, 2)

	first := resp.Results[0]
	assert.Equal(t, "a", first.CandidateID, "候选人 A 应排第一")
	assert.Equal(t, 100.0, first.SkillMatchScore)
	assert.Equal(t, 80.0, first.ExperienceScore, "动词+指标无持续时间应为 80 分")
	assert.Equal(t, 90.0, first.OverallScore)
	assert.Equal(t, "skill_score=100.00, exp_score=80.00", first.Explainability)

	second := resp.Results[1]
	assert.Equal(t, 0.0, second.SkillMatchScore)
	assert.Equal(t, 0.0, second.ExperienceScore)
	assert.Equal(t, 0.0, second.OverallScore)
}

// TestDeriveRequirement 验证岗位需求派生使用共享词表并返回规范形式
func TestDeriveRequirement(t *testing.T) {
	r := newTestRanker()

	req := r.DeriveRequirement("Looking for python and docker expertise")
	assert.Equal(t, types.JobRequirement{RequiredSkills: []string{"Docker", "Python"}}, req)

	// 无技能关键词时需求集合为空
	req = r.DeriveRequirement("friendly team player wanted")
	assert.Empty(t, req.RequiredSkills)
}

// TestRankValidation 验证非法参数在打分开始前被拒绝
func TestRankValidation(t *testing.T) {
	r := newTestRanker()
	candidates := []types.CandidateProfile{candidate("a", nil, nil)}

	_, err := r.Rank(context.Background(), candidates, "jd", 10, -0.1)
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = r.Rank(context.Background(), candidates, "jd", 10, 1.5)
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = r.Rank(context.Background(), candidates, "jd", 0, 0.5)
	assert.ErrorIs(t, err, ErrInvalidTopK)

	_, err = r.Rank(context.Background(), candidates, "jd", -3, 0.5)
	assert.ErrorIs(t, err, ErrInvalidTopK)
}

// TestRankEmptyCandidates 验证空候选人列表返回空结果而不是错误
func TestRankEmptyCandidates(t *testing.T) {
	r := newTestRanker()

	resp, err := r.Rank(context.Background(), nil, "need python", 5, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Python"}, resp.JobSkills)
	assert.Empty(t, resp.Results)
}

// TestRankTopKTruncation 验证输出长度为 min(top_k, 候选人数)
func TestRankTopKTruncation(t *testing.T) {
	r := newTestRanker()

	var candidates []types.CandidateProfile
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		candidates = append(candidates, candidate(id, []string{"Python"}, nil))
	}

	resp, err := r.Rank(context.Background(), candidates, "python", 3, 0.5)
	require.NoError(t, err)
	assert.Len(t, resp.Results, 3)

	// top_k 超过候选人数时返回全部
	resp, err = r.Rank(context.Background(), candidates, "python", 50, 0.5)
	require.NoError(t, err)
	assert.Len(t, resp.Results, 5)
}

// TestRankSortedAndStable 验证按总分降序且同分保持摄取顺序
func TestRankSortedAndStable(t *testing.T) {
	r := newTestRanker()

	strong := []types.ExperienceBullet{{HasVerb: true, HasMetric: true}}
	candidates := []types.CandidateProfile{
		candidate("tie-1", nil, nil),
		candidate("winner", []string{"Python"}, strong),
		candidate("tie-2", nil, nil),
		candidate("tie-3", nil, nil),
	}

	resp, err := r.Rank(context.Background(), candidates, "python needed", 10, 0.5)
	require.NoError(t, err)
	require.Len(t, resp.Results, 4)

	for i := 1; i < len(resp.Results); i++ {
		assert.LessOrEqual(t, resp.Results[i].OverallScore, resp.Results[i-1].OverallScore,
			"结果必须按总分非递增排列")
	}

	assert.Equal(t, "winner", resp.Results[0].CandidateID)
	assert.Equal(t, "tie-1", resp.Results[1].CandidateID, "同分候选人保持摄取顺序")
	assert.Equal(t, "tie-2", resp.Results[2].CandidateID)
	assert.Equal(t, "tie-3", resp.Results[3].CandidateID)
}

// TestRankWeightMonotonic 验证技能分占优的候选人总分随权重单调不减
func TestRankWeightMonotonic(t *testing.T) {
	r := newTestRanker()

	// skill_score=100 > exp_score=0
	candidates := []types.CandidateProfile{candidate("a", []string{"Python"}, nil)}

	prev := -1.0
	for _, w := range []float64{0.0, 0.25, 0.5, 0.75, 1.0} {
		resp, err := r.Rank(context.Background(), candidates, "python", 1, w)
		require.NoError(t, err)
		require.Len(t, resp.Results, 1)
		assert.GreaterOrEqual(t, resp.Results[0].OverallScore, prev,
			"权重 %v 下总分不应下降", w)
		prev = resp.Results[0].OverallScore
	}
}

// TestRankNoJobSkills 验证岗位描述无技能关键词时技能分为 0 而不报错
func TestRankNoJobSkills(t *testing.T) {
	r := newTestRanker()

	candidates := []types.CandidateProfile{
		candidate("a", []string{"Python"}, []types.ExperienceBullet{{HasVerb: true}}),
	}

	resp, err := r.Rank(context.Background(), candidates, "we want a nice person", 5, 0.5)
	require.NoError(t, err)
	assert.Empty(t, resp.JobSkills)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 0.0, resp.Results[0].SkillMatchScore)
	assert.Equal(t, 40.0, resp.Results[0].ExperienceScore)
	assert.Equal(t, 20.0, resp.Results[0].OverallScore)
}

// TestSelectEvidence 验证证据挑选：指标优先，其次持续月数，至多三条
func TestSelectEvidence(t *testing.T) {
	r := newTestRanker()

	bullets := []types.ExperienceBullet{
		{Text: "plain first", HasVerb: true},
		{Text: "metric short", HasMetric: true, DurationMonths: intPtr(2)},
		{Text: "metric long", HasMetric: true, DurationMonths: intPtr(24)},
		{Text: "plain second", HasVerb: true},
		{Text: "metric no duration", HasMetric: true},
	}

	evidence := r.selectEvidence(bullets)
	require.Len(t, evidence, 3)
	assert.Equal(t, "metric long", evidence[0].Text, "指标+最长持续时间应排第一")
	assert.Equal(t, "metric short", evidence[1].Text)
	assert.Equal(t, "metric no duration", evidence[2].Text, "持续月数缺失按 0 处理")
}

// TestRankMatchedSkillsIsFullSet 验证证据中的技能是候选人完整集合，不按需求过滤
func TestRankMatchedSkillsIsFullSet(t *testing.T) {
	r := newTestRanker()

	candidates := []types.CandidateProfile{
		candidate("a", []string{"Docker", "Python", "React"}, nil),
	}

	resp, err := r.Rank(context.Background(), candidates, "python", 1, 0.5)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, []string{"Docker", "Python", "React"}, resp.Results[0].MatchedSkills)
}
