package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-ranker/internal/config"
	"resume-ranker/internal/parser"
	"resume-ranker/internal/types"
	"resume-ranker/internal/vectorstore"
)

const sampleResume = `Jane Smith
jane@example.com

Experience
- Led migration to Kubernetes Jan 2020 - Mar 2021
- Improved API latency by 40%

Skills
Python, Docker, PostgreSQL

Education
M.S. Computer Science
`

// TestIngestBuildsProfile 验证完整画像的组装
func TestIngestBuildsProfile(t *testing.T) {
	cfg := &config.Config{}
	cfg.Parser.MaxBulletLength = 400
	ing := New(cfg)

	prov := types.Provenance{SourceFile: "jane.pdf", Pages: []int{1}}
	profile, err := ing.Ingest(context.Background(), sampleResume, prov)
	require.NoError(t, err)

	assert.NotEmpty(t, profile.CandidateID, "摄取时必须分配候选人 ID")
	assert.Nil(t, profile.Name, "未做姓名提取时 Name 保持为 nil")
	assert.Equal(t, sampleResume, profile.FullText, "全文必须原样保留")
	assert.Equal(t, prov, profile.Provenance)

	assert.Contains(t, profile.Sections, types.SectionExperience)
	assert.Contains(t, profile.Sections, types.SectionSkills)
	assert.Contains(t, profile.Sections, types.SectionEducation)

	// Kubernetes 来自 experience 章节，SQL 由 "PostgreSQL" 的子串匹配带入
	assert.Equal(t, []string{"Docker", "Kubernetes", "Postgres", "Python", "SQL"}, profile.Skills,
		"技能应为排序后的规范形式")

	require.Len(t, profile.Bullets, 2)
	assert.Contains(t, profile.Bullets[0].Text, "Led migration", "经历条目应保持文档顺序")
	require.NotNil(t, profile.Bullets[0].DurationMonths)
	assert.Equal(t, 14, *profile.Bullets[0].DurationMonths)
	assert.True(t, profile.Bullets[1].HasMetric)
}

// TestIngestEmptyText 验证空文本产生仅含 body 章节的画像而不报错
func TestIngestEmptyText(t *testing.T) {
	cfg := &config.Config{}
	cfg.Parser.MaxBulletLength = 400
	ing := New(cfg)

	profile, err := ing.Ingest(context.Background(), "", types.Provenance{SourceFile: "broken.pdf"})
	require.NoError(t, err, "空文本是合法输入，绝不报错")

	assert.Contains(t, profile.Sections, types.SectionBody)
	assert.Len(t, profile.Sections, 1)
	assert.Empty(t, profile.Skills)
	assert.Empty(t, profile.Bullets)
}

// TestIngestUniqueIDs 验证每次摄取分配不同的候选人 ID
func TestIngestUniqueIDs(t *testing.T) {
	cfg := &config.Config{}
	cfg.Parser.MaxBulletLength = 400
	ing := New(cfg)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		profile, err := ing.Ingest(context.Background(), "some text", types.Provenance{})
		require.NoError(t, err)
		assert.False(t, seen[profile.CandidateID], "候选人 ID 不应重复")
		seen[profile.CandidateID] = true
	}
}

// TestIngestWithCustomSkillExtractor 验证注入的技能提取器替换默认词表
func TestIngestWithCustomSkillExtractor(t *testing.T) {
	cfg := &config.Config{}
	cfg.Parser.MaxBulletLength = 400

	custom := parser.NewSkillExtractor(parser.NewSkillVocabulary([]string{"Haskell"}, nil))
	ing := New(cfg, WithSkillExtractor(custom))

	profile, err := ing.Ingest(context.Background(), "Haskell and Python developer", types.Provenance{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Haskell"}, profile.Skills,
		"注入的词表只认 Haskell，默认词表中的 Python 不应出现")
}

// stubEmbedder 测试用嵌入器
type stubEmbedder struct{ dim int }

func (s *stubEmbedder) EmbedStrings(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		v := make([]float64, s.dim)
		v[0] = 1
		out[i] = v
	}
	return out, nil
}

// TestIngestWithSimilarityIndex 验证配置索引后摄取会写入候选人全文
func TestIngestWithSimilarityIndex(t *testing.T) {
	cfg := &config.Config{}
	cfg.Parser.MaxBulletLength = 400

	index := vectorstore.NewIndex(&stubEmbedder{dim: 4}, 0)
	ing := New(cfg, WithSimilarityIndex(index))

	profile, err := ing.Ingest(context.Background(), sampleResume, types.Provenance{SourceFile: "jane.pdf"})
	require.NoError(t, err)
	require.Equal(t, 1, index.Len(), "摄取后索引应包含该候选人")

	results, err := index.Query(context.Background(), "anything", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, profile.CandidateID, results[0].ID)
	assert.Equal(t, "jane.pdf", results[0].Metadata["file"])
}
