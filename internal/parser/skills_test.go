package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExtractCaseInsensitive 验证技能提取大小写不敏感且确定
func TestExtractCaseInsensitive(t *testing.T) {
	extractor := NewSkillExtractor(DefaultSkillVocabulary())

	lower := extractor.Extract("Python developer with docker and aws")
	upper := extractor.Extract("PYTHON DEVELOPER WITH DOCKER AND AWS")

	assert.Equal(t, lower, upper, "大小写不同的相同文本必须产生相同结果")
	assert.Equal(t, []string{"AWS", "Docker", "Python"}, lower, "结果应为排序后的规范形式")
}

// TestExtractDeterministic 验证重复调用结果一致
func TestExtractDeterministic(t *testing.T) {
	extractor := NewSkillExtractor(DefaultSkillVocabulary())
	text := "Kubernetes, TensorFlow, SQL and React experience"

	first := extractor.Extract(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, extractor.Extract(text), "第 %d 次调用结果应与首次一致", i)
	}
}

// TestExtractCanonicalForms 验证输出为词表中的规范展示形式
func TestExtractCanonicalForms(t *testing.T) {
	extractor := NewSkillExtractor(DefaultSkillVocabulary())

	skills := extractor.Extract("worked with postgres, nodE.js and graphql")
	assert.Equal(t, []string{"GraphQL", "Node.js", "Postgres"}, skills)
}

// TestExtractEmptyText 验证空文本返回空集合
func TestExtractEmptyText(t *testing.T) {
	extractor := NewSkillExtractor(DefaultSkillVocabulary())
	assert.Empty(t, extractor.Extract(""), "空文本不应产生任何技能")
	assert.Empty(t, extractor.Extract("nothing relevant here"), "无关文本不应产生任何技能")
}

// TestAliasRulesIndividually 逐条验证别名规则表
func TestAliasRulesIndividually(t *testing.T) {
	vocab := DefaultSkillVocabulary()
	extractor := NewSkillExtractor(vocab)

	require.Len(t, vocab.Aliases(), 1, "默认别名规则表应只有一条规则")
	rule := vocab.Aliases()[0]
	assert.Equal(t, "torch-implies-pytorch", rule.Name)

	// 仅出现别名 token 时补充规范技能名
	skills := extractor.Extract("trained models in torch")
	assert.Contains(t, skills, "PyTorch", "torch 应触发 PyTorch 别名规则")

	// 规范形式已命中时规则不产生重复
	skills = extractor.Extract("pytorch and torch")
	count := 0
	for _, s := range skills {
		if s == "PyTorch" {
			count++
		}
	}
	assert.Equal(t, 1, count, "PyTorch 不应重复出现")
}

// TestExtractUnion 验证跨章节并集提取
func TestExtractUnion(t *testing.T) {
	extractor := NewSkillExtractor(DefaultSkillVocabulary())

	skills := extractor.ExtractUnion("Python here", "docker there", "python again")
	assert.Equal(t, []string{"Docker", "Python"}, skills, "并集应排序去重")
}
