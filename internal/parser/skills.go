package parser

import (
	"sort"
	"strings"
)

// SkillExtractor 在一段文本中检测闭合词表内的技能。
// 相同输入永远产生相同输出，匹配大小写不敏感。
type SkillExtractor struct {
	vocab *SkillVocabulary
}

// NewSkillExtractor 创建技能提取器
func NewSkillExtractor(vocab *SkillVocabulary) *SkillExtractor {
	return &SkillExtractor{vocab: vocab}
}

// Extract 返回文本中命中的规范技能名，排序去重。
// 词表项做大小写不敏感的子串匹配；之后按顺序应用别名规则表。
func (e *SkillExtractor) Extract(text string) []string {
	lowered := strings.ToLower(text)

	found := make(map[string]bool)
	for i, skillLower := range e.vocab.lowered {
		if strings.Contains(lowered, skillLower) {
			found[e.vocab.skills[i]] = true
		}
	}

	for _, rule := range e.vocab.aliases {
		if strings.Contains(lowered, rule.Token) && !found[rule.Canonical] {
			found[rule.Canonical] = true
		}
	}

	skills := make([]string, 0, len(found))
	for s := range found {
		skills = append(skills, s)
	}
	sort.Strings(skills)
	return skills
}

// ExtractUnion 对多段文本提取技能并求并集，结果排序去重
func (e *SkillExtractor) ExtractUnion(texts ...string) []string {
	union := make(map[string]bool)
	for _, text := range texts {
		for _, s := range e.Extract(text) {
			union[s] = true
		}
	}

	skills := make([]string, 0, len(union))
	for s := range union {
		skills = append(skills, s)
	}
	sort.Strings(skills)
	return skills
}
