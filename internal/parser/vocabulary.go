package parser

import "strings"

// defaultSkills 闭合的技能词表，每项即规范展示形式。
// 匹配时大小写不敏感；按需扩充。
var defaultSkills = []string{
	"Python", "Java", "C++", "C#", "PyTorch", "TensorFlow", "Keras", "scikit-learn",
	"Docker", "Kubernetes", "AWS", "GCP", "Azure", "SQL", "Postgres", "MySQL",
	"NLP", "Computer Vision", "OpenCV", "React", "Node.js", "JavaScript", "TypeScript",
	"Git", "Linux", "REST", "GraphQL", "FastAPI", "Flask",
}

// AliasRule 一条别名规则：文本含有 Token 且 Canonical 未被常规匹配命中时，
// 视为命中 Canonical。这是可枚举的例外表，不做通用模糊匹配。
type AliasRule struct {
	// Name 规则名，用于测试和日志
	Name string
	// Token 触发别名的小写子串
	Token string
	// Canonical 规则命中时补充的规范技能名
	Canonical string
}

// defaultAliasRules 默认别名规则表
var defaultAliasRules = []AliasRule{
	{Name: "torch-implies-pytorch", Token: "torch", Canonical: "PyTorch"},
}

// SkillVocabulary 封装技能词表与别名规则。
// 候选人侧与岗位描述侧必须共用同一实例，保证技能匹配分有意义。
type SkillVocabulary struct {
	skills  []string
	lowered []string // 与 skills 下标对应的小写形式，构造时算好
	aliases []AliasRule
}

// NewSkillVocabulary 用给定词表和别名规则构造词汇表
func NewSkillVocabulary(skills []string, aliases []AliasRule) *SkillVocabulary {
	lowered := make([]string, len(skills))
	for i, s := range skills {
		lowered[i] = strings.ToLower(s)
	}
	return &SkillVocabulary{skills: skills, lowered: lowered, aliases: aliases}
}

// DefaultSkillVocabulary 返回内置词表和别名规则的词汇表
func DefaultSkillVocabulary() *SkillVocabulary {
	return NewSkillVocabulary(defaultSkills, defaultAliasRules)
}

// Skills 返回词表的规范展示形式（只读）
func (v *SkillVocabulary) Skills() []string {
	return v.skills
}

// Aliases 返回别名规则表（只读）
func (v *SkillVocabulary) Aliases() []AliasRule {
	return v.aliases
}
