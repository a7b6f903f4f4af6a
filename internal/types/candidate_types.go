package types

// SectionKey 表示简历章节的键
type SectionKey string

const (
	// SectionExperience 工作经历章节（"work experience" 等变体统一归并到此键）
	SectionExperience SectionKey = "experience"
	// SectionProjects 项目经历章节
	SectionProjects SectionKey = "projects"
	// SectionSkills 技能章节
	SectionSkills SectionKey = "skills"
	// SectionEducation 教育经历章节
	SectionEducation SectionKey = "education"
	// SectionSummary 个人总结章节
	SectionSummary SectionKey = "summary"
	// SectionCertifications 证书章节
	SectionCertifications SectionKey = "certifications"
	// SectionBody 未识别出任何标题时的全文回退章节
	SectionBody SectionKey = "body"
)

// Provenance 描述候选人文档的来源信息，仅用于展示和证据溯源，不参与打分
type Provenance struct {
	SourceFile string `json:"source_file"`
	Pages      []int  `json:"pages,omitempty"`
}

// ExperienceBullet 表示一条被识别为经历/成果描述的文本行
type ExperienceBullet struct {
	// Text 原始行文本
	Text string `json:"text"`
	// HasVerb 是否匹配到成果动词模式
	HasVerb bool `json:"has_verb"`
	// HasMetric 是否匹配到量化指标模式
	HasMetric bool `json:"has_metric"`
	// DurationMonths 从行内日期区间估算的持续月数；未找到可解析的区间时为 nil，
	// 绝不猜测默认值
	DurationMonths *int `json:"duration_months"`
}

// CandidateProfile 一份已摄取文档对应的候选人画像
type CandidateProfile struct {
	// CandidateID 摄取时分配的不透明唯一标识，创建后不可变
	CandidateID string `json:"candidate_id"`

	// Name 可选的展示名称；未做姓名提取时保持为 nil
	Name *string `json:"name"`

	// FullText 文本提取协作方返回的完整原始文本，设置后不可变
	FullText string `json:"full_text"`

	// Sections 章节键到原文片段的映射。各片段互不重叠，按文档顺序拼接后
	// 覆盖全部输入字符（含标题行）
	Sections map[SectionKey]string `json:"sections"`

	// Skills 全文范围内识别出的规范化技能名集合，已排序去重
	Skills []string `json:"skills"`

	// Bullets 按文档顺序排列的经历条目
	Bullets []ExperienceBullet `json:"bullets"`

	// Provenance 来源元数据
	Provenance Provenance `json:"provenance"`
}

// JobRequirement 从一次排序请求的岗位描述中派生的需求集合
type JobRequirement struct {
	// RequiredSkills 岗位描述中检测到的规范化技能名，与候选人技能共用同一词表
	RequiredSkills []string `json:"required_skills"`
}

// RankedResult 单个候选人在一次排序请求中的结果，不做持久化
type RankedResult struct {
	CandidateID string  `json:"candidate_id"`
	Name        *string `json:"name"`

	// 三个分数均位于 [0, 100]
	OverallScore    float64 `json:"overall_score"`
	SkillMatchScore float64 `json:"skill_match_score"`
	ExperienceScore float64 `json:"experience_score"`

	// MatchedSkills 候选人的完整技能集合（不按岗位需求过滤），作为证据展示
	MatchedSkills []string `json:"matched_skills"`

	// DemonstratedExperiences 挑选出的证据条目（至多 EvidenceBullets 条）
	DemonstratedExperiences []ExperienceBullet `json:"demonstrated_experiences"`

	Provenance Provenance `json:"provenance"`

	// Explainability 对两个子分数的简短可读摘要
	Explainability string `json:"explainability"`
}

// RankResponse 一次排序请求的完整结果
type RankResponse struct {
	// JobSkills 岗位描述中检测到的技能（即 JobRequirement.RequiredSkills）
	JobSkills []string `json:"job_skills"`
	// Results 按 OverallScore 降序排列并截断到 top_k 的结果
	Results []RankedResult `json:"results"`
}
