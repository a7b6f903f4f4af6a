package parser

import (
	"fmt"
	"regexp"
	"strings"

	"resume-ranker/internal/types"
)

// HeadingRule 一条章节标题识别规则，规则表中的每一项都可以单独测试
type HeadingRule struct {
	// Name 规则名，用于测试和日志
	Name string
	// Pattern 锚定行首的标题模式
	Pattern *regexp.Regexp
}

// sectionHeadingRules 章节标题规则表，按顺序匹配。
// 任意一条命中即构成章节边界；更具体的标题写法放在前面。
var sectionHeadingRules = []HeadingRule{
	{"professional-experience", regexp.MustCompile(`(?i)^professional experience\b`)},
	{"work-experience", regexp.MustCompile(`(?i)^work experience\b`)},
	{"experience", regexp.MustCompile(`(?i)^experience\b`)},
	{"projects", regexp.MustCompile(`(?i)^projects\b`)},
	{"skills", regexp.MustCompile(`(?i)^skills\b`)},
	{"education", regexp.MustCompile(`(?i)^education\b`)},
	{"summary", regexp.MustCompile(`(?i)^summary\b`)},
	{"certifications", regexp.MustCompile(`(?i)^certifications\b`)},
}

// sectionKeyLookup 标题行到章节键的归并表，按顺序做子串匹配。
// "experience" 排在最前，使 "work experience" 等变体统一归并为 experience 键。
var sectionKeyLookup = []struct {
	Keyword string
	Key     types.SectionKey
}{
	{"experience", types.SectionExperience},
	{"projects", types.SectionProjects},
	{"skills", types.SectionSkills},
	{"education", types.SectionEducation},
	{"summary", types.SectionSummary},
	{"certifications", types.SectionCertifications},
}

// Section 按文档顺序输出的一个章节
type Section struct {
	Key  types.SectionKey
	Text string
}

// SectionSplitter 基于标题启发式把原始文本切分为带标签的章节。
// 输入可能带有 OCR 噪声，换行已统一为 \n 或 \r\n。
type SectionSplitter struct{}

// NewSectionSplitter 创建章节切分器
func NewSectionSplitter() *SectionSplitter {
	return &SectionSplitter{}
}

// Split 把原始文本切分为按文档顺序排列的章节序列。
//
// 保证输入的每个字符都恰好落在一个章节里：找不到任何标题时返回单个
// body 章节；首个标题之前的前导文本、以及标题行无法归并到固定词表的
// 章节，使用合成键 section_<n>；重复出现的章节键同样降级为合成键，
// 避免覆盖造成文本丢失。该方法对任何输入都不会失败。
func (s *SectionSplitter) Split(rawText string) []Section {
	text := strings.ReplaceAll(rawText, "\r\n", "\n")

	// 扫描每一行，记录命中标题规则的行起始偏移
	var boundaries []int
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		for _, rule := range sectionHeadingRules {
			if rule.Pattern.MatchString(line) {
				boundaries = append(boundaries, offset)
				break
			}
		}
		offset += len(line) + 1
	}

	if len(boundaries) == 0 {
		// 回退：全文作为 body 章节
		return []Section{{Key: types.SectionBody, Text: text}}
	}

	// 首个标题之前的前导文本不能丢
	if boundaries[0] != 0 {
		boundaries = append([]int{0}, boundaries...)
	}
	boundaries = append(boundaries, len(text))

	seen := make(map[types.SectionKey]bool)
	sections := make([]Section, 0, len(boundaries)-1)
	for i := 0; i < len(boundaries)-1; i++ {
		span := text[boundaries[i]:boundaries[i+1]]

		key := resolveSectionKey(span, i)
		if seen[key] {
			// 重复标题降级为合成键，保持每个字符恰好属于一个章节
			key = types.SectionKey(fmt.Sprintf("section_%d", i))
		}
		seen[key] = true

		sections = append(sections, Section{Key: key, Text: span})
	}

	return sections
}

// SectionsMap 把有序章节转换为 CandidateProfile 需要的映射形式
func SectionsMap(sections []Section) map[types.SectionKey]string {
	m := make(map[types.SectionKey]string, len(sections))
	for _, sec := range sections {
		m[sec.Key] = sec.Text
	}
	return m
}

// resolveSectionKey 根据片段首行归并章节键；无法归并时使用合成键
func resolveSectionKey(span string, index int) types.SectionKey {
	firstLine := span
	if idx := strings.IndexByte(span, '\n'); idx >= 0 {
		firstLine = span[:idx]
	}
	firstLine = strings.ToLower(strings.TrimSpace(firstLine))

	for _, entry := range sectionKeyLookup {
		if strings.Contains(firstLine, entry.Keyword) {
			return entry.Key
		}
	}
	return types.SectionKey(fmt.Sprintf("section_%d", index))
}
