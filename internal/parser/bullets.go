package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"resume-ranker/internal/logger"
	"resume-ranker/internal/types"
)

var (
	// ErrNoDateRange 行内没有出现日期区间模式
	ErrNoDateRange = errors.New("行内未找到日期区间")
	// ErrUnparsableDateRange 日期区间模式命中但无法解析为有效日期
	ErrUnparsableDateRange = errors.New("日期区间无法解析")
)

// PatternRule 一条命名的正则规则，规则表中的每一项都可以单独测试
type PatternRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// achievementVerbRules 成果动词规则表，一条规则覆盖一个动词及其屈折形式
var achievementVerbRules = []PatternRule{
	{"design", regexp.MustCompile(`(?i)\b(design|designed)\b`)},
	{"develop", regexp.MustCompile(`(?i)\b(develop|developed)\b`)},
	{"implement", regexp.MustCompile(`(?i)\bimplemented\b`)},
	{"build", regexp.MustCompile(`(?i)\bbuilt\b`)},
	{"improve", regexp.MustCompile(`(?i)\bimproved\b`)},
	{"optimize", regexp.MustCompile(`(?i)\boptimized\b`)},
	{"lead", regexp.MustCompile(`(?i)\bled\b`)},
	{"deploy", regexp.MustCompile(`(?i)\bdeployed\b`)},
	{"ship", regexp.MustCompile(`(?i)\bship\b`)},
	{"launch", regexp.MustCompile(`(?i)\blaunched\b`)},
	{"manage", regexp.MustCompile(`(?i)\bmanaged\b`)},
	{"create", regexp.MustCompile(`(?i)\bcreated\b`)},
}

// metricRules 量化指标规则表
var metricRules = []PatternRule{
	{"percentage", regexp.MustCompile(`\d+(\.\d+)?%`)},
	{"multiplier", regexp.MustCompile(`(?i)\d+\s?x\b`)},
	{"large-number", regexp.MustCompile(`\b\d{2,}\b`)},
	{"decimal", regexp.MustCompile(`\d+\.\d+`)},
	{"reduced", regexp.MustCompile(`(?i)\breduced\b`)},
	{"improved", regexp.MustCompile(`(?i)\bimproved\b`)},
}

// numberedListPattern 形如 "1." 的编号列表标记
var numberedListPattern = regexp.MustCompile(`^\d+\.`)

// dateRangePattern 两个"月份名+年份"之间以连字符、长破折号或 to 连接的区间
var dateRangePattern = regexp.MustCompile(
	`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s*(\d{2,4})\s*(?:-|–|—|to)\s*(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s*(\d{2,4})`)

// monthLookup 月份名前缀到月序号的映射
var monthLookup = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// BulletExtractor 从文本块中提取经历条目。
// 通常作用于 experience/projects 章节，但对任意章节都可调用。
type BulletExtractor struct {
	// maxLineLength 非列表行参与动词/指标判定的长度上限
	maxLineLength int
}

// NewBulletExtractor 创建经历条目提取器
func NewBulletExtractor(maxLineLength int) *BulletExtractor {
	if maxLineLength <= 0 {
		maxLineLength = 400
	}
	return &BulletExtractor{maxLineLength: maxLineLength}
}

// Extract 按行提取经历条目，保持行序，跳过空行。
//
// 一行被判定为经历条目的条件：以列表标记（"-" 或 "N."）开头，或长度低于
// 上限且命中动词/指标规则表。日期区间解析失败不会中断提取，对应条目的
// DurationMonths 保持为 nil。
func (e *BulletExtractor) Extract(text string) []types.ExperienceBullet {
	var bullets []types.ExperienceBullet

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		hasVerb := matchesAny(achievementVerbRules, line)
		hasMetric := matchesAny(metricRules, line)

		isListItem := strings.HasPrefix(line, "-") || numberedListPattern.MatchString(line)
		if !isListItem && !(len(line) < e.maxLineLength && (hasVerb || hasMetric)) {
			continue
		}

		bullet := types.ExperienceBullet{
			Text:      line,
			HasVerb:   hasVerb,
			HasMetric: hasMetric,
		}

		months, err := parseDateRangeMonths(line)
		switch {
		case err == nil:
			bullet.DurationMonths = &months
		case errors.Is(err, ErrUnparsableDateRange):
			// 区间命中但解析失败：条目照常输出，仅记录调试日志
			logger.Debug().Str("line", line).Msg("日期区间解析失败，持续月数保持为空")
		}

		bullets = append(bullets, bullet)
	}

	return bullets
}

// matchesAny 判断某行是否命中规则表中的任意一条
func matchesAny(rules []PatternRule, line string) bool {
	for _, rule := range rules {
		if rule.Pattern.MatchString(line) {
			return true
		}
	}
	return false
}

// parseDateRangeMonths 在行内查找日期区间并计算持续月数（向下取整的整月差）。
// 未找到区间返回 ErrNoDateRange；区间命中但日期无效返回 ErrUnparsableDateRange。
func parseDateRangeMonths(line string) (int, error) {
	m := dateRangePattern.FindStringSubmatch(line)
	if m == nil {
		return 0, ErrNoDateRange
	}

	startYear, err := parseYear(m[2])
	if err != nil {
		return 0, ErrUnparsableDateRange
	}
	endYear, err := parseYear(m[4])
	if err != nil {
		return 0, ErrUnparsableDateRange
	}

	startMonth := monthLookup[strings.ToLower(m[1])]
	endMonth := monthLookup[strings.ToLower(m[3])]

	months := (endYear-startYear)*12 + (endMonth - startMonth)
	if months < 0 {
		months = -months
	}
	return months, nil
}

// parseYear 解析 2 位或 4 位年份；2 位年份按 00-68 -> 20xx、69-99 -> 19xx 展开。
// 3 位数字不是合理的年份写法，视为解析失败。
func parseYear(token string) (int, error) {
	year, err := strconv.Atoi(token)
	if err != nil {
		return 0, err
	}
	switch len(token) {
	case 4:
		return year, nil
	case 2:
		if year < 69 {
			return 2000 + year, nil
		}
		return 1900 + year, nil
	default:
		return 0, ErrUnparsableDateRange
	}
}
