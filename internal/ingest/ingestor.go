package ingest

import (
	"context"

	"github.com/google/uuid"

	"resume-ranker/internal/config"
	"resume-ranker/internal/logger"
	"resume-ranker/internal/parser"
	"resume-ranker/internal/types"
	"resume-ranker/internal/vectorstore"
)

// Ingestor 把文本提取协作方返回的原始文本加工成 CandidateProfile。
//
// 摄取本身是纯转换，不做 I/O；配置了相似度索引时会在摄取后把全文
// 追加进索引，索引失败只降级该候选人的检索信号，不影响画像本身。
type Ingestor struct {
	splitter *parser.SectionSplitter
	skills   *parser.SkillExtractor
	bullets  *parser.BulletExtractor

	// index 可选的相似度索引
	index *vectorstore.Index
}

// Option Ingestor 的配置选项
type Option func(*Ingestor)

// WithSimilarityIndex 摄取时把候选人全文写入相似度索引
func WithSimilarityIndex(index *vectorstore.Index) Option {
	return func(ing *Ingestor) {
		ing.index = index
	}
}

// WithSkillExtractor 替换默认的技能提取器。
// 排序侧必须使用同一实例，保证两侧词表一致。
func WithSkillExtractor(skills *parser.SkillExtractor) Option {
	return func(ing *Ingestor) {
		ing.skills = skills
	}
}

// New 创建 Ingestor
func New(cfg *config.Config, opts ...Option) *Ingestor {
	ing := &Ingestor{
		splitter: parser.NewSectionSplitter(),
		skills:   parser.NewSkillExtractor(parser.DefaultSkillVocabulary()),
		bullets:  parser.NewBulletExtractor(cfg.Parser.MaxBulletLength),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Ingest 把原始文本加工成候选人画像。
//
// 空文本是合法输入（文本提取失败时上游返回空串），产生只含 body 章节、
// 无技能无经历条目的画像，绝不报错。章节按文档顺序逐个提取技能并集与
// 经历条目，保证条目顺序与原文一致。
func (ing *Ingestor) Ingest(ctx context.Context, rawText string, prov types.Provenance) (*types.CandidateProfile, error) {
	sections := ing.splitter.Split(rawText)

	texts := make([]string, len(sections))
	var bullets []types.ExperienceBullet
	for i, sec := range sections {
		texts[i] = sec.Text
		bullets = append(bullets, ing.bullets.Extract(sec.Text)...)
	}
	skills := ing.skills.ExtractUnion(texts...)

	profile := &types.CandidateProfile{
		CandidateID: uuid.NewString(),
		Name:        nil,
		FullText:    rawText,
		Sections:    parser.SectionsMap(sections),
		Skills:      skills,
		Bullets:     bullets,
		Provenance:  prov,
	}

	if ing.index != nil {
		metadata := map[string]interface{}{
			"candidate_id": profile.CandidateID,
			"file":         prov.SourceFile,
		}
		if err := ing.index.Add(ctx, profile.CandidateID, rawText, metadata); err != nil {
			// 索引失败只损失该候选人的语义检索信号，画像照常返回
			logger.Ctx(ctx).Warn().
				Err(err).
				Str("candidate_id", profile.CandidateID).
				Str("file", prov.SourceFile).
				Msg("候选人写入相似度索引失败")
		}
	}

	logger.Ctx(ctx).Debug().
		Str("candidate_id", profile.CandidateID).
		Int("sections", len(sections)).
		Int("skills", len(skills)).
		Int("bullets", len(bullets)).
		Msg("候选人摄取完成")

	return profile, nil
}
