package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resume-ranker/internal/tracing"
)

// 向量索引专用 tracer
var vectorTracer = otel.Tracer("resume-ranker/vectorstore")

var (
	// ErrDimensionMismatch 嵌入协作方返回了与索引不一致的向量维度。
	// 该错误只使当次 Add/Query 失败，绝不污染索引。
	ErrDimensionMismatch = errors.New("向量维度与索引不一致")
	// ErrInvalidTopK top_k 必须为正整数
	ErrInvalidTopK = errors.New("top_k 必须为正整数")
)

// SearchResult 一条最近邻查询结果
type SearchResult struct {
	// ID 写入时关联的标识
	ID string
	// Score 归一化向量的内积相似度，位于 [-1, 1]
	Score float32
	// Metadata 写入时关联的元数据
	Metadata map[string]interface{}
}

// Index 会话级的追加式内存向量索引。
//
// 对 L2 归一化后的向量做内积（即余弦）最近邻检索，写入顺序即索引位置。
// 读（Query）之间并发安全；写（Add）相对其他写和进行中的读串行化。
// 没有更新或删除路径，生命周期由持有它的会话管理。
type Index struct {
	mu       sync.RWMutex
	embedder TextEmbedder

	// dimension 索引接受的向量维度；构造时为 0 则由首次写入确定
	dimension int

	ids       []string
	vectors   [][]float64
	metadatas []map[string]interface{}
}

// NewIndex 创建向量索引。dimension 为 0 时以首次写入的向量维度为准。
func NewIndex(embedder TextEmbedder, dimension int) *Index {
	return &Index{embedder: embedder, dimension: dimension}
}

// Len 返回已写入的向量数
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Add 为 text 计算嵌入、L2 归一化后连同元数据追加到索引。
//
// 维度与索引不一致时返回 ErrDimensionMismatch 且索引保持原状，
// 不会追加半成品向量。
func (ix *Index) Add(ctx context.Context, id string, text string, metadata map[string]interface{}) error {
	ctx, span := vectorTracer.Start(ctx, "vectorstore.Add")
	defer span.End()
	span.SetAttributes(
		attribute.String("vector.id", tracing.SafeAttributeValue("vector.id", id, tracing.DefaultMaxLength)),
		attribute.String("vector.text", tracing.SafeResumeContent(text)),
	)

	vector, err := ix.embedOne(ctx, text)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeEmbedding)
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if err := ix.checkDimensionLocked(vector); err != nil {
		tracing.RecordErrorWithInfo(span, err, tracing.ErrorTypeVectorDB,
			attribute.Int("vector.index_dimension", ix.dimension),
			attribute.Int("vector.received_dimension", len(vector)))
		return err
	}
	if ix.dimension == 0 {
		// 首次写入确定索引维度
		ix.dimension = len(vector)
	}

	ix.ids = append(ix.ids, id)
	ix.vectors = append(ix.vectors, normalizeL2(vector))
	ix.metadatas = append(ix.metadatas, metadata)
	return nil
}

// Query 嵌入查询文本并返回至多 topK 条最近邻，按相似度降序。
//
// 相同分数按写入顺序稳定排列（先写入者在前）。索引为空时返回空序列
// 而不是错误。
func (ix *Index) Query(ctx context.Context, text string, topK int) ([]SearchResult, error) {
	ctx, span := vectorTracer.Start(ctx, "vectorstore.Query")
	defer span.End()
	span.SetAttributes(
		attribute.Int("vector.top_k", topK),
		attribute.String("vector.text", tracing.SafeResumeContent(text)),
	)

	if topK <= 0 {
		err := fmt.Errorf("%w: %d", ErrInvalidTopK, topK)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	vector, err := ix.embedOne(ctx, text)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeEmbedding)
		return nil, err
	}
	query := normalizeL2(vector)

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.vectors) == 0 {
		return []SearchResult{}, nil
	}
	if len(query) != ix.dimension {
		err := fmt.Errorf("%w: 查询向量 %d 维, 索引 %d 维", ErrDimensionMismatch, len(query), ix.dimension)
		tracing.RecordErrorWithInfo(span, err, tracing.ErrorTypeVectorDB,
			attribute.Int("vector.index_dimension", ix.dimension),
			attribute.Int("vector.query_dimension", len(query)))
		return nil, err
	}

	order := make([]int, len(ix.vectors))
	scores := make([]float32, len(ix.vectors))
	for i, v := range ix.vectors {
		order[i] = i
		scores[i] = float32(dot(query, v))
	}

	// 稳定排序：同分时先写入者在前
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if topK > len(order) {
		topK = len(order)
	}
	results := make([]SearchResult, 0, topK)
	for _, idx := range order[:topK] {
		results = append(results, SearchResult{
			ID:       ix.ids[idx],
			Score:    scores[idx],
			Metadata: ix.metadatas[idx],
		})
	}
	return results, nil
}

// embedOne 嵌入单段文本并校验协作方返回的数量
func (ix *Index) embedOne(ctx context.Context, text string) ([]float64, error) {
	embeddings, err := ix.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("嵌入文本失败: %w", err)
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("嵌入协作方返回 %d 个向量, 期望 1 个", len(embeddings))
	}
	return embeddings[0], nil
}

// checkDimensionLocked 校验向量维度；持有写锁时调用
func (ix *Index) checkDimensionLocked(vector []float64) error {
	if ix.dimension != 0 && len(vector) != ix.dimension {
		return fmt.Errorf("%w: 收到 %d 维, 期望 %d 维", ErrDimensionMismatch, len(vector), ix.dimension)
	}
	if len(vector) == 0 {
		return fmt.Errorf("%w: 收到空向量", ErrDimensionMismatch)
	}
	return nil
}

// normalizeL2 返回单位长度的副本；零向量原样返回（相似度恒为 0）
func normalizeL2(v []float64) []float64 {
	norm := math.Sqrt(dot(v, v))
	out := make([]float64, len(v))
	if norm == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// dot 内积
func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
