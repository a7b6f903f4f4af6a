package vectorstore

import "context"

// TextEmbedder 文本向量化协作方接口。
// 固定模型版本下假定结果确定：相同输入产生相同向量。
type TextEmbedder interface {
	// EmbedStrings 为每段文本返回一个固定维度的向量
	EmbedStrings(ctx context.Context, texts []string) ([][]float64, error)
}
