package recall

import (
	"context"

	"github.com/rushteam/winerec/core"
)

// Source 是一路召回：从会话上下文（目录、行为日志、请求参数）生成候选酒款。
// 每个召回 Node 同时实现 Source，可以直接放进 Fanout 并发合并。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
