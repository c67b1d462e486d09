package recall

import (
	"context"

	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/pipeline"
)

// CatalogRecall 召回整个目录快照，后续由 Filter / Rank 收敛。
// 目录规模在单会话内是有限的，全量召回即可。
type CatalogRecall struct{}

func (r *CatalogRecall) Name() string        { return "recall.catalog" }
func (r *CatalogRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *CatalogRecall) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *CatalogRecall) Recall(_ context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil {
		return nil, nil
	}
	return core.NewItems(rctx.Catalog), nil
}
