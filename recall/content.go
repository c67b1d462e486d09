package recall

import (
	"context"
	"strings"

	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/pipeline"
	"github.com/rushteam/winerec/pkg/utils"
)

// ContentRecall 是基于内容的召回源：召回类别命中用户偏好标签或偏好类别的酒款。
//
// 核心思想："用户喜欢某些类别，推荐同类别的其他酒款"
type ContentRecall struct {
	// UseTags 是否使用口味画像中的偏好标签，默认 true
	UseTags *bool
	// UseCategories 是否使用显式偏好类别，默认 true
	UseCategories *bool
}

func (r *ContentRecall) Name() string        { return "recall.content" }
func (r *ContentRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *ContentRecall) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func enabled(v *bool) bool { return v == nil || *v }

func (r *ContentRecall) Recall(_ context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil {
		return nil, nil
	}
	wanted := make(map[string]string)
	if enabled(r.UseTags) && rctx.Profile != nil {
		for _, t := range rctx.Profile.PreferredTags {
			wanted[strings.ToLower(t)] = "tag"
		}
	}
	if enabled(r.UseCategories) && rctx.Preferences != nil {
		for _, c := range rctx.Preferences.PreferredCategories {
			wanted[strings.ToLower(c)] = "category"
		}
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	var out []*core.Item
	for i := range rctx.Catalog {
		w := &rctx.Catalog[i]
		via, ok := wanted[strings.ToLower(w.Category)]
		if !ok {
			continue
		}
		it := core.NewItem(w)
		it.PutLabel("content_match", utils.Label{Value: via, Source: "recall.content"})
		out = append(out, it)
	}
	return out, nil
}
