package core

import (
	"time"

	"github.com/rushteam/winerec/pkg/utils"
)

// RecommendContext 承载一次查询所需的会话状态快照，贯穿整个 Pipeline 透传。
// Node 只能读取其中的状态，不允许修改画像、偏好或行为日志。
type RecommendContext struct {
	SessionID string
	Scene     string // personalized / similar / trending / seasonal / pairing / 自定义视图名

	// Catalog 是当前会话的目录快照
	Catalog []Wine

	Profile      *TasteProfile
	Preferences  *PreferenceSet
	Interactions []InteractionRecord

	// Now 是查询时刻，用于时间窗口与季节计算
	Now time.Time

	// Labels 是请求级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级参数，例如 item_id、meal
	Params map[string]any
}

// Param 读取字符串类型的请求参数。
func (rctx *RecommendContext) Param(key string) string {
	if rctx == nil || rctx.Params == nil {
		return ""
	}
	s, _ := rctx.Params[key].(string)
	return s
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
