package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/winerec/core"
)

// LogHook 记录每个 Node 的输入输出规模：开始为 Trace，结束为 Debug，失败为 Warn。
type LogHook struct {
	Logger zerolog.Logger
}

func (h *LogHook) BeforeNode(_ context.Context, rctx *core.RecommendContext, node Node, items []*core.Item) {
	if e := h.Logger.Trace(); e.Enabled() {
		e.Str("scene", scene(rctx)).Str("node", node.Name()).Int("in", len(items)).Msg("node start")
	}
}

func (h *LogHook) AfterNode(_ context.Context, rctx *core.RecommendContext, node Node, items []*core.Item, err error) {
	if err != nil {
		h.Logger.Warn().Err(err).Str("scene", scene(rctx)).Str("node", node.Name()).Msg("node failed")
		return
	}
	h.Logger.Debug().
		Str("scene", scene(rctx)).
		Str("node", node.Name()).
		Str("kind", string(node.Kind())).
		Int("out", len(items)).
		Msg("node done")
}

func scene(rctx *core.RecommendContext) string {
	if rctx == nil {
		return ""
	}
	return rctx.Scene
}
