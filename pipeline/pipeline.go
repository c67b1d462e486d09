package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/winerec/core"
)

// Hook 在每个 Node 前后被调用，用于日志、打点等横切逻辑。
type Hook interface {
	BeforeNode(ctx context.Context, rctx *core.RecommendContext, node Node, items []*core.Item)
	AfterNode(ctx context.Context, rctx *core.RecommendContext, node Node, items []*core.Item, err error)
}

// Pipeline 把推荐逻辑拆成可组合的 Node 链（Recall → Filter → Rank → ReRank）。
type Pipeline struct {
	Name  string
	Nodes []Node
	Hooks []Hook
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		for _, h := range p.Hooks {
			h.BeforeNode(ctx, rctx, node, cur)
		}
		next, err := node.Process(ctx, rctx, cur)
		for _, h := range p.Hooks {
			h.AfterNode(ctx, rctx, node, next, err)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: node %s: %w", p.Name, node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}
