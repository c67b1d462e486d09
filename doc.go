// Package winerec 是一个单会话的葡萄酒推荐引擎。
//
// 设计要点：
// - Pipeline-first: 每个推荐视图都是 Node 串联（Recall → Filter → Rank → ReRank）
// - Labels-first: 打分分量以 labels 形式随结果返回，便于 explain
// - 本地学习: 每次行为只做一步指数调整，画像、偏好与行为日志通过 core.Store 落盘
// - 配置驱动: 内置五个视图之外，可用 YAML 声明自定义视图
//
// 入口见 engine.New。
package winerec

import (
	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/engine"
	"github.com/rushteam/winerec/pipeline"
)

// 轻量 facade：便于直接 import "winerec" 使用核心抽象。
type (
	Engine          = engine.RecommendationEngine
	Option          = engine.Option
	Wine            = core.Wine
	Item            = core.Item
	InteractionKind = core.InteractionKind
	Pipeline        = pipeline.Pipeline
	Node            = pipeline.Node
	Kind            = pipeline.Kind
)

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindRank   = pipeline.KindRank
	KindReRank = pipeline.KindReRank
)

// New 等同于 engine.New。
func New(source core.CatalogSource, backend core.Store, opts ...Option) (*Engine, error) {
	return engine.New(source, backend, opts...)
}
