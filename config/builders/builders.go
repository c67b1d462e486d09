// Package builders 注册内置 Node 的配置构建器，供 YAML 声明的自定义视图使用。
package builders

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rushteam/winerec/config"
	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/filter"
	"github.com/rushteam/winerec/pipeline"
	"github.com/rushteam/winerec/pkg/conv"
	"github.com/rushteam/winerec/rank"
	"github.com/rushteam/winerec/recall"
	"github.com/rushteam/winerec/rerank"
)

func init() {
	config.Register("recall.catalog", BuildCatalogNode)
	config.Register("recall.content", BuildContentNode)
	config.Register("recall.user_history", BuildUserHistoryNode)
	config.Register("recall.trending", BuildTrendingNode)
	config.Register("recall.seasonal", BuildSeasonalNode)
	config.Register("recall.pairing", BuildPairingNode)
	config.Register("recall.similar", BuildSimilarNode)
	config.Register("recall.fanout", BuildFanoutNode)
	config.Register("filter", BuildFilterNode)
	config.Register("filter.expr", BuildExprFilterNode)
	config.Register("rank.relevance", BuildRelevanceNode)
	config.Register("rank.quality", BuildQualityNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("rerank.backfill", BuildBackfillNode)
	config.Register("rerank.topn", BuildTopNNode)
}

func BuildCatalogNode(map[string]any) (pipeline.Node, error) {
	return &recall.CatalogRecall{}, nil
}

func BuildContentNode(cfg map[string]any) (pipeline.Node, error) {
	useTags := conv.ConfigGet(cfg, "use_tags", true)
	useCategories := conv.ConfigGet(cfg, "use_categories", true)
	return &recall.ContentRecall{UseTags: &useTags, UseCategories: &useCategories}, nil
}

func parseKinds(v any) ([]core.InteractionKind, error) {
	raw := conv.SliceAnyToString(v)
	kinds := make([]core.InteractionKind, 0, len(raw))
	for _, s := range raw {
		k, err := core.ParseInteractionKind(s)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func BuildUserHistoryNode(cfg map[string]any) (pipeline.Node, error) {
	kinds, err := parseKinds(cfg["kinds"])
	if err != nil {
		return nil, err
	}
	return &recall.UserHistory{
		Kinds:      kinds,
		TimeWindow: time.Duration(conv.ConfigGetInt(cfg, "window_hours", 0)) * time.Hour,
		TopK:       conv.ConfigGetInt(cfg, "top_k", 0),
	}, nil
}

func BuildTrendingNode(cfg map[string]any) (pipeline.Node, error) {
	return &recall.Trending{
		Window: time.Duration(conv.ConfigGetInt(cfg, "window_days", 30)) * 24 * time.Hour,
	}, nil
}

func BuildSeasonalNode(map[string]any) (pipeline.Node, error) {
	return &recall.SeasonalRecall{}, nil
}

func BuildPairingNode(cfg map[string]any) (pipeline.Node, error) {
	return &recall.PairingRecall{Param: conv.ConfigGet(cfg, "param", "meal")}, nil
}

func BuildSimilarNode(cfg map[string]any) (pipeline.Node, error) {
	return &recall.SimilarRecall{
		Param: conv.ConfigGet(cfg, "param", "item_id"),
		TopK:  conv.ConfigGetInt(cfg, "top_k", 0),
	}, nil
}

func BuildFanoutNode(cfg map[string]any) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]any)
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}
	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]any)
		if !ok {
			continue
		}
		sourceType := conv.ConfigGet(sourceMap, "type", "")
		switch sourceType {
		case "catalog":
			sources = append(sources, &recall.CatalogRecall{})
		case "content":
			n, _ := BuildContentNode(sourceMap)
			sources = append(sources, n.(recall.Source))
		case "user_history":
			n, err := BuildUserHistoryNode(sourceMap)
			if err != nil {
				return nil, err
			}
			sources = append(sources, n.(recall.Source))
		case "trending":
			n, _ := BuildTrendingNode(sourceMap)
			sources = append(sources, n.(recall.Source))
		case "seasonal":
			sources = append(sources, &recall.SeasonalRecall{})
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}
	fanout := &recall.Fanout{
		Sources:       sources,
		Dedup:         conv.ConfigGet(cfg, "dedup", true),
		MergeStrategy: conv.ConfigGet(cfg, "merge_strategy", "first"),
	}
	if ms := conv.ConfigGetInt(cfg, "timeout_ms", 0); ms > 0 {
		fanout.Timeout = time.Duration(ms) * time.Millisecond
	}
	if n := conv.ConfigGetInt(cfg, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = n
	}
	return fanout, nil
}

func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "preference":
			filters = append(filters, &filter.PreferenceFilter{})
		case "exclude":
			ids := conv.SliceAnyToString(filterMap["item_ids"])
			filters = append(filters, filter.NewExcludeFilter(ids, conv.ConfigGet(filterMap, "param", "")))
		case "allow_list":
			styles := conv.ConvertSlice(conv.SliceAnyToString(filterMap["styles"]), func(s string) (core.Style, bool) {
				return core.NormalizeStyle(s), s != ""
			})
			filters = append(filters, filter.NewAllowListFilter(conv.SliceAnyToString(filterMap["categories"]), styles))
		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(filterMap, "expr", ""))
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func BuildExprFilterNode(cfg map[string]any) (pipeline.Node, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("expr not found")
	}
	f, err := filter.NewExprFilter(expr)
	if err != nil {
		return nil, err
	}
	return &filter.FilterNode{Filters: []filter.Filter{f}}, nil
}

// BuildRelevanceNode 配置：jitter（默认 0，即确定性排序）、seed。
func BuildRelevanceNode(cfg map[string]any) (pipeline.Node, error) {
	jitter := conv.ConfigGetFloat64(cfg, "jitter", 0)
	if jitter < 0 {
		return nil, fmt.Errorf("jitter must be >= 0")
	}
	var rnd rank.RandSource
	if jitter > 0 {
		seed := int64(conv.ConfigGetInt(cfg, "seed", int(time.Now().UnixNano())))
		rnd = rand.New(rand.NewSource(seed)) //nolint:gosec
	}
	return &rank.RelevanceNode{Scorer: rank.NewScorer(jitter, rnd)}, nil
}

func BuildQualityNode(map[string]any) (pipeline.Node, error) {
	return &rank.QualityNode{}, nil
}

func BuildDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.Diversity{MaxPerCategory: conv.ConfigGetInt(cfg, "max_per_category", 1)}, nil
}

func BuildBackfillNode(cfg map[string]any) (pipeline.Node, error) {
	n := conv.ConfigGetInt(cfg, "n", core.DefaultLimit)
	if n <= 0 {
		return nil, fmt.Errorf("backfill n must be > 0")
	}
	return &rerank.Backfill{N: n}, nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
}
