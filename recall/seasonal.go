package recall

import (
	"context"
	"time"

	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/filter"
	"github.com/rushteam/winerec/pipeline"
	"github.com/rushteam/winerec/pkg/utils"
)

// Season 是季节桶。
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

// SeasonOf 把月份映射到季节：三个月一档，从三月开始（3-5 春，6-8 夏，9-11 秋，12-2 冬）。
func SeasonOf(m time.Month) Season {
	switch (int(m) - 1 + 12 - 2) % 12 / 3 {
	case 0:
		return SeasonSpring
	case 1:
		return SeasonSummer
	case 2:
		return SeasonFall
	default:
		return SeasonWinter
	}
}

// seasonCategories 是每个季节的类别白名单。
var seasonCategories = map[Season][]string{
	SeasonSpring: {
		"Sauvignon Blanc", "Pinot Grigio", "Pinot Gris", "Riesling", "Grüner Veltliner",
		"Pinot Noir", "Rosé", "rose", "sparkling",
	},
	SeasonSummer: {
		"Rosé", "rose", "Sauvignon Blanc", "Albariño", "Vinho Verde", "Prosecco",
		"Champagne", "Cava", "Pinot Grigio", "white", "sparkling",
	},
	SeasonFall: {
		"Pinot Noir", "Chardonnay", "Merlot", "Zinfandel", "Grenache", "Gamay",
		"Sangiovese", "Tempranillo", "red",
	},
	SeasonWinter: {
		"Cabernet Sauvignon", "Syrah", "Shiraz", "Malbec", "Nebbiolo", "Port",
		"Sherry", "red", "dessert",
	},
}

// SeasonCategories 返回季节白名单的副本。
func SeasonCategories(s Season) []string {
	return append([]string(nil), seasonCategories[s]...)
}

// SeasonalRecall 召回类别在当前季节白名单中的酒款，季节由 rctx.Now 决定。
type SeasonalRecall struct{}

func (r *SeasonalRecall) Name() string        { return "recall.seasonal" }
func (r *SeasonalRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *SeasonalRecall) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *SeasonalRecall) Recall(_ context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil {
		return nil, nil
	}
	now := rctx.Now
	if now.IsZero() {
		now = time.Now()
	}
	season := SeasonOf(now.Month())
	allow := filter.NewAllowListFilter(seasonCategories[season], nil)

	var out []*core.Item
	for i := range rctx.Catalog {
		w := &rctx.Catalog[i]
		if !allow.Match(w) {
			continue
		}
		it := core.NewItem(w)
		it.PutLabel("season", utils.Label{Value: string(season), Source: "recall.seasonal"})
		out = append(out, it)
	}
	return out, nil
}
