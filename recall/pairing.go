package recall

import (
	"context"
	"strings"

	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/filter"
	"github.com/rushteam/winerec/pipeline"
	"github.com/rushteam/winerec/pkg/utils"
)

// Pairing 是一道菜推荐的类别与风格，命中任一即可。
type Pairing struct {
	Key        string
	Categories []string
	Styles     []core.Style
}

// AnyPairing 是没有任何词条命中时使用的兜底词条。
const AnyPairing = "any"

var pairings = map[string]Pairing{
	"steak": {
		Categories: []string{"Cabernet Sauvignon", "Malbec", "Syrah", "Shiraz", "Nebbiolo"},
		Styles:     []core.Style{core.StyleRed},
	},
	"grilled steak": {
		Categories: []string{"Cabernet Sauvignon", "Malbec", "Syrah", "Shiraz", "Zinfandel"},
		Styles:     []core.Style{core.StyleRed},
	},
	"beef": {
		Categories: []string{"Cabernet Sauvignon", "Merlot", "Malbec", "Syrah"},
		Styles:     []core.Style{core.StyleRed},
	},
	"lamb": {
		Categories: []string{"Syrah", "Nebbiolo", "Tempranillo", "Cabernet Sauvignon"},
		Styles:     []core.Style{core.StyleRed},
	},
	"bbq": {
		Categories: []string{"Zinfandel", "Malbec", "Shiraz"},
		Styles:     []core.Style{core.StyleRed},
	},
	"barbecue": {
		Categories: []string{"Zinfandel", "Malbec", "Shiraz"},
		Styles:     []core.Style{core.StyleRed},
	},
	"burger": {
		Categories: []string{"Zinfandel", "Merlot", "Malbec"},
		Styles:     []core.Style{core.StyleRed},
	},
	"pork": {
		Categories: []string{"Pinot Noir", "Riesling", "Grenache"},
		Styles:     []core.Style{core.StyleRose},
	},
	"chicken": {
		Categories: []string{"Chardonnay", "Pinot Noir", "Viognier"},
		Styles:     []core.Style{core.StyleWhite},
	},
	"roast chicken": {
		Categories: []string{"Chardonnay", "Pinot Noir"},
	},
	"turkey": {
		Categories: []string{"Pinot Noir", "Gamay", "Zinfandel", "Riesling"},
	},
	"duck": {
		Categories: []string{"Pinot Noir", "Gamay"},
	},
	"salmon": {
		Categories: []string{"Pinot Noir", "Chardonnay"},
		Styles:     []core.Style{core.StyleRose},
	},
	"fish": {
		Categories: []string{"Sauvignon Blanc", "Pinot Grigio", "Albariño", "Chardonnay"},
		Styles:     []core.Style{core.StyleWhite},
	},
	"seafood": {
		Categories: []string{"Sauvignon Blanc", "Albariño", "Muscadet", "Pinot Grigio"},
		Styles:     []core.Style{core.StyleWhite, core.StyleSparkling},
	},
	"oyster": {
		Categories: []string{"Champagne", "Muscadet", "Chablis"},
		Styles:     []core.Style{core.StyleSparkling},
	},
	"sushi": {
		Categories: []string{"Riesling", "Grüner Veltliner", "Champagne"},
		Styles:     []core.Style{core.StyleSparkling, core.StyleWhite},
	},
	"pasta": {
		Categories: []string{"Sangiovese", "Chianti", "Barbera", "Pinot Grigio"},
		Styles:     []core.Style{core.StyleRed},
	},
	"pizza": {
		Categories: []string{"Sangiovese", "Barbera", "Zinfandel"},
		Styles:     []core.Style{core.StyleRed},
	},
	"mushroom": {
		Categories: []string{"Pinot Noir", "Nebbiolo"},
	},
	"spicy": {
		Categories: []string{"Riesling", "Gewürztraminer"},
		Styles:     []core.Style{core.StyleRose},
	},
	"curry": {
		Categories: []string{"Riesling", "Gewürztraminer"},
		Styles:     []core.Style{core.StyleRose},
	},
	"salad": {
		Categories: []string{"Sauvignon Blanc", "Pinot Grigio"},
		Styles:     []core.Style{core.StyleWhite, core.StyleRose},
	},
	"cheese": {
		Categories: []string{"Port", "Cabernet Sauvignon", "Chardonnay"},
		Styles:     []core.Style{core.StyleDessert},
	},
	"chocolate": {
		Categories: []string{"Port"},
		Styles:     []core.Style{core.StyleDessert},
	},
	"dessert": {
		Categories: []string{"Port", "Sauternes", "Moscato"},
		Styles:     []core.Style{core.StyleDessert, core.StyleSparkling},
	},
	AnyPairing: {
		Styles: []core.Style{core.StyleRed, core.StyleWhite, core.StyleRose, core.StyleSparkling, core.StyleDessert},
	},
}

// MatchPairing 在词典中查找与菜名匹配的词条（大小写不敏感的子串匹配）。
// 多个词条命中时取最长的，长度相同按字典序；都不命中时返回 "any" 词条。
func MatchPairing(meal string) Pairing {
	text := strings.ToLower(strings.TrimSpace(meal))
	best := ""
	if text != "" {
		for key := range pairings {
			if key == AnyPairing || !strings.Contains(text, key) {
				continue
			}
			if len(key) > len(best) || (len(key) == len(best) && key < best) {
				best = key
			}
		}
	}
	if best == "" {
		best = AnyPairing
	}
	p := pairings[best]
	p.Key = best
	return p
}

// PairingRecall 按菜名召回可搭配的酒款，菜名来自请求参数。
type PairingRecall struct {
	// Param 菜名所在的请求参数名，默认 "meal"
	Param string
}

func (r *PairingRecall) Name() string        { return "recall.pairing" }
func (r *PairingRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *PairingRecall) Process(ctx context.Context, rctx *core.RecommendContext, _ []*core.Item) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *PairingRecall) Recall(_ context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if rctx == nil {
		return nil, nil
	}
	param := r.Param
	if param == "" {
		param = "meal"
	}
	p := MatchPairing(rctx.Param(param))
	allow := filter.NewAllowListFilter(p.Categories, p.Styles)

	var out []*core.Item
	for i := range rctx.Catalog {
		w := &rctx.Catalog[i]
		if !allow.Match(w) {
			continue
		}
		it := core.NewItem(w)
		it.PutLabel("pairing", utils.Label{Value: p.Key, Source: "recall.pairing"})
		out = append(out, it)
	}
	return out, nil
}
