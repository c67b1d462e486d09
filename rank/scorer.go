// Package rank 实现可解释的启发式打分：基础评分、偏好命中、口味匹配、行为加成与抖动。
package rank

import (
	"math"
	"strings"

	"github.com/rushteam/winerec/core"
)

// 打分分量的权重
const (
	QualityDivisor       = 20.0
	CategoryBonus        = 2.0
	RegionBonus          = 1.5
	TasteWeight          = 3.0
	TagBonus             = 0.2
	NeutralTasteMatch    = 0.5
	SameCategoryPositive = 0.2
)

// boosts 是单条行为对该酒款的直接加成。
var boosts = map[core.InteractionKind]float64{
	core.KindViewed:          0.1,
	core.KindAddedToCart:     0.5,
	core.KindPurchased:       1.0,
	core.KindFavorited:       0.8,
	core.KindRatedHigh:       1.0,
	core.KindRatedLow:        -2.0,
	core.KindRemovedFromCart: -0.3,
	core.KindUnfavorited:     -0.3,
}

// Boost 返回行为的直接加成。
func Boost(kind core.InteractionKind) float64 {
	return boosts[kind]
}

// spillover 是会给同类别其他酒款带来加成的行为。
func spillover(kind core.InteractionKind) bool {
	return kind == core.KindPurchased || kind == core.KindFavorited || kind == core.KindRatedHigh
}

// RandSource 是抖动的随机源，*math/rand.Rand 满足该接口。
type RandSource interface {
	Float64() float64
}

// Breakdown 是一次打分的各分量，写入 label 用于 explain。
type Breakdown struct {
	Quality    float64
	Category   float64
	Region     float64
	TasteMatch float64
	Taste      float64
	Boost      float64
	Jitter     float64
	Total      float64
}

// Signals 是从行为日志预聚合的加成信号，一次查询构建一次。
type Signals struct {
	direct     map[string]float64
	positives  map[string]int // 每款酒的 spillover 行为次数
	byCategory map[string]int // 每个类别的 spillover 行为次数
	categories map[string]string
}

// NewSignals 聚合行为日志；目录用于解析行为酒款的类别。
func NewSignals(catalog []core.Wine, records []core.InteractionRecord) *Signals {
	s := &Signals{
		direct:     make(map[string]float64),
		positives:  make(map[string]int),
		byCategory: make(map[string]int),
		categories: make(map[string]string, len(catalog)),
	}
	for i := range catalog {
		s.categories[catalog[i].ID] = categoryKey(catalog[i].Category)
	}
	for _, r := range records {
		s.direct[r.ItemID] += Boost(r.Kind)
		if !spillover(r.Kind) {
			continue
		}
		s.positives[r.ItemID]++
		if cat, ok := s.categories[r.ItemID]; ok && cat != "" {
			s.byCategory[cat]++
		}
	}
	return s
}

// InteractionBoost 该酒款自身行为的加成，加上同类别其他酒款正向行为的扩散加成。
func (s *Signals) InteractionBoost(w *core.Wine) float64 {
	if s == nil || w == nil {
		return 0
	}
	boost := s.direct[w.ID]
	if cat := categoryKey(w.Category); cat != "" {
		others := s.byCategory[cat]
		if s.categories[w.ID] == cat {
			others -= s.positives[w.ID]
		}
		if others > 0 {
			boost += SameCategoryPositive * float64(others)
		}
	}
	return boost
}

// categoryKey 类别比较忽略大小写与首尾空白，与 PreferenceSet 一致。
func categoryKey(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}

// TasteMatch 比较口味画像与酒款原型，返回 [0,1] 的匹配度。
// 没有原型时取中性值 0.5；类别在偏好标签中时额外 +0.2。
func TasteMatch(profile *core.TasteProfile, w *core.Wine) float64 {
	if profile == nil || w == nil {
		return NeutralTasteMatch
	}
	match := NeutralTasteMatch
	if target, ok := core.ArchetypeFor(w); ok && len(target) > 0 {
		var sum float64
		var n int
		for _, param := range core.TasteParamList {
			tv, ok := target[param]
			if !ok {
				continue
			}
			sum += math.Abs(profile.Params.Get(param) - tv)
			n++
		}
		if n > 0 {
			match = 1 - sum/float64(n)
		}
	}
	if profile.HasTag(w.Category) {
		match += TagBonus
	}
	return core.Clamp01(match)
}

// Scorer 计算个性化相关度分数。非并发安全（随机源），由调用方串行使用。
type Scorer struct {
	// Jitter 抖动上限，分数额外加上 [0, Jitter) 的随机值，0 表示关闭
	Jitter float64
	Rand   RandSource
}

func NewScorer(jitter float64, rnd RandSource) *Scorer {
	return &Scorer{Jitter: jitter, Rand: rnd}
}

// Score 计算单款酒的分数。
//
//	score = quality/20
//	      + 2.0 类别在偏好类别中
//	      + 1.5 产区在偏好产区中
//	      + 3.0 × tasteMatch
//	      + interactionBoost
//	      + jitter
func (s *Scorer) Score(w *core.Wine, profile *core.TasteProfile, prefs *core.PreferenceSet, sig *Signals) Breakdown {
	var b Breakdown
	b.Quality = w.Quality / QualityDivisor
	if prefs != nil {
		if prefs.PrefersCategory(w.Category) {
			b.Category = CategoryBonus
		}
		if w.Region != "" && prefs.PrefersRegion(w.Region) {
			b.Region = RegionBonus
		}
	}
	b.TasteMatch = TasteMatch(profile, w)
	b.Taste = TasteWeight * b.TasteMatch
	b.Boost = sig.InteractionBoost(w)
	if s != nil && s.Jitter > 0 && s.Rand != nil {
		b.Jitter = s.Rand.Float64() * s.Jitter
	}
	b.Total = b.Quality + b.Category + b.Region + b.Taste + b.Boost + b.Jitter
	return b
}
