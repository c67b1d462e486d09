// Package profile 根据行为信号增量更新口味画像与偏好集合。
//
// 每次行为只做一步指数滑动平均，不回放历史，因此结果依赖行为顺序。
package profile

import (
	"github.com/rs/zerolog"

	"github.com/rushteam/winerec/core"
)

// weights 是每种行为向原型靠拢的步长，负数表示远离。
var weights = map[core.InteractionKind]float64{
	core.KindViewed:          0.02,
	core.KindAddedToCart:     0.10,
	core.KindPurchased:       0.20,
	core.KindFavorited:       0.15,
	core.KindRatedHigh:       0.20,
	core.KindRatedLow:        -0.10,
	core.KindRemovedFromCart: -0.05,
	core.KindUnfavorited:     -0.05,
}

// Weight 返回行为的学习步长，未知行为为 0。
func Weight(kind core.InteractionKind) float64 {
	return weights[kind]
}

// Change 描述一次学习改动了哪些结构，调用方据此决定落盘。
type Change struct {
	Profile     bool
	Preferences bool
}

// Any 是否有任何改动。
func (c Change) Any() bool { return c.Profile || c.Preferences }

// Learner 是无状态的学习规则，画像与偏好由调用方持有。
type Learner struct {
	logger zerolog.Logger
}

func NewLearner(logger zerolog.Logger) *Learner {
	return &Learner{logger: logger.With().Str("component", "profile").Logger()}
}

// Learn 对一次行为做一步更新。
//
//   - 口味参数：按原型插值 new = clamp(old + (target-old)*weight)
//   - weight > 0：类别追加到偏好标签
//   - 差评 / 移出购物车：类别加入不喜欢列表
//   - 正向转化：类别、产区并入偏好
func (l *Learner) Learn(profile *core.TasteProfile, prefs *core.PreferenceSet, wine *core.Wine, kind core.InteractionKind) Change {
	var change Change
	if wine == nil || !kind.Valid() {
		return change
	}
	weight := Weight(kind)

	if target, ok := core.ArchetypeFor(wine); ok && profile != nil {
		for _, param := range core.TasteParamList {
			tv, ok := target[param]
			if !ok {
				continue
			}
			old := profile.Params.Get(param)
			profile.Params.Set(param, old+(tv-old)*weight)
			if profile.Params.Get(param) != old {
				change.Profile = true
			}
		}
	}

	if weight > 0 && profile != nil && profile.AddTag(wine.Category) {
		change.Profile = true
	}

	if prefs != nil {
		switch {
		case kind.IsStronglyNegative():
			if prefs.DislikeCategory(wine.Category) {
				change.Preferences = true
			}
		case kind.IsPositive():
			if prefs.PreferCategory(wine.Category) {
				change.Preferences = true
			}
			if prefs.PreferRegion(wine.Region) {
				change.Preferences = true
			}
		}
	}

	l.logger.Debug().
		Str("item", wine.ID).
		Str("kind", string(kind)).
		Float64("weight", weight).
		Bool("profile_changed", change.Profile).
		Bool("prefs_changed", change.Preferences).
		Msg("learned from interaction")
	return change
}
