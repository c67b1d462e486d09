package core

import "strings"

// Archetype 是某个风格 / 品种的典型口味向量，只包含有定义的维度。
// 学习时作为插值目标，打分时作为口味匹配的参照。
type Archetype map[TasteParam]float64

// styleArchetypes 按风格划分的原型。
var styleArchetypes = map[Style]Archetype{
	StyleRed: {
		ParamTannin:     0.7,
		ParamBody:       0.7,
		ParamEarthiness: 0.6,
		ParamSweetness:  0.3,
	},
	StyleWhite: {
		ParamAcidity:      0.7,
		ParamTannin:       0.2,
		ParamBody:         0.4,
		ParamFruitForward: 0.6,
	},
	StyleSparkling: {
		ParamAcidity:   0.8,
		ParamBody:      0.3,
		ParamSweetness: 0.5,
	},
	StyleDessert: {
		ParamSweetness: 0.9,
		ParamBody:      0.7,
	},
	StyleRose: {
		ParamAcidity:      0.6,
		ParamFruitForward: 0.7,
		ParamBody:         0.3,
		ParamSweetness:    0.3,
	},
}

// varietyArchetypes 常见品种的原型，优先于风格原型。key 为小写品种名。
var varietyArchetypes = map[string]Archetype{
	"cabernet sauvignon": {
		ParamTannin: 0.85, ParamBody: 0.85, ParamOakiness: 0.7,
		ParamFruitForward: 0.6, ParamEarthiness: 0.5, ParamSweetness: 0.1,
	},
	"merlot": {
		ParamTannin: 0.55, ParamBody: 0.65, ParamFruitForward: 0.75,
		ParamOakiness: 0.5, ParamSweetness: 0.2,
	},
	"pinot noir": {
		ParamTannin: 0.35, ParamBody: 0.4, ParamAcidity: 0.65,
		ParamEarthiness: 0.7, ParamFruitForward: 0.6,
	},
	"syrah": {
		ParamTannin: 0.75, ParamBody: 0.8, ParamEarthiness: 0.65, ParamFruitForward: 0.65,
	},
	"malbec": {
		ParamTannin: 0.7, ParamBody: 0.8, ParamFruitForward: 0.75, ParamOakiness: 0.55,
	},
	"nebbiolo": {
		ParamTannin: 0.9, ParamAcidity: 0.8, ParamBody: 0.7, ParamEarthiness: 0.75,
	},
	"zinfandel": {
		ParamBody: 0.75, ParamFruitForward: 0.85, ParamSweetness: 0.35, ParamTannin: 0.55,
	},
	"chardonnay": {
		ParamBody: 0.65, ParamOakiness: 0.6, ParamAcidity: 0.5, ParamFruitForward: 0.6,
	},
	"sauvignon blanc": {
		ParamAcidity: 0.85, ParamBody: 0.35, ParamFruitForward: 0.7, ParamOakiness: 0.1,
	},
	"riesling": {
		ParamAcidity: 0.85, ParamSweetness: 0.55, ParamBody: 0.3, ParamFruitForward: 0.75,
	},
	"pinot grigio": {
		ParamAcidity: 0.7, ParamBody: 0.3, ParamFruitForward: 0.5, ParamOakiness: 0.05,
	},
	"port": {
		ParamSweetness: 0.9, ParamBody: 0.9, ParamTannin: 0.6, ParamFruitForward: 0.7,
	},
}

// ArchetypeFor 查找酒款的原型：先按品种，再按风格。
func ArchetypeFor(w *Wine) (Archetype, bool) {
	if w == nil {
		return nil, false
	}
	if a, ok := varietyArchetypes[strings.ToLower(strings.TrimSpace(w.Category))]; ok {
		return a, true
	}
	if a, ok := styleArchetypes[NormalizeStyle(string(w.Style))]; ok {
		return a, true
	}
	return nil, false
}

// StyleArchetype 返回风格原型（不考虑品种）。
func StyleArchetype(s Style) (Archetype, bool) {
	a, ok := styleArchetypes[NormalizeStyle(string(s))]
	return a, ok
}
