package core

import (
	"slices"
	"strings"
)

// TasteParam 是口味画像的一个维度。
type TasteParam string

const (
	ParamSweetness    TasteParam = "sweetness"
	ParamAcidity      TasteParam = "acidity"
	ParamTannin       TasteParam = "tannin"
	ParamBody         TasteParam = "body"
	ParamFruitForward TasteParam = "fruitForward"
	ParamEarthiness   TasteParam = "earthiness"
	ParamOakiness     TasteParam = "oakiness"
)

// TasteParamList 按固定顺序列出所有口味维度。
var TasteParamList = []TasteParam{
	ParamSweetness,
	ParamAcidity,
	ParamTannin,
	ParamBody,
	ParamFruitForward,
	ParamEarthiness,
	ParamOakiness,
}

// TasteParams 是归一化（0-1）的口味向量。
type TasteParams struct {
	Sweetness    float64 `json:"sweetness"`
	Acidity      float64 `json:"acidity"`
	Tannin       float64 `json:"tannin"`
	Body         float64 `json:"body"`
	FruitForward float64 `json:"fruitForward"`
	Earthiness   float64 `json:"earthiness"`
	Oakiness     float64 `json:"oakiness"`
}

// Get 按维度读取。
func (p *TasteParams) Get(param TasteParam) float64 {
	if f := p.field(param); f != nil {
		return *f
	}
	return 0
}

// Set 按维度写入，越界值会被截断到 [0,1]。
func (p *TasteParams) Set(param TasteParam, v float64) {
	if f := p.field(param); f != nil {
		*f = Clamp01(v)
	}
}

func (p *TasteParams) field(param TasteParam) *float64 {
	switch param {
	case ParamSweetness:
		return &p.Sweetness
	case ParamAcidity:
		return &p.Acidity
	case ParamTannin:
		return &p.Tannin
	case ParamBody:
		return &p.Body
	case ParamFruitForward:
		return &p.FruitForward
	case ParamEarthiness:
		return &p.Earthiness
	case ParamOakiness:
		return &p.Oakiness
	}
	return nil
}

// TasteProfile 是从行为中学习到的口味画像。
//
// 只允许 profile.Learner 通过指数调整规则修改 Params；
// PreferredTags 按插入顺序保存，最多 MaxPreferredTags 个，超出时淘汰最旧的。
type TasteProfile struct {
	Params        TasteParams `json:"params"`
	PreferredTags []string    `json:"preferredTags"`
}

// NewTasteProfile 创建默认画像：所有维度 0.5，无偏好标签。
func NewTasteProfile() *TasteProfile {
	return &TasteProfile{
		Params: TasteParams{
			Sweetness:    0.5,
			Acidity:      0.5,
			Tannin:       0.5,
			Body:         0.5,
			FruitForward: 0.5,
			Earthiness:   0.5,
			Oakiness:     0.5,
		},
		PreferredTags: make([]string, 0, MaxPreferredTags),
	}
}

// HasTag 检查标签是否在偏好列表中，大小写不敏感（与偏好类别一致）。
func (p *TasteProfile) HasTag(tag string) bool {
	return tag != "" && slices.ContainsFunc(p.PreferredTags, func(t string) bool {
		return strings.EqualFold(t, tag)
	})
}

// AddTag 追加偏好标签；已存在（忽略大小写）则不变，超过上限时淘汰最旧的。
func (p *TasteProfile) AddTag(tag string) bool {
	if tag == "" || p.HasTag(tag) {
		return false
	}
	p.PreferredTags = append(p.PreferredTags, tag)
	if len(p.PreferredTags) > MaxPreferredTags {
		p.PreferredTags = p.PreferredTags[len(p.PreferredTags)-MaxPreferredTags:]
	}
	return true
}

// Clone 深拷贝，用于对外暴露只读快照。
func (p *TasteProfile) Clone() *TasteProfile {
	cp := *p
	cp.PreferredTags = slices.Clone(p.PreferredTags)
	if cp.PreferredTags == nil {
		cp.PreferredTags = []string{}
	}
	return &cp
}

// Normalize 修正外部加载的数据：截断越界值、去重、限制标签数量。
func (p *TasteProfile) Normalize() {
	for _, param := range TasteParamList {
		p.Params.Set(param, p.Params.Get(param))
	}
	tags := p.PreferredTags
	p.PreferredTags = make([]string, 0, len(tags))
	for _, t := range tags {
		p.AddTag(t)
	}
}

// Clamp01 把 v 截断到 [0,1]。
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
