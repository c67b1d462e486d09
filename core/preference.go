package core

import (
	"slices"
	"strings"
)

// PriceRange 是价格区间（闭区间）。
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains 价格是否落在区间内。
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// PreferenceSet 是用户显式声明的硬过滤条件与类别偏好。
//
// 不变量：同一个类别不会同时出现在 PreferredCategories 和 DislikedCategories 中。
type PreferenceSet struct {
	MinQuality          float64    `json:"minQuality"`
	PriceRange          PriceRange `json:"priceRange"`
	PreferredCategories []string   `json:"preferredCategories"`
	PreferredRegions    []string   `json:"preferredRegions"`
	DislikedCategories  []string   `json:"dislikedCategories"`
}

// NewPreferenceSet 创建默认偏好：最低评分 85，价格 0-500。
func NewPreferenceSet() *PreferenceSet {
	return &PreferenceSet{
		MinQuality:          DefaultMinQuality,
		PriceRange:          PriceRange{Min: 0, Max: DefaultMaxPrice},
		PreferredCategories: []string{},
		PreferredRegions:    []string{},
		DislikedCategories:  []string{},
	}
}

// 类别 / 产区比较大小写不敏感。
func containsFold(list []string, v string) bool {
	return indexFold(list, v) >= 0
}

func indexFold(list []string, v string) int {
	if v == "" {
		return -1
	}
	for i, s := range list {
		if strings.EqualFold(s, v) {
			return i
		}
	}
	return -1
}

func removeFold(list []string, v string) ([]string, bool) {
	i := indexFold(list, v)
	if i < 0 {
		return list, false
	}
	return slices.Delete(list, i, i+1), true
}

func (p *PreferenceSet) PrefersCategory(category string) bool {
	return containsFold(p.PreferredCategories, category)
}

func (p *PreferenceSet) PrefersRegion(region string) bool {
	return containsFold(p.PreferredRegions, region)
}

func (p *PreferenceSet) DislikesCategory(category string) bool {
	return containsFold(p.DislikedCategories, category)
}

// PreferCategory 加入偏好类别，同时从不喜欢列表中移除。返回是否有变化。
func (p *PreferenceSet) PreferCategory(category string) bool {
	if category == "" {
		return false
	}
	var changed bool
	p.DislikedCategories, changed = removeFold(p.DislikedCategories, category)
	if !p.PrefersCategory(category) {
		p.PreferredCategories = append(p.PreferredCategories, category)
		changed = true
	}
	return changed
}

// DislikeCategory 加入不喜欢类别，同时从偏好列表中移除。返回是否有变化。
func (p *PreferenceSet) DislikeCategory(category string) bool {
	if category == "" {
		return false
	}
	var changed bool
	p.PreferredCategories, changed = removeFold(p.PreferredCategories, category)
	if !p.DislikesCategory(category) {
		p.DislikedCategories = append(p.DislikedCategories, category)
		changed = true
	}
	return changed
}

// ForgetCategory 从两个列表中都移除该类别。
func (p *PreferenceSet) ForgetCategory(category string) bool {
	var a, b bool
	p.PreferredCategories, a = removeFold(p.PreferredCategories, category)
	p.DislikedCategories, b = removeFold(p.DislikedCategories, category)
	return a || b
}

// PreferRegion 加入偏好产区。
func (p *PreferenceSet) PreferRegion(region string) bool {
	if region == "" || p.PrefersRegion(region) {
		return false
	}
	p.PreferredRegions = append(p.PreferredRegions, region)
	return true
}

// Clone 深拷贝。
func (p *PreferenceSet) Clone() *PreferenceSet {
	cp := *p
	cp.PreferredCategories = cloneStrings(p.PreferredCategories)
	cp.PreferredRegions = cloneStrings(p.PreferredRegions)
	cp.DislikedCategories = cloneStrings(p.DislikedCategories)
	return &cp
}

// Normalize 修正外部加载的数据：nil 列表置空、区间反转时交换、
// 同时出现在两个列表中的类别以 disliked 为准。
func (p *PreferenceSet) Normalize() {
	p.PreferredCategories = cloneStrings(p.PreferredCategories)
	p.PreferredRegions = cloneStrings(p.PreferredRegions)
	p.DislikedCategories = cloneStrings(p.DislikedCategories)
	if p.PriceRange.Min > p.PriceRange.Max {
		p.PriceRange.Min, p.PriceRange.Max = p.PriceRange.Max, p.PriceRange.Min
	}
	for _, c := range p.DislikedCategories {
		p.PreferredCategories, _ = removeFold(p.PreferredCategories, c)
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
