package core

import "strings"

// Style 是酒款风格标签，决定默认的口味原型向量。
type Style string

const (
	StyleRed       Style = "red"
	StyleWhite     Style = "white"
	StyleRose      Style = "rose"
	StyleSparkling Style = "sparkling"
	StyleDessert   Style = "dessert"
)

// NormalizeStyle 统一风格写法（大小写、rosé 等）。
func NormalizeStyle(s string) Style {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "rosé", "rosado", "rosato":
		return StyleRose
	case "fortified", "sweet":
		return StyleDessert
	}
	return Style(v)
}

// Wine 是目录中的一款酒，会话内只读，由 catalog.Store 持有。
type Wine struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Producer    string   `json:"producer" yaml:"producer"`
	Category    string   `json:"category" yaml:"category"` // 品种 / 类别，例如 "Cabernet Sauvignon"
	Region      string   `json:"region" yaml:"region"`
	Country     string   `json:"country" yaml:"country"`
	Quality     float64  `json:"quality" yaml:"quality"` // 0-100 评分
	Price       *float64 `json:"price,omitempty" yaml:"price,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Style       Style    `json:"style" yaml:"style"`
}

// HasPrice 价格是否已知。
func (w Wine) HasPrice() bool {
	return w.Price != nil
}

// PriceValue 返回价格，未知时返回 0。
func (w Wine) PriceValue() float64 {
	if w.Price == nil {
		return 0
	}
	return *w.Price
}

// Price 是构造 *float64 价格的便捷函数。
func Price(v float64) *float64 {
	return &v
}
