package core

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// InteractionKind 是用户行为类型（封闭枚举）。
type InteractionKind string

const (
	KindViewed          InteractionKind = "viewed"            // 浏览
	KindAddedToCart     InteractionKind = "added_to_cart"     // 加购
	KindRemovedFromCart InteractionKind = "removed_from_cart" // 移出购物车
	KindFavorited       InteractionKind = "favorited"         // 收藏
	KindUnfavorited     InteractionKind = "unfavorited"       // 取消收藏
	KindPurchased       InteractionKind = "purchased"         // 购买
	KindRatedHigh       InteractionKind = "rated_high"        // 好评
	KindRatedLow        InteractionKind = "rated_low"         // 差评
)

// InteractionKinds 按固定顺序列出所有合法行为类型。
var InteractionKinds = []InteractionKind{
	KindViewed,
	KindAddedToCart,
	KindRemovedFromCart,
	KindFavorited,
	KindUnfavorited,
	KindPurchased,
	KindRatedHigh,
	KindRatedLow,
}

// Valid 是否为已知的行为类型。
func (k InteractionKind) Valid() bool {
	switch k {
	case KindViewed, KindAddedToCart, KindRemovedFromCart, KindFavorited,
		KindUnfavorited, KindPurchased, KindRatedHigh, KindRatedLow:
		return true
	}
	return false
}

// IsPositive 是否为正向转化行为（加购/收藏/购买/好评）。
func (k InteractionKind) IsPositive() bool {
	switch k {
	case KindAddedToCart, KindFavorited, KindPurchased, KindRatedHigh:
		return true
	}
	return false
}

// IsStronglyNegative 是否为强负向行为（差评/移出购物车）。
func (k InteractionKind) IsStronglyNegative() bool {
	return k == KindRatedLow || k == KindRemovedFromCart
}

// ParseInteractionKind 解析行为类型，未知类型返回 INVALID_INPUT。
func ParseInteractionKind(s string) (InteractionKind, error) {
	k := InteractionKind(s)
	if !k.Valid() {
		return "", NewDomainError(ModuleHistory, ErrorCodeInvalidInput, fmt.Sprintf("unknown interaction kind %q", s))
	}
	return k, nil
}

func (k *InteractionKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseInteractionKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// InteractionRecord 是一条行为记录，Timestamp 为 Unix 毫秒。
type InteractionRecord struct {
	ItemID    string          `json:"itemId"`
	Kind      InteractionKind `json:"kind"`
	Timestamp int64           `json:"timestamp"`
}

// Time 返回记录时间。
func (r InteractionRecord) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}
