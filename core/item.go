package core

import (
	"cmp"
	"slices"
	"strings"

	"github.com/rushteam/winerec/pkg/utils"
)

// Item 是推荐链路中的统一承载结构（即 ScoredItem）：酒款、分数、标签。
// Score 的含义由产出它的 Node 决定：相关度、相似度、热度或评分；
// Labels 记录各打分分量，用于 explain。每次查询新建，不做持久化。
type Item struct {
	Wine   *Wine
	Score  float64
	Labels map[string]utils.Label
}

func NewItem(w *Wine) *Item {
	return &Item{
		Wine:   w,
		Labels: make(map[string]utils.Label),
	}
}

// ID 返回酒款 ID，Wine 为空时返回空串。
func (it *Item) ID() string {
	if it == nil || it.Wine == nil {
		return ""
	}
	return it.Wine.ID
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// NewItems 把目录快照包装成 Item 列表，Wine 指针指向 catalog 中的副本。
func NewItems(wines []Wine) []*Item {
	out := make([]*Item, 0, len(wines))
	for i := range wines {
		out = append(out, NewItem(&wines[i]))
	}
	return out
}

// SortItems 按 Score 降序排序，分数相同时按评分降序、再按 ID 升序，保证结果稳定。
func SortItems(items []*Item) {
	slices.SortStableFunc(items, func(a, b *Item) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Wine.Quality, a.Wine.Quality); c != 0 {
			return c
		}
		return strings.Compare(a.ID(), b.ID())
	})
}
