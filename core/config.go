package core

import "time"

// 推荐引擎的固定上限与默认值。
const (
	// MaxInteractions 行为日志最多保留的条数（丢弃最旧的）
	MaxInteractions = 100

	// MaxPreferredTags 口味画像偏好标签上限
	MaxPreferredTags = 10

	// DefaultLimit 各视图默认返回条数
	DefaultLimit = 10

	// DefaultMinQuality 默认最低评分
	DefaultMinQuality = 85

	// DefaultMaxPrice 默认价格上限
	DefaultMaxPrice = 500

	// DefaultJitter 打分探索扰动上限
	DefaultJitter = 0.5

	// TrendingWindow 热门统计的时间窗口
	TrendingWindow = 30 * 24 * time.Hour
)
