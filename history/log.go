// Package history 维护会话的行为日志：有界、按时间非递减、每次追加后落盘。
package history

import (
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/winerec/core"
)

// Catalog 是日志校验酒款存在性所需的最小接口，catalog.Store 实现了它。
type Catalog interface {
	Contains(id string) bool
}

// Saver 持久化完整的日志快照。
type Saver func(ctx context.Context, records []core.InteractionRecord) error

// Log 是有界行为日志，非并发安全，由 engine 串行调用。
type Log struct {
	records []core.InteractionRecord
	limit   int
	catalog Catalog
	save    Saver
	logger  zerolog.Logger
}

type Option func(*Log)

// WithLimit 收紧日志上限，取值范围 [1, core.MaxInteractions]，超出上限按上限处理。
func WithLimit(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.limit = min(n, core.MaxInteractions)
		}
	}
}

func WithSaver(s Saver) Option {
	return func(l *Log) { l.save = s }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(l *Log) { l.logger = logger.With().Str("component", "history").Logger() }
}

func New(catalog Catalog, opts ...Option) *Log {
	l := &Log{
		limit:   core.MaxInteractions,
		catalog: catalog,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Restore 用持久化数据替换日志内容（初始化时调用），不触发落盘。
func (l *Log) Restore(records []core.InteractionRecord) {
	l.records = slices.Clone(records)
	slices.SortStableFunc(l.records, func(a, b core.InteractionRecord) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})
	l.truncate()
}

// Record 追加一条行为。
//
// 行为类型非法时返回 INVALID_INPUT；酒款不在目录中时忽略并返回 false。
// 时间早于最后一条记录时会被提升到最后一条的时间。
// 成功追加后调用 Saver，落盘错误原样返回，但记录已经生效。
func (l *Log) Record(ctx context.Context, itemID string, kind core.InteractionKind, at time.Time) (core.InteractionRecord, bool, error) {
	if !kind.Valid() {
		_, err := core.ParseInteractionKind(string(kind))
		return core.InteractionRecord{}, false, err
	}
	if itemID == "" || l.catalog == nil || !l.catalog.Contains(itemID) {
		l.logger.Debug().Str("item", itemID).Str("kind", string(kind)).Msg("ignore interaction for unknown item")
		return core.InteractionRecord{}, false, nil
	}

	rec := core.InteractionRecord{ItemID: itemID, Kind: kind, Timestamp: at.UnixMilli()}
	if n := len(l.records); n > 0 && rec.Timestamp < l.records[n-1].Timestamp {
		rec.Timestamp = l.records[n-1].Timestamp
	}
	l.records = append(l.records, rec)
	l.truncate()

	if l.save != nil {
		if err := l.save(ctx, l.records); err != nil {
			return rec, true, err
		}
	}
	return rec, true, nil
}

func (l *Log) truncate() {
	if over := len(l.records) - l.limit; over > 0 {
		l.records = slices.Delete(l.records, 0, over)
	}
}

// Len 当前记录数。
func (l *Log) Len() int { return len(l.records) }

// Records 返回日志副本，按插入顺序。
func (l *Log) Records() []core.InteractionRecord {
	return slices.Clone(l.records)
}

// View 返回内部切片，仅供同一调用链内只读使用。
func (l *Log) View() []core.InteractionRecord {
	return l.records
}

// ForItem 返回某款酒的全部记录。
func (l *Log) ForItem(itemID string) []core.InteractionRecord {
	var out []core.InteractionRecord
	for _, r := range l.records {
		if r.ItemID == itemID {
			out = append(out, r)
		}
	}
	return out
}

// Since 返回时间不早于 t 的记录。
func (l *Log) Since(t time.Time) []core.InteractionRecord {
	ts := t.UnixMilli()
	i, _ := slices.BinarySearchFunc(l.records, ts, func(r core.InteractionRecord, target int64) int {
		switch {
		case r.Timestamp < target:
			return -1
		case r.Timestamp > target:
			return 1
		}
		return 0
	})
	return slices.Clone(l.records[i:])
}

// Clear 清空日志并落盘。
func (l *Log) Clear(ctx context.Context) error {
	l.records = nil
	if l.save != nil {
		return l.save(ctx, []core.InteractionRecord{})
	}
	return nil
}
