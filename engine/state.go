package engine

import (
	"context"

	"github.com/rushteam/winerec/core"
	"github.com/rushteam/winerec/profile"
)

// 落盘失败只记录日志并关闭本会话的持久化，内存中的状态继续生效。
func (e *RecommendationEngine) persistErr(what string, err error) {
	if err == nil {
		return
	}
	e.persist = false
	e.metrics.RecordPersistenceError("write")
	e.logger.Warn().Err(err).Str("key", what).Msg("persist failed, continuing without persistence")
}

func (e *RecommendationEngine) saveInteractions(ctx context.Context, records []core.InteractionRecord) error {
	if !e.persist {
		return nil
	}
	e.persistErr("interactions", e.state.SaveInteractions(ctx, records))
	return nil
}

func (e *RecommendationEngine) saveProfile(ctx context.Context) {
	if !e.persist {
		return
	}
	e.persistErr("profile", e.state.SaveProfile(ctx, e.profile))
}

func (e *RecommendationEngine) savePreferences(ctx context.Context) {
	if !e.persist {
		return
	}
	e.persistErr("preferences", e.state.SavePreferences(ctx, e.preferences))
}

// Persisting 本会话是否仍在持久化。
func (e *RecommendationEngine) Persisting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persist
}

// Profile 返回口味画像快照。
func (e *RecommendationEngine) Profile(ctx context.Context) *core.TasteProfile {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initLocked(ctx)
	return e.profile.Clone()
}

// Preferences 返回偏好集合快照。
func (e *RecommendationEngine) Preferences(ctx context.Context) *core.PreferenceSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initLocked(ctx)
	return e.preferences.Clone()
}

// Interactions 返回行为日志快照，按时间顺序。
func (e *RecommendationEngine) Interactions(ctx context.Context) []core.InteractionRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initLocked(ctx)
	return e.log.Records()
}

// updatePreferences 串行执行一次显式偏好修改，成功后落盘。
func (e *RecommendationEngine) updatePreferences(ctx context.Context, fn func(p *core.PreferenceSet) (bool, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initLocked(ctx)
	changed, err := fn(e.preferences)
	if err != nil {
		return err
	}
	if changed {
		e.savePreferences(ctx)
	}
	return nil
}

// SetMinQuality 设置最低评分 [0,100]。
func (e *RecommendationEngine) SetMinQuality(ctx context.Context, v float64) error {
	return e.updatePreferences(ctx, func(p *core.PreferenceSet) (bool, error) {
		return true, profile.SetMinQuality(p, v)
	})
}

// SetPriceRange 设置价格区间。
func (e *RecommendationEngine) SetPriceRange(ctx context.Context, min, max float64) error {
	return e.updatePreferences(ctx, func(p *core.PreferenceSet) (bool, error) {
		return true, profile.SetPriceRange(p, min, max)
	})
}

// PreferCategory 显式偏好某类别。
func (e *RecommendationEngine) PreferCategory(ctx context.Context, category string) error {
	return e.updatePreferences(ctx, func(p *core.PreferenceSet) (bool, error) {
		return profile.PreferCategory(p, category)
	})
}

// DislikeCategory 显式排除某类别。
func (e *RecommendationEngine) DislikeCategory(ctx context.Context, category string) error {
	return e.updatePreferences(ctx, func(p *core.PreferenceSet) (bool, error) {
		return profile.DislikeCategory(p, category)
	})
}

// ForgetCategory 清除对某类别的显式态度。
func (e *RecommendationEngine) ForgetCategory(ctx context.Context, category string) error {
	return e.updatePreferences(ctx, func(p *core.PreferenceSet) (bool, error) {
		return profile.ForgetCategory(p, category)
	})
}

// Reset 清空画像、偏好与行为日志并删除持久化数据。
func (e *RecommendationEngine) Reset(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initLocked(ctx)
	e.profile = core.NewTasteProfile()
	e.preferences = core.NewPreferenceSet()
	e.log.Restore(nil)
	if e.persist {
		e.persistErr("all", e.state.Clear(ctx))
	}
	e.logger.Info().Msg("session state reset")
}
