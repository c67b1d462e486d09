package profile

import (
	"fmt"

	"github.com/rushteam/winerec/core"
)

// 显式偏好操作，来自用户在筛选面板上的设置。

// SetMinQuality 设置最低评分，范围 [0,100]。
func SetMinQuality(prefs *core.PreferenceSet, v float64) error {
	if v < 0 || v > 100 {
		return core.NewDomainError(core.ModuleProfile, core.ErrorCodeInvalidInput,
			fmt.Sprintf("min quality %v out of range [0,100]", v))
	}
	prefs.MinQuality = v
	return nil
}

// SetPriceRange 设置价格区间，min 不能大于 max，且都不能为负。
func SetPriceRange(prefs *core.PreferenceSet, min, max float64) error {
	if min < 0 || max < 0 || min > max {
		return core.NewDomainError(core.ModuleProfile, core.ErrorCodeInvalidInput,
			fmt.Sprintf("invalid price range [%v,%v]", min, max))
	}
	prefs.PriceRange = core.PriceRange{Min: min, Max: max}
	return nil
}

func requireCategory(category string) error {
	if category == "" {
		return core.NewDomainError(core.ModuleProfile, core.ErrorCodeInvalidInput, "category is empty")
	}
	return nil
}

// PreferCategory 把类别加入偏好（同时移出不喜欢）。
func PreferCategory(prefs *core.PreferenceSet, category string) (bool, error) {
	if err := requireCategory(category); err != nil {
		return false, err
	}
	return prefs.PreferCategory(category), nil
}

// DislikeCategory 把类别加入不喜欢（同时移出偏好）。
func DislikeCategory(prefs *core.PreferenceSet, category string) (bool, error) {
	if err := requireCategory(category); err != nil {
		return false, err
	}
	return prefs.DislikeCategory(category), nil
}

// ForgetCategory 从两个列表中移除类别。
func ForgetCategory(prefs *core.PreferenceSet, category string) (bool, error) {
	if err := requireCategory(category); err != nil {
		return false, err
	}
	return prefs.ForgetCategory(category), nil
}
