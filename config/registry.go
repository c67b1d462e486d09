package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/winerec/pipeline"
)

// 使用配置驱动的自定义视图时，需在入口处 import _ "github.com/rushteam/winerec/config/builders"
// 以触发内置 Node（recall.catalog、filter.expr、rank.relevance、rerank.backfill 等）的 init 注册。

// NodeBuilder 与 pipeline.NodeBuilder 一致：根据 config 构建 Node。
// 各组件在 init 中调用 Register(typeName, builder) 即可被配置驱动。
type NodeBuilder = pipeline.NodeBuilder

var (
	defaultBuilders   = make(map[string]NodeBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种 Node 的构建逻辑，供 DefaultFactory 与配置驱动使用。
// 建议在各组件的 init 中调用，例如：func init() { config.Register("recall.catalog", BuildCatalogNode) }
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的 Node 类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回基于当前注册表构建的 NodeFactory，包含所有通过 Register 注册的 Node 类型。
func DefaultFactory() *pipeline.NodeFactory {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range defaultBuilders {
		f.Register(typeName, builder)
	}
	return f
}

// ValidateViews 校验自定义视图：名称非空且不重复，所有 node 类型均已注册；
// 若有未支持类型则返回包含已支持列表的错误。
func ValidateViews(views []pipeline.ViewConfig) error {
	seen := make(map[string]bool, len(views))
	for _, v := range views {
		if v.Name == "" {
			return fmt.Errorf("view name is required")
		}
		if seen[v.Name] {
			return fmt.Errorf("duplicate view %q", v.Name)
		}
		seen[v.Name] = true
		if len(v.Nodes) == 0 {
			return fmt.Errorf("view %q has no nodes", v.Name)
		}
		for _, nc := range v.Nodes {
			defaultBuildersMu.RLock()
			_, ok := defaultBuilders[nc.Type]
			defaultBuildersMu.RUnlock()
			if !ok {
				return fmt.Errorf("view %q: unsupported node type %q (supported: %v)", v.Name, nc.Type, SupportedTypes())
			}
		}
	}
	return nil
}
