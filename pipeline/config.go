package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Config 是自定义视图的配置结构（支持 YAML/JSON）。
//
//	views:
//	  - name: french-reds
//	    nodes:
//	      - type: recall.catalog
//	      - type: filter.expr
//	        config: {expr: 'wine.country == "France" && wine.style == "red"'}
//	      - type: rank.quality
type Config struct {
	Views []ViewConfig `yaml:"views" json:"views"`
}

// ViewConfig 是一个命名视图。
type ViewConfig struct {
	Name  string       `yaml:"name" json:"name" koanf:"name"`
	Nodes []NodeConfig `yaml:"nodes" json:"nodes" koanf:"nodes"`
}

// NodeConfig 是单个 Node 的配置。
type NodeConfig struct {
	Type   string         `yaml:"type" json:"type" koanf:"type"`       // recall.catalog / filter.expr / rank.quality 等
	Config map[string]any `yaml:"config" json:"config" koanf:"config"` // Node 特定配置
}

// LoadFromFile 按扩展名加载 YAML 或 JSON 配置。
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}
	return &cfg, nil
}

// Build 根据配置构建 Pipeline（需要 NodeFactory 注册 Node 构建器）。
func (c ViewConfig) Build(factory *NodeFactory) (*Pipeline, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("view name is required")
	}
	nodes := make([]Node, 0, len(c.Nodes))
	for _, nc := range c.Nodes {
		node, err := factory.Build(nc.Type, nc.Config)
		if err != nil {
			return nil, fmt.Errorf("view %s: build node %s: %w", c.Name, nc.Type, err)
		}
		nodes = append(nodes, node)
	}
	return &Pipeline{Name: c.Name, Nodes: nodes}, nil
}

// NodeFactory 用于根据配置构建 Node 实例。
type NodeFactory struct {
	builders map[string]NodeBuilder
}

func NewNodeFactory() *NodeFactory {
	return &NodeFactory{
		builders: make(map[string]NodeBuilder),
	}
}

// Register 注册 Node 构建器。
func (f *NodeFactory) Register(nodeType string, builder NodeBuilder) {
	f.builders[nodeType] = builder
}

// Build 根据类型和配置构建 Node。
func (f *NodeFactory) Build(nodeType string, config map[string]any) (Node, error) {
	builder, ok := f.builders[nodeType]
	if !ok {
		return nil, fmt.Errorf("unknown node type: %s", nodeType)
	}
	return builder(config)
}
