package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/winerec/core"
)

// document 是目录文件/接口的外层结构，也接受顶层直接是数组。
type document struct {
	Wines []core.Wine `json:"wines" yaml:"wines"`
}

// Decode 解析 JSON 或 YAML 格式的目录数据。
// format 为 "yaml"/"yml" 时按 YAML 解析，其余按 JSON。
func Decode(data []byte, format string) ([]core.Wine, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	switch strings.ToLower(format) {
	case "yaml", "yml":
		var list []core.Wine
		if err := yaml.Unmarshal(data, &list); err == nil {
			return list, nil
		}
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml catalog: %w", err)
		}
		return doc.Wines, nil
	default:
		if data[0] == '[' {
			var list []core.Wine
			if err := json.Unmarshal(data, &list); err != nil {
				return nil, fmt.Errorf("decode json catalog: %w", err)
			}
			return list, nil
		}
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode json catalog: %w", err)
		}
		return doc.Wines, nil
	}
}

// StaticSource 固定目录，用于测试与内嵌数据。
type StaticSource []core.Wine

func (s StaticSource) Load(ctx context.Context) ([]core.Wine, error) {
	out := make([]core.Wine, len(s))
	copy(out, s)
	return out, nil
}

// FileSource 从本地文件读取目录，按扩展名选择格式。
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Load(ctx context.Context) ([]core.Wine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeCatalogUnavailable,
			fmt.Sprintf("catalog: read %s", s.Path), err)
	}
	return Decode(data, strings.TrimPrefix(filepath.Ext(s.Path), "."))
}

// HTTPSource 通过 HTTP GET 拉取目录，响应体为 JSON，
// Content-Type 含 yaml 时按 YAML 解析。
type HTTPSource struct {
	URL    string
	client *http.Client
}

// NewHTTPSource 创建 HTTP 目录源。
//
// 用法：
//
//	src := catalog.NewHTTPSource("http://api.example.com/wines", 5*time.Second)
//	store := catalog.New(src)
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{URL: url, client: &http.Client{Timeout: timeout}}
}

// NewHTTPSourceWithClient 使用自定义 HTTP 客户端
func NewHTTPSourceWithClient(url string, client *http.Client) *HTTPSource {
	return &HTTPSource{URL: url, client: client}
}

func (s *HTTPSource) Load(ctx context.Context) ([]core.Wine, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeCatalogUnavailable, "catalog: request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeCatalogUnavailable,
			fmt.Sprintf("catalog: status=%d, body=%s", resp.StatusCode, string(body)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeCatalogUnavailable, "catalog: read response", err)
	}
	format := "json"
	if strings.Contains(resp.Header.Get("Content-Type"), "yaml") {
		format = "yaml"
	}
	return Decode(data, format)
}
