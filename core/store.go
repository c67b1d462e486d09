package core

import "context"

// Store 是存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 领域层不依赖基础设施层
//
// 使用场景：
//   - 口味画像、偏好、行为日志的持久化（store.StateStore 在其上做 JSON 编解码）
//
// 实现：
//   - store.MemoryStore（测试 / 单机）
//   - store.RedisStore
//   - store.BadgerStore（本地持久化）
type Store interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Get 读取单个 key 的值，不存在时返回 ErrStoreNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	// Delete 删除单个 key
	Delete(ctx context.Context, key string) error

	// BatchGet 批量读取，不存在的 key 不出现在结果中
	BatchGet(ctx context.Context, keys []string) (map[string][]byte, error)

	// Close 关闭连接/释放资源
	Close() error
}

// CatalogSource 是外部目录服务的抽象，由调用方提供。
type CatalogSource interface {
	Load(ctx context.Context) ([]Wine, error)
}

// CatalogSourceFunc 让普通函数实现 CatalogSource。
type CatalogSourceFunc func(ctx context.Context) ([]Wine, error)

func (f CatalogSourceFunc) Load(ctx context.Context) ([]Wine, error) {
	return f(ctx)
}

// Store 错误定义（使用统一的 DomainError）
var (
	// ErrStoreNotFound 表示 key 不存在
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")
)

// IsStoreNotFound 检查错误是否为 key 不存在
func IsStoreNotFound(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleStore {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}
