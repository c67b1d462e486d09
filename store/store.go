// Package store 提供 core.Store 的实现（memory / redis / badger），
// 以及在其上按会话命名空间读写口味画像、偏好和行为日志的 StateStore。
//
// 示例：
//
//	var backend core.Store = store.NewMemoryStore()
//	state := store.NewStateStore(backend, "user:42")
package store
