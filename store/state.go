package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/rushteam/winerec/core"
)

// 持久化 key 后缀，实际 key 为 {Namespace}:{suffix}。
const (
	KeyTasteProfile   = "taste-profile"
	KeyPreferenceSet  = "preference-set"
	KeyInteractionLog = "interaction-log"
)

// State 是一个会话的全部可持久化状态。
type State struct {
	Profile      *core.TasteProfile
	Preferences  *core.PreferenceSet
	Interactions []core.InteractionRecord
}

// DefaultState 返回全新会话的默认状态。
func DefaultState() State {
	return State{
		Profile:      core.NewTasteProfile(),
		Preferences:  core.NewPreferenceSet(),
		Interactions: []core.InteractionRecord{},
	}
}

// StateStore 在 core.Store 之上按命名空间读写会话状态，值为 JSON。
type StateStore struct {
	backend   core.Store
	namespace string
}

func NewStateStore(backend core.Store, namespace string) *StateStore {
	if namespace == "" {
		namespace = "winerec"
	}
	return &StateStore{backend: backend, namespace: namespace}
}

// Key 返回带命名空间的完整 key。
func (s *StateStore) Key(suffix string) string {
	return s.namespace + ":" + suffix
}

// Backend 返回底层存储。
func (s *StateStore) Backend() core.Store {
	return s.backend
}

// Load 一次读取三份状态。缺失的 key 使用默认值；
// 损坏的值同样回退到默认值，并返回 PERSISTENCE_READ 错误（state 仍然可用）。
func (s *StateStore) Load(ctx context.Context) (State, error) {
	st := DefaultState()
	keys := []string{s.Key(KeyTasteProfile), s.Key(KeyPreferenceSet), s.Key(KeyInteractionLog)}
	raw, err := s.backend.BatchGet(ctx, keys)
	if err != nil {
		return st, core.WrapDomainError(core.ModuleStore, core.ErrorCodePersistenceRead,
			fmt.Sprintf("store: read state from %s", s.backend.Name()), err)
	}

	var errs []error
	if data, ok := raw[keys[0]]; ok {
		var p core.TasteProfile
		if err := json.Unmarshal(data, &p); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", KeyTasteProfile, err))
		} else {
			p.Normalize()
			st.Profile = &p
		}
	}
	if data, ok := raw[keys[1]]; ok {
		var p core.PreferenceSet
		if err := json.Unmarshal(data, &p); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", KeyPreferenceSet, err))
		} else {
			p.Normalize()
			st.Preferences = &p
		}
	}
	if data, ok := raw[keys[2]]; ok {
		var log []core.InteractionRecord
		if err := json.Unmarshal(data, &log); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", KeyInteractionLog, err))
		} else {
			st.Interactions = normalizeLog(log)
		}
	}

	if len(errs) > 0 {
		return st, core.WrapDomainError(core.ModuleStore, core.ErrorCodePersistenceRead,
			"store: corrupt state", errors.Join(errs...))
	}
	return st, nil
}

// normalizeLog 保证时间戳非递减并且不超过上限。
func normalizeLog(log []core.InteractionRecord) []core.InteractionRecord {
	if log == nil {
		return []core.InteractionRecord{}
	}
	sort.SliceStable(log, func(i, j int) bool { return log[i].Timestamp < log[j].Timestamp })
	if len(log) > core.MaxInteractions {
		log = log[len(log)-core.MaxInteractions:]
	}
	return log
}

func (s *StateStore) write(ctx context.Context, suffix string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return core.WrapDomainError(core.ModuleStore, core.ErrorCodePersistenceWrite,
			"store: encode "+suffix, err)
	}
	if err := s.backend.Set(ctx, s.Key(suffix), data); err != nil {
		return core.WrapDomainError(core.ModuleStore, core.ErrorCodePersistenceWrite,
			fmt.Sprintf("store: write %s to %s", suffix, s.backend.Name()), err)
	}
	return nil
}

func (s *StateStore) SaveProfile(ctx context.Context, p *core.TasteProfile) error {
	return s.write(ctx, KeyTasteProfile, p)
}

func (s *StateStore) SavePreferences(ctx context.Context, p *core.PreferenceSet) error {
	return s.write(ctx, KeyPreferenceSet, p)
}

func (s *StateStore) SaveInteractions(ctx context.Context, log []core.InteractionRecord) error {
	if log == nil {
		log = []core.InteractionRecord{}
	}
	return s.write(ctx, KeyInteractionLog, log)
}

// Clear 删除该命名空间下的全部状态。
func (s *StateStore) Clear(ctx context.Context) error {
	for _, suffix := range []string{KeyTasteProfile, KeyPreferenceSet, KeyInteractionLog} {
		if err := s.backend.Delete(ctx, s.Key(suffix)); err != nil {
			return core.WrapDomainError(core.ModuleStore, core.ErrorCodePersistenceWrite,
				"store: delete "+suffix, err)
		}
	}
	return nil
}
