// Package store 保存当前的字帖设置与最近的设置记录。
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/ByLCY/writemate/layout"
)

// Key 是快照在后端中的键。
const Key = "write-mate-settings"

// HistoryLimit 是保留的设置记录数量。
const HistoryLimit = 3

// Preset 是一份带标签的设置快照。SavedAt 为 Unix 毫秒。
type Preset struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	SavedAt  int64           `json:"savedAt"`
	Snapshot layout.Settings `json:"snapshot"`
}

// State 是持久化的内容。
type State struct {
	Settings layout.Settings `json:"settings"`
	History  []Preset        `json:"history"`
}

// Store 串行化所有修改，每次修改后立即写回后端。
type Store struct {
	mu      sync.Mutex
	backend Backend
	state   State
	newID   func() string
}

// Open 从后端读取状态。数据不存在或无法解析时使用默认设置。
func Open(ctx context.Context, backend Backend) (*Store, error) {
	s := &Store{
		backend: backend,
		state:   State{Settings: layout.DefaultSettings()},
		newID:   uuid.NewString,
	}
	data, ok, err := backend.Load(ctx, Key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s, nil
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Warnf("已保存的设置无法解析，改用默认值: %v", err)
		return s, nil
	}
	state.Settings = state.Settings.Normalize()
	if len(state.History) > HistoryLimit {
		state.History = state.History[:HistoryLimit]
	}
	s.state = state
	return s, nil
}

// Settings 返回当前设置。
func (s *Store) Settings() layout.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings
}

// History 返回设置记录，最新的在前。
func (s *Store) History() []Preset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Preset(nil), s.state.History...)
}

// SetTemplate 切换模板，其余设置保持不变。
func (s *Store) SetTemplate(ctx context.Context, templateID string) error {
	return s.Update(ctx, func(st *layout.Settings) { st.TemplateID = templateID })
}

// Update 修改当前设置；结果会被规范化。
func (s *Store) Update(ctx context.Context, mutate func(*layout.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	mutate(&next.Settings)
	next.Settings = next.Settings.Normalize()
	return s.commit(ctx, next)
}

// SavePreset 把当前设置存为一条记录，只保留最新的 HistoryLimit 条。
func (s *Store) SavePreset(ctx context.Context, now time.Time) (Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	preset := Preset{
		ID:       s.newID(),
		Label:    "設定 " + now.Format("15:04"),
		SavedAt:  now.UnixMilli(),
		Snapshot: s.state.Settings,
	}
	next := s.state
	next.History = append([]Preset{preset}, s.state.History...)
	if len(next.History) > HistoryLimit {
		next.History = next.History[:HistoryLimit]
	}
	if err := s.commit(ctx, next); err != nil {
		return Preset{}, err
	}
	return preset, nil
}

// ApplyPreset 以记录覆盖当前设置。id 不存在时不做任何事并返回 false。
func (s *Store) ApplyPreset(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	preset, ok := lo.Find(s.state.History, func(p Preset) bool { return p.ID == id })
	if !ok {
		return false, nil
	}
	next := s.state
	next.Settings = preset.Snapshot
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// ClearPresets 清空全部记录。
func (s *Store) ClearPresets(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state
	next.History = nil
	return s.commit(ctx, next)
}

// Close 关闭后端。
func (s *Store) Close() error { return s.backend.Close() }

// commit 写回后端成功后才替换内存状态。调用方须持有锁。
func (s *Store) commit(ctx context.Context, next State) error {
	if next.History == nil {
		next.History = []Preset{}
	}
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("序列化设置失败: %w", err)
	}
	if err := s.backend.Save(ctx, Key, data); err != nil {
		return fmt.Errorf("保存设置失败: %w", err)
	}
	s.state = next
	return nil
}
