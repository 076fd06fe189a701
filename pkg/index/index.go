// Package index 维护本地仓库的文件目录 (路径 -> Manifest)
package index

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"maxcdc/pkg/core"
	"maxcdc/pkg/types"
)

// Entry 代表目录中的一条记录
type Entry struct {
	Path       string     `json:"path"`        // 相对路径 (如 "data/model.bin")
	Hash       types.Hash `json:"hash"`        // Manifest 的 Hash
	Size       int64      `json:"size"`        // 原始数据大小
	Chunks     int        `json:"chunks"`      // 切块数
	Window     int        `json:"window"`      // 切分时使用的窗口
	ModifiedAt time.Time  `json:"modified_at"` // 记录时间
}

// Index 管理本地目录状态
type Index struct {
	path    string // 物理文件路径 (.maxcdc/index.json)
	Entries map[string]Entry `json:"entries"`
	mu      sync.RWMutex
	saveMu  sync.Mutex // 串行化 Save，旧快照不能覆盖新快照
}

// NewIndex 加载或创建一个新的 Index
func NewIndex(indexPath string) (*Index, error) {
	idx := &Index{
		path:    indexPath,
		Entries: make(map[string]Entry),
	}

	data, err := os.ReadFile(indexPath)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("corrupted index file: %w", err)
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string]Entry)
	}
	return idx, nil
}

// Add 记录 path 对应的 Manifest
func (i *Index) Add(path string, m *core.Manifest) Entry {
	key := CleanPath(path)
	e := Entry{
		Path:       key,
		Hash:       m.ID(),
		Size:       m.TotalSize,
		Chunks:     len(m.Chunks),
		Window:     m.Window,
		ModifiedAt: time.Now(),
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.Entries[key] = e
	return e
}

func (i *Index) Get(path string) (Entry, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	e, ok := i.Entries[CleanPath(path)]
	return e, ok
}

func (i *Index) Remove(path string) {
	key := CleanPath(path)
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.Entries, key)
}

// Save 原子地将目录持久化到磁盘
func (i *Index) Save() error {
	i.saveMu.Lock()
	defer i.saveMu.Unlock()

	i.mu.RLock()
	data, err := json.MarshalIndent(i, "", "  ")
	i.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(i.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "index-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), i.path)
}

// Snapshot 返回当前 Entry 的副本，用于并发安全的读取
func (i *Index) Snapshot() map[string]Entry {
	i.mu.RLock()
	defer i.mu.RUnlock()

	snap := make(map[string]Entry, len(i.Entries))
	maps.Copy(snap, i.Entries)
	return snap
}

// Sorted 按路径排序返回所有 Entry
func (i *Index) Sorted() []Entry {
	snap := i.Snapshot()
	entries := make([]Entry, 0, len(snap))
	for _, k := range slices.Sorted(maps.Keys(snap)) {
		entries = append(entries, snap[k])
	}
	return entries
}

func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.Entries)
}

func CleanPath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
