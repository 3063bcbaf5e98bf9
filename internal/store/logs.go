package store

import (
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/user/cinelist/internal/model"
)

// DefaultMaxLogs 日志环的默认容量
const DefaultMaxLogs = 1000

// LogStore 有界的内存日志环，超出容量时淘汰最旧的条目
type LogStore struct {
	mu      sync.Mutex
	logs    []model.LogEntry
	maxLogs int
}

// NewLogStore 创建日志存储，maxLogs <= 0 时使用默认容量
func NewLogStore(maxLogs int) *LogStore {
	if maxLogs <= 0 {
		maxLogs = DefaultMaxLogs
	}
	return &LogStore{
		logs:    make([]model.LogEntry, 0, maxLogs),
		maxLogs: maxLogs,
	}
}

// Log 追加一条日志
func (s *LogStore) Log(level model.LogLevel, message, source string, context map[string]any) {
	entry := model.LogEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Source:    source,
		Context:   context,
	}

	s.mu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > s.maxLogs {
		s.logs = s.logs[len(s.logs)-s.maxLogs:]
	}
	s.mu.Unlock()

	// 同步打到进程日志，便于容器环境排查
	contextStr := ""
	if context != nil {
		if b, err := json.Marshal(context); err == nil {
			contextStr = " " + string(b)
		}
	}
	log.Printf("[%s] [%s] %s%s", strings.ToUpper(string(level)), source, message, contextStr)
}

// GetLogs 返回最近 limit 条日志，按时间正序；limit <= 0 返回全部
func (s *LogStore) GetLogs(limit int) []model.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := s.logs
	if limit > 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	out := make([]model.LogEntry, len(logs))
	copy(out, logs)
	return out
}

// Clear 清空日志
func (s *LogStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = s.logs[:0]
}
