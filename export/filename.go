// Package export 负责导出文件的命名与写入。
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	FilePrefix = "WriteMate-"
	FileExt    = ".pdf"
)

var (
	stampMu   sync.Mutex
	lastStamp int64
)

// FileName returns "WriteMate-<unix millis>.pdf" for t.
func FileName(t time.Time) string {
	return fmt.Sprintf("%s%d%s", FilePrefix, t.UnixMilli(), FileExt)
}

// NextFileName is FileName with a process-wide guarantee that two calls never
// return the same name: a stamp that is not newer than the previous one is
// moved one millisecond past it.
func NextFileName(t time.Time) string {
	stampMu.Lock()
	defer stampMu.Unlock()
	stamp := t.UnixMilli()
	if stamp <= lastStamp {
		stamp = lastStamp + 1
	}
	lastStamp = stamp
	return fmt.Sprintf("%s%d%s", FilePrefix, stamp, FileExt)
}

// EnsureDir creates the directory component of path (equivalent to mkdir -p)
// with mode 0755. It is a no-op if the directory already exists.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}

// WriteFile writes data to path, creating parent directories first.
func WriteFile(path string, data []byte) error {
	if err := EnsureDir(path); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入文件 %s 失败: %w", path, err)
	}
	return nil
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
