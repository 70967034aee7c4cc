// Package watch 监听表格文件变化并批量重新加载
//
// 变更事件在 BatchDelay 内合并，每个文件只重载一次，结果交给回调。
// 编辑器临时文件（~$ 开头、~ 结尾或包含 #）不会触发重载。
package watch

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/neko233-com/csv233-go/pkg/csv233"
)

// DefaultBatchDelay 批量重载的默认等待时间
const DefaultBatchDelay = 500 * time.Millisecond

// ErrClosed 监听器已关闭
var ErrClosed = errors.New("csv233/watch: watcher closed")

// LoadFunc 加载单个文件
type LoadFunc[T any] func(path string) (T, error)

// ReloadFunc 重载回调，err 非 nil 时 value 为零值
type ReloadFunc[T any] func(path string, value T, err error)

// Option 监听选项
type Option func(*config)

type config struct {
	batchDelay time.Duration
}

// WithBatchDelay 设置批量重载等待时间，d <= 0 时使用默认值
func WithBatchDelay(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.batchDelay = d
		}
	}
}

// Watcher 文件监听器
type Watcher[T any] struct {
	load     LoadFunc[T]
	onReload ReloadFunc[T]
	cfg      config

	fs *fsnotify.Watcher

	mu      sync.Mutex
	files   map[string]bool
	dirs    map[string]bool
	pending map[string]struct{}
	timer   *time.Timer
	started bool
	closed  bool

	wg sync.WaitGroup
}

// New 创建监听器
// 参数:
//
//	load: 文件加载函数
//	onReload: 每次重载完成后的回调
//	opts: 监听选项
func New[T any](load LoadFunc[T], onReload ReloadFunc[T], opts ...Option) (*Watcher[T], error) {
	if load == nil || onReload == nil {
		return nil, errors.New("csv233/watch: load and onReload are required")
	}
	cfg := config{batchDelay: DefaultBatchDelay}
	for _, opt := range opts {
		opt(&cfg)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监听器失败: %w", err)
	}
	return &Watcher[T]{
		load:     load,
		onReload: onReload,
		cfg:      cfg,
		fs:       fs,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		pending:  make(map[string]struct{}),
	}, nil
}

// Add 监听文件，实际监听的是其所在目录
func (w *Watcher[T]) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	dir := filepath.Dir(abs)
	if !w.dirs[dir] {
		if err := w.fs.Add(dir); err != nil {
			csv233.GetLogger().Error(err, "添加监听目录失败", "path", dir)
			return err
		}
		w.dirs[dir] = true
	}
	w.files[abs] = true
	return nil
}

// Files 已监听的文件，按路径排序
func (w *Watcher[T]) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Start 启动事件循环，重复调用无效果
func (w *Watcher[T]) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if w.started {
		return nil
	}
	w.started = true

	w.wg.Add(1)
	go w.loop()

	csv233.GetLogger().Info("文件监听已启动（批量重载模式）",
		"files", len(w.files),
		"batchDelay", w.cfg.batchDelay.Milliseconds())
	return nil
}

// Close 停止监听，等待事件循环和正在执行的重载结束；尚未触发的批量重载被丢弃
// 不能在 onReload 回调中调用
func (w *Watcher[T]) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		if w.timer.Stop() {
			// 计时器未触发，flush 不会运行
			w.wg.Done()
		}
		w.timer = nil
	}
	w.mu.Unlock()

	err := w.fs.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher[T]) loop() {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.schedule(event.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			csv233.GetLogger().Error(err, "文件监听错误")
		}
	}
}

// schedule 把文件加入待重载队列，第一个变更启动计时器
func (w *Watcher[T]) schedule(name string) {
	if isTempFile(filepath.Base(name)) {
		return
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || !w.files[abs] {
		return
	}
	w.pending[abs] = struct{}{}
	csv233.GetLogger().V(1).Info("检测到文件变化", "file", abs, "pending", len(w.pending))
	if w.timer == nil {
		w.wg.Add(1)
		w.timer = time.AfterFunc(w.cfg.batchDelay, w.flush)
	}
}

func (w *Watcher[T]) flush() {
	defer w.wg.Done()

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.timer = nil
	w.mu.Unlock()

	sort.Strings(paths)
	failed := 0
	for _, p := range paths {
		value, err := w.load(p)
		if err != nil {
			failed++
			csv233.GetLogger().Error(err, "重载失败", "file", p)
			var zero T
			value = zero
		}
		w.onReload(p, value, err)
	}
	csv233.GetLogger().Info("批量重载完成", "total", len(paths), "success", len(paths)-failed, "failed", failed)
}

// isTempFile 编辑器和 Office 的临时文件
func isTempFile(base string) bool {
	return strings.HasPrefix(base, "~$") ||
		strings.HasSuffix(base, "~") ||
		strings.Contains(base, "#")
}
