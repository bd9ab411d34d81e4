package mapping

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Loader 加载映射文档，path 为空时使用内置文档；支持监听文件变更热加载。
type Loader struct {
	path     string
	mapper   *YAMLMapper
	logger   *zap.Logger
	mu       sync.Mutex
	onChange []func(Profiles)
}

// NewLoader 创建 Loader 并完成首次加载。
func NewLoader(path string, logger *zap.Logger) (*Loader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loader{path: path, logger: logger}
	profiles, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mapper = NewYAMLMapper(profiles)
	return l, nil
}

// Mapper 返回随文件变更自动更新的 Mapper。
func (l *Loader) Mapper() *YAMLMapper {
	return l.mapper
}

// OnChange 注册重新加载成功后的回调。
func (l *Loader) OnChange(fn func(Profiles)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Reload 立即重新读取映射文档，失败时保留旧规则。
func (l *Loader) Reload() (Profiles, error) {
	profiles, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mapper.Swap(profiles)
	l.mu.Lock()
	callbacks := append([]func(Profiles)(nil), l.onChange...)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(profiles)
	}
	return profiles, nil
}

// Watch 在后台监听映射文件，写入或重建时热加载。返回停止函数。
func (l *Loader) Watch() (stop func(), err error) {
	if l.path == "" {
		return func() {}, nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建映射文件监听失败: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("监听映射文件 %s 失败: %w", l.path, err)
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if _, err := l.Reload(); err != nil {
					l.logger.Warn("mapping reload failed, keep previous rules", zap.String("path", l.path), zap.Error(err))
					continue
				}
				l.logger.Info("mapping reloaded", zap.String("path", l.path))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger.Warn("mapping watcher error", zap.Error(err))
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

func (l *Loader) load() (Profiles, error) {
	if l.path == "" {
		return Parse(defaultDocument)
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("读取映射文件 %s 失败: %w", l.path, err)
	}
	return Parse(data)
}
