package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrCatalogUnavailable 在尚未成功加载任何目录时返回，包装最近一次的加载错误
	ErrCatalogUnavailable = errors.New("no catalog loaded")
	// ErrCatalogPathDenied 在路径位于允许的目录之外时返回
	ErrCatalogPathDenied = errors.New("catalog path not allowed")
)

// CatalogStatus 描述当前目录的加载情况
type CatalogStatus struct {
	Source   string    `json:"source"`
	Digest   string    `json:"digest,omitempty"`
	Foods    int       `json:"foods"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// CatalogService 持有当前生效的目录。
// 每次加载都整体替换目录；加载失败会清空目录，直到提供合法的数据源为止。
type CatalogService struct {
	mu         sync.RWMutex
	current    *Catalog
	loadErr    error
	source     string
	upload     []byte
	fromUpload bool
	loadedAt   time.Time
	root       string

	log *zap.Logger
	now func() time.Time
}

// NewCatalogService 构造 CatalogService
func NewCatalogService(log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{
		loadErr: fmt.Errorf("%w: no source supplied", ErrCatalogUnreadable),
		log:     log,
		now:     time.Now,
	}
}

// RestrictTo 限制 LoadPath 只能读取 dir 目录（含子目录）下的文件
func (s *CatalogService) RestrictTo(dir string) error {
	root, err := filepath.Abs(strings.TrimSpace(dir))
	if err != nil {
		return fmt.Errorf("resolve catalog directory: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	s.mu.Lock()
	s.root = root
	s.mu.Unlock()
	return nil
}

// checkPath 校验路径位于允许的目录内；未设置目录时不做限制
func (s *CatalogService) checkPath(path string) error {
	s.mu.RLock()
	root := s.root
	s.mu.RUnlock()
	if root == "" {
		return nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnreadable, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s is outside %s", ErrCatalogPathDenied, path, root)
	}
	return nil
}

// LoadPath 从文件系统路径加载目录
func (s *CatalogService) LoadPath(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return s.install(path, nil, false, fmt.Errorf("%w: no path given", ErrCatalogUnreadable))
	}
	if err := s.checkPath(path); err != nil {
		s.log.Warn("catalog path rejected", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrCatalogUnreadable, err)
	}
	return s.install(path, data, false, err)
}

// LoadUpload 从上传的文件加载目录，并保留内容供 Reload 使用
func (s *CatalogService) LoadUpload(name string, r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrCatalogUnreadable, err)
	}
	return s.install(name, data, true, err)
}

// Reload 重新读取最近一次的数据源：上传内容重新解析，路径重新读盘
func (s *CatalogService) Reload() (*Catalog, error) {
	s.mu.RLock()
	source, upload, fromUpload := s.source, s.upload, s.fromUpload
	s.mu.RUnlock()

	if fromUpload {
		return s.install(source, upload, true, nil)
	}
	return s.LoadPath(source)
}

// Current 返回当前目录；没有可用目录时返回 ErrCatalogUnavailable
func (s *CatalogService) Current() (*Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, s.loadErr)
	}
	return s.current, nil
}

// Status 返回当前目录的来源、摘要与最近的错误
func (s *CatalogService) Status() CatalogStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := CatalogStatus{Source: s.source}
	if s.current != nil {
		status.Digest = s.current.Digest()
		status.Foods = s.current.Len()
		status.LoadedAt = s.loadedAt
	}
	if s.loadErr != nil {
		status.Error = s.loadErr.Error()
	}
	return status
}

func (s *CatalogService) install(source string, data []byte, fromUpload bool, readErr error) (*Catalog, error) {
	var catalog *Catalog
	err := readErr
	if err == nil {
		catalog, err = ParseCatalog(source, bytes.NewReader(data))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.source = source
	s.fromUpload = fromUpload
	s.upload = nil
	if fromUpload {
		s.upload = data
	}

	if err != nil {
		s.current = nil
		s.loadErr = err
		s.log.Warn("catalog load failed", zap.String("source", source), zap.Bool("upload", fromUpload), zap.Error(err))
		return nil, err
	}

	s.current = catalog
	s.loadErr = nil
	s.loadedAt = s.now()
	s.log.Info("catalog loaded",
		zap.String("source", source),
		zap.Bool("upload", fromUpload),
		zap.Int("foods", catalog.Len()),
		zap.String("digest", catalog.Digest()),
	)
	return catalog, nil
}
