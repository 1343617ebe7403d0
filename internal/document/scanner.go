package document

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileInfo describes an importable document found in the document directory
type FileInfo struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	Format       Format `json:"format"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modifiedTime"`
}

// ScanResult is the outcome of one directory listing
type ScanResult struct {
	Files     []FileInfo    `json:"files"`
	FromCache bool          `json:"fromCache"`
	ScanTime  time.Duration `json:"-"`
	Truncated bool          `json:"truncated"`
}

// Scanner lists supported documents under a directory with depth, count and time limits.
// Listings are cached for ttl.
type Scanner struct {
	maxDepth  int
	fileLimit int
	timeLimit time.Duration
	ttl       time.Duration

	mu     sync.Mutex
	cached map[string]cachedScan
}

type cachedScan struct {
	files     []FileInfo
	truncated bool
	at        time.Time
}

// NewScanner creates a scanner. Zero limits mean unlimited.
func NewScanner(maxDepth, fileLimit int, timeLimit, ttl time.Duration) *Scanner {
	return &Scanner{
		maxDepth:  maxDepth,
		fileLimit: fileLimit,
		timeLimit: timeLimit,
		ttl:       ttl,
		cached:    make(map[string]cachedScan),
	}
}

// DefaultScanner allows 5 levels, 100 files and 3 seconds, cached for 5 minutes
func DefaultScanner() *Scanner {
	return NewScanner(5, 100, 3*time.Second, 5*time.Minute)
}

// Scan lists the documents under root, sorted by path
func (s *Scanner) Scan(ctx context.Context, root string) (*ScanResult, error) {
	s.mu.Lock()
	if c, ok := s.cached[root]; ok && time.Since(c.at) <= s.ttl {
		s.mu.Unlock()
		return &ScanResult{Files: c.files, FromCache: true, Truncated: c.truncated}, nil
	}
	s.mu.Unlock()

	start := time.Now()
	result := &ScanResult{Files: []FileInfo{}}
	visited := make(map[string]bool)
	if err := s.walk(ctx, root, 0, start, visited, result); err != nil {
		return nil, err
	}
	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].Path < result.Files[j].Path })
	result.ScanTime = time.Since(start)

	s.mu.Lock()
	s.cached[root] = cachedScan{files: result.Files, truncated: result.Truncated, at: time.Now()}
	s.mu.Unlock()

	return result, nil
}

// Invalidate drops any cached listing for root
func (s *Scanner) Invalidate(root string) {
	s.mu.Lock()
	delete(s.cached, root)
	s.mu.Unlock()
}

func (s *Scanner) walk(ctx context.Context, dir string, depth int, start time.Time, visited map[string]bool, result *ScanResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.maxDepth > 0 && depth >= s.maxDepth {
		return nil
	}
	if s.timeLimit > 0 && time.Since(start) > s.timeLimit {
		result.Truncated = true
		return nil
	}

	real, err := filepath.EvalSymlinks(dir)
	if err != nil || visited[real] {
		return nil
	}
	visited[real] = true

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil // unreadable directories are skipped
	}

	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") || entry.Type()&os.ModeSymlink != 0 {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if err := s.walk(ctx, path, depth+1, start, visited, result); err != nil {
				return err
			}
			if result.Truncated {
				return nil
			}
			continue
		}

		format, ok := FormatFromPath(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		result.Files = append(result.Files, FileInfo{
			Name:         entry.Name(),
			Path:         path,
			Format:       format,
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		if s.fileLimit > 0 && len(result.Files) >= s.fileLimit {
			result.Truncated = true
			return nil
		}
	}
	return nil
}
