package store

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kilianp07/gridstatus/core/model"
	corestore "github.com/kilianp07/gridstatus/core/store"
)

// RotatingJSONLStore appends observations to a JSONL file with automatic
// rotation. Reads replay every file, later lines replacing earlier ones with
// the same key.
type RotatingJSONLStore struct {
	mu     sync.Mutex
	logger *lumberjack.Logger
	path   string
}

// NewRotatingJSONLStore creates a store with rotation options in megabytes and days.
func NewRotatingJSONLStore(path string, maxSizeMB, maxBackups, maxAgeDays int) (*RotatingJSONLStore, error) {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   false,
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &RotatingJSONLStore{logger: lj, path: path}, nil
}

// Append writes one line per observation and triggers rotation if needed.
func (s *RotatingJSONLStore) Append(_ context.Context, obs []model.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := json.NewEncoder(s.logger)
	for _, o := range obs {
		if err := enc.Encode(o); err != nil {
			return err
		}
	}
	return nil
}

// files returns rotated backups oldest first, then the active file.
func (s *RotatingJSONLStore) files() ([]string, error) {
	ext := filepath.Ext(s.path)
	prefix := strings.TrimSuffix(s.path, ext)
	backups, err := filepath.Glob(prefix + "-*" + ext)
	if err != nil {
		return nil, err
	}
	sort.Strings(backups)
	return append(backups, s.path), nil
}

func (s *RotatingJSONLStore) load(ctx context.Context, q corestore.Query) ([]model.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, err := s.files()
	if err != nil {
		return nil, err
	}
	byKey := map[string]model.Observation{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, err := os.Open(f)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			var o model.Observation
			if err := json.Unmarshal(scanner.Bytes(), &o); err != nil {
				continue
			}
			if corestore.Match(o, q) {
				byKey[o.Key()] = o
			}
		}
		_ = file.Close()
	}
	out := make([]model.Observation, 0, len(byKey))
	for _, o := range byKey {
		out = append(out, o)
	}
	corestore.Sort(out)
	return out, nil
}

// Query reads all log files including rotated ones.
func (s *RotatingJSONLStore) Query(ctx context.Context, q corestore.Query) ([]model.Observation, error) {
	out, err := s.load(ctx, q)
	if err != nil {
		return nil, err
	}
	return corestore.Limit(out, q.Limit), nil
}

func (s *RotatingJSONLStore) Latest(ctx context.Context, iso string, dataset model.Dataset) ([]model.Observation, error) {
	out, err := s.load(ctx, corestore.Query{ISO: iso, Dataset: dataset})
	if err != nil {
		return nil, err
	}
	return corestore.LatestPerSeries(out), nil
}

// Close closes the underlying writer.
func (s *RotatingJSONLStore) Close() error {
	return s.logger.Close()
}
