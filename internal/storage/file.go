package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	logx "fairybot/pkg/logx"
)

// fileStore is a dependency-free persistence backend: one JSON object
// holding the last-sent date.
//
// Earlier deployments wrote the date either as a string ("20240615") or as
// a number (20240615); reads accept both, writes always produce a number.
//
// A corrupt or unreadable record is reported as "no record" so the gate
// fails open toward sending; the next successful delivery rewrites it.
type fileStore struct {
	log  logx.Logger
	path string

	mu sync.Mutex
}

type fileRecord struct {
	Date json.RawMessage `json:"date"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = "./record.json"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &fileStore{log: log, path: path}, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) LastSent(ctx context.Context) (int, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	var rec fileRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		s.log.Warn("record file unreadable, treating as absent", logx.String("path", s.path), logx.Err(err))
		return 0, false, nil
	}

	date, err := parseDateValue(rec.Date)
	if err != nil {
		s.log.Warn("record date unreadable, treating as absent", logx.String("path", s.path), logx.Err(err))
		return 0, false, nil
	}
	return date, true, nil
}

func (s *fileStore) SetLastSent(ctx context.Context, date int) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.Marshal(map[string]int{"date": date})
	if err != nil {
		return err
	}

	// Whole-file replace via rename so a crash never leaves a partial record.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func parseDateValue(raw json.RawMessage) (int, error) {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return 0, errors.New("record has no date field")
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return 0, fmt.Errorf("date is neither number nor string: %s", string(raw))
	}
	n, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil {
		return 0, fmt.Errorf("date string %q: %w", str, err)
	}
	return n, nil
}
