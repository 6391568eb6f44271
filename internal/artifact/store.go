// Package artifact uploads scan reports to object storage.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when no report is stored under a key.
var ErrNotFound = errors.New("artifact not found")

// Store persists report files per scan run.
type Store interface {
	Put(ctx context.Context, runID, name string, content []byte) error
	Get(ctx context.Context, runID, name string) ([]byte, error)
	List(ctx context.Context, runID string) ([]string, error)
}

// keyPrefix namespaces every report object.
const keyPrefix = "reports"

func objectKey(runID, name string) string {
	normalized := strings.TrimLeft(strings.TrimSpace(name), "/")
	return keyPrefix + "/" + strings.TrimSpace(runID) + "/" + normalized
}

func runPrefix(runID string) string {
	return keyPrefix + "/" + strings.TrimSuffix(strings.TrimSpace(runID), "/") + "/"
}

func checkKey(runID, name string) error {
	if strings.TrimSpace(runID) == "" {
		return fmt.Errorf("run_id is required")
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// MemoryStore keeps reports in memory. It backs dry runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, runID, name string, content []byte) error {
	if err := checkKey(runID, name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey(runID, name)] = append([]byte{}, content...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, runID, name string) ([]byte, error) {
	if err := checkKey(runID, name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[objectKey(runID, name)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte{}, data...), nil
}

func (s *MemoryStore) List(_ context.Context, runID string) ([]string, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, fmt.Errorf("run_id is required")
	}
	prefix := runPrefix(runID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0)
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			names = append(names, strings.TrimPrefix(k, prefix))
		}
	}
	sort.Strings(names)
	return names, nil
}
