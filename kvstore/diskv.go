package kvstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/peterbourgon/diskv/v3"
)

// Disk is a Store backed by diskv: one file per key under a base directory.
type Disk struct {
	mu    sync.Mutex
	d     *diskv.Diskv
	quota int64
}

// NewDisk opens (creating if needed) a store rooted at basePath.
func NewDisk(basePath string, quota int64) (*Disk, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("kvstore: ensure base path: %w", err)
	}
	return &Disk{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 1024 * 1024, // 1MB
		}),
		quota: quota,
	}, nil
}

func (s *Disk) Get(key string) (string, error) {
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(val), nil
}

func (s *Disk) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used, old, err := s.usage(key)
	if err != nil {
		return err
	}
	if !fits(s.quota, used, old, int64(len(value))) {
		return ErrQuotaExceeded
	}
	return s.d.Write(key, []byte(value))
}

func (s *Disk) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.d.Has(key) {
		return nil
	}
	return s.d.Erase(key)
}

// usage sums the size of every stored value and reports the size of key's
// current value separately.
func (s *Disk) usage(key string) (used, old int64, err error) {
	cancel := make(chan struct{})
	defer close(cancel)
	for k := range s.d.Keys(cancel) {
		val, err := s.d.Read(k)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return 0, 0, err
		}
		used += int64(len(val))
		if k == key {
			old = int64(len(val))
		}
	}
	return used, old, nil
}
