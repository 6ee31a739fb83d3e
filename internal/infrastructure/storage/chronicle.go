package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"

	"narrative-server/pkg/logger"
)

// Chronicle is the full campaign diary exported as a shareable artifact,
// zstd-compressed JSON on disk.
type Chronicle struct {
	Seed      int64         `json:"seed"`
	Rounds    int           `json:"rounds"`
	Timestamp int64         `json:"timestamp"`
	Entries   []DiaryRecord `json:"entries"`
}

// SaveChronicle writes the chronicle to path, creating parent directories.
func SaveChronicle(path string, c Chronicle) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create chronicle dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chronicle: %w", err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("init chronicle encoder: %w", err)
	}

	if err := json.NewEncoder(enc).Encode(c); err != nil {
		enc.Close()
		return fmt.Errorf("encode chronicle: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush chronicle: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"path":    path,
		"entries": len(c.Entries),
	}).Info("Chronicle written")
	return nil
}

// LoadChronicle reads a chronicle back from disk.
func LoadChronicle(path string) (Chronicle, error) {
	var c Chronicle

	f, err := os.Open(path)
	if err != nil {
		return c, fmt.Errorf("open chronicle: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return c, fmt.Errorf("init chronicle decoder: %w", err)
	}
	defer dec.Close()

	if err := json.NewDecoder(dec).Decode(&c); err != nil {
		return c, fmt.Errorf("decode chronicle %s: %w", path, err)
	}
	return c, nil
}
