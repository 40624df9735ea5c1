// Package rotate rolls an append-only file across size-capped segments.
// The serve command writes its audit trail through a Rotator: the active
// segment rolls over once it reaches MaxFile bytes, rotated segments are
// optionally zstd-compressed, and the oldest segments are pruned when the
// directory exceeds MaxDisk bytes.
package rotate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Config controls rotation behavior.
type Config struct {
	Dir      string // segment directory
	MaxFile  int64  // max bytes per segment before rotation
	MaxDisk  int64  // max total bytes on disk, 0 disables pruning
	Compress bool   // zstd compress rotated segments
}

// Rotator manages the active segment, rotation, compression, and disk cap.
// Write is safe for concurrent use.
type Rotator struct {
	cfg Config

	mu         sync.Mutex
	active     *os.File
	activeSize int64
	activeName string
	diskUsage  int64
	seq        int // sequence within same second
	lastSecond string
	warned     bool // disk warning fired for the current crossing

	onRotate      func(reason string)
	onError       func()
	onDiskWarning func(usage, cap int64)
}

// New creates a Rotator, scanning any existing segments for disk usage.
func New(cfg Config) (*Rotator, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}
	r := &Rotator{cfg: cfg}
	if err := r.bootstrap(); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if err := r.openNew(); err != nil {
		return nil, fmt.Errorf("open initial segment: %w", err)
	}
	return r, nil
}

// SetOnRotate sets a callback invoked on each successful rotation with the reason.
func (r *Rotator) SetOnRotate(fn func(reason string)) {
	r.onRotate = fn
}

// SetOnError sets a callback invoked on each rotation error.
func (r *Rotator) SetOnError(fn func()) {
	r.onError = fn
}

// SetOnDiskWarning sets a callback invoked once each time disk usage crosses
// 80% of MaxDisk. It re-arms after pruning brings usage back under the mark.
func (r *Rotator) SetOnDiskWarning(fn func(usage, cap int64)) {
	r.onDiskWarning = fn
}

// Write appends data to the active segment, rotating if over MaxFile.
func (r *Rotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.activeSize+int64(len(p)) > r.cfg.MaxFile && r.activeSize > 0 {
		if err := r.rotate(); err != nil {
			if r.onError != nil {
				r.onError()
			}
			return 0, fmt.Errorf("rotate: %w", err)
		}
		if r.onRotate != nil {
			r.onRotate("size")
		}
	}
	n, err := r.active.Write(p)
	r.activeSize += int64(n)
	r.diskUsage += int64(n)
	r.checkDiskWarning()
	return n, err
}

// DiskUsage returns current total bytes on disk.
func (r *Rotator) DiskUsage() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.diskUsage
}

// Close finalizes the active segment. An empty final segment is removed;
// a non-empty one is compressed when Compress is set.
func (r *Rotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil {
		return nil
	}
	if err := r.active.Close(); err != nil {
		return err
	}
	r.active = nil

	if r.activeSize == 0 {
		return os.Remove(filepath.Join(r.cfg.Dir, r.activeName))
	}
	if r.cfg.Compress {
		if _, err := r.compressSegment(r.activeName); err != nil {
			return fmt.Errorf("compress final: %w", err)
		}
	}
	return nil
}

func (r *Rotator) bootstrap() error {
	entries, err := os.ReadDir(r.cfg.Dir)
	if err != nil {
		return err
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	r.diskUsage = total
	return nil
}

func (r *Rotator) openNew() error {
	name := r.nextFilename()
	f, err := os.Create(filepath.Join(r.cfg.Dir, name))
	if err != nil {
		return err
	}
	r.active = f
	r.activeName = name
	r.activeSize = 0
	return nil
}

func (r *Rotator) nextFilename() string {
	now := time.Now().UTC()
	sec := now.Format("2006-01-02T150405")
	if sec == r.lastSecond {
		r.seq++
	} else {
		r.lastSecond = sec
		r.seq = 0
	}
	return fmt.Sprintf("audit-%s-%03d.jsonl", sec, r.seq)
}

func (r *Rotator) rotate() error {
	if err := r.active.Close(); err != nil {
		return err
	}

	if r.cfg.Compress {
		compressed, err := r.compressSegment(r.activeName)
		if err != nil {
			return fmt.Errorf("compress: %w", err)
		}
		// disk usage drops by the raw size and grows by the compressed size
		info, err := os.Stat(compressed)
		if err != nil {
			return err
		}
		r.diskUsage = r.diskUsage - r.activeSize + info.Size()
	}

	if err := r.enforceDiskCap(); err != nil {
		return fmt.Errorf("enforce disk cap: %w", err)
	}

	return r.openNew()
}

func (r *Rotator) compressSegment(name string) (string, error) {
	srcPath := filepath.Join(r.cfg.Dir, name)
	dstPath := srcPath + ".zst"

	src, err := os.ReadFile(srcPath)
	if err != nil {
		return "", err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return "", err
	}
	compressed := enc.EncodeAll(src, nil)
	if err := enc.Close(); err != nil {
		return "", err
	}

	if err := os.WriteFile(dstPath, compressed, 0o644); err != nil {
		return "", err
	}
	if err := os.Remove(srcPath); err != nil {
		return "", err
	}
	return dstPath, nil
}

func (r *Rotator) enforceDiskCap() error {
	if r.cfg.MaxDisk <= 0 {
		return nil
	}

	// recalculate disk usage from actual files
	r.diskUsage = 0
	entries, err := os.ReadDir(r.cfg.Dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		r.diskUsage += info.Size()
	}

	if r.diskUsage <= r.cfg.MaxDisk {
		r.checkDiskWarning()
		return nil
	}

	// prune oldest segments first; names sort chronologically
	var segments []string
	for _, e := range entries {
		name := e.Name()
		if name == r.activeName {
			continue
		}
		if strings.HasPrefix(name, "audit-") &&
			(strings.HasSuffix(name, ".jsonl") || strings.HasSuffix(name, ".jsonl.zst")) {
			segments = append(segments, name)
		}
	}
	sort.Strings(segments)

	for _, name := range segments {
		if r.diskUsage <= r.cfg.MaxDisk {
			break
		}
		path := filepath.Join(r.cfg.Dir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		size := info.Size()
		if err := os.Remove(path); err != nil {
			continue
		}
		r.diskUsage -= size
	}

	r.checkDiskWarning()
	return nil
}

// checkDiskWarning fires the warning callback once per threshold crossing.
// Caller must hold mu.
func (r *Rotator) checkDiskWarning() {
	if r.cfg.MaxDisk <= 0 || r.onDiskWarning == nil {
		return
	}
	threshold := int64(float64(r.cfg.MaxDisk) * 0.8)
	if r.diskUsage > threshold {
		if !r.warned {
			r.warned = true
			r.onDiskWarning(r.diskUsage, r.cfg.MaxDisk)
		}
	} else {
		r.warned = false
	}
}
