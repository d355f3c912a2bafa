package logtail

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
)

var ErrNotFound = errors.New("log not found")

// validID matches supervisor-generated run ids (unix millis plus a hex
// suffix); anything else never touches the filesystem.
var validID = regexp.MustCompile(`^[0-9]+-[0-9a-f]+$`)

// Tailer serves point-in-time and incremental reads over per-run log
// files. It never writes; the supervisor is the only writer.
type Tailer struct {
	runDir string
}

func NewTailer(runDir string) *Tailer {
	return &Tailer{runDir: runDir}
}

func (t *Tailer) path(id string) (string, error) {
	if !validID.MatchString(id) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return filepath.Join(t.runDir, id+".log"), nil
}

// ReadAll returns the full current content of the run's log.
func (t *Tailer) ReadAll(id string) ([]byte, error) {
	path, err := t.path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read log: %w", err)
	}
	return data, nil
}

// Size returns the current length of the run's log, 0 if absent.
func (t *Tailer) Size(id string) (int64, error) {
	path, err := t.path(id)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("stat log: %w", err)
	}
	return info.Size(), nil
}

// ReadFrom returns the bytes appended since offset. An absent file yields
// no data so pollers can attach before the writer creates it.
func (t *Tailer) ReadFrom(id string, offset int64) ([]byte, error) {
	path, err := t.path(id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek log: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return data, nil
}
