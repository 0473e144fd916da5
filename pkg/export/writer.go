package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blueprintfinder/sdeexport/internal/utils"
	"github.com/bytedance/sonic"
)

// Marshal encodes doc compactly. Non-ASCII text and HTML characters are
// written literally.
func Marshal(doc *Document) ([]byte, error) {
	return sonic.ConfigDefault.Marshal(doc)
}

// Write replaces the file at path with doc and returns the number of bytes
// written. The document is encoded before anything touches the disk and is
// moved into place with a rename, so a failed run leaves any previous output
// intact.
func Write(path string, doc *Document) (int, error) {
	data, err := Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("encoding export: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating output directory: %w", err)
	}

	lock, err := utils.NewFileLock(path)
	if err != nil {
		return 0, err
	}
	if err := lock.Lock(); err != nil {
		return 0, err
	}
	defer func() {
		if uerr := lock.Unlock(); uerr != nil {
			utils.Log.Warn(uerr)
		}
	}()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("syncing %s: %w", tmpPath, err)
	}
	if err = tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing %s: %w", tmpPath, err)
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return 0, fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return 0, fmt.Errorf("replacing %s: %w", path, err)
	}
	return len(data), nil
}
