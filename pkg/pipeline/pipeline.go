// Package pipeline runs an export end to end: load sources, collect
// blueprints, compress names, write the document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/blueprintfinder/sdeexport/internal/utils"
	"github.com/blueprintfinder/sdeexport/pkg/collector"
	"github.com/blueprintfinder/sdeexport/pkg/export"
	"github.com/blueprintfinder/sdeexport/pkg/names"
	"github.com/blueprintfinder/sdeexport/pkg/sde"
	"github.com/blueprintfinder/sdeexport/pkg/storage"
	"github.com/dustin/go-humanize"
)

const (
	DefaultBlueprintsPath = "data/blueprints.yaml"
	DefaultTypesPath      = "data/typeIDs.yaml"
	DefaultOutputPath     = "data/export.json"
)

// Options selects the files a run reads and writes. Empty paths fall back to
// the defaults; an empty SQLitePath disables the database sink. When it is
// set, the database is built before export.json is touched and moved into
// place only after export.json was written.
type Options struct {
	BlueprintsPath string
	TypesPath      string
	OutputPath     string
	SQLitePath     string
}

func (o Options) withDefaults() Options {
	if o.BlueprintsPath == "" {
		o.BlueprintsPath = DefaultBlueprintsPath
	}
	if o.TypesPath == "" {
		o.TypesPath = DefaultTypesPath
	}
	if o.OutputPath == "" {
		o.OutputPath = DefaultOutputPath
	}
	return o
}

// Summary reports what a run produced.
type Summary struct {
	BlueprintsRead     int
	BlueprintsExported int
	TypesRead          int
	NamesExported      int
	BytesWritten       int
}

// Run executes the export. Every stage completes before the next begins and
// nothing is written unless all of them succeed.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	opts = opts.withDefaults()
	sum := &Summary{}

	blueprints, err := sde.LoadBlueprints(opts.BlueprintsPath)
	if err != nil {
		return nil, err
	}
	sum.BlueprintsRead = len(blueprints)

	utils.Log.WithField("file", opts.BlueprintsPath).Debug("Processing blueprints...")
	res, err := collector.Collect(blueprints)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.BlueprintsPath, err)
	}
	sum.BlueprintsExported = len(res.Entries)
	utils.Log.Debugf("Kept %d of %d blueprints, %d type IDs referenced", len(res.Entries), len(blueprints), res.Used.Len())

	types, err := sde.LoadTypes(opts.TypesPath)
	if err != nil {
		return nil, err
	}
	sum.TypesRead = len(types)

	utils.Log.WithField("file", opts.TypesPath).Debug("Processing type names...")
	nameEntries := names.CompressAll(types, res.Used.IDs())
	sum.NamesExported = len(nameEntries)

	doc := export.NewDocument(res.Entries, nameEntries)

	// The database is built aside first so a failure there leaves the
	// previous export.json in place.
	var staged *stagedDB
	if opts.SQLitePath != "" {
		staged, err = stageSQLite(ctx, opts.SQLitePath, doc)
		if err != nil {
			return nil, err
		}
		defer staged.discard()
	}

	utils.Log.WithField("file", opts.OutputPath).Debug("Writing export...")
	n, err := export.Write(opts.OutputPath, doc)
	if err != nil {
		return nil, err
	}
	sum.BytesWritten = n
	utils.Log.WithField("file", opts.OutputPath).Debugf("Wrote %s", humanize.Bytes(uint64(n)))

	if staged != nil {
		if err := staged.commit(); err != nil {
			return nil, err
		}
	}

	utils.Log.Debug("All Done.")
	return sum, nil
}

// stagedDB is a fully written database waiting to be moved over its
// destination.
type stagedDB struct {
	tmp  string
	dest string
	done bool
}

func stageSQLite(ctx context.Context, path string, doc *export.Document) (*stagedDB, error) {
	utils.Log.WithField("file", path).Debug("Writing SQLite database...")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating temp database: %w", err)
	}
	f.Close()
	s := &stagedDB{tmp: f.Name(), dest: path}

	db, err := storage.Open(s.tmp)
	if err != nil {
		s.discard()
		return nil, fmt.Errorf("opening %s: %w", s.tmp, err)
	}
	if err := db.ReplaceExport(ctx, doc); err != nil {
		db.Close()
		s.discard()
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	if err := db.Close(); err != nil {
		s.discard()
		return nil, fmt.Errorf("closing %s: %w", s.tmp, err)
	}
	return s, nil
}

// commit replaces the destination. Journal files of the old database are
// removed so they are never replayed against the new one.
func (s *stagedDB) commit() error {
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(s.dest + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", s.dest+suffix, err)
		}
	}
	if err := os.Rename(s.tmp, s.dest); err != nil {
		return fmt.Errorf("replacing %s: %w", s.dest, err)
	}
	s.done = true
	return nil
}

func (s *stagedDB) discard() {
	if s.done {
		return
	}
	for _, p := range []string{s.tmp, s.tmp + "-wal", s.tmp + "-shm"} {
		_ = os.Remove(p)
	}
}
