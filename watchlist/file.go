package watchlist

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pedrohavay/namescreen/internal/logging"
)

// Format is a snapshot encoding.
type Format string

const (
	FormatJSONL   Format = "jsonl"
	FormatCSV     Format = "csv"
	FormatMsgpack Format = "msgpack"
	FormatYAML    Format = "yaml"
)

// ParseFormat accepts a format name or a file path; for paths the
// extension decides.
func ParseFormat(s string) (Format, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if ext := filepath.Ext(v); ext != "" {
		v = strings.TrimPrefix(ext, ".")
	}
	switch v {
	case "jsonl", "json", "ndjson":
		return FormatJSONL, nil
	case "csv":
		return FormatCSV, nil
	case "msgpack", "mp", "mpk":
		return FormatMsgpack, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown watchlist format: %q", s)
}

// Read decodes entries from r.
func Read(r io.Reader, f Format) ([]Entry, error) {
	var out []Entry
	collect := func(e Entry) error { out = append(out, e); return nil }
	var err error
	switch f {
	case FormatJSONL:
		err = ReadEntriesJSONL(r, collect)
	case FormatCSV:
		err = ReadEntriesCSV(r, collect)
	case FormatMsgpack:
		err = ReadEntriesMsgpack(r, collect)
	case FormatYAML:
		err = ReadEntriesYAML(r, collect)
	default:
		return nil, fmt.Errorf("unknown watchlist format: %q", f)
	}
	return out, err
}

// Write encodes entries to w.
func Write(w io.Writer, f Format, entries []Entry) error {
	switch f {
	case FormatJSONL:
		return WriteEntriesJSONL(w, entries)
	case FormatCSV:
		return WriteEntriesCSV(w, entries)
	case FormatMsgpack:
		return WriteEntriesMsgpack(w, entries)
	case FormatYAML:
		return WriteEntriesYAML(w, entries)
	}
	return fmt.Errorf("unknown watchlist format: %q", f)
}

// FileStore is a Store persisted to a snapshot file. With autosave every
// successful mutation rewrites the snapshot.
type FileStore struct {
	*Store
	Path     string
	Format   Format
	Autosave bool

	saveMu sync.Mutex // orders snapshot, write and rename
	log    logging.Logger
}

// OpenFile loads path into a new store. A missing file yields an empty store.
func OpenFile(path string, f Format, signer *Signer, log logging.Logger) (*FileStore, error) {
	if log == nil {
		log = logging.Nop()
	}
	fs := &FileStore{Store: NewStore(signer), Path: path, Format: f, log: log}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info("watchlist file not found, starting empty", "path", path)
			return fs, nil
		}
		return nil, fmt.Errorf("open watchlist: %w", err)
	}
	defer file.Close()
	entries, err := Read(file, f)
	if err != nil {
		return nil, fmt.Errorf("read watchlist %s: %w", path, err)
	}
	if err := fs.Load(entries); err != nil {
		return nil, fmt.Errorf("load watchlist %s: %w", path, err)
	}
	log.Info("watchlist loaded", "path", path, "format", string(f), "entries", len(entries))
	return fs, nil
}

// Save writes the snapshot through a temp file and rename. Concurrent
// saves run one at a time, so the last rename carries the newest snapshot.
func (fs *FileStore) Save() error {
	fs.saveMu.Lock()
	defer fs.saveMu.Unlock()
	entries := fs.All()
	dir := filepath.Dir(fs.Path)
	tmp, err := os.CreateTemp(dir, ".watchlist-*")
	if err != nil {
		return fmt.Errorf("save watchlist: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := Write(tmp, fs.Format, entries); err != nil {
		tmp.Close()
		return fmt.Errorf("save watchlist: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save watchlist: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.Path); err != nil {
		return fmt.Errorf("save watchlist: %w", err)
	}
	fs.log.Debug("watchlist saved", "path", fs.Path, "entries", len(entries))
	return nil
}

func (fs *FileStore) persist() error {
	if !fs.Autosave {
		return nil
	}
	return fs.Save()
}

// Add stores a name and persists the snapshot when autosave is on.
func (fs *FileStore) Add(name string) (Entry, error) {
	e, err := fs.Store.Add(name)
	if err != nil {
		return e, err
	}
	return e, fs.persist()
}

// Update renames an entry and persists the snapshot when autosave is on.
func (fs *FileStore) Update(id int64, name string) (Entry, error) {
	e, err := fs.Store.Update(id, name)
	if err != nil {
		return e, err
	}
	return e, fs.persist()
}

// Delete removes an entry and persists the snapshot when autosave is on.
func (fs *FileStore) Delete(id int64) error {
	if err := fs.Store.Delete(id); err != nil {
		return err
	}
	return fs.persist()
}
