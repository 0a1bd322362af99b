package vibedict

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"
)

// DictFS wraps a Dict to implement io/fs.FS, exposing MDX definitions and
// MDD resources as read-only files, for example behind an HTTP file server.
type DictFS struct {
	dict *Dict
}

// NewDictFS creates a new DictFS instance.
func NewDictFS(dict *Dict) *DictFS {
	if dict == nil {
		panic("DictFS: Dict instance cannot be nil")
	}
	return &DictFS{dict: dict}
}

func (dfs *DictFS) modTime() time.Time {
	if dfs.dict.meta != nil && dfs.dict.meta.creationDate != "" {
		for _, layout := range []string{"2006-01-02", "2006.01.02 15:04:05", "2006-1-2"} {
			if parsed, err := time.Parse(layout, dfs.dict.meta.creationDate); err == nil {
				return parsed
			}
		}
		log.Warningf("DictFS: could not parse CreationDate '%s' for ModTime", dfs.dict.meta.creationDate)
	}
	return time.Now()
}

// Open opens a file: a headword for MDX dictionaries, a resource path for
// MDD archives, or "." for the root directory listing.
func (dfs *DictFS) Open(name string) (fs.File, error) {
	log.Debugf("DictFS: Open called with name: '%s'", name)

	if name == "." || name == "" || strings.HasSuffix(name, "/") {
		name = "."
	}
	modTime := dfs.modTime()

	if name == "." {
		rootInfo := &dictFileInfo{name: ".", isDir: true, modTime: modTime}
		return &dictFile{fs: dfs, name: ".", isDir: true, fileInfo: rootInfo}, nil
	}

	var fileContent []byte

	if dfs.dict.IsMDD() {
		data, err := dfs.dict.locateResourceBytes(name)
		if err != nil {
			if errors.Is(err, ErrWordNotFound) {
				return nil, fs.ErrNotExist
			}
			return nil, fmt.Errorf("error getting resource '%s': %w", name, err)
		}
		fileContent = data
	} else {
		definitions, err := dfs.dict.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("error looking up keyword '%s': %w", name, err)
		}
		if len(definitions) == 0 {
			return nil, fs.ErrNotExist
		}
		fileContent = []byte(definitions[0])
	}

	if len(fileContent) == 0 {
		return nil, fs.ErrNotExist
	}

	fileInfo := &dictFileInfo{
		name:    path.Base(name),
		size:    int64(len(fileContent)),
		modTime: modTime,
	}
	return &dictFile{
		fs:       dfs,
		name:     name,
		content:  fileContent,
		reader:   bytes.NewReader(fileContent),
		fileInfo: fileInfo,
	}, nil
}

// dictFile implements fs.File over one definition or resource body.
type dictFile struct {
	fs       *DictFS
	name     string
	isDir    bool
	reader   *bytes.Reader
	content  []byte
	fileInfo fs.FileInfo
}

// Stat returns the FileInfo for the file.
func (df *dictFile) Stat() (fs.FileInfo, error) {
	if df.fileInfo == nil {
		df.fileInfo = &dictFileInfo{
			name:    path.Base(df.name),
			size:    int64(len(df.content)),
			isDir:   df.isDir,
			modTime: df.fs.modTime(),
		}
	}
	return df.fileInfo, nil
}

// Read reads up to len(b) bytes from the file.
func (df *dictFile) Read(b []byte) (int, error) {
	if df.isDir {
		return 0, &fs.PathError{Op: "read", Path: df.name, Err: errors.New("is a directory")}
	}
	if df.reader == nil {
		return 0, &fs.PathError{Op: "read", Path: df.name, Err: fs.ErrClosed}
	}
	return df.reader.Read(b)
}

// Seek sets the offset for the next Read.
func (df *dictFile) Seek(offset int64, whence int) (int64, error) {
	if df.isDir {
		return 0, &fs.PathError{Op: "seek", Path: df.name, Err: errors.New("is a directory")}
	}
	if df.reader == nil {
		return 0, &fs.PathError{Op: "seek", Path: df.name, Err: fs.ErrClosed}
	}
	return df.reader.Seek(offset, whence)
}

// Close closes the file.
func (df *dictFile) Close() error {
	df.reader = nil
	df.content = nil
	df.fileInfo = nil
	return nil
}

// ReadDir lists every headword/resource as a directory entry of the root.
func (df *dictFile) ReadDir(n int) ([]fs.DirEntry, error) {
	if !df.isDir || df.name != "." {
		return nil, &fs.PathError{Op: "readdir", Path: df.name, Err: errors.New("not a directory or not root")}
	}

	keywords := df.fs.dict.KeywordEntries()
	modTime := df.fs.modTime()

	entries := make([]fs.DirEntry, 0, len(keywords))
	for _, kw := range keywords {
		entryName := kw.KeyWord
		if df.fs.dict.IsMDD() {
			entryName = strings.TrimLeft(kw.KeyWord, "\\/")
		}
		entries = append(entries, &dictFileInfo{
			name:    path.Base(entryName),
			modTime: modTime,
		})
	}

	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries, nil
}

// dictFileInfo implements fs.FileInfo and fs.DirEntry.
type dictFileInfo struct {
	name    string
	size    int64
	isDir   bool
	modTime time.Time
}

func (dfi *dictFileInfo) Name() string       { return dfi.name }
func (dfi *dictFileInfo) Size() int64        { return dfi.size }
func (dfi *dictFileInfo) IsDir() bool        { return dfi.isDir }
func (dfi *dictFileInfo) ModTime() time.Time { return dfi.modTime }
func (dfi *dictFileInfo) Sys() interface{}   { return nil }

func (dfi *dictFileInfo) Info() (fs.FileInfo, error) { return dfi, nil }
func (dfi *dictFileInfo) Type() fs.FileMode          { return dfi.Mode().Type() }

func (dfi *dictFileInfo) Mode() fs.FileMode {
	if dfi.isDir {
		return fs.ModeDir | 0555
	}
	return 0444
}

var _ fs.File = (*dictFile)(nil)
var _ fs.ReadDirFile = (*dictFile)(nil)
var _ fs.FS = (*DictFS)(nil)
