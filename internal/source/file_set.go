package source

import (
	"fmt"
	"os"
	"sort"

	"fortio.org/safecast"
)

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
)

// File captures metadata and content for a single source unit.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // byte offset of each line start
	Flags   FileFlags
}

// LineCol is a human-readable position in a source file, 1-based.
type LineCol struct {
	Line uint32
	Col  uint32
}

// FileSet manages a collection of source units and resolves spans to
// line/column positions.
type FileSet struct {
	files []File
	index map[string]FileID
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{index: make(map[string]FileID)}
}

// Add stores a unit from in-memory bytes and returns its FileID.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file count overflow: %w", err))
	}
	id := FileID(n)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
		Flags:   flags,
	})
	fs.index[path] = id
	return id
}

// Load reads a unit from disk and adds it to the set. Loading the same path
// twice returns the previously assigned FileID.
func (fs *FileSet) Load(path string) (FileID, error) {
	if id, ok := fs.index[path]; ok {
		return id, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", path, err)
	}
	return fs.Add(path, content, 0), nil
}

// Get returns the file for id, or nil if the id is unknown.
func (fs *FileSet) Get(id FileID) *File {
	if int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// Position resolves the start of a span to a file path and line/column.
func (fs *FileSet) Position(sp Span) (string, LineCol) {
	f := fs.Get(sp.File)
	if f == nil {
		return "", LineCol{}
	}
	return f.Path, f.lineCol(sp.Start)
}

func (f *File) lineCol(offset uint32) LineCol {
	line := sort.Search(len(f.LineIdx), func(i int) bool {
		return f.LineIdx[i] > offset
	})
	if line == 0 {
		return LineCol{Line: 1, Col: offset + 1}
	}
	return LineCol{
		Line: uint32(line),
		Col:  offset - f.LineIdx[line-1] + 1,
	}
}

func buildLineIndex(content []byte) []uint32 {
	idx := []uint32{0}
	for i, b := range content {
		if b == '\n' {
			idx = append(idx, uint32(i)+1)
		}
	}
	return idx
}
