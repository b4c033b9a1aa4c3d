// Package xarc reads XARC archives, the container the game ships its assets
// in. An archive is a small header, a table of NUL-terminated member names
// with their lengths, and the member data laid out back to back.
package xarc

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/tlj-engine/pkg/encoding"
)

// Version is the only archive version in use.
const Version uint32 = 1

// Archive errors.
var (
	ErrInvalidVersion = errors.New("unsupported xarc version")
	ErrNotFound       = errors.New("member not found")
	ErrTruncated      = errors.New("truncated xarc archive")
)

// Header is the fixed archive header.
type Header struct {
	Version    uint32
	FileCount  uint32
	DataOffset uint32
}

// Entry describes one archive member.
type Entry struct {
	Name    string
	Offset  int64
	Length  uint32
	Unknown uint32
}

// Archive is an opened XARC archive. Reads go through io.ReaderAt and are
// safe for concurrent use.
type Archive struct {
	r       io.ReaderAt
	closer  io.Closer
	header  Header
	entries []Entry
	index   map[string]int
}

// Open opens the archive at path.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat: %w", err)
	}

	archive, err := OpenReader(file, info.Size())
	if err != nil {
		file.Close()
		return nil, err
	}
	archive.closer = file
	return archive, nil
}

// OpenReader reads the archive table from r, which holds size bytes.
func OpenReader(r io.ReaderAt, size int64) (*Archive, error) {
	archive := &Archive{
		r:     r,
		index: make(map[string]int),
	}

	br := bufio.NewReader(io.NewSectionReader(r, 0, size))
	if err := archive.readHeader(br); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := archive.readFileTable(br, size); err != nil {
		return nil, fmt.Errorf("reading file table: %w", err)
	}
	return archive, nil
}

// Close releases the underlying file, if the archive owns one.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// Header returns the archive header.
func (a *Archive) Header() Header {
	return a.header
}

func (a *Archive) readHeader(r io.Reader) error {
	if err := binary.Read(r, binary.LittleEndian, &a.header); err != nil {
		return truncated(err)
	}
	if a.header.Version != Version {
		return fmt.Errorf("%w: %d", ErrInvalidVersion, a.header.Version)
	}
	return nil
}

func (a *Archive) readFileTable(r *bufio.Reader, size int64) error {
	offset := int64(a.header.DataOffset)

	for i := uint32(0); i < a.header.FileCount; i++ {
		raw, err := r.ReadBytes(0)
		if err != nil {
			return fmt.Errorf("member %d name: %w", i, truncated(err))
		}

		var sizes [2]uint32
		if err := binary.Read(r, binary.LittleEndian, &sizes); err != nil {
			return fmt.Errorf("member %d: %w", i, truncated(err))
		}

		entry := Entry{
			Name:    encoding.CString(raw),
			Offset:  offset,
			Length:  sizes[0],
			Unknown: sizes[1],
		}
		offset += int64(entry.Length)
		if offset > size {
			return fmt.Errorf("member %q ends at %d past archive end %d: %w",
				entry.Name, offset, size, ErrTruncated)
		}

		a.index[encoding.NormalizeName(entry.Name)] = len(a.entries)
		a.entries = append(a.entries, entry)
	}
	return nil
}

// List returns member names in archive order.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		result = append(result, e.Name)
	}
	return result
}

// Entries returns the member table.
func (a *Archive) Entries() []Entry {
	return a.entries
}

// Contains checks if a member exists. Names match case-insensitively.
func (a *Archive) Contains(name string) bool {
	_, ok := a.index[encoding.NormalizeName(name)]
	return ok
}

// Stat returns the entry for name.
func (a *Archive) Stat(name string) (Entry, error) {
	i, ok := a.index[encoding.NormalizeName(name)]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return a.entries[i], nil
}

// Open returns a reader over the member's bytes.
func (a *Archive) Open(name string) (*io.SectionReader, error) {
	entry, err := a.Stat(name)
	if err != nil {
		return nil, err
	}
	return io.NewSectionReader(a.r, entry.Offset, int64(entry.Length)), nil
}

// Read reads a whole member.
func (a *Archive) Read(name string) ([]byte, error) {
	entry, err := a.Stat(name)
	if err != nil {
		return nil, err
	}

	data := make([]byte, entry.Length)
	if len(data) == 0 {
		return data, nil
	}
	if _, err := a.r.ReadAt(data, entry.Offset); err != nil {
		return nil, fmt.Errorf("reading %s: %w", entry.Name, truncated(err))
	}
	return data, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
