package xarc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Faultbox/tlj-engine/pkg/encoding"
)

// Member is a file to be written into an archive.
type Member struct {
	Name    string
	Data    []byte
	Unknown uint32
}

// Write writes members as a version 1 archive.
func Write(w io.Writer, members []Member) error {
	var table bytes.Buffer
	for _, m := range members {
		name := encoding.EncodeWindows1252(m.Name)
		if bytes.IndexByte(name, 0) >= 0 {
			return fmt.Errorf("member name %q contains NUL", m.Name)
		}
		table.Write(name)
		table.WriteByte(0)
		binary.Write(&table, binary.LittleEndian, [2]uint32{uint32(len(m.Data)), m.Unknown})
	}

	header := Header{
		Version:    Version,
		FileCount:  uint32(len(members)),
		DataOffset: uint32(binary.Size(Header{}) + table.Len()),
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	if _, err := w.Write(table.Bytes()); err != nil {
		return err
	}
	for _, m := range members {
		if _, err := w.Write(m.Data); err != nil {
			return err
		}
	}
	return nil
}
