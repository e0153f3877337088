package storage

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jfletcher/docstore/pkg/domain"
	"github.com/jfletcher/docstore/pkg/indexing"
)

const (
	// Magic bytes to identify our file format
	MagicBytes = "DOCS"
	// Current version
	FormatVersion = 1
	// File extension for our on-disk format
	FileExtension = ".docs"

	// FlagUncompressed marks a payload stored raw because lz4 could not
	// shrink it.
	FlagUncompressed = 1 << 0
)

// FileHeader represents the header of our storage file. RawSize records
// the uncompressed payload length so loading can allocate exactly.
type FileHeader struct {
	Magic    [4]byte // "DOCS"
	Version  uint8   // Format version
	Flags    uint8   // Reserved for future use
	Reserved [2]byte // Reserved for future use
	RawSize  uint64  // Uncompressed payload size in bytes
}

// WriteHeader writes the file header to the given writer
func WriteHeader(w io.Writer, flags uint8, rawSize int) error {
	header := FileHeader{
		Magic:   [4]byte{'D', 'O', 'C', 'S'},
		Version: FormatVersion,
		Flags:   flags,
		RawSize: uint64(rawSize),
	}
	return binary.Write(w, binary.LittleEndian, header)
}

// ReadHeader reads and validates the file header
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if string(header.Magic[:]) != MagicBytes {
		return nil, fmt.Errorf("invalid file format: expected %s, got %s", MagicBytes, string(header.Magic[:]))
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported file version: %d", header.Version)
	}

	return &header, nil
}

// StorageData is the persisted shape of the database: documents plus index
// definitions. Index contents are rebuilt from documents on load, so the
// file can never disagree with itself about what an index holds.
type StorageData struct {
	Collections map[string]map[string]domain.Document `msgpack:"collections"`
	Indexes     map[string][]indexing.Definition      `msgpack:"indexes,omitempty"`
	Metadata    map[string]interface{}                `msgpack:"metadata,omitempty"`
}

// NewStorageData creates a new empty storage data structure
func NewStorageData() *StorageData {
	return &StorageData{
		Collections: make(map[string]map[string]domain.Document),
		Indexes:     make(map[string][]indexing.Definition),
		Metadata:    make(map[string]interface{}),
	}
}
