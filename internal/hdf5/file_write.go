package hdf5

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/robert-malhotra/go-treeseq/internal/alloc"
	binpkg "github.com/robert-malhotra/go-treeseq/internal/binary"
	"github.com/robert-malhotra/go-treeseq/internal/superblock"
)

// Create creates a new HDF5 file at the given path, truncating any existing
// file. The file uses a V2 superblock and V2 object headers. A file created
// this way is write-only until it is closed and reopened with Open.
//
// Dataset contents are written as datasets are created. Group headers and
// the superblock are written by Close, once every member is known.
func Create(path string, opts ...FileOption) (*File, error) {
	options := defaultFileOptions()
	for _, opt := range opts {
		opt(options)
	}

	osFile, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	cfg := binpkg.Config{
		ByteOrder:  binary.LittleEndian,
		OffsetSize: options.offsetSize,
		LengthSize: options.lengthSize,
	}
	sb := superblock.New(cfg)

	f := &File{
		path:       path,
		file:       osFile,
		superblock: sb,
		writable:   true,
		cfg:        cfg,
		allocator:  alloc.New(uint64(sb.Size())),

		datasetDefaults: options.datasetDefaults,
	}
	f.root = &Group{file: f, path: "/"}
	return f, nil
}

// flush writes every group header, children before parents, then the
// superblock pointing at the root.
func (f *File) flush() error {
	rootAddr, err := f.root.writeHeader()
	if err != nil {
		return err
	}

	f.superblock.RootGroupAddress = rootAddr
	f.superblock.EOFAddress = f.allocator.EOF()
	if err := f.allocator.Validate(); err != nil {
		return fmt.Errorf("file layout: %w", err)
	}
	if _, err := f.file.WriteAt(f.superblock.Encode(), 0); err != nil {
		return fmt.Errorf("writing superblock: %w", err)
	}
	return f.file.Sync()
}

// IsWritable returns true if the file was opened with Create.
func (f *File) IsWritable() bool {
	return f.writable
}

// write allocates space for data and writes it there.
func (f *File) write(data []byte, tag string) (uint64, error) {
	addr := f.allocator.Alloc(uint64(len(data)), tag)
	if _, err := f.file.WriteAt(data, int64(addr)); err != nil {
		return 0, fmt.Errorf("writing %s: %w", tag, err)
	}
	return addr, nil
}

// AllocStats returns the space allocated so far in a file being written.
func (f *File) AllocStats() alloc.Stats {
	if f.allocator == nil {
		return alloc.Stats{}
	}
	return f.allocator.Stats()
}
