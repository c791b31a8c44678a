package storage

import (
	"log/slog"

	"github.com/lookbusy1344/go-apfloat/apcontext"
)

// Factory creates and migrates storages per the placement policy of
// spec.md §4.2, reading its thresholds and disk filename scheme from an
// apcontext.Context.
type Factory struct {
	ctx *apcontext.Context
}

// NewFactory returns a Factory bound to ctx. ctx's MemoryTreshold,
// MaxMemoryBlockSize and FilenameGenerator govern every storage it
// creates.
func NewFactory(ctx *apcontext.Context) *Factory {
	return &Factory{ctx: ctx}
}

// New creates a storage of n elements, placed in memory if its byte
// size is at most MemoryTreshold, otherwise on disk (spec.md §4.2
// "Factory chooses backend by requested size").
func (f *Factory) New(elemType ElementType, n int64) (Storage, error) {
	size := n * elemType.Size()
	if size <= f.ctx.MemoryTreshold {
		return NewMemoryStorage(elemType, n), nil
	}
	return f.newDisk(elemType, n)
}

// Cached creates a storage favoring memory up to the larger
// MaxMemoryBlockSize ceiling, for callers that will reuse the storage
// repeatedly and can tolerate a bigger memory footprint to avoid disk
// I/O (spec.md §4.2 "A second factory operation 'cached'").
func (f *Factory) Cached(elemType ElementType, n int64) (Storage, error) {
	size := n * elemType.Size()
	if size <= f.ctx.MaxMemoryBlockSize {
		return NewMemoryStorage(elemType, n), nil
	}
	return f.newDisk(elemType, n)
}

// Migrate moves s to the disk backend if it has grown past
// MemoryTreshold, preserving its content and element order (spec.md
// §4.2 "A third ('migrate')"; §8 testable property "a memory storage
// beyond threshold migrates to disk with identical content"). If s is
// already disk-backed, or is still within the threshold, it is
// returned unchanged.
func (f *Factory) Migrate(s Storage) (Storage, error) {
	mem, ok := s.(*MemoryStorage)
	if !ok {
		return s, nil
	}
	size := mem.Len() * mem.ElementType().Size()
	if size <= f.ctx.MemoryTreshold {
		return s, nil
	}

	disk, err := f.newDisk(mem.ElementType(), mem.Len())
	if err != nil {
		return nil, err
	}

	if err := copyStorage(mem, disk); err != nil {
		disk.Release()
		return nil, err
	}
	slog.Debug("storage migrated memory to disk",
		"elements", mem.Len(), "elementType", mem.ElementType(), "bytes", size)

	mem.Release()
	return disk, nil
}

func (f *Factory) newDisk(elemType ElementType, n int64) (*DiskStorage, error) {
	path := f.ctx.Filenames().Next()
	return NewDiskStorage(elemType, n, path, f.ctx.BlockSize)
}

// copyStorage streams src's elements into dst, which must already have
// at least src's length.
func copyStorage(src, dst Storage) error {
	it, err := src.Iterator(false)
	if err != nil {
		return err
	}
	defer it.Close()

	win, err := dst.GetArray(Write, 0, dst.Len())
	if err != nil {
		return err
	}
	defer win.Close()

	narrow := dst.ElementType() == Int32 || dst.ElementType() == Float32

	for i := int64(0); ; i++ {
		v, ok := it.Next()
		if !ok {
			break
		}
		if narrow {
			if err := win.SetInt32(i, int32(v)); err != nil {
				return err
			}
			continue
		}
		if err := win.SetInt64(i, v); err != nil {
			return err
		}
	}
	return nil
}
