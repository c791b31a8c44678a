package apcontext

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/lookbusy1344/go-apfloat/aferrors"
)

// fileFormat is the TOML-serializable snapshot of a Context's recognized
// properties, grounded on config.Config's struct-of-structs shape.
type fileFormat struct {
	Apfloat struct {
		BuilderFactory     string `toml:"builderFactory"`
		DefaultRadix       int    `toml:"defaultRadix"`
		MaxMemoryBlockSize int64  `toml:"maxMemoryBlockSize"`
		CacheL1Size        int64  `toml:"cacheL1Size"`
		CacheL2Size        int64  `toml:"cacheL2Size"`
		CacheBurst         int64  `toml:"cacheBurst"`
		MemoryTreshold     int64  `toml:"memoryTreshold"`
		BlockSize          int64  `toml:"blockSize"`
		NumberOfProcessors int    `toml:"numberOfProcessors"`
		FilePath           string `toml:"filePath"`
		FileInitialValue   int64  `toml:"fileInitialValue"`
		FileSuffix         string `toml:"fileSuffix"`
		CleanupAtExit      bool   `toml:"cleanupAtExit"`
	} `toml:"apfloat"`
}

func (c *Context) toFileFormat() fileFormat {
	var ff fileFormat
	ff.Apfloat.BuilderFactory = c.BuilderFactory.String()
	ff.Apfloat.DefaultRadix = c.DefaultRadix
	ff.Apfloat.MaxMemoryBlockSize = c.MaxMemoryBlockSize
	ff.Apfloat.CacheL1Size = c.CacheL1Size
	ff.Apfloat.CacheL2Size = c.CacheL2Size
	ff.Apfloat.CacheBurst = c.CacheBurst
	ff.Apfloat.MemoryTreshold = c.MemoryTreshold
	ff.Apfloat.BlockSize = c.BlockSize
	ff.Apfloat.NumberOfProcessors = c.NumberOfProcessors
	ff.Apfloat.FilePath = c.FilePath
	ff.Apfloat.FileInitialValue = c.FileInitialValue
	ff.Apfloat.FileSuffix = c.FileSuffix
	ff.Apfloat.CleanupAtExit = c.CleanupAtExit
	return ff
}

// LoadFile reads a Context from a TOML file with an [apfloat] table
// whose keys are the property names of spec.md §4.1. A missing file
// yields NewDefaultContext with no error, mirroring config.Load's
// fallback behavior.
func LoadFile(path string) (*Context, error) {
	c := NewDefaultContext()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c, nil
	}

	var ff fileFormat
	ff = c.toFileFormat() // seed with defaults so unset keys keep them
	if _, err := toml.DecodeFile(path, &ff); err != nil {
		return nil, &aferrors.ConfigError{Key: path, Value: "", Wrapped: fmt.Errorf("decode TOML: %w", err)}
	}

	if ff.Apfloat.BuilderFactory != "" {
		if err := c.Set("builderFactory", ff.Apfloat.BuilderFactory); err != nil {
			return nil, err
		}
	}
	c.DefaultRadix = clampInt(ff.Apfloat.DefaultRadix, 2, 36)
	c.MaxMemoryBlockSize = clampAdmissibleFloor(ff.Apfloat.MaxMemoryBlockSize, 65536)
	c.CacheL1Size = clampPow2Floor(ff.Apfloat.CacheL1Size, 512)
	c.CacheL2Size = clampPow2Floor(ff.Apfloat.CacheL2Size, 2048)
	c.CacheBurst = clampPow2Floor(ff.Apfloat.CacheBurst, 8)
	if ff.Apfloat.MemoryTreshold < 128 {
		ff.Apfloat.MemoryTreshold = 128
	}
	c.MemoryTreshold = ff.Apfloat.MemoryTreshold
	c.BlockSize = clampPow2Floor(ff.Apfloat.BlockSize, 128)
	if ff.Apfloat.NumberOfProcessors < 1 {
		ff.Apfloat.NumberOfProcessors = 1
	}
	c.NumberOfProcessors = ff.Apfloat.NumberOfProcessors
	c.FilePath = ff.Apfloat.FilePath
	c.FileInitialValue = ff.Apfloat.FileInitialValue
	c.FileSuffix = ff.Apfloat.FileSuffix
	c.CleanupAtExit = ff.Apfloat.CleanupAtExit
	c.filenames = NewFilenameGenerator(c.FilePath, c.FileInitialValue, c.FileSuffix)

	return c, nil
}

// SaveTo writes c's recognized properties to path as TOML.
func (c *Context) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return &aferrors.StorageError{Op: "mkdir", Path: dir, Wrapped: err}
	}

	f, err := os.Create(path) // #nosec G304 -- caller-chosen config path
	if err != nil {
		return &aferrors.StorageError{Op: "create", Path: path, Wrapped: err}
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(c.toFileFormat()); err != nil {
		return &aferrors.StorageError{Op: "encode", Path: path, Wrapped: err}
	}
	return nil
}
