package storage

import (
	"testing"

	"github.com/lookbusy1344/go-apfloat/apcontext"
)

func testContext(t *testing.T, memoryTreshold, maxMemoryBlockSize int64) *apcontext.Context {
	t.Helper()
	ctx := apcontext.NewDefaultContext()
	if err := ctx.Set("filePath", t.TempDir()+"/"); err != nil {
		t.Fatalf("Set filePath: %v", err)
	}
	if err := ctx.Set("fileSuffix", ".apf"); err != nil {
		t.Fatalf("Set fileSuffix: %v", err)
	}
	ctx.MemoryTreshold = memoryTreshold
	ctx.MaxMemoryBlockSize = maxMemoryBlockSize
	return ctx
}

func TestFactoryNewPlacesBySize(t *testing.T) {
	f := NewFactory(testContext(t, 128, 4096))

	small, err := f.New(Int64, 4) // 32 bytes <= 128
	if err != nil {
		t.Fatalf("New small: %v", err)
	}
	defer small.Release()
	if _, ok := small.(*MemoryStorage); !ok {
		t.Errorf("expected small storage to be memory-backed, got %T", small)
	}

	large, err := f.New(Int64, 64) // 512 bytes > 128
	if err != nil {
		t.Fatalf("New large: %v", err)
	}
	defer large.Release()
	if _, ok := large.(*DiskStorage); !ok {
		t.Errorf("expected large storage to be disk-backed, got %T", large)
	}
}

func TestFactoryCachedUsesMaxMemoryBlockSize(t *testing.T) {
	f := NewFactory(testContext(t, 16, 4096))

	s, err := f.Cached(Int64, 64) // 512 bytes: > memoryTreshold but <= maxMemoryBlockSize
	if err != nil {
		t.Fatalf("Cached: %v", err)
	}
	defer s.Release()
	if _, ok := s.(*MemoryStorage); !ok {
		t.Errorf("expected Cached storage within maxMemoryBlockSize to be memory-backed, got %T", s)
	}
}

func TestFactoryMigratePreservesContent(t *testing.T) {
	f := NewFactory(testContext(t, 64, 4096))

	s, err := f.New(Int64, 4) // 32 bytes, memory-backed
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	win, err := s.GetArray(Write, 0, 4)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	for i := int64(0); i < 4; i++ {
		win.SetInt64(i, i*7)
	}
	win.Close()

	mem := s.(*MemoryStorage)
	if err := mem.SetSize(16); err != nil { // 128 bytes, now past the 64-byte threshold
		t.Fatalf("SetSize: %v", err)
	}
	win2, err := mem.GetArray(Write, 4, 12)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	for i := int64(0); i < 12; i++ {
		win2.SetInt64(i, (i+4)*7)
	}
	win2.Close()

	migrated, err := f.Migrate(mem)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	defer migrated.Release()

	if _, ok := migrated.(*DiskStorage); !ok {
		t.Fatalf("expected migrated storage to be disk-backed, got %T", migrated)
	}

	read, err := migrated.GetArray(Read, 0, 16)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	defer read.Close()
	for i := int64(0); i < 16; i++ {
		got, err := read.GetInt64(i)
		if err != nil {
			t.Fatalf("GetInt64(%d): %v", i, err)
		}
		if want := i * 7; got != want {
			t.Errorf("element %d = %d, want %d", i, got, want)
		}
	}
}

func TestFactoryMigrateLeavesSmallStorageInMemory(t *testing.T) {
	f := NewFactory(testContext(t, 4096, 4096))

	s, err := f.New(Int64, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Release()

	migrated, err := f.Migrate(s)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if migrated != s {
		t.Error("expected storage within threshold to be returned unchanged")
	}
}
