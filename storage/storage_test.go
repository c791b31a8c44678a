package storage

import (
	"os"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	s := NewMemoryStorage(Int64, 16)
	defer s.Release()

	win, err := s.GetArray(ReadWrite, 0, 16)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	for i := int64(0); i < 16; i++ {
		if err := win.SetInt64(i, i*i); err != nil {
			t.Fatalf("SetInt64(%d): %v", i, err)
		}
	}
	if err := win.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	win2, err := s.GetArray(Read, 0, 16)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	defer win2.Close()
	for i := int64(0); i < 16; i++ {
		got, err := win2.GetInt64(i)
		if err != nil {
			t.Fatalf("GetInt64(%d): %v", i, err)
		}
		if got != i*i {
			t.Errorf("element %d = %d, want %d", i, got, i*i)
		}
	}
}

func TestDiskRoundTrip(t *testing.T) {
	path := t.TempDir() + "/disk0.apf"
	s, err := NewDiskStorage(Int64, 1000, path, 64)
	if err != nil {
		t.Fatalf("NewDiskStorage: %v", err)
	}
	defer s.Release()

	win, err := s.GetArray(ReadWrite, 0, 1000)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	for i := int64(0); i < 1000; i++ {
		if err := win.SetInt64(i, i-500); err != nil {
			t.Fatalf("SetInt64(%d): %v", i, err)
		}
	}
	if err := win.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	win2, err := s.GetArray(Read, 0, 1000)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	defer win2.Close()
	for i := int64(0); i < 1000; i++ {
		got, err := win2.GetInt64(i)
		if err != nil {
			t.Fatalf("GetInt64(%d): %v", i, err)
		}
		if want := i - 500; got != want {
			t.Errorf("element %d = %d, want %d", i, got, want)
		}
	}
}

func TestOverlappingWriteWindowsRejected(t *testing.T) {
	s := NewMemoryStorage(Int64, 16)
	defer s.Release()

	w1, err := s.GetArray(Write, 0, 8)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	defer w1.Close()

	if _, err := s.GetArray(Write, 4, 8); err == nil {
		t.Error("expected overlapping WRITE window to be rejected")
	}

	if _, err := s.GetArray(Read, 4, 8); err != nil {
		t.Errorf("READ window overlapping a live WRITE window should be allowed, got %v", err)
	}
}

func TestReverseIteratorDisk(t *testing.T) {
	path := t.TempDir() + "/disk1.apf"
	s, err := NewDiskStorage(Int64, 10, path, 32)
	if err != nil {
		t.Fatalf("NewDiskStorage: %v", err)
	}
	defer s.Release()

	win, err := s.GetArray(Write, 0, 10)
	if err != nil {
		t.Fatalf("GetArray: %v", err)
	}
	for i := int64(0); i < 10; i++ {
		win.SetInt64(i, i)
	}
	win.Close()

	it, err := s.Iterator(true)
	if err != nil {
		t.Fatalf("Iterator: %v", err)
	}
	defer it.Close()

	want := int64(9)
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		if v != want {
			t.Errorf("reverse iterator yielded %d, want %d", v, want)
		}
		want--
	}
	if want != -1 {
		t.Errorf("reverse iterator stopped early, want reached %d", want)
	}
}

func TestReleaseDeletesDiskFile(t *testing.T) {
	path := t.TempDir() + "/disk2.apf"
	s, err := NewDiskStorage(Int32, 4, path, 16)
	if err != nil {
		t.Fatalf("NewDiskStorage: %v", err)
	}
	if err := s.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("expected backing file to be removed on Release")
	}
}

func TestSetSizeGrowOnly(t *testing.T) {
	s := NewMemoryStorage(Int64, 4)
	defer s.Release()
	if err := s.SetSize(8); err != nil {
		t.Fatalf("SetSize grow: %v", err)
	}
	if s.Len() != 8 {
		t.Errorf("Len() = %d, want 8", s.Len())
	}
	if err := s.SetSize(2); err == nil {
		t.Error("expected shrinking SetSize to fail")
	}
}
