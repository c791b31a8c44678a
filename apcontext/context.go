// Package apcontext implements the process-wide and thread-overridable
// configuration described in spec.md §4.1: builder factory selection,
// radix, memory/cache tuning knobs, the temporary-file naming scheme,
// and the shared-memory lock guarding large allocations.
package apcontext

import (
	"sync"
	"sync/atomic"
)

// ElementFamily selects the machine word type the NTT/ModMath layers
// operate on. Switching a Context's family through Set runs the
// cleanups registered with RegisterCleanup, which drop cached twiddle
// tables (see ntt/registry).
type ElementFamily int

const (
	FamilyInt32 ElementFamily = iota
	FamilyInt64
	FamilyFloat
	FamilyDouble
)

func (f ElementFamily) String() string {
	switch f {
	case FamilyInt32:
		return "int32"
	case FamilyInt64:
		return "int64"
	case FamilyFloat:
		return "float"
	case FamilyDouble:
		return "double"
	default:
		return "unknown"
	}
}

// Executor dispatches background work for the parallel binary-splitting
// driver. It is declared here (rather than imported from package
// parallel) so Context can hold one without an import cycle; package
// parallel provides the concrete implementation.
type Executor interface {
	// Go schedules fn to run; the caller is responsible for observing
	// completion (e.g. via a WaitGroup or errgroup captured by fn).
	Go(fn func())
}

// Context holds one configuration snapshot. Property reads are
// lock-free; concurrent mutation of a shared Context requires external
// synchronization, per spec.md §4.1.
type Context struct {
	BuilderFactory ElementFamily
	DefaultRadix   int

	MaxMemoryBlockSize int64
	CacheL1Size        int64
	CacheL2Size        int64
	CacheBurst         int64
	MemoryTreshold     int64
	BlockSize          int64

	NumberOfProcessors int

	FilePath         string
	FileInitialValue int64
	FileSuffix       string
	CleanupAtExit    bool

	// extra holds unrecognized property names verbatim (spec.md §4.1:
	// "unknown property name is stored verbatim").
	extra map[string]string

	// sharedMemoryLock guards any allocation or access to a buffer
	// larger than MemoryTreshold (spec.md §5(a)). It is a pointer so
	// Clone can choose to share it by reference or give the clone its
	// own independent lock (Open Question #2 in DESIGN.md).
	sharedMemoryLock *sync.Mutex

	// filenames generates disk-backed storage names; shared by
	// reference across clones like builder/executor (spec.md §4.1
	// Clone semantics).
	filenames *FilenameGenerator

	executor Executor
}

// NewDefaultContext returns a Context with built-in defaults; each
// numeric default is at or above its property's clamp floor in Set.
func NewDefaultContext() *Context {
	c := &Context{
		BuilderFactory:     FamilyInt64,
		DefaultRadix:       10,
		MaxMemoryBlockSize: 1 << 26, // 64 MiB, already a power of two
		CacheL1Size:        1 << 15, // 32 KiB
		CacheL2Size:        1 << 18, // 256 KiB
		CacheBurst:         64,
		MemoryTreshold:     1 << 16, // 64 KiB
		BlockSize:          1 << 16,
		NumberOfProcessors: 1,
		FilePath:           "",
		FileInitialValue:   0,
		FileSuffix:         ".apf",
		CleanupAtExit:      false,
		sharedMemoryLock:   &sync.Mutex{},
	}
	c.filenames = NewFilenameGenerator(c.FilePath, c.FileInitialValue, c.FileSuffix)
	return c
}

// Lock acquires the shared-memory lock. Call before any in-memory
// allocation or access exceeding MemoryTreshold (spec.md §5(a)).
func (c *Context) Lock() { c.sharedMemoryLock.Lock() }

// Unlock releases the shared-memory lock.
func (c *Context) Unlock() { c.sharedMemoryLock.Unlock() }

// Filenames returns the Context's temporary-file name generator.
func (c *Context) Filenames() *FilenameGenerator { return c.filenames }

// SetExecutor installs the executor used by the parallel driver when
// this Context is in scope.
func (c *Context) SetExecutor(e Executor) { c.executor = e }

// Executor returns the installed executor, or nil if none was set.
func (c *Context) Executor() Executor { return c.executor }

// Clone produces a copy of c. Properties and attributes are duplicated
// (including the unknown-property map); the builder, filename
// generator, and executor are always shared by reference, matching
// spec.md §4.1. shareLock controls whether the clone guards the same
// shared-memory lock as c (true, the teacher's original shallow-clone
// behavior) or receives an independent lock (false) — see DESIGN.md
// Open Question #2.
func (c *Context) Clone(shareLock bool) *Context {
	clone := *c

	if len(c.extra) > 0 {
		clone.extra = make(map[string]string, len(c.extra))
		for k, v := range c.extra {
			clone.extra[k] = v
		}
	} else {
		clone.extra = nil
	}

	if !shareLock {
		clone.sharedMemoryLock = &sync.Mutex{}
	}

	return &clone
}

// globalContext is the process-wide Context cell.
var globalContext atomic.Pointer[Context]

// threadContexts holds per-thread overrides, keyed by a caller-chosen
// comparable token (e.g. a goroutine-local ID or a parallel-driver node
// ID). Entries must be removed explicitly via RemoveThreadContext when
// the owning thread/task exits — Go has no thread-death hook.
var threadContexts sync.Map

func init() {
	globalContext.Store(NewDefaultContext())
}

// SetGlobalContext replaces the process-wide Context.
func SetGlobalContext(ctx *Context) {
	globalContext.Store(ctx)
}

// GetContext returns threadKey's override if one is installed, else the
// global Context. threadKey may be nil to force the global lookup.
func GetContext(threadKey any) *Context {
	if threadKey != nil {
		if v, ok := threadContexts.Load(threadKey); ok {
			return v.(*Context)
		}
	}
	return globalContext.Load()
}

// SetThreadContext installs ctx as threadKey's override.
func SetThreadContext(threadKey any, ctx *Context) {
	threadContexts.Store(threadKey, ctx)
}

// RemoveThreadContext removes threadKey's override, if any. Callers
// that install a thread context around a task MUST call this on every
// exit path (success, error, or cancellation) to avoid leaking entries.
func RemoveThreadContext(threadKey any) {
	threadContexts.Delete(threadKey)
}
