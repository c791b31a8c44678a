package apcontext

import (
	"strconv"
	"strings"

	"github.com/lookbusy1344/go-apfloat/aferrors"
)

// clampPow2Floor rounds v down to the largest power of two that does not
// exceed v, with a floor of min.
func clampPow2Floor(v, min int64) int64 {
	if v < min {
		v = min
	}
	p := int64(1)
	for p<<1 <= v {
		p <<= 1
	}
	return p
}

// clampAdmissibleFloor rounds v down to the largest value of the form
// 2^a or 3*2^a that does not exceed v, with a floor of min. Used for
// maxMemoryBlockSize, whose admissible sizes also include 3*2^a because
// the factor-3 NTT path produces transform lengths of that shape.
func clampAdmissibleFloor(v, min int64) int64 {
	if v < min {
		v = min
	}
	best := int64(1)
	for p := int64(1); p <= v; p <<= 1 {
		if p > best {
			best = p
		}
		if three := 3 * p; three <= v && three > best {
			best = three
		}
	}
	return best
}

// Set applies a named property to c. Unknown names are stored verbatim
// (spec.md §4.1). Malformed values for recognized names fail with
// aferrors.ConfigError naming the key and value.
//
// Each property name is dispatched through exactly one case below, so
// setting one property never incidentally runs another property's
// setter — this resolves the ambiguity noted in DESIGN.md Open Question
// #1 (the original source's bare `if` chains could run two setters for
// one call).
func (c *Context) Set(name, value string) error {
	switch name {
	case "builderFactory":
		fam, err := parseElementFamily(value)
		if err != nil {
			return err
		}
		if fam != c.BuilderFactory {
			// Switching family drops cached tables (see RegisterCleanup).
			runCleanups()
		}
		c.BuilderFactory = fam

	case "defaultRadix":
		n, err := strconv.Atoi(value)
		if err != nil {
			return &aferrors.ConfigError{Key: name, Value: value, Wrapped: err}
		}
		c.DefaultRadix = clampInt(n, 2, 36)

	case "maxMemoryBlockSize":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return &aferrors.ConfigError{Key: name, Value: value, Wrapped: err}
		}
		c.MaxMemoryBlockSize = clampAdmissibleFloor(n, 65536)

	case "cacheL1Size":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return &aferrors.ConfigError{Key: name, Value: value, Wrapped: err}
		}
		c.CacheL1Size = clampPow2Floor(n, 512)

	case "cacheL2Size":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return &aferrors.ConfigError{Key: name, Value: value, Wrapped: err}
		}
		c.CacheL2Size = clampPow2Floor(n, 2048)

	case "cacheBurst":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return &aferrors.ConfigError{Key: name, Value: value, Wrapped: err}
		}
		c.CacheBurst = clampPow2Floor(n, 8)

	case "memoryTreshold":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return &aferrors.ConfigError{Key: name, Value: value, Wrapped: err}
		}
		if n < 128 {
			n = 128
		}
		c.MemoryTreshold = n

	case "blockSize":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return &aferrors.ConfigError{Key: name, Value: value, Wrapped: err}
		}
		c.BlockSize = clampPow2Floor(n, 128)

	case "numberOfProcessors":
		n, err := strconv.Atoi(value)
		if err != nil {
			return &aferrors.ConfigError{Key: name, Value: value, Wrapped: err}
		}
		if n < 1 {
			n = 1
		}
		c.NumberOfProcessors = n

	case "filePath":
		c.FilePath = value
		c.filenames = NewFilenameGenerator(c.FilePath, c.FileInitialValue, c.FileSuffix)

	case "fileInitialValue":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return &aferrors.ConfigError{Key: name, Value: value, Wrapped: err}
		}
		c.FileInitialValue = n
		c.filenames = NewFilenameGenerator(c.FilePath, c.FileInitialValue, c.FileSuffix)

	case "fileSuffix":
		c.FileSuffix = value
		c.filenames = NewFilenameGenerator(c.FilePath, c.FileInitialValue, c.FileSuffix)

	case "cleanupAtExit":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return &aferrors.ConfigError{Key: name, Value: value, Wrapped: err}
		}
		c.CleanupAtExit = b

	default:
		if c.extra == nil {
			c.extra = make(map[string]string)
		}
		c.extra[name] = value
	}

	return nil
}

// Get returns the string form of a recognized property, or an unknown
// property's verbatim value. The second return is false if name was
// never set and is not a recognized property.
func (c *Context) Get(name string) (string, bool) {
	switch name {
	case "builderFactory":
		return c.BuilderFactory.String(), true
	case "defaultRadix":
		return strconv.Itoa(c.DefaultRadix), true
	case "maxMemoryBlockSize":
		return strconv.FormatInt(c.MaxMemoryBlockSize, 10), true
	case "cacheL1Size":
		return strconv.FormatInt(c.CacheL1Size, 10), true
	case "cacheL2Size":
		return strconv.FormatInt(c.CacheL2Size, 10), true
	case "cacheBurst":
		return strconv.FormatInt(c.CacheBurst, 10), true
	case "memoryTreshold":
		return strconv.FormatInt(c.MemoryTreshold, 10), true
	case "blockSize":
		return strconv.FormatInt(c.BlockSize, 10), true
	case "numberOfProcessors":
		return strconv.Itoa(c.NumberOfProcessors), true
	case "filePath":
		return c.FilePath, true
	case "fileInitialValue":
		return strconv.FormatInt(c.FileInitialValue, 10), true
	case "fileSuffix":
		return c.FileSuffix, true
	case "cleanupAtExit":
		return strconv.FormatBool(c.CleanupAtExit), true
	default:
		v, ok := c.extra[name]
		return v, ok
	}
}

func parseElementFamily(value string) (ElementFamily, error) {
	switch strings.ToLower(value) {
	case "int32", "int":
		return FamilyInt32, nil
	case "int64", "long":
		return FamilyInt64, nil
	case "float":
		return FamilyFloat, nil
	case "double":
		return FamilyDouble, nil
	default:
		return 0, &aferrors.ConfigError{Key: "builderFactory", Value: value}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
