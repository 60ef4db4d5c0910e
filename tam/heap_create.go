package tam

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/tumalloc/memutils"
	"github.com/vkngwrapper/tumalloc/memutils/arena"
	"github.com/vkngwrapper/tumalloc/memutils/metadata"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific heap behaviors to activate or deactivate
type CreateFlags int32

var heapCreateFlagsMapping = memutils.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	heapCreateFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return heapCreateFlagsMapping.FlagsToString(f)
}

const (
	// HeapCreateSplitOnly causes allocations to skip free blocks that are large enough for the request
	// but too small to be split, rather than handing them out whole. The heap will grow more often, but every
	// allocation served from the free list receives exactly the number of bytes it requested.
	HeapCreateSplitOnly CreateFlags = 1 << iota
	// HeapCreateValidateEveryCall runs a full Validate pass after every call that modifies the heap and
	// panics if it fails. This is extremely slow and is meant for tracking down heap bugs.
	HeapCreateValidateEveryCall
)

func init() {
	HeapCreateSplitOnly.Register("HeapCreateSplitOnly")
	HeapCreateValidateEveryCall.Register("HeapCreateValidateEveryCall")
}

const (
	// DefaultHeapLimit is the growth limit of the heap source that is used when none is provided via
	// CreateOptions. It is equal to 256Mb.
	DefaultHeapLimit int = 256 * 1024 * 1024
)

// CreateOptions contains optional settings when creating a heap
type CreateOptions struct {
	// Flags indicates specific heap behaviors to activate or deactivate
	Flags CreateFlags

	// Source is the region the heap will grow into. It must be empty. When it is left nil, the heap
	// is backed by a Go byte slice that can grow to DefaultHeapLimit bytes.
	Source arena.HeapSource

	// OnCorruption is called when Release finds that the guard value after an allocation has been
	// overwritten. The error passed in is always a *CorruptionError. When it is left nil, the process
	// is terminated. If a provided callback returns, the corrupted block is abandoned and never reused.
	OnCorruption func(err error)
}

// New creates a new Heap
//
// logger - Receives diagnostics about heap operations. It may be nil.
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, options CreateOptions) (*Heap, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard))
	}

	source := options.Source
	if source == nil {
		source = arena.NewSliceSource(DefaultHeapLimit)
	}

	if source.Len() != 0 {
		return nil, errors.Newf("heap sources must be empty when a heap is created, but this one already holds %d bytes", source.Len())
	}

	strategy := metadata.FitExactReuse
	if options.Flags&HeapCreateSplitOnly != 0 {
		strategy = metadata.FitSplitOnly
	}

	onCorruption := options.OnCorruption
	if onCorruption == nil {
		onCorruption = abortOnCorruption
	}

	heap := &Heap{
		logger:       logger,
		source:       source,
		freeList:     metadata.NewFreeList(source),
		strategy:     strategy,
		createFlags:  options.Flags,
		onCorruption: onCorruption,
	}

	logger.Debug("Heap::New",
		slog.String("Flags", options.Flags.String()),
		slog.String("FitStrategy", strategy.String()),
	)

	return heap, nil
}
