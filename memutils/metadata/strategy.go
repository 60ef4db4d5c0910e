package metadata

// FitStrategy controls what the free list search does with a candidate that is large enough for a
// request but cannot be split, because the excess would not hold a well-formed remainder block.
type FitStrategy uint32

const (
	// FitExactReuse hands such a candidate out whole. The holder receives the entire payload of the
	// free block, which may be slightly more than was requested.
	FitExactReuse FitStrategy = iota
	// FitSplitOnly skips such a candidate and keeps searching. Every allocation served from the
	// free list leaves behind a free remainder, at the cost of never reusing an exact fit.
	FitSplitOnly
)

var fitStrategyMapping = map[FitStrategy]string{
	FitExactReuse: "FitExactReuse",
	FitSplitOnly:  "FitSplitOnly",
}

func (s FitStrategy) String() string {
	return fitStrategyMapping[s]
}
