package tam

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/tumalloc/memutils"
	"github.com/vkngwrapper/tumalloc/memutils/metadata"
	"golang.org/x/exp/slog"
)

// Validate performs internal consistency checks on the heap. When the heap is functioning correctly and
// no caller has written outside of an allocation, it should not be possible for this method to return an error.
func (h *Heap) Validate() error {
	err := h.freeList.Validate()
	if err != nil {
		return err
	}

	var stats memutils.Statistics
	err = h.freeList.AddStatistics(&stats)
	if err != nil {
		return err
	}

	if stats.AllocationCount != h.allocationCount {
		return errors.Newf("the heap holds %d allocated blocks, but %d allocations are live", stats.AllocationCount, h.allocationCount)
	}

	if stats.HeapBytes != h.source.Len() {
		return errors.Newf("the heap source holds %d bytes, but the heap region is %d bytes", h.source.Len(), stats.HeapBytes)
	}

	if stats.AccountedBytes() != stats.HeapBytes {
		return errors.Newf("the heap region is %d bytes, but its blocks only account for %d bytes", stats.HeapBytes, stats.AccountedBytes())
	}

	return nil
}

// CalculateStatistics adds the heap's current layout to stats
func (h *Heap) CalculateStatistics(stats *memutils.Statistics) error {
	h.logger.Debug("Heap::CalculateStatistics")

	return h.freeList.AddStatistics(stats)
}

// CalculateDetailedStatistics adds the heap's current layout to stats. The stats object should be cleared
// first, or the minimum sizes will not be correct.
func (h *Heap) CalculateDetailedStatistics(stats *memutils.DetailedStatistics) error {
	h.logger.Debug("Heap::CalculateDetailedStatistics")

	return h.freeList.AddDetailedStatistics(stats)
}

// BuildStatsString returns a json document describing the heap. When detailedMap is true, every block
// in the heap is listed in physical order.
func (h *Heap) BuildStatsString(detailedMap bool) string {
	h.logger.Debug("Heap::BuildStatsString")

	var stats memutils.DetailedStatistics
	stats.Clear()
	statsErr := h.freeList.AddDetailedStatistics(&stats)

	writer := jwriter.NewWriter()
	rootObj := writer.Object()

	generalObj := rootObj.Name("General").Object()
	generalObj.Name("Flags").String(h.createFlags.String())
	generalObj.Name("FitStrategy").String(h.strategy.String())
	generalObj.Name("LiveAllocations").Int(h.allocationCount)
	generalObj.End()

	if statsErr != nil {
		rootObj.Name("Error").String(statsErr.Error())
		rootObj.End()
		return string(writer.Bytes())
	}

	totalObj := rootObj.Name("Total").Object()
	printDetailedStatistics(&totalObj, &stats)
	totalObj.End()

	if detailedMap {
		heapObj := rootObj.Name("Heap").Object()
		metadata.BlockJsonData(&heapObj, stats.HeapBytes, stats.FreeBytes, stats.AllocationCount, stats.UnusedRangeCount)
		h.printDetailedMap(&heapObj)
		heapObj.End()
	}

	rootObj.End()

	if writer.Error() != nil {
		h.logger.Error("failed to build heap stats string", slog.Any("error", writer.Error()))
	}

	return string(writer.Bytes())
}

func printDetailedStatistics(json *jwriter.ObjectState, stats *memutils.DetailedStatistics) {
	json.Name("BlockCount").Int(stats.BlockCount)
	json.Name("AllocationCount").Int(stats.AllocationCount)
	json.Name("UnusedRangeCount").Int(stats.UnusedRangeCount)
	json.Name("HeapBytes").Int(stats.HeapBytes)
	json.Name("AllocationBytes").Int(stats.AllocationBytes)
	json.Name("FreeBytes").Int(stats.FreeBytes)
	json.Name("OverheadBytes").Int(stats.OverheadBytes)

	if stats.AllocationCount > 0 {
		json.Name("AllocationSizeMin").Int(stats.AllocationSizeMin)
		json.Name("AllocationSizeMax").Int(stats.AllocationSizeMax)
	}

	if stats.UnusedRangeCount > 0 {
		json.Name("UnusedRangeSizeMin").Int(stats.UnusedRangeSizeMin)
		json.Name("UnusedRangeSizeMax").Int(stats.UnusedRangeSizeMax)
	}
}

func (h *Heap) printDetailedMap(json *jwriter.ObjectState) {
	arrayState := json.Name("Blocks").Array()
	defer arrayState.End()

	_ = h.freeList.VisitAllRegions(func(offset int, size int, free bool) error {
		obj := arrayState.Object()
		defer obj.End()

		obj.Name("Offset").Int(offset)
		obj.Name("Size").Int(size)
		if free {
			obj.Name("Type").String("FREE")
		} else {
			obj.Name("Type").String("ALLOCATED")
			obj.Name("Pointer").Int(offset + metadata.HeaderSize)
		}

		return nil
	})
}
