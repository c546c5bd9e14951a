package audio

import (
	"math"

	"github.com/nguyentantai21042004/audio-summarizer/internal/apperror"
)

// DefaultMaxChunks bounds the chunk count. A plan above it almost always
// means the file size and the probed duration disagree.
const DefaultMaxChunks = 99

// PlanChunks decides how many chunks asset must be split into so that each
// stays under ceilingMB. It has no side effects.
func PlanChunks(asset Asset, ceilingMB float64, maxChunks int) (Plan, error) {
	if ceilingMB <= 0 || math.IsNaN(ceilingMB) || math.IsInf(ceilingMB, 0) {
		return Plan{}, apperror.InvalidInput("chunk ceiling must be a positive number of MB, got %v", ceilingMB)
	}
	if asset.ByteSize < 0 {
		return Plan{}, apperror.InvalidInput("asset size must not be negative, got %d", asset.ByteSize)
	}
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}

	if asset.DurationMillis <= 0 {
		return Plan{}, apperror.InvalidInput("cannot plan %s: duration is %dms", asset.Path, asset.DurationMillis)
	}

	sizeMB := asset.SizeMB()
	if sizeMB <= ceilingMB {
		return Plan{ChunkCount: 1, ChunkDurationMillis: asset.DurationMillis}, nil
	}

	count := int(math.Ceil(sizeMB / ceilingMB))
	if count < 2 {
		count = 2
	}
	if count > maxChunks {
		return Plan{}, apperror.AssetIntegrity(
			"%s needs %d chunks of %.2fMB (limit %d); size %.2fMB is out of proportion to duration %dms",
			asset.Path, count, ceilingMB, maxChunks, sizeMB, asset.DurationMillis)
	}
	if int64(count) > asset.DurationMillis {
		return Plan{}, apperror.AssetIntegrity(
			"%s: %d chunks cannot be cut from %dms of audio", asset.Path, count, asset.DurationMillis)
	}

	return Plan{
		ChunkCount:          count,
		ChunkDurationMillis: asset.DurationMillis / int64(count),
	}, nil
}

// Boundaries partitions [0, totalMillis) into plan.ChunkCount contiguous
// spans. The last span absorbs the integer-division remainder.
func Boundaries(totalMillis int64, plan Plan) []Span {
	if plan.ChunkCount <= 1 {
		return []Span{{StartMillis: 0, EndMillis: totalMillis}}
	}

	step := totalMillis / int64(plan.ChunkCount)
	spans := make([]Span, plan.ChunkCount)
	for i := range spans {
		start := int64(i) * step
		end := start + step
		if i == plan.ChunkCount-1 {
			end = totalMillis
		}
		spans[i] = Span{StartMillis: start, EndMillis: end}
	}
	return spans
}
