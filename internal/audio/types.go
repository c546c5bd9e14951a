// Package audio decides how an audio file is chunked and produces the chunk
// files that are sent to the speech-to-text service.
package audio

// Encoding is the lossy codec chunks are exported with.
const Encoding = "mp3"

const bytesPerMB = 1024 * 1024

// Asset is an encoded audio file on local disk.
type Asset struct {
	Path           string
	ByteSize       int64
	DurationMillis int64
	Encoding       string
}

// SizeMB returns the asset size in mebibytes.
func (a Asset) SizeMB() float64 {
	return float64(a.ByteSize) / bytesPerMB
}

// Plan is the outcome of size estimation for one asset.
type Plan struct {
	ChunkCount          int
	ChunkDurationMillis int64
}

// NeedsSplit reports whether the asset must be physically split.
func (p Plan) NeedsSplit() bool { return p.ChunkCount > 1 }

// Span is a half-open time interval [StartMillis, EndMillis).
type Span struct {
	StartMillis int64
	EndMillis   int64
}

// DurationMillis returns the length of the span.
func (s Span) DurationMillis() int64 { return s.EndMillis - s.StartMillis }

// Chunk is one exported sub-clip of an Asset. Index is zero-based and
// determines the position of the chunk's transcript in the final result.
type Chunk struct {
	Index       int
	StartMillis int64
	EndMillis   int64
	Path        string
}
