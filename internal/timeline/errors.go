package timeline

import "fmt"

// NoChunksError is returned when a run's kept words produce no usable
// source interval, for example when they all lie past the end of the audio.
type NoChunksError struct {
	RunIndex      int
	KeptWordCount int
	TotalDuration float64
}

func (e *NoChunksError) Error() string {
	return fmt.Sprintf("run %d: %d kept words produced no source chunks within %.3fs of audio",
		e.RunIndex, e.KeptWordCount, e.TotalDuration)
}
