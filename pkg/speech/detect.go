package speech

// Detect decides once whether speech input can be offered. A nil
// transcriber or a missing recorder disables it.
func Detect(enabled bool, capturer *SoxCapturer, transcriber Transcriber) Capability {
	switch {
	case !enabled:
		return Capability{Reason: "speech input disabled in configuration"}
	case transcriber == nil:
		return Capability{Reason: "no transcription credential configured"}
	case capturer == nil:
		return Capability{Reason: "no recorder configured"}
	}
	if err := capturer.Available(); err != nil {
		return Capability{Reason: err.Error()}
	}
	return Capability{Available: true}
}
