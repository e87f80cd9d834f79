package player

// State is the playback lifecycle position.
type State int

const (
	// Idle means nothing has been loaded yet.
	Idle State = iota
	// Loaded means a track is loaded but not started.
	Loaded
	// Playing means the backend is rendering audio.
	Playing
	// Paused means playback is suspended and resumable.
	Paused
	// Stopped means playback ended or was stopped explicitly.
	Stopped
	// Error means the last backend operation failed. Load and Stop
	// recover from it.
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loaded:
		return "loaded"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	case Error:
		return "error"
	}
	return "unknown"
}
