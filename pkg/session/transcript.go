package session

const (
	SpeakerHost   = "host"   // Show host persona
	SpeakerPlayer = "player" // The performing player
)

// TranscriptEntry is a single line of the show's narrative history.
// Entries are append-only and their order defines the chronology.
type TranscriptEntry struct {
	Speaker string `json:"speaker"` // "host" or "player"
	Text    string `json:"text"`
}
