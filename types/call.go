package types

// Voice call statuses as reported by the voice service.
const (
	CallStatusQueued     = "queued"
	CallStatusRinging    = "ringing"
	CallStatusProcessing = "processing"
	CallStatusInProgress = "in-progress"
	CallStatusCompleted  = "completed"
	CallStatusFailed     = "failed"
	CallStatusNoAnswer   = "no-answer"
	CallStatusBusy       = "busy"
	CallStatusCanceled   = "canceled"
)

// InProgressCallStatus reports whether a status means the call is still live
// and should keep being polled.
func InProgressCallStatus(status string) bool {
	switch status {
	case CallStatusQueued, CallStatusRinging, CallStatusProcessing, CallStatusInProgress:
		return true
	}
	return false
}

// TranscriptEntry is one normalized line of a call transcript. Timestamp is
// always a canonical RFC 3339 string; the voice service is not consistent
// about the raw type it returns.
type TranscriptEntry struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// CallArtifacts are the durable byproducts of a completed call, written at
// most once per call id.
type CallArtifacts struct {
	CallID            string            `json:"callId"`
	RecordingURL      string            `json:"recordingUrl,omitempty"`
	RecordingDuration int               `json:"recordingDuration,omitempty"`
	Transcript        []TranscriptEntry `json:"transcript,omitempty"`
	ConversationID    string            `json:"conversationId,omitempty"`
}
