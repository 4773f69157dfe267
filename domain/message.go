package domain

// MessageType discriminates how the payload of a message is interpreted:
// inline text, or a retrieval URL for a stored blob.
type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageVideo MessageType = "video"
	MessageAudio MessageType = "audio"
	MessageFile  MessageType = "file"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageVideo, MessageAudio, MessageFile:
		return true
	}
	return false
}

// Message is immutable once created. The router appends, never edits or
// deletes; cleanup is an external concern. Timestamps are epoch
// milliseconds end to end, matching the wire protocol.
type Message struct {
	ID        string      `json:"id"`
	RoomID    string      `json:"roomId"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Sender    string      `json:"sender"`
	Timestamp int64       `json:"timestamp"`
	FileName  string      `json:"fileName,omitempty"`
	FileSize  int64       `json:"fileSize,omitempty"`
}
