package picker

import "context"

// Event is one inbound chat message as seen by the picker. The host adapter
// fills it in; the picker never touches the host library directly.
type Event struct {
	ConversationID string
	SenderID       string
	Text           string
}

// UserKey distinguishes a sender within a conversation so concurrent
// selections by different users never collide.
func (e Event) UserKey() string {
	return e.ConversationID + ":" + e.SenderID
}

type BlockType string

const (
	BlockText  BlockType = "text"
	BlockImage BlockType = "image"
	BlockAudio BlockType = "audio"
)

// Block is one piece of an outbound reply.
type Block struct {
	Type     BlockType
	Text     string
	Image    []byte
	AudioURL string
}

func TextBlock(text string) Block {
	return Block{Type: BlockText, Text: text}
}

func ImageBlock(data []byte) Block {
	return Block{Type: BlockImage, Image: data}
}

func AudioBlock(url string) Block {
	return Block{Type: BlockAudio, AudioURL: url}
}

// Sender delivers one logical reply to the conversation an event came from.
type Sender interface {
	Send(ctx context.Context, ev Event, blocks []Block) error
}
