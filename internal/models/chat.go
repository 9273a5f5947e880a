package models

// FallbackReply is returned when the provider answers with no text.
const FallbackReply = "Sorry, I didn't understand that."

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply from the AI chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}

type ChatResultKind int

const (
	ChatResultText ChatResultKind = iota
	ChatResultEmpty
	ChatResultFailed
)

func (k ChatResultKind) String() string {
	switch k {
	case ChatResultText:
		return "text"
	case ChatResultEmpty:
		return "empty"
	case ChatResultFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ChatResult is the outcome of a single provider call. Text is set for
// ChatResultText, Err for ChatResultFailed.
type ChatResult struct {
	Kind ChatResultKind
	Text string
	Err  error
}

// Reply renders the result as the string sent back to the client.
func (r ChatResult) Reply() string {
	switch r.Kind {
	case ChatResultFailed:
		if r.Err == nil {
			return "Error: unknown error"
		}
		return "Error: " + r.Err.Error()
	case ChatResultEmpty:
		return FallbackReply
	default:
		return r.Text
	}
}
