// Package conversation holds the per-session rolling chat history.
package conversation

import "strings"

// Speaker identifies who produced a history message.
type Speaker string

const (
	SpeakerUser      Speaker = "User"
	SpeakerAssistant Speaker = "Assistant"
)

// Message is one (speaker, text) pair in the rolling history.
type Message struct {
	Speaker Speaker
	Text    string
}

// History is the rolling chat buffer for one session. Not safe for
// concurrent use; a session processes turns strictly in sequence.
type History struct {
	messages []Message
}

// Add appends a message.
func (h *History) Add(speaker Speaker, text string) {
	h.messages = append(h.messages, Message{Speaker: speaker, Text: text})
}

// Recent returns up to n most recent messages, oldest first.
func (h *History) Recent(n int) []Message {
	if n <= 0 || len(h.messages) == 0 {
		return nil
	}
	if len(h.messages) > n {
		return h.messages[len(h.messages)-n:]
	}
	return h.messages
}

// Render formats up to n recent messages as "Speaker: text" lines for the
// conversation prompt.
func (h *History) Render(n int) string {
	recent := h.Recent(n)
	lines := make([]string, len(recent))
	for i, m := range recent {
		lines[i] = string(m.Speaker) + ": " + m.Text
	}
	return strings.Join(lines, "\n")
}

// Len returns the number of stored messages.
func (h *History) Len() int { return len(h.messages) }

// Clear discards all messages.
func (h *History) Clear() { h.messages = nil }
