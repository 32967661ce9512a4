// Package mail carries step notifications and operational errors to the
// people running the pipeline.
package mail

import (
	"strings"

	"github.com/google/uuid"
)

// Message is a notification produced by a step. The zero Message is not valid;
// use NoMessage when a step has nothing to report.
type Message struct {
	ID      uuid.UUID
	Subject string
	Content string
	Error   bool

	none bool
}

// NoMessage returns the sentinel for "nothing to send". Senders drop it.
func NoMessage() Message {
	return Message{none: true}
}

// NewMessage creates a notification with a fresh id.
func NewMessage(subject, content string) Message {
	return Message{ID: uuid.New(), Subject: subject, Content: content}
}

// ErrorMessage creates the notification sent when err aborts a recipe.
func ErrorMessage(err error) Message {
	text := "unknown error"
	if err != nil {
		text = err.Error()
	}
	return Message{
		ID:      uuid.New(),
		Subject: "Error: " + strings.ReplaceAll(text, "\n", " "),
		Content: "An error has occurred while executing Aozan: " + text + "\n",
		Error:   true,
	}
}

// IsNoMessage reports whether m is the NoMessage sentinel.
func (m Message) IsNoMessage() bool {
	return m.none
}
