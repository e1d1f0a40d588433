package auth

import (
	"context"
	"fmt"
)

// Logger is the injected diagnostic collaborator. Implementations must never
// receive raw credentials or full token payloads.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Mailer dispatches out-of-band notifications. Activation emails are awaited
// synchronously; a delivery failure fails the whole operation.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a plain-text notification
type Message struct {
	To      string
	Subject string
	Body    string
}

// Image is a stored avatar reference; only ID and URL ever travel in tokens
type Image struct {
	ID  string
	URL string
}

// ImageStore persists avatar binaries with an external host
type ImageStore interface {
	Upload(ctx context.Context, data string, folder string) (*Image, error)
	Delete(ctx context.Context, id string) error
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) { defprint("ERR", msg, args...) }
func (d defLogger) Warn(msg string, args ...any)  { defprint("WRN", msg, args...) }
func (d defLogger) Info(msg string, args ...any)  { defprint("INF", msg, args...) }
func (d defLogger) Debug(msg string, args ...any) { defprint("DBG", msg, args...) }

func defprint(level, msg string, args ...any) {
	if len(args) > 0 {
		fmt.Printf("[%s] AUTH %s %v\n", level, msg, args)
		return
	}
	fmt.Printf("[%s] AUTH %s\n", level, msg)
}
