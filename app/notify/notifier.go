// Package notify holds the outbound-message contract of the account service.
// The core only renders and hands off payloads; delivery, retries and
// provider concerns belong to whatever consumes the queue.
package notify

import "context"

type Message struct {
	To       string `json:"to"`
	From     string `json:"from"`
	FromName string `json:"from_name"`
	Subject  string `json:"subject"`
	Text     string `json:"text"`
	HTML     string `json:"html"`
}

type Notifier interface {
	Send(ctx context.Context, msg *Message) error
}
