package pricewatch

import "context"

// Message colors.
const (
	ColorInfo = 0x3498db
)

// Message is a rendered notification.
type Message struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Body   string `json:"body"`
	Footer string `json:"footer"`
	Color  int    `json:"color"`
}

// Notifier delivers messages to a channel. Delivery is best effort: callers
// log failures and never retry them.
type Notifier interface {
	Notify(ctx context.Context, msg *Message) error
}
