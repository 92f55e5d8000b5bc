package testutils

import (
	"context"
	"regexp"
	"sync"

	gomail "github.com/wneessen/go-mail"
)

var linkToken = regexp.MustCompile(`/(verify-email|reset-password)/([0-9a-zA-Z-]+)`)

// Outbox is a mail transport that keeps every message instead of
// delivering it.
type Outbox struct {
	mu   sync.Mutex
	msgs []*gomail.Msg
	err  error
}

func (o *Outbox) DialAndSendWithContext(_ context.Context, msgs ...*gomail.Msg) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.msgs = append(o.msgs, msgs...)
	return nil
}

// FailWith makes later sends return err. A nil err restores delivery.
func (o *Outbox) FailWith(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.err = err
}

func (o *Outbox) Messages() []*gomail.Msg {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*gomail.Msg(nil), o.msgs...)
}

// LastToken returns the token from the most recent link for route
// ("verify-email" or "reset-password"), or "" when none was sent.
func (o *Outbox) LastToken(route string) string {
	msgs := o.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		for _, part := range msgs[i].GetParts() {
			content, err := part.GetContent()
			if err != nil {
				continue
			}
			for _, m := range linkToken.FindAllStringSubmatch(string(content), -1) {
				if m[1] == route {
					return m[2]
				}
			}
		}
	}
	return ""
}
