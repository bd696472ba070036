package event

import (
	"strings"
	"time"

	"auction_go/internal/domain"
)

// Type identifies the kind of event pushed to feed subscribers.
type Type string

const (
	TypeClearing   Type = "clearing"
	TypeSubscribed Type = "subscribed"
	TypeError      Type = "error"
)

// Event is the envelope sent to feed subscribers.
type Event struct {
	Seq      uint64                 `json:"seq"`
	Type     Type                   `json:"type"`
	Channel  string                 `json:"channel"`
	Ts       int64                  `json:"ts"` // Unix milliseconds
	Clearing *domain.ClearingRecord `json:"clearing,omitempty"`
	Message  string                 `json:"message,omitempty"`
}

// NewClearingEvent wraps a clearing record for the period's channel.
func NewClearingEvent(seq uint64, rec *domain.ClearingRecord) Event {
	return Event{
		Seq:      seq,
		Type:     TypeClearing,
		Channel:  PeriodChannel(rec.PeriodID),
		Ts:       time.Now().UnixMilli(),
		Clearing: rec,
	}
}

// NewSubscribedEvent acknowledges a subscription change.
func NewSubscribedEvent(channels []string) Event {
	return Event{Type: TypeSubscribed, Ts: time.Now().UnixMilli(), Message: strings.Join(channels, ",")}
}

// NewErrorEvent reports a failed request back to a single subscriber.
func NewErrorEvent(message string) Event {
	return Event{Type: TypeError, Ts: time.Now().UnixMilli(), Message: message}
}
