package notifications

import "time"

// Channels a notification can be delivered over.
const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// ValidChannel reports whether c is a known channel.
func ValidChannel(c string) bool {
	return c == ChannelSMS || c == ChannelEmail
}

// Queue states. Dequeue moves rows pending → processing; marking moves them
// processing → processed/failed.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusFailed     = "failed"
)

// Notification is one queued outbound message.
type Notification struct {
	ID          int64      `json:"id"`
	Channel     string     `json:"channel"`
	Recipient   string     `json:"recipient"`
	Subject     string     `json:"subject,omitempty"`
	Body        string     `json:"body"`
	Status      string     `json:"status"`
	Attempts    int        `json:"attempts"`
	LastError   string     `json:"lastError,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}
