package whatsapp

// Envelope is the webhook event envelope delivered by the WhatsApp Cloud API.
// Only the fields this service consumes are modeled.
type Envelope struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry represents a single webhook entry
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change represents a field change within an entry
type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

// Value carries the payload of a change: new messages, delivery statuses,
// and the contacts they relate to
type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts"`
	Messages         []Message `json:"messages"`
	Statuses         []Status  `json:"statuses"`
}

// Metadata identifies the business phone number the event belongs to
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact describes the sender of a message
type Contact struct {
	WaID    string  `json:"wa_id"`
	Profile Profile `json:"profile"`
}

// Profile holds the sender's display name
type Profile struct {
	Name string `json:"name"`
}

// Message is a single inbound message
type Message struct {
	From      string `json:"from"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Audio     *Audio `json:"audio,omitempty"`
	Text      *Text  `json:"text,omitempty"`
}

// Audio is the attachment reference for an audio message.
// The ID must be resolved to a download URL before the media is accessible.
type Audio struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	SHA256   string `json:"sha256,omitempty"`
	Voice    bool   `json:"voice,omitempty"`
}

// Text is the body of a text message
type Text struct {
	Body string `json:"body"`
}

// Status is a delivery status update for a previously sent message
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// ChangedField returns the field name of the first change in the envelope,
// or an empty string when the envelope carries no changes
func (e *Envelope) ChangedField() string {
	if len(e.Entry) == 0 || len(e.Entry[0].Changes) == 0 {
		return ""
	}
	return e.Entry[0].Changes[0].Field
}

// FirstMessage returns the first inbound message in the envelope, or nil
func (e *Envelope) FirstMessage() *Message {
	if len(e.Entry) == 0 || len(e.Entry[0].Changes) == 0 {
		return nil
	}
	msgs := e.Entry[0].Changes[0].Value.Messages
	if len(msgs) == 0 {
		return nil
	}
	return &msgs[0]
}

// FirstStatus returns the first delivery status in the envelope, or nil
func (e *Envelope) FirstStatus() *Status {
	if len(e.Entry) == 0 || len(e.Entry[0].Changes) == 0 {
		return nil
	}
	sts := e.Entry[0].Changes[0].Value.Statuses
	if len(sts) == 0 {
		return nil
	}
	return &sts[0]
}

// SenderName returns the profile name of the first contact in the envelope,
// or an empty string when no contact information is present
func (e *Envelope) SenderName() string {
	if len(e.Entry) == 0 || len(e.Entry[0].Changes) == 0 {
		return ""
	}
	contacts := e.Entry[0].Changes[0].Value.Contacts
	if len(contacts) == 0 {
		return ""
	}
	return contacts[0].Profile.Name
}
