package discord

// User is the authenticated bot identity.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot"`
}

// Channel is a message channel the bot can post to.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type int    `json:"type"`
}

// Message is a posted or edited message.
type Message struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

// EmbedField is a titled section inside an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedFooter is the small print at the bottom of an embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// Embed is a rich message block.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// MessagePayload is the body for message create and edit calls.
type MessagePayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// presencePayload is the body for the bot presence update call.
type presencePayload struct {
	Status       string        `json:"status"`
	CustomStatus *customStatus `json:"custom_status,omitempty"`
}

type customStatus struct {
	Text string `json:"text"`
}
