package mailer

// EmailJob is the JSON payload put on the RabbitMQ email queue.
// HTML is optional; Text is recommended as fallback. Template selects a
// server-side template rendered by the worker with Data.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "welcome"
	Data     map[string]any `json:"data,omitempty"`
}
