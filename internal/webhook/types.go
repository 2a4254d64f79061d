// Package webhook notifies moderators about the review queue through an outbound webhook
package webhook

import "time"

// SubmissionNotice announces a definition waiting for review
type SubmissionNotice struct {
	DefinitionID string    `json:"definition_id"`
	Word         string    `json:"word"`
	Definition   string    `json:"definition"`
	Example      string    `json:"example"`
	Author       string    `json:"author"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// Digest summarizes the moderation queue
type Digest struct {
	Pending     int64      `json:"pending"`
	OldestWord  string     `json:"oldest_word,omitempty"`
	OldestSince *time.Time `json:"oldest_since,omitempty"`
	GeneratedAt time.Time  `json:"generated_at"`
}
