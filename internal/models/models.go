// Package models holds value types shared across the workspace engine:
// chat messages and file attachments, used by both in-project chat and
// direct-message threads, plus the attachment admission rules.
package models

import "fmt"

// Attachment size ceilings. Chat/DM attachments and shared resources have
// independent limits; a file can be too large for one and fine for the other.
const (
	MaxChatAttachmentBytes = 5 << 20  // 5 MB per file in chat and DM threads
	MaxResourceBytes       = 10 << 20 // 10 MB per shared resource file
)

// ChatMessage is one message in a project chat or a direct-message thread.
type ChatMessage struct {
	ID          string       `json:"id"`
	AuthorID    string       `json:"author_id"`
	Text        string       `json:"text"`
	Timestamp   int64        `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a file attached to a chat message.
type Attachment struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	ContentRef string `json:"content_ref"`
}

// RejectedAttachment records one file refused at admission, with a
// user-visible reason carrying the file name.
type RejectedAttachment struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// AdmitAttachments checks each file against the given byte ceiling. Oversized
// files are rejected individually; the rest of the batch still proceeds.
func AdmitAttachments(files []Attachment, limit int64) (accepted []Attachment, rejected []RejectedAttachment) {
	for _, f := range files {
		if f.Size > limit {
			rejected = append(rejected, RejectedAttachment{
				Name:   f.Name,
				Reason: fmt.Sprintf("%s exceeds the %d MB attachment limit", f.Name, limit>>20),
			})
			continue
		}
		accepted = append(accepted, f)
	}
	return accepted, rejected
}
