// Package types defines the shared domain records for the document catalog.
package types

import (
	"time"

	"github.com/google/uuid"
)

// SourceKind identifies how a source is crawled
type SourceKind string

const (
	// SourceMailbox is an IMAP mailbox crawled in date-bounded windows
	SourceMailbox SourceKind = "mailbox"
	// SourceDirectory is a local directory tree walked for candidate files
	SourceDirectory SourceKind = "directory"
)

// Source represents a registered content source.
// Sources are disabled (never deleted) after repeated terminal auth failures.
type Source struct {
	ID           uuid.UUID  `json:"id"`
	Kind         SourceKind `json:"kind"`
	Address      string     `json:"address"` // canonical mailbox address or directory root
	Settings     SourceSettings `json:"settings"`
	Active       bool       `json:"active"`
	AuthFailures int        `json:"auth_failures"`
	LastSyncAt   *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// SourceSettings holds the kind-specific connection descriptor
type SourceSettings struct {
	// Mailbox fields
	Host      string `json:"host,omitempty" validate:"omitempty,hostname_port"`
	Username  string `json:"username,omitempty" validate:"omitempty,email"`
	SecretRef string `json:"secret_ref,omitempty"` // env var holding the app password
	Folder    string `json:"folder,omitempty"`

	// Directory fields
	Root       string   `json:"root,omitempty"`
	Extensions []string `json:"extensions,omitempty"`
}
