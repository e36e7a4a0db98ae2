// Package sources resolves declared sources into crawl-ready descriptors.
// Resolution is purely syntactic: nonexistent roots and malformed credentials
// fail here, before any network or auth attempt.
package sources

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/docharvest/internal/config"
	"github.com/jonathan/docharvest/internal/types"
)

// DefaultExtensions is the directory allow-list applied when a declaration
// names none. It mirrors the formats the extractor supports.
var DefaultExtensions = []string{".pdf", ".docx", ".txt", ".html", ".htm", ".csv", ".tsv", ".md"}

// Descriptor is a resolved, crawl-ready source
type Descriptor struct {
	Kind     types.SourceKind
	Address  string // canonical mailbox address or absolute directory root
	Settings types.SourceSettings
}

// Resolve turns configured declarations into descriptors, deduplicating by
// canonical address/path. Resolution order is the declaration order;
// duplicates keep the first declaration.
func Resolve(cfg *config.Config) ([]Descriptor, error) {
	var out []Descriptor
	seen := make(map[string]bool)

	for _, mb := range cfg.Mailboxes {
		desc, err := resolveMailbox(mb)
		if err != nil {
			return nil, err
		}
		key := string(types.SourceMailbox) + ":" + desc.Address
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, desc)
	}

	for _, dir := range cfg.Directories {
		desc, err := resolveDirectory(dir)
		if err != nil {
			return nil, err
		}
		key := string(types.SourceDirectory) + ":" + desc.Address
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, desc)
	}

	return out, nil
}

// resolveMailbox canonicalizes and syntactically validates one mailbox declaration
func resolveMailbox(mb config.MailboxSource) (Descriptor, error) {
	address := strings.ToLower(strings.TrimSpace(mb.Address))
	if !strings.Contains(address, "@") {
		return Descriptor{}, &ConfigurationError{Source: mb.Address, Message: "mailbox address is not an email address"}
	}

	host := strings.TrimSpace(mb.Host)
	if _, _, err := net.SplitHostPort(host); err != nil {
		return Descriptor{}, &ConfigurationError{Source: address, Message: fmt.Sprintf("invalid IMAP host %q", mb.Host), Cause: err}
	}

	if mb.SecretRef == "" {
		return Descriptor{}, &ConfigurationError{Source: address, Message: "secret_ref is required"}
	}
	if os.Getenv(mb.SecretRef) == "" {
		return Descriptor{}, &ConfigurationError{Source: address, Message: fmt.Sprintf("secret env var %s is not set", mb.SecretRef)}
	}

	folder := mb.Folder
	if folder == "" {
		folder = "INBOX"
	}

	return Descriptor{
		Kind:    types.SourceMailbox,
		Address: address,
		Settings: types.SourceSettings{
			Host:      host,
			Username:  address,
			SecretRef: mb.SecretRef,
			Folder:    folder,
		},
	}, nil
}

// resolveDirectory canonicalizes one directory declaration and checks the root exists
func resolveDirectory(dir config.DirectorySource) (Descriptor, error) {
	root, err := filepath.Abs(filepath.Clean(dir.Root))
	if err != nil {
		return Descriptor{}, &ConfigurationError{Source: dir.Root, Message: "cannot resolve root path", Cause: err}
	}

	info, err := os.Stat(root)
	if err != nil {
		return Descriptor{}, &ConfigurationError{Source: root, Message: "directory root does not exist", Cause: err}
	}
	if !info.IsDir() {
		return Descriptor{}, &ConfigurationError{Source: root, Message: "root is not a directory"}
	}

	exts := dir.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	normalized := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		normalized = append(normalized, e)
	}

	return Descriptor{
		Kind:    types.SourceDirectory,
		Address: root,
		Settings: types.SourceSettings{
			Root:       root,
			Extensions: normalized,
		},
	}, nil
}
