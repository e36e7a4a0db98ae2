package mailbox

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
)

// Part is one attachment extracted from a MIME message
type Part struct {
	Filename  string
	MediaType string
	Data      []byte
}

// Parsed is the decoded content of one message: header fields, the body text
// (plain preferred, HTML kept raw for the extractor), and attachments.
type Parsed struct {
	Subject     string
	From        string
	Date        time.Time
	BodyText    string
	BodyHTML    []byte
	Attachments []Part
}

// ParseMessage walks the MIME structure of raw RFC822 bytes. Individual
// unreadable parts are skipped; only an unreadable envelope is fatal.
func ParseMessage(raw []byte) (*Parsed, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &NetError{Message: "failed to parse message", Cause: err}
	}

	parsed := &Parsed{}
	if subject, err := mr.Header.Subject(); err == nil {
		parsed.Subject = subject
	}
	if date, err := mr.Header.Date(); err == nil {
		parsed.Date = date
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		parsed.From = from[0].Address
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed trailing part: keep what was decoded so far
			break
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			ct, _, err := h.ContentType()
			if err != nil {
				continue
			}
			data, err := io.ReadAll(p.Body)
			if err != nil {
				continue
			}
			switch {
			case ct == "text/plain":
				if parsed.BodyText != "" {
					parsed.BodyText += "\n"
				}
				parsed.BodyText += string(data)
			case ct == "text/html":
				parsed.BodyHTML = append(parsed.BodyHTML, data...)
			}
		case *mail.AttachmentHeader:
			filename, err := h.Filename()
			if err != nil || filename == "" {
				continue
			}
			ct, _, _ := h.ContentType()
			data, err := io.ReadAll(p.Body)
			if err != nil {
				continue
			}
			parsed.Attachments = append(parsed.Attachments, Part{
				Filename:  filename,
				MediaType: ct,
				Data:      data,
			})
		}
	}

	return parsed, nil
}

// AttachmentNames lists attachment filenames for the envelope
func (p *Parsed) AttachmentNames() []string {
	names := make([]string, 0, len(p.Attachments))
	for _, a := range p.Attachments {
		names = append(names, a.Filename)
	}
	return names
}

// ExtensionOf returns the lowercased extension hint of an attachment filename
func ExtensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(filename[idx:])
}
