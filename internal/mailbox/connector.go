// Package mailbox fetches date-bounded message batches from IMAP sources.
// Fetching has no persistence side effects; the pipeline owns all writes.
package mailbox

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"

	"github.com/jonathan/docharvest/internal/sources"
	"github.com/jonathan/docharvest/internal/types"
)

// client is the subset of the IMAP client used by the connector.
// *imapclient.Client satisfies it; tests substitute a fake.
type client interface {
	Login(username, password string) error
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	UidSearch(criteria *imap.SearchCriteria) ([]uint32, error)
	UidFetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	Logout() error
}

// dial is replaced in tests to avoid real TLS connections. The timeout is the
// per-command deadline; without it a hung server blocks a fetch worker forever.
var dial = func(host string, timeout time.Duration) (client, error) {
	c, err := imapclient.DialTLS(host, nil)
	if err != nil {
		return nil, err
	}
	c.Timeout = timeout
	return c, nil
}

// Session is an authenticated IMAP connection selected on one folder
type Session struct {
	cli     client
	address string
	folder  string
}

// Connect dials and authenticates against a mailbox descriptor, using the
// secret resolved from the descriptor's secret_ref environment variable.
// timeout bounds every command on the session, fetches included.
// Credential rejections return *AuthError (terminal); connection failures
// return *NetError (retryable).
func Connect(ctx context.Context, desc sources.Descriptor, secret string, timeout time.Duration) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cli, err := dial(desc.Settings.Host, timeout)
	if err != nil {
		return nil, &NetError{Message: fmt.Sprintf("failed to dial %s", desc.Settings.Host), Cause: err}
	}

	if err := cli.Login(desc.Settings.Username, secret); err != nil {
		_ = cli.Logout()
		return nil, classifyLoginError(err)
	}

	if _, err := cli.Select(desc.Settings.Folder, true); err != nil {
		_ = cli.Logout()
		return nil, &NetError{Message: fmt.Sprintf("failed to select folder %s", desc.Settings.Folder), Cause: err}
	}

	return &Session{cli: cli, address: desc.Address, folder: desc.Settings.Folder}, nil
}

// classifyLoginError separates terminal credential failures from transient ones.
// A NO response to LOGIN is a credential problem; anything that looks like a
// dropped connection stays retryable.
func classifyLoginError(err error) error {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "application-specific password"),
		strings.Contains(msg, "app password"),
		strings.Contains(msg, "web login required"):
		return &AuthError{Message: "provider requires an app password", AppPasswordRequired: true, Cause: err}
	case strings.Contains(msg, "authenticationfailed"),
		strings.Contains(msg, "authentication failed"),
		strings.Contains(msg, "invalid credentials"),
		strings.Contains(msg, "login failed"),
		strings.Contains(msg, "username and password not accepted"):
		return &AuthError{Message: "credentials rejected", Cause: err}
	case strings.Contains(msg, "connection"), strings.Contains(msg, "timeout"),
		strings.Contains(msg, "broken pipe"), strings.Contains(msg, "eof"):
		return &NetError{Message: "connection lost during login", Cause: err}
	}

	// Unrecognized NO/BAD responses are treated as credential problems so a
	// misconfigured source gets disabled instead of hammering the provider.
	return &AuthError{Message: "login rejected", Cause: err}
}

// Close logs out of the session
func (s *Session) Close() error {
	return s.cli.Logout()
}

// Search returns message UIDs received within the window, most recent first.
// IMAP date search is day-granular; downstream relies on document timestamps
// for exactness. The caller applies the per-invocation cap.
func (s *Session) Search(ctx context.Context, window types.Window) ([]uint32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = truncateToDay(window.Start)
	// Before is exclusive. A midnight-aligned window end maps to it exactly;
	// otherwise round up to the next day and let dedup absorb the overlap.
	criteria.Before = truncateToDay(window.End)
	if criteria.Before.Before(window.End) {
		criteria.Before = criteria.Before.AddDate(0, 0, 1)
	}

	uids, err := s.cli.UidSearch(criteria)
	if err != nil {
		return nil, &NetError{Message: "search failed", Cause: err}
	}

	// UIDs ascend with arrival; descending order approximates most-recent-first
	sort.Slice(uids, func(i, j int) bool { return uids[i] > uids[j] })
	return uids, nil
}

// Envelope carries the message metadata alongside the raw bytes
type Envelope struct {
	Subject     string    `json:"subject"`
	From        string    `json:"from"`
	Recipients  []string  `json:"recipients"`
	Date        time.Time `json:"date"`
	Attachments []string  `json:"attachments"`
}

// Message is one fetched message: raw RFC822 bytes plus envelope
type Message struct {
	UID      uint32
	Raw      []byte
	Envelope Envelope
}

// Fetch retrieves one full message by UID. Pure fetch: no persistence.
func (s *Session) Fetch(ctx context.Context, uid uint32) (*Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	ch := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.cli.UidFetch(seqset, items, ch)
	}()

	// Drain the stream while honoring cancellation; the client's command
	// timeout is the backstop that eventually unblocks the goroutine.
	var msg *imap.Message
stream:
	for {
		select {
		case <-ctx.Done():
			return nil, &NetError{Message: fmt.Sprintf("fetch canceled for uid %d", uid), Cause: ctx.Err()}
		case m, ok := <-ch:
			if !ok {
				break stream
			}
			msg = m
		}
	}
	if err := <-done; err != nil {
		return nil, &NetError{Message: fmt.Sprintf("fetch failed for uid %d", uid), Cause: err}
	}
	if msg == nil {
		return nil, &NetError{Message: fmt.Sprintf("uid %d not found", uid)}
	}

	body := msg.GetBody(section)
	if body == nil {
		return nil, &NetError{Message: fmt.Sprintf("uid %d returned no body", uid)}
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, &NetError{Message: "failed to read message body", Cause: err}
	}

	envelope := Envelope{}
	if msg.Envelope != nil {
		envelope.Subject = msg.Envelope.Subject
		envelope.Date = msg.Envelope.Date
		if len(msg.Envelope.From) > 0 {
			envelope.From = msg.Envelope.From[0].Address()
		}
		for _, to := range msg.Envelope.To {
			envelope.Recipients = append(envelope.Recipients, to.Address())
		}
	}

	return &Message{UID: msg.Uid, Raw: raw, Envelope: envelope}, nil
}

// truncateToDay drops the time-of-day component, matching IMAP date granularity
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
