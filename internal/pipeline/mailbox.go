package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/docharvest/internal/db"
	"github.com/jonathan/docharvest/internal/entities"
	"github.com/jonathan/docharvest/internal/mailbox"
	"github.com/jonathan/docharvest/internal/sources"
	"github.com/jonathan/docharvest/internal/types"
)

// attachmentExts mirrors the extractor-supported formats for MIME attachments
var attachmentExts = func() map[string]bool {
	m := make(map[string]bool, len(sources.DefaultExtensions))
	for _, e := range sources.DefaultExtensions {
		m[e] = true
	}
	return m
}()

// syncMailboxWindow fetches and processes one window of a mailbox source.
// Connection and search failures retry with backoff; credential rejections
// surface immediately as *mailbox.AuthError. truncated reports that matches
// beyond the batch cap remain unfetched; the caller must then leave the
// cursor claimed instead of completing the window.
func syncMailboxWindow(ctx context.Context, database *db.DB, src *types.Source, desc sources.Descriptor, cursor *types.SyncCursor, registry *entities.Registry, tally *counters, opts RunOptions) (truncated bool, err error) {
	secret := os.Getenv(desc.Settings.SecretRef)

	var session *mailbox.Session
	err = withRetry(ctx, opts.Config.MaxRetries, opts.Config.RetryBackoff, func() error {
		var connErr error
		session, connErr = mailbox.Connect(ctx, desc, secret, opts.Config.FetchTimeout)
		return connErr
	})
	if err != nil {
		return false, err
	}
	defer session.Close()

	window := cursor.Window()
	var uids []uint32
	err = withRetry(ctx, opts.Config.MaxRetries, opts.Config.RetryBackoff, func() error {
		var searchErr error
		uids, searchErr = session.Search(ctx, window)
		return searchErr
	})
	if err != nil {
		return false, err
	}

	existing, err := database.ExistingOriginIDs(ctx, src.ID)
	if err != nil {
		return false, err
	}

	pending, truncated := pendingUIDs(uids, existing, batchLimit(opts))

	if opts.Verbose {
		fmt.Printf("[VERBOSE] %s: %d matches, %d to fetch\n", desc.Address, len(uids), len(pending))
	}
	if len(pending) == 0 {
		return truncated, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	items := make(chan rawItem, opts.Config.Workers*2)

	// Fetch stage: source-scoped I/O concurrency, decoupled from the CPU pool
	// by the bounded items queue. Full queue blocks fetchers (backpressure).
	fetchers, fetchCtx := errgroup.WithContext(gctx)
	uidCh := make(chan uint32)

	fetchers.Go(func() error {
		defer close(uidCh)
		for _, uid := range pending {
			select {
			case <-fetchCtx.Done():
				return fetchCtx.Err()
			case uidCh <- uid:
			}
		}
		return nil
	})

	for i := 0; i < opts.Config.FetchConcurrency; i++ {
		fetchers.Go(func() error {
			for uid := range uidCh {
				var msg *mailbox.Message
				err := withRetry(fetchCtx, opts.Config.MaxRetries, opts.Config.RetryBackoff, func() error {
					callCtx, cancel := context.WithTimeout(fetchCtx, opts.Config.FetchTimeout)
					defer cancel()
					var fetchErr error
					msg, fetchErr = session.Fetch(callCtx, uid)
					return fetchErr
				})
				if err != nil {
					return err
				}
				select {
				case <-fetchCtx.Done():
					return fetchCtx.Err()
				case items <- messageItem(msg):
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(items)
		return fetchers.Wait()
	})
	g.Go(func() error {
		return processItems(gctx, database, src, *cursor, registry, tally, opts, items)
	})

	return truncated, g.Wait()
}

// mailboxOriginID is the provider-stable identifier for a message
func mailboxOriginID(uid uint32) string {
	return fmt.Sprintf("uid:%d", uid)
}

// pendingUIDs selects up to limit not-yet-persisted UIDs. truncated reports
// that unpersisted matches beyond the cap remain in the window.
func pendingUIDs(uids []uint32, existing map[string]bool, limit int) (pending []uint32, truncated bool) {
	for _, uid := range uids {
		if existing[mailboxOriginID(uid)] {
			continue
		}
		if len(pending) >= limit {
			return pending, true
		}
		pending = append(pending, uid)
	}
	return pending, false
}

// batchLimit is the per-invocation fetch cap for the current mode
func batchLimit(opts RunOptions) int {
	if opts.Backfill {
		return opts.Config.BackfillBatchLimit
	}
	return opts.Config.BatchLimit
}

// messageItem converts a fetched message into one processable unit. Resumes
// and job descriptions arrive mostly as attachments, so the first extractable
// attachment wins over the body.
func messageItem(msg *mailbox.Message) rawItem {
	item := rawItem{
		originID:   mailboxOriginID(msg.UID),
		contentRef: msg.Envelope.Subject,
		fetchedAt:  time.Now().UTC(),
		size:       int64(len(msg.Raw)),
	}

	parsed, err := mailbox.ParseMessage(msg.Raw)
	if err != nil {
		// Hand the raw bytes to the extractor; it will fail the unit cleanly
		item.data = msg.Raw
		return item
	}

	for _, att := range parsed.Attachments {
		ext := mailbox.ExtensionOf(att.Filename)
		if !attachmentExts[ext] {
			continue
		}
		item.data = att.Data
		item.hint = ext
		if att.Filename != "" {
			item.contentRef = msg.Envelope.Subject + " / " + att.Filename
		}
		return item
	}

	if parsed.BodyText != "" {
		item.text = parsed.BodyText
		return item
	}
	if len(parsed.BodyHTML) > 0 {
		item.data = parsed.BodyHTML
		item.hint = ".html"
		return item
	}

	item.data = msg.Raw
	return item
}
