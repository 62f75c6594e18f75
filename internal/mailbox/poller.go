// Package mailbox implements the mailbox poller (C10): fetch unread mail,
// extract allow-listed attachments, hand each to the storage layer, and
// ack only messages whose every attachment was saved.
package mailbox

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"

	"github.com/borderops/ingestor/internal/ingest"
	"github.com/borderops/ingestor/internal/storage"
)

// Config carries the connection and filtering settings the poller needs,
// mirroring internal/config's MailboxConfig section.
type Config struct {
	Host                 string
	Port                 int
	Username             string
	Password             string // mutually exclusive with OAuthToken
	OAuthToken           string
	Folder               string // default "INBOX"
	AttachmentExtensions []string
	ConnectTimeout       time.Duration
}

// Result reports what one poll accomplished, per spec §4.10 step 5.
type Result struct {
	Processed      int
	Duplicate      int
	Failed         int
	EmailsMarkedSeen int
}

// Poller connects to an IMAP mailbox on demand (or on an interval, driven
// by the caller/scheduler) and hands matching attachments to Storage.
type Poller struct {
	cfg     Config
	storage *storage.Store
	log     *slog.Logger
}

// New builds a Poller. cfg.Folder defaults to "INBOX" and
// cfg.AttachmentExtensions to {xlsx,xls,csv} when left empty.
func New(cfg Config, store *storage.Store, log *slog.Logger) *Poller {
	if cfg.Folder == "" {
		cfg.Folder = "INBOX"
	}
	if len(cfg.AttachmentExtensions) == 0 {
		cfg.AttachmentExtensions = []string{"xlsx", "xls", "csv"}
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Poller{cfg: cfg, storage: store, log: log}
}

// Poll runs a single pass: connect, authenticate, select the folder,
// search for unread messages, extract and save allow-listed attachments,
// and mark SEEN only the messages where every attachment saved without
// error. A connect/auth failure returns that error; failures per message
// are logged and counted, never abort the pass.
func (p *Poller) Poll(ctx context.Context) (Result, error) {
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)

	dialer := &net.Dialer{Timeout: p.cfg.ConnectTimeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, nil)
	if err != nil {
		return Result{}, &ingest.ConnectError{Err: err}
	}
	conn.SetDeadline(time.Now().Add(p.cfg.ConnectTimeout))
	client := imapclient.New(conn, nil)
	defer client.Close()

	if err := p.authenticate(client); err != nil {
		return Result{}, &ingest.AuthError{Err: err}
	}
	conn.SetDeadline(time.Time{})

	if _, err := client.Select(p.cfg.Folder, nil).Wait(); err != nil {
		return Result{}, &ingest.ConnectError{Err: fmt.Errorf("select %s: %w", p.cfg.Folder, err)}
	}

	searchData, err := client.Search(&imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}, nil).Wait()
	if err != nil {
		return Result{}, &ingest.ConnectError{Err: fmt.Errorf("search unseen: %w", err)}
	}

	seqSet := searchData.All
	if seqSet.String() == "" {
		return Result{}, nil
	}

	var result Result
	var seenable imap.SeqSet
	var seenableCount int

	fetchOptions := &imap.FetchOptions{
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{{}},
	}

	fetchCmd := client.Fetch(seqSet, fetchOptions)

	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}
		ok := p.processMessage(ctx, msg, &result)
		if ok {
			seenable.AddNum(msg.SeqNum)
			seenableCount++
		}
	}
	if err := fetchCmd.Close(); err != nil {
		p.log.Warn("mailbox: fetch close reported error", "error", err)
	}

	if seenableCount > 0 {
		if err := client.Store(seenable, &imap.StoreFlags{
			Op:     imap.StoreFlagsAdd,
			Silent: true,
			Flags:  []imap.Flag{imap.FlagSeen},
		}, nil).Wait(); err != nil {
			p.log.Warn("mailbox: failed marking messages seen", "error", err)
		} else {
			result.EmailsMarkedSeen = seenableCount
		}
	}

	return result, nil
}

// authenticate dispatches on whichever credential is configured; spec's
// config validation guarantees exactly one is set.
func (p *Poller) authenticate(client *imapclient.Client) error {
	if p.cfg.OAuthToken != "" {
		authClient := sasl.NewOAuthBearerClient(&sasl.OAuthBearerOptions{
			Username: p.cfg.Username,
			Token:    p.cfg.OAuthToken,
		})
		return client.Authenticate(authClient)
	}
	return client.Login(p.cfg.Username, p.cfg.Password).Wait()
}

// processMessage extracts allow-listed attachments from one fetched
// message and saves each via Storage. Returns true only if every
// attachment in the message saved without error, the condition under
// which the caller marks it SEEN.
func (p *Poller) processMessage(ctx context.Context, msg *imapclient.FetchMessageData, result *Result) bool {
	var bodySection []byte
	var envelope *imap.Envelope

	for {
		item := msg.Next()
		if item == nil {
			break
		}
		switch v := item.(type) {
		case imapclient.FetchItemDataEnvelope:
			envelope = v.Envelope
		case imapclient.FetchItemDataBodySection:
			data, err := io.ReadAll(v.Literal)
			if err == nil {
				bodySection = data
			}
		}
	}

	if bodySection == nil {
		result.Failed++
		return false
	}

	subject, sender, receivedAt := messageMeta(envelope)

	attachments, err := extractAttachments(bodySection, p.cfg.AttachmentExtensions)
	if err != nil {
		p.log.Warn("mailbox: failed parsing message", "error", err)
		result.Failed++
		return false
	}
	if len(attachments) == 0 {
		// No matching attachments: nothing to save, but the message isn't a
		// failure either. Treat it as already handled.
		return true
	}

	allOK := true
	for _, a := range attachments {
		saved, err := p.storage.Save(ctx, a.Data, a.Filename, storage.Metadata{
			Sender:     sender,
			Subject:    subject,
			ReceivedAt: receivedAt,
		})
		if err != nil {
			p.log.Warn("mailbox: failed saving attachment", "filename", a.Filename, "error", err)
			allOK = false
			result.Failed++
			continue
		}
		if saved.IsDuplicate {
			result.Duplicate++
			continue
		}
		if err := p.storage.MarkReceived(ctx, saved.FileID); err != nil {
			p.log.Warn("mailbox: failed marking file received", "filename", a.Filename, "error", err)
			allOK = false
			result.Failed++
			continue
		}
		result.Processed++
	}
	return allOK
}

func messageMeta(env *imap.Envelope) (subject, sender string, receivedAt time.Time) {
	if env == nil {
		return "", "", time.Time{}
	}
	subject = env.Subject
	if len(env.From) > 0 {
		sender = env.From[0].Addr()
	}
	receivedAt = env.Date
	return
}

type attachment struct {
	Filename string
	Data     []byte
}

// extractAttachments parses raw as a MIME message and returns every part
// whose filename extension (lowercased, without the dot) is in allowExts.
func extractAttachments(raw []byte, allowExts []string) ([]attachment, error) {
	reader, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("create mail reader: %w", err)
	}

	allowed := make(map[string]bool, len(allowExts))
	for _, e := range allowExts {
		allowed[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}

	var out []attachment
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read part: %w", err)
		}

		h, ok := part.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}
		filename, err := h.Filename()
		if err != nil || filename == "" {
			continue
		}
		ext := extOf(filename)
		if !allowed[ext] {
			continue
		}
		data, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		out = append(out, attachment{Filename: filename, Data: data})
	}
	return out, nil
}

func extOf(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}
