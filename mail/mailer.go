package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/GenomiqueENS/aozan-sub001/config"
)

// Configuration keys read by NewMailer.
const (
	KeySendMail      = "send.mail"
	KeyPrintMail     = "print.mail"
	KeyFrom          = "mail.from"
	KeyTo            = "mail.to"
	KeyErrorTo       = "mail.error.to"
	KeyLastErrorFile = "mail.last.error.file"
	KeySubjectPrefix = "mail.subject.prefix"
)

var ErrMailConfiguration = errors.New("invalid mail configuration")

// Sender delivers notifications. Delivery is best effort: a Sender never
// reports failures to its caller.
type Sender interface {
	Send(m Message)
	SendError(err error)
}

// Envelope is a message ready to hand to a Transport.
type Envelope struct {
	From    string
	To      []string
	Subject string
	Body    string
	Date    time.Time
}

// Transport delivers envelopes, e.g. over SMTP.
type Transport interface {
	Deliver(ctx context.Context, e Envelope) error
}

// Mailer is the Sender configured from the recipe configuration.
type Mailer struct {
	send          bool
	print         bool
	from          string
	to            []string
	errorTo       []string
	lastErrorFile string
	subjectPrefix string

	transport Transport
	stdout    io.Writer
	stderr    io.Writer
	logger    *slog.Logger
	now       func() time.Time
}

var _ Sender = &Mailer{}

// Options tunes a Mailer. Zero fields take their defaults.
type Options struct {
	// Stdout receives printed messages, Stderr printed error messages.
	// They default to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
	Now    func() time.Time
}

// NewMailer reads the mail settings from conf. transport may be nil when
// send.mail is false.
func NewMailer(conf *config.Configuration, transport Transport, logger *slog.Logger, options ...Options) (*Mailer, error) {
	send, err := conf.Bool(KeySendMail, false)
	if err != nil {
		return nil, err
	}
	printMail, err := conf.Bool(KeyPrintMail, false)
	if err != nil {
		return nil, err
	}

	to := conf.GetString(KeyTo, "")
	m := &Mailer{
		send:          send,
		print:         printMail,
		from:          strings.TrimSpace(conf.GetString(KeyFrom, "")),
		to:            splitAddresses(to),
		errorTo:       splitAddresses(conf.GetString(KeyErrorTo, to)),
		lastErrorFile: strings.TrimSpace(conf.GetString(KeyLastErrorFile, "")),
		subjectPrefix: conf.GetString(KeySubjectPrefix, "[Aozan] "),
		transport:     transport,
		stdout:        os.Stdout,
		stderr:        os.Stderr,
		logger:        logger,
		now:           time.Now,
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	if len(options) > 0 {
		o := options[0]
		if o.Stdout != nil {
			m.stdout = o.Stdout
		}
		if o.Stderr != nil {
			m.stderr = o.Stderr
		}
		if o.Now != nil {
			m.now = o.Now
		}
	}

	if err := m.check(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mailer) check() error {
	if !m.send {
		return nil
	}
	switch {
	case m.transport == nil:
		return fmt.Errorf("%w: no mail transport set", ErrMailConfiguration)
	case m.from == "":
		return fmt.Errorf("%w: no \"From\" email set", ErrMailConfiguration)
	case len(m.to) == 0:
		return fmt.Errorf("%w: no \"To\" email set", ErrMailConfiguration)
	case len(m.errorTo) == 0:
		return fmt.Errorf("%w: no \"To\" email set for errors", ErrMailConfiguration)
	}
	return nil
}

// Send delivers msg. An error message identical to the last one recorded in
// the last error file is not sent again. The file is only written when the
// message was sent or printed.
func (m *Mailer) Send(msg Message) {
	if msg.IsNoMessage() || !m.send && !m.print {
		return
	}
	if !msg.Error || m.lastErrorFile == "" {
		m.deliver(msg)
		return
	}

	text := msg.Subject + "\n" + msg.Content
	if last, ok := m.readLastError(); ok && last == text {
		m.logger.Debug("error already notified, mail not sent", "subject", msg.Subject)
		return
	}
	m.deliver(msg)
	m.writeLastError(text)
}

// SendError sends the error message built from err.
func (m *Mailer) SendError(err error) {
	m.Send(ErrorMessage(err))
}

func (m *Mailer) deliver(msg Message) {
	subject := m.subjectPrefix + msg.Subject
	to := m.to
	if msg.Error {
		to = m.errorTo
	}

	if m.print {
		m.printMessage(subject, msg.Content, to, msg.Error)
	}
	if !m.send {
		return
	}

	env := Envelope{From: m.from, To: to, Subject: subject, Body: msg.Content, Date: m.now()}
	if err := m.transport.Deliver(context.Background(), env); err != nil {
		m.logger.Warn("error while sending mail", "subject", subject, "error", err)
	}

	if !msg.Error && m.lastErrorFile != "" {
		if err := os.Remove(m.lastErrorFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			m.logger.Warn("error while removing last error file", "path", m.lastErrorFile, "error", err)
		}
	}
}

func (m *Mailer) printMessage(subject, content string, to []string, isError bool) {
	var sb strings.Builder
	sb.WriteString("From: ")
	sb.WriteString(orNotSet(m.from))
	sb.WriteString("\nTo: ")
	sb.WriteString(orNotSet(strings.Join(to, ", ")))
	sb.WriteString("\nSubject: ")
	sb.WriteString(subject)
	sb.WriteString("\n\n")
	sb.WriteString(content)
	sb.WriteString("\n")

	w := m.stdout
	if isError {
		w = m.stderr
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		m.logger.Warn("error while printing mail", "error", err)
	}
}

func (m *Mailer) readLastError() (string, bool) {
	data, err := os.ReadFile(m.lastErrorFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			m.logger.Warn("error while reading last error file", "path", m.lastErrorFile, "error", err)
		}
		return "", false
	}
	return string(data), true
}

func (m *Mailer) writeLastError(text string) {
	if err := os.WriteFile(m.lastErrorFile, []byte(text), 0644); err != nil {
		m.logger.Warn("error while writing last error file", "path", m.lastErrorFile, "error", err)
	}
}

func orNotSet(s string) string {
	if s == "" {
		return "(Not set)"
	}
	return s
}

func splitAddresses(s string) []string {
	var result []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			result = append(result, a)
		}
	}
	return result
}
