// Package notify is the email boundary: after a day's report is
// compiled, its artifacts are sent out as a background task. Sending
// failures never affect the already-persisted entries or artifacts.
package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/smtp"
	"os"
	"path/filepath"

	"greenfield-reports/internal/config"

	"go.uber.org/zap"
)

// Notifier delivers a day's report artifacts to the configured
// recipients.
type Notifier interface {
	SendReport(ctx context.Context, date string, attachments []string) error
}

// NewNotifier picks the SMTP implementation when notification is
// configured, the log-only one otherwise.
func NewNotifier(cfg config.NotifyConfig, log *zap.Logger) Notifier {
	if cfg.Enabled && cfg.SMTPHost != "" {
		return &SMTPNotifier{cfg: cfg, log: log}
	}
	return &LogNotifier{log: log}
}

// LogNotifier records the send attempt without delivering anything.
type LogNotifier struct {
	log *zap.Logger
}

func (n *LogNotifier) SendReport(_ context.Context, date string, attachments []string) error {
	n.log.Info("email notification disabled, skipping send",
		zap.String("date", date), zap.Strings("attachments", attachments))
	return nil
}

// SMTPNotifier sends the report as a multipart message with the
// artifacts attached.
type SMTPNotifier struct {
	cfg config.NotifyConfig
	log *zap.Logger
}

func (n *SMTPNotifier) SendReport(_ context.Context, date string, attachments []string) error {
	msg, err := n.buildMessage(date, attachments)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)
	if err := smtp.SendMail(addr, nil, n.cfg.From, []string{n.cfg.To}, msg); err != nil {
		return fmt.Errorf("send report mail: %w", err)
	}
	n.log.Info("report email sent",
		zap.String("date", date), zap.String("to", n.cfg.To))
	return nil
}

const boundary = "gfr-report-boundary"

func (n *SMTPNotifier) buildMessage(date string, attachments []string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", n.cfg.To)
	fmt.Fprintf(&buf, "Subject: GL Collection Report - %s\r\n", date)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "Please find attached the GL collection report for %s.\r\n\r\n", date)

	for _, path := range attachments {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read attachment %s: %w", path, err)
		}
		name := filepath.Base(path)
		ctype := mime.TypeByExtension(filepath.Ext(path))
		if ctype == "" {
			ctype = "application/octet-stream"
		}

		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		fmt.Fprintf(&buf, "Content-Type: %s; name=%q\r\n", ctype, name)
		buf.WriteString("Content-Transfer-Encoding: base64\r\n")
		fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=%q\r\n\r\n", name)

		enc := base64.StdEncoding.EncodeToString(raw)
		for len(enc) > 76 {
			buf.WriteString(enc[:76] + "\r\n")
			enc = enc[76:]
		}
		buf.WriteString(enc + "\r\n")
	}
	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	return buf.Bytes(), nil
}
