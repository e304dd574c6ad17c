package mails

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-mail/mail/v2"
)

//go:embed "templates"
var templateFS embed.FS

const retryDelay = 500 * time.Millisecond

type Mailer struct {
	Dialer       *mail.Dialer
	Sender       string
	RetriesCount int
}

func New(host string, port int, timeout time.Duration, username, password, sender string, retriesCount int) *Mailer {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = timeout
	return &Mailer{
		Dialer:       dialer,
		Sender:       sender,
		RetriesCount: max(retriesCount, 1),
	}
}

func parseEmailTmpl(tmplName string, tmplData any) (map[string]string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+tmplName)
	if err != nil {
		return nil, err
	}
	tmplPartials := map[string]string{
		"subject":   "",
		"plainBody": "",
		"htmlBody":  "",
	}
	for key := range tmplPartials {
		buff := new(bytes.Buffer)
		if err = tmpl.ExecuteTemplate(buff, key, tmplData); err != nil {
			return nil, err
		}
		tmplPartials[key] = strings.TrimSpace(buff.String())
	}
	return tmplPartials, nil
}

func (m *Mailer) Send(recipient string, tmplName string, tmplData any) error {
	tmplPartials, err := parseEmailTmpl(tmplName, tmplData)
	if err != nil {
		return err
	}
	msg := mail.NewMessage()
	msg.SetHeader("To", recipient)
	msg.SetHeader("From", m.Sender)
	msg.SetHeader("Subject", tmplPartials["subject"])
	msg.SetBody("text/plain", tmplPartials["plainBody"])
	msg.AddAlternative("text/html", tmplPartials["htmlBody"])
	for i := 0; i < m.RetriesCount; i++ {
		err = m.Dialer.DialAndSend(msg)
		if err == nil {
			return nil
		}
		time.Sleep(retryDelay)
	}
	return err
}

// ApiMailer delivers through an HTTP sending API (Mailtrap compatible) instead of SMTP.
type ApiMailer struct {
	ApiURL       string
	ApiToken     string
	Sender       string // "Name address@example.com"
	RetriesCount int
	Client       *http.Client
}

func (m *ApiMailer) Send(recipient string, tmplName string, tmplData any) error {
	tmplPartials, err := parseEmailTmpl(tmplName, tmplData)
	if err != nil {
		return err
	}
	name, email := splitSender(m.Sender)
	payload, err := json.Marshal(map[string]any{
		"from":    map[string]string{"email": email, "name": name},
		"to":      []map[string]string{{"email": recipient}},
		"subject": tmplPartials["subject"],
		"text":    tmplPartials["plainBody"],
		"html":    tmplPartials["htmlBody"],
	})
	if err != nil {
		return err
	}
	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	for i := 0; i < max(m.RetriesCount, 1); i++ {
		err = m.post(client, payload)
		if err == nil {
			return nil
		}
		time.Sleep(retryDelay)
	}
	return err
}

func (m *ApiMailer) post(client *http.Client, payload []byte) error {
	req, err := http.NewRequest(http.MethodPost, m.ApiURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.ApiToken)
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var bodyParsed map[string]any
	if err := json.Unmarshal(body, &bodyParsed); err == nil {
		if errs, ok := bodyParsed["errors"]; ok {
			return fmt.Errorf("failed to send email: %v", errs)
		}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("failed to send email: status %d", resp.StatusCode)
	}
	return nil
}

func splitSender(sender string) (name, email string) {
	idx := strings.LastIndex(sender, " ")
	if idx == -1 {
		return "", sender
	}
	return sender[:idx], strings.Trim(sender[idx+1:], "<>")
}
