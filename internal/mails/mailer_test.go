package mails

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var verificationData = map[string]any{
	"name":            "Ann",
	"verificationURL": "http://localhost:8000/user/verify/abc",
	"expiresIn":       "10 minutes",
}

func TestParseVerificationTemplate(t *testing.T) {
	partials, err := parseEmailTmpl("user_verification.html", verificationData)
	require.NoError(t, err)
	assert.Equal(t, "Mbox Email Verification", partials["subject"])
	assert.Contains(t, partials["plainBody"], "http://localhost:8000/user/verify/abc")
	assert.Contains(t, partials["htmlBody"], `href="http://localhost:8000/user/verify/abc"`)
}

func TestApiMailerSend(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	m := &ApiMailer{ApiURL: server.URL, ApiToken: "token", Sender: "Mbox <noreply@mbox.dev>", RetriesCount: 1}
	require.NoError(t, m.Send("ann@example.com", "user_verification.html", verificationData))
	assert.Equal(t, "Mbox Email Verification", received["subject"])
	assert.Equal(t, map[string]any{"email": "noreply@mbox.dev", "name": "Mbox"}, received["from"])
}

func TestApiMailerReportsErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors": ["bad sender"]}`))
	}))
	defer server.Close()

	m := &ApiMailer{ApiURL: server.URL, Sender: "noreply@mbox.dev", RetriesCount: 1}
	assert.Error(t, m.Send("ann@example.com", "user_verification.html", verificationData))
}
