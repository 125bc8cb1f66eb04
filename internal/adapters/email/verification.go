package email

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"
)

var verificationTmpl = template.Must(template.New("verify").Parse(`<p>Hi {{.Name}},</p>
<p>Welcome to SmartFlex{{if .Branch}} {{.Branch}}{{end}}. Confirm your email address to activate your account:</p>
<p><a href="{{.Link}}">Verify my email</a></p>
<p>This link expires in 48 hours. If you did not sign up, ignore this message.</p>`))

// VerificationLink builds the absolute verification URL for token.
func VerificationLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/verify-email?token=" + url.QueryEscape(token)
}

// VerificationRequest renders the account verification email.
// PRE: to and link are non-empty
func VerificationRequest(to, name, branch, link string) (SendRequest, error) {
	var buf bytes.Buffer
	err := verificationTmpl.Execute(&buf, struct{ Name, Branch, Link string }{name, branch, link})
	if err != nil {
		return SendRequest{}, err
	}
	return SendRequest{
		To:      []string{to},
		Subject: "Verify your SmartFlex account",
		HTML:    buf.String(),
	}, nil
}
