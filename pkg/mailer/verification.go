package mailer

import (
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

// verificationTmpl renders the verification email body. Kept deliberately
// plain so it survives aggressive email-client CSS stripping.
var verificationTmpl = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 560px; margin: 0 auto; padding: 24px;">
  <h2 style="color: #1a1a2e;">Verify your email address</h2>
  <p>Hi {{.DisplayName}},</p>
  <p>Thanks for joining CampusShare. Confirm this email address to unlock
  password sign-in and start sharing resources with other students.</p>
  <p style="margin: 32px 0;">
    <a href="{{.VerifyURL}}" style="background: #4361ee; color: #ffffff; padding: 12px 24px; text-decoration: none; border-radius: 6px;">Verify Email</a>
  </p>
  <p style="color: #666; font-size: 14px;">This link expires in 24 hours. If you didn't create an account, you can safely ignore this email.</p>
  <p style="color: #666; font-size: 14px;">Or paste this link into your browser:<br>{{.VerifyURL}}</p>
</body>
</html>`))

// VerificationEmailData carries the values for a verification email.
type VerificationEmailData struct {
	DisplayName string
	VerifyURL   string
}

// RenderVerificationEmail builds the HTML body for an email verification
// message. The link points at the frontend, which submits the raw token back
// to the API.
func RenderVerificationEmail(baseURL, token, displayName string) (string, error) {
	if baseURL == "" || token == "" {
		return "", fmt.Errorf("%w: baseURL and token are required", ErrRenderFailed)
	}

	verifyURL, err := url.JoinPath(baseURL, "verify-email", token)
	if err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}

	if displayName == "" {
		displayName = "there"
	}

	var sb strings.Builder
	if err := verificationTmpl.Execute(&sb, VerificationEmailData{
		DisplayName: displayName,
		VerifyURL:   verifyURL,
	}); err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return sb.String(), nil
}
