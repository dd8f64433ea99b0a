package mail

import (
	"fmt"
	"time"
)

const brand = "SHELL-NOTE"

// ResetEmail is a rendered password-reset message.
type ResetEmail struct {
	Subject string
	Text    string
	HTML    string
}

// BuildResetEmail renders the password-reset message for a reset URL and
// token lifetime.
func BuildResetEmail(resetURL string, ttl time.Duration) ResetEmail {
	ttlText := formatTTL(ttl)

	text := fmt.Sprintf(`Password reset requested

You asked to reset your password. Open the link below to choose a new one.
%s

The link expires in %s.

If you did not request a password reset, you can safely ignore this email.`, resetURL, ttlText)

	// Kept intentionally simple; table layouts and inline styles are the
	// client's concern, not the API's.
	html := fmt.Sprintf(`<!doctype html>
<html>
  <body style="font-family:sans-serif;color:#1f2937;">
    <h2>%s password reset</h2>
    <p>You asked to reset your password. Click the button below to choose a new one.</p>
    <p><a href="%s" style="display:inline-block;padding:12px 18px;border-radius:8px;background:#5c47f5;color:#fff;text-decoration:none;">Reset password</a></p>
    <p style="font-size:12px;color:#6b7280;">The link expires in %s. If the button does not work, copy this URL into your browser:<br><a href="%s">%s</a></p>
    <p style="font-size:12px;color:#6b7280;">If you did not request a password reset, you can safely ignore this email.</p>
  </body>
</html>`, brand, resetURL, ttlText, resetURL, resetURL)

	return ResetEmail{
		Subject: brand + " password reset",
		Text:    text,
		HTML:    html,
	}
}

func formatTTL(ttl time.Duration) string {
	minutes := int(ttl.Minutes())
	if minutes <= 0 {
		return "a few minutes"
	}
	if minutes%60 == 0 {
		hours := minutes / 60
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%d minutes", minutes)
}
