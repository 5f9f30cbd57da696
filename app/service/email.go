package service

import (
	"fmt"
	"net/url"
	"time"
)

const passwordResetSubject = "Password reset request"

// passwordResetLink points the frontend's reset page at token.
func passwordResetLink(frontendURL, token string) string {
	return frontendURL + "/reset-password?" + url.Values{"token": {token}}.Encode()
}

func passwordResetBody(link string, ttl time.Duration) string {
	return fmt.Sprintf(
		"We received a request to reset your password.\n\n"+
			"Open the link below to choose a new one:\n%s\n\n"+
			"The link expires in %d minutes. If you did not request a reset, ignore this email.\n",
		link,
		int(ttl.Minutes()),
	)
}
