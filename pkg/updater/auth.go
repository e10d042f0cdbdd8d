package updater

import (
	"crypto/subtle"
	"net/http"
)

// Authorize decides whether a request may trigger the update job. With a
// secret configured only "Authorization: Bearer <secret>" is accepted.
// Without one, dev mode lets everything through and otherwise the
// scheduler's "x-vercel-cron: true" header is required.
func Authorize(r *http.Request, secret string, dev bool) bool {
	if secret != "" {
		want := "Bearer " + secret
		got := r.Header.Get("Authorization")
		return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
	}
	if dev {
		return true
	}
	return r.Header.Get("x-vercel-cron") == "true"
}
