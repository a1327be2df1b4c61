// redact маскирует персональные данные перед записью в лог.
package redact

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

const mask = "***"

// Email сохраняет домен и первые две руны имени, если имя длиннее двух рун:
// "foobar@example.com" -> "fo***@example.com".
func Email(s string) string {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return mask
	}

	if utf8.RuneCountInString(local) <= 2 {
		return mask + "@" + domain
	}

	_, w1 := utf8.DecodeRuneInString(local)
	_, w2 := utf8.DecodeRuneInString(local[w1:])

	return local[:w1+w2] + mask + "@" + domain
}

// URL убирает query (подпись presigned URL, токены) и userinfo.
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return mask
	}

	u.User = nil
	if u.RawQuery != "" {
		u.RawQuery = mask
	}
	u.Fragment = ""

	return u.String()
}
