// Package profile derives how a user is shown: display name, initials and
// avatar.
package profile

import (
	"net/url"
	"strings"
	"unicode"
)

const avatarBaseURL = "https://api.dicebear.com/8.x/lorelei/svg"

// Initials returns up to two uppercase initials for a name: the first two
// letters of a single word, or the first letters of the first two words.
func Initials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return "?"
	}

	if len(words) == 1 {
		r := []rune(words[0])
		if len(r) >= 2 {
			return strings.ToUpper(string(r[:2]))
		}
		return strings.ToUpper(string(r))
	}

	first := []rune(words[0])[0]
	second := []rune(words[1])[0]
	return string(unicode.ToUpper(first)) + string(unicode.ToUpper(second))
}

// DisplayName falls back from name to email to a placeholder
func DisplayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if e := strings.TrimSpace(email); e != "" {
		return e
	}
	return "Unknown user"
}

// AvatarURL builds the avatar image URL. The explicit seed wins over the
// name, which wins over the email.
func AvatarURL(seed, name, email string) string {
	s := seed
	if s == "" {
		s = name
	}
	if s == "" {
		s = email
	}
	if s == "" {
		s = "default"
	}
	return avatarBaseURL + "?seed=" + url.QueryEscape(s)
}
