package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// GravatarURL builds the avatar URL for an email address. Gravatar hashes the
// lowercased, trimmed address with MD5; unknown addresses fall back to the
// generated "retro" image.
func GravatarURL(email string, size int) string {
	if size <= 0 {
		size = 100
	}
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=%d&d=retro&r=g", hex.EncodeToString(sum[:]), size)
}
