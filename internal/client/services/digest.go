package services

import (
	"strconv"
	"unicode/utf16"
)

// digestPassword computes the registry's one-way password digest: a signed
// 32-bit rolling hash (h = h*31 + unit) over the UTF-16 code units of the
// password, rendered as its decimal string.
//
// This is NOT cryptographically secure. It is kept only for compatibility
// with registries written by earlier versions of the dashboard.
func digestPassword(password string) string {
	var h int32
	for _, u := range utf16.Encode([]rune(password)) {
		h = h*31 + int32(u)
	}
	return strconv.FormatInt(int64(h), 10)
}

// verifyPassword reports whether password digests to digest.
func verifyPassword(password, digest string) bool {
	return digestPassword(password) == digest
}
