package utils

import (
	"crypto/rand"
	"encoding/base64"
	"math"
	"time"
)

// RoundHalfUp rounds to the nearest integer with ties going up, so 2.5
// rounds to 3 and -2.5 rounds to -2.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// UTCDay truncates t to the start of its UTC calendar day.
func UTCDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameUTCDay reports whether a and b fall on the same UTC calendar day.
func SameUTCDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	return UTCDay(a).Equal(UTCDay(b))
}

// DaysBetweenUTC returns the number of UTC calendar days from a to b.
// The result is negative when b is before a.
func DaysBetweenUTC(a, b time.Time) int {
	return int(UTCDay(b).Sub(UTCDay(a)) / (24 * time.Hour))
}

// GenerateRandomString generates a random string of the specified length
func GenerateRandomString(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b)[:length], nil
}
