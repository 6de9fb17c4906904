package user

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

var (
	salt    = []byte("alama.core.user.token")
	nowFunc = time.Now // mockable

	secretKey []byte // set by NewService
)

// monthIndex returns the number of 30-day periods elapsed since the Unix
// epoch. Tokens embed this index so that they rotate monthly.
func monthIndex(t time.Time) int {
	return int(t.UnixNano() / int64(30*24*time.Hour))
}

// makeToken derives the current bearer token for a given User: a salted
// HMAC over the username, the stored password hash and the month index.
// The token changes when the password changes or the month rolls over.
func makeToken(usr User) string {
	key := sha256.Sum256(append(salt, secretKey...))
	h := hmac.New(sha256.New, key[:])
	h.Write(hashValue(usr, monthIndex(nowFunc())))
	return hex.EncodeToString(h.Sum(nil))
}

func hashValue(usr User, idx int) []byte {
	var val bytes.Buffer
	val.WriteString(usr.Username)
	val.Write(usr.PasswordHash)
	val.WriteString(strconv.Itoa(idx))
	return val.Bytes()
}
