package watchlist

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"strconv"
)

// Signer seals entries with an HMAC so a tampered snapshot is detected
// when it is loaded. A signer without a key signs nothing and accepts all.
type Signer struct {
	key []byte
}

func NewSigner(key string) *Signer {
	if key == "" {
		return &Signer{key: nil}
	}
	return &Signer{key: []byte(key)}
}

// Enabled reports whether a signing key is configured.
func (s *Signer) Enabled() bool { return s != nil && len(s.key) > 0 }

func (s *Signer) signature(e Entry) string {
	if !s.Enabled() {
		return ""
	}
	mac := hmac.New(sha1.New, s.key)
	mac.Write([]byte(strconv.FormatInt(e.ID, 10)))
	mac.Write([]byte{0})
	mac.Write([]byte(e.Name))
	mac.Write([]byte{0})
	mac.Write([]byte(e.PreprocessedName))
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign returns e with its Signature set, or cleared when no key is set.
func (s *Signer) Sign(e Entry) Entry {
	e.Signature = s.signature(e)
	return e
}

// Verify checks the entry signature. Without a key every entry passes.
func (s *Signer) Verify(e Entry) bool {
	if !s.Enabled() {
		return true
	}
	if e.Signature == "" {
		return false
	}
	return hmac.Equal([]byte(e.Signature), []byte(s.signature(e)))
}
