package exchange

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Signer produces the CB-ACCESS-* authentication headers. The venue expects
// CB-ACCESS-SIGN = base64(HMAC-SHA256(base64decode(secret), timestamp + method + path + body)).
type Signer struct {
	Key        string
	Secret     string // base64-encoded shared secret
	Passphrase string
}

// Sign computes the signature for one request and sets the four auth headers.
// path must include the query string when present; body is the raw JSON
// payload or nil for GETs.
func (s *Signer) Sign(req *http.Request, method, path string, body []byte) error {
	secret, err := base64.StdEncoding.DecodeString(s.Secret)
	if err != nil {
		return fmt.Errorf("api secret is not valid base64: %w", err)
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	h := hmac.New(sha256.New, secret)
	h.Write([]byte(timestamp + method + path))
	if len(body) > 0 {
		h.Write(body)
	}
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	req.Header.Set("CB-ACCESS-KEY", s.Key)
	req.Header.Set("CB-ACCESS-SIGN", sig)
	req.Header.Set("CB-ACCESS-TIMESTAMP", timestamp)
	req.Header.Set("CB-ACCESS-PASSPHRASE", s.Passphrase)
	return nil
}
