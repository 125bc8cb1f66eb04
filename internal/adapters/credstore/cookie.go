package credstore

import (
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// CookiePrefix is prepended to every key to form the cookie name.
const CookiePrefix = "sf_"

// CookieCodec signs (and optionally encrypts) cookie values. One codec is
// shared by the server; Bind produces a per-request KV.
type CookieCodec struct {
	sc     *securecookie.SecureCookie
	secure bool
	maxAge time.Duration
}

// NewCookieCodec creates a codec. hashKey should be 32 or 64 bytes; blockKey
// may be nil to sign without encrypting.
// PRE: hashKey is non-empty
func NewCookieCodec(hashKey, blockKey []byte, secure bool) *CookieCodec {
	maxAge := 30 * 24 * time.Hour
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(maxAge.Seconds()))
	return &CookieCodec{sc: sc, secure: secure, maxAge: maxAge}
}

// Bind returns a KV reading from r and writing Set-Cookie headers to w.
func (c *CookieCodec) Bind(w http.ResponseWriter, r *http.Request) *CookieKV {
	return &CookieKV{codec: c, w: w, r: r, pending: make(map[string]*string)}
}

// CookieKV is a KV backend over signed HTTP cookies, one cookie per key.
// Values written during the request are visible to later Gets on the same KV.
// Not safe for concurrent use; a CookieKV lives for one request.
type CookieKV struct {
	codec   *CookieCodec
	w       http.ResponseWriter
	r       *http.Request
	pending map[string]*string
}

func (k *CookieKV) Get(key string) (string, bool) {
	if v, ok := k.pending[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	c, err := k.r.Cookie(CookiePrefix + key)
	if err != nil || c.Value == "" {
		return "", false
	}
	var value string
	// Tampered, expired or foreign cookies decode with an error and read as absent.
	if err := k.codec.sc.Decode(CookiePrefix+key, c.Value, &value); err != nil {
		return "", false
	}
	return value, true
}

func (k *CookieKV) Set(key, value string) error {
	encoded, err := k.codec.sc.Encode(CookiePrefix+key, value)
	if err != nil {
		return err
	}
	http.SetCookie(k.w, &http.Cookie{
		Name:     CookiePrefix + key,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   k.codec.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(k.codec.maxAge.Seconds()),
	})
	k.pending[key] = &value
	return nil
}

func (k *CookieKV) Delete(key string) error {
	http.SetCookie(k.w, &http.Cookie{
		Name:     CookiePrefix + key,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   k.codec.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	k.pending[key] = nil
	return nil
}
