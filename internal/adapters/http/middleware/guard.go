package middleware

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"smartflex/internal/application/guard"
)

// ClientCookie identifies a browser across requests so its navigation
// history can be tracked. It carries no authority.
const ClientCookie = "sf_client"

// DefaultNavigatorCacheSize bounds the number of tracked clients.
const DefaultNavigatorCacheSize = 4096

// Navigators keeps one guard.Navigator per browser client in a bounded LRU.
type Navigators struct {
	g      *guard.Guard
	secure bool

	mu    sync.Mutex
	cache *lru.Cache[string, *guard.Navigator]
}

// NewNavigators creates a Navigators cache holding at most size clients.
func NewNavigators(g *guard.Guard, size int, secure bool) (*Navigators, error) {
	if size <= 0 {
		size = DefaultNavigatorCacheSize
	}
	cache, err := lru.New[string, *guard.Navigator](size)
	if err != nil {
		return nil, err
	}
	return &Navigators{g: g, secure: secure, cache: cache}, nil
}

// For returns the Navigator for the client making r, issuing a client
// cookie on first contact.
func (n *Navigators) For(w http.ResponseWriter, r *http.Request) *guard.Navigator {
	id := ""
	if c, err := r.Cookie(ClientCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			id = c.Value
		}
	}
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     ClientCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   n.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if nav, ok := n.cache.Get(id); ok {
		return nav
	}
	nav := n.g.NewNavigator()
	n.cache.Add(id, nav)
	return nav
}

// Len returns the number of tracked clients.
func (n *Navigators) Len() int {
	return n.cache.Len()
}
