package cpp

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"cast/internal/diag"
	"cast/internal/token"
)

// Current schema version - increment when urlCacheEntry format changes
const urlCacheSchemaVersion uint16 = 1

// isURL reports whether an include name is a remote reference.
func isURL(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}

// URLCache stores fetched remote includes on disk, keyed by the URL's
// SHA-256. The body lives next to a msgpack metadata sidecar.
// Thread-safe for concurrent access.
type URLCache struct {
	mu     sync.Mutex
	dir    string
	client *http.Client
}

type urlCacheEntry struct {
	Schema    uint16
	URL       string
	FetchedAt time.Time
	Size      int64
}

// OpenURLCache initializes the cache at dir, or at the standard
// location ($XDG_CACHE_HOME/cast/urls) when dir is empty.
func OpenURLCache(dir string) (*URLCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "cast", "urls")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &URLCache{
		dir:    dir,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *URLCache) pathFor(url string) (body, meta string) {
	sum := sha256.Sum256([]byte(url))
	hexKey := hex.EncodeToString(sum[:])
	return filepath.Join(c.dir, hexKey+".body"), filepath.Join(c.dir, hexKey+".mp")
}

// Fetch returns the content of url, reading the cached copy when one
// exists and performing a single synchronous GET otherwise. There is no
// retry; a failed fetch surfaces to the caller.
func (c *URLCache) Fetch(url string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bodyPath, metaPath := c.pathFor(url)
	if content, ok := c.readCached(bodyPath, metaPath); ok {
		return content, nil
	}

	content, err := c.download(url)
	if err != nil {
		return nil, err
	}
	if err := c.store(url, bodyPath, metaPath, content); err != nil {
		// The fetch succeeded; a cache write failure only costs the
		// next run a refetch.
		return content, nil
	}
	return content, nil
}

func (c *URLCache) readCached(bodyPath, metaPath string) ([]byte, bool) {
	f, err := os.Open(metaPath)
	if err != nil {
		return nil, false
	}
	var entry urlCacheEntry
	decErr := msgpack.NewDecoder(f).Decode(&entry)
	_ = f.Close()
	if decErr != nil || entry.Schema != urlCacheSchemaVersion {
		return nil, false
	}
	content, err := os.ReadFile(bodyPath)
	if err != nil || int64(len(content)) != entry.Size {
		return nil, false
	}
	return content, true
}

func (c *URLCache) download(url string) (content []byte, err error) {
	resp, err := c.client.Get(url) // #nosec G107 -- the URL comes from the source file
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (c *URLCache) store(url, bodyPath, metaPath string, content []byte) error {
	f, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return err
	}
	name := f.Name()
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, bodyPath); err != nil {
		_ = os.Remove(name)
		return err
	}

	entry := urlCacheEntry{
		Schema:    urlCacheSchemaVersion,
		URL:       url,
		FetchedAt: time.Now(),
		Size:      int64(len(content)),
	}
	mf, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return err
	}
	mname := mf.Name()
	if err := msgpack.NewEncoder(mf).Encode(&entry); err != nil {
		_ = mf.Close()
		_ = os.Remove(mname)
		return err
	}
	if err := mf.Close(); err != nil {
		_ = os.Remove(mname)
		return err
	}
	return os.Rename(mname, metaPath)
}

// DropAll discards every cached fetch.
func (c *URLCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.RemoveAll(c.dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// includeURL splices a remote include, fetching it through the on-disk
// cache. A network failure is a hard error naming the URL.
func (p *Preprocessor) includeURL(fnameTok *token.Token, url string, rest *token.Token) *token.Token {
	if p.urlCache == nil {
		c, err := OpenURLCache(p.cfg.URLCacheDir)
		if err != nil {
			p.fail(fnameTok, diag.IncFetchFailed, "cannot open URL cache: %v", err)
		}
		p.urlCache = c
	}
	content, err := p.urlCache.Fetch(url)
	if err != nil {
		p.fail(fnameTok, diag.IncFetchFailed, "cannot fetch '%s': %v", url, err)
	}
	return p.includeVirtual(url, content, rest)
}
