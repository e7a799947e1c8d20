package fshare

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/raidenhub/phim/apperr"
	"github.com/raidenhub/phim/auth"
	"github.com/raidenhub/phim/constant"
	"github.com/raidenhub/phim/key"
	"github.com/raidenhub/phim/log"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/metrics"
	"github.com/raidenhub/phim/retry"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"golang.org/x/sync/singleflight"
)

const (
	// PageSize is the number of entries in a full folder page.
	PageSize = 100
	// MaxPages bounds BrowseAll.
	MaxPages = 50
)

// Manager owns the session. Concurrent callers needing a login share one attempt.
type Manager struct {
	api   *Client
	store auth.Store

	mu        sync.RWMutex
	token     string
	sessionID string
	user      *User

	group singleflight.Group
}

// NewManager starts logged out. The session is restored or established on first use.
func NewManager(api *Client, store auth.Store) *Manager {
	return &Manager{api: api, store: store}
}

// Login authenticates with an explicit account pair and persists it for later restarts.
func (m *Manager) Login(ctx context.Context, email, password string) (*User, error) {
	token, sessionID, err := m.api.Login(ctx, email, password)
	if err != nil {
		metrics.Logins.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.Logins.WithLabelValues("success").Inc()

	m.set(token, sessionID, nil)

	creds := auth.Credentials{Email: email, Password: password, Token: token, SessionID: sessionID}
	if err := m.store.Save(creds); err != nil {
		log.WithError(err).Warn("fshare: persisting credentials")
	}

	user, err := m.api.Profile(ctx, sessionID)
	if err != nil {
		log.WithError(err).Warn("fshare: fetching profile after login")
		user = &User{Email: email}
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
	return user, nil
}

// AutoLogin logs in with the saved account, then the build-time fallback, then the configured one.
func (m *Manager) AutoLogin(ctx context.Context) error {
	saved, _ := m.store.Load()

	candidates := []auth.Credentials{
		{Email: saved.Email, Password: saved.Password},
		{Email: constant.FallbackEmail, Password: constant.FallbackPassword},
		{Email: viper.GetString(key.FshareEmail), Password: viper.GetString(key.FsharePassword)},
	}
	candidates = lo.Filter(candidates, func(c auth.Credentials, _ int) bool { return c.HasLogin() })
	if len(candidates) == 0 {
		return apperr.Auth("fshare.AutoLogin", "not logged in")
	}

	var errs []error
	for _, c := range candidates {
		if _, err := m.Login(ctx, c.Email, c.Password); err != nil {
			errs = append(errs, err)
			continue
		}
		return nil
	}
	return errors.Join(errs...)
}

// EnsureLoggedIn makes sure a session is held: the one in memory, the persisted one if it still
// validates, or a fresh auto-login.
func (m *Manager) EnsureLoggedIn(ctx context.Context) error {
	if m.LoggedIn() {
		return nil
	}

	_, err, _ := m.group.Do("login", func() (any, error) {
		if m.LoggedIn() {
			return nil, nil
		}
		// A caller giving up must not cancel the login the others are waiting on.
		return nil, m.establish(context.WithoutCancel(ctx))
	})
	if err != nil {
		return apperr.Wrap(apperr.KindAuth, "fshare.EnsureLoggedIn", err)
	}
	return nil
}

func (m *Manager) establish(ctx context.Context) error {
	if saved, err := m.store.Load(); err == nil && saved.HasSession() {
		user, err := retry.DoUnless(ctx, "fshare.profile", apperr.IsSessionExpired, func(ctx context.Context) (*User, error) {
			return m.api.Profile(ctx, saved.SessionID)
		})
		if err == nil {
			m.set(saved.Token, saved.SessionID, user)
			log.Debug("fshare: restored saved session")
			return nil
		}
		log.WithError(err).Debug("fshare: saved session rejected")
	}

	return m.AutoLogin(ctx)
}

// ListFolder lists one page of a folder. Pages count from zero.
func (m *Manager) ListFolder(ctx context.Context, folderURL string, page int) ([]media.RemoteFile, error) {
	if err := m.EnsureLoggedIn(ctx); err != nil {
		return nil, err
	}

	token, sessionID := m.credentials()
	files, err := retry.DoUnless(ctx, "fshare.list", apperr.IsSessionExpired, func(ctx context.Context) ([]media.RemoteFile, error) {
		return m.api.FolderList(ctx, token, sessionID, folderURL, page)
	})
	if apperr.IsSessionExpired(err) {
		m.expire(token)
	}
	return files, err
}

// ResolveLink turns a file page URL into a direct download URL.
func (m *Manager) ResolveLink(ctx context.Context, fileURL string) (string, error) {
	if err := m.EnsureLoggedIn(ctx); err != nil {
		return "", err
	}

	token, sessionID := m.credentials()
	location, err := retry.DoUnless(ctx, "fshare.download", apperr.IsSessionExpired, func(ctx context.Context) (string, error) {
		return m.api.Download(ctx, token, sessionID, fileURL)
	})
	if apperr.IsSessionExpired(err) {
		m.expire(token)
	}
	return location, err
}

// Browse is ListFolder with one re-authentication when the session turns out to be expired.
func (m *Manager) Browse(ctx context.Context, folderURL string, page int) ([]media.RemoteFile, error) {
	files, err := m.ListFolder(ctx, folderURL, page)
	if apperr.IsSessionExpired(err) {
		return m.ListFolder(ctx, folderURL, page)
	}
	return files, err
}

// BrowseAll browses pages until a short one, at most MaxPages of them.
func (m *Manager) BrowseAll(ctx context.Context, folderURL string) ([]media.RemoteFile, error) {
	var files []media.RemoteFile
	for page := range MaxPages {
		batch, err := m.Browse(ctx, folderURL, page)
		if err != nil {
			return nil, err
		}

		files = append(files, batch...)
		if len(batch) < PageSize {
			return files, nil
		}
	}
	return nil, apperr.Resolve("fshare.BrowseAll", fmt.Sprintf("folder has more than %d pages", MaxPages))
}

// Resolve is ResolveLink with one re-authentication when the session turns out to be expired.
func (m *Manager) Resolve(ctx context.Context, fileURL string) (string, error) {
	location, err := m.ResolveLink(ctx, fileURL)
	if apperr.IsSessionExpired(err) {
		return m.ResolveLink(ctx, fileURL)
	}
	return location, err
}

// Logout forgets the session and the saved account.
func (m *Manager) Logout() error {
	m.set("", "", nil)
	return m.store.Clear()
}

func (m *Manager) User() mo.Option[User] {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.user == nil {
		return mo.None[User]()
	}
	return mo.Some(*m.user)
}

func (m *Manager) LoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "" && m.sessionID != ""
}

func (m *Manager) credentials() (token, sessionID string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.sessionID
}

func (m *Manager) set(token, sessionID string, user *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.sessionID, m.user = token, sessionID, user
}

// expire drops the session in memory and on disk, unless stale is no longer the current token.
// The account pair stays for the next auto-login.
func (m *Manager) expire(stale string) {
	m.mu.Lock()
	if m.token != stale {
		m.mu.Unlock()
		return
	}
	m.token, m.sessionID, m.user = "", "", nil
	m.mu.Unlock()
	metrics.SessionExpiries.Inc()

	saved, err := m.store.Load()
	if err != nil || saved.Token != stale {
		return
	}
	saved.Token, saved.SessionID = "", ""
	if err := m.store.Save(saved); err != nil {
		log.WithError(err).Warn("fshare: clearing expired session")
	}
}
