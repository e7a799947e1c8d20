// Package auth persists the link-resolver credentials and session.
//
// The system keyring is preferred. On machines without one (headless servers, containers) the
// credentials fall back to an unencrypted JSON file in the config directory.
package auth

import (
	"encoding/json"
	"errors"

	"github.com/metafates/gache"
	"github.com/raidenhub/phim/constant"
	"github.com/raidenhub/phim/filesystem"
	"github.com/raidenhub/phim/log"
	"github.com/raidenhub/phim/where"
	"github.com/zalando/go-keyring"
)

// ErrNoCredentials is returned by Load when nothing was saved.
var ErrNoCredentials = errors.New("no saved credentials")

// Credentials is what survives a restart: the login pair and the last session.
type Credentials struct {
	Email     string `json:"email,omitempty"`
	Password  string `json:"password,omitempty"`
	Token     string `json:"token,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// HasLogin reports whether the pair needed to log in again is present.
func (c Credentials) HasLogin() bool {
	return c.Email != "" && c.Password != ""
}

// HasSession reports whether a previous session can be restored.
func (c Credentials) HasSession() bool {
	return c.Token != "" && c.SessionID != ""
}

type Store interface {
	Load() (Credentials, error)
	Save(Credentials) error
	Clear() error
}

const (
	service = constant.Phim
	user    = "fshare"
)

// KeyringStore keeps the credentials as one JSON secret in the system keyring.
type KeyringStore struct{}

func (KeyringStore) Load() (Credentials, error) {
	secret, err := keyring.Get(service, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return Credentials{}, ErrNoCredentials
	}
	if err != nil {
		return Credentials{}, err
	}

	var c Credentials
	if err := json.Unmarshal([]byte(secret), &c); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

func (KeyringStore) Save(c Credentials) error {
	secret, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return keyring.Set(service, user, string(secret))
}

func (KeyringStore) Clear() error {
	err := keyring.Delete(service, user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// FileStore keeps the credentials in a plain JSON file.
type FileStore struct {
	path  string
	cache *gache.Cache[*Credentials]
}

func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		cache: gache.New[*Credentials](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

func (s *FileStore) Load() (Credentials, error) {
	c, _, err := s.cache.Get()
	if err != nil {
		return Credentials{}, err
	}
	if c == nil {
		return Credentials{}, ErrNoCredentials
	}
	return *c, nil
}

func (s *FileStore) Save(c Credentials) error {
	return s.cache.Set(&c)
}

func (s *FileStore) Clear() error {
	if err := s.cache.Set(nil); err != nil {
		return err
	}
	exists, err := filesystem.API().Exists(s.path)
	if err != nil || !exists {
		return err
	}
	return filesystem.API().Remove(s.path)
}

// Open returns the keyring store when the keyring answers, and the file store otherwise.
func Open() Store {
	_, err := keyring.Get(service, user)
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return KeyringStore{}
	}

	log.WithError(err).Warn("system keyring unavailable, storing credentials in a plain file")
	return NewFileStore(where.Credentials())
}
