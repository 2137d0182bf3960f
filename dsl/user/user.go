// Package user stores per-player settings such as the preferred locale and granted permissions.
package user

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
	"github.com/df-mc/goleveldb/leveldb/storage"
	"github.com/df-mc/goleveldb/leveldb/util"
	"github.com/dm-vev/hikari/dsl/tag"
	"github.com/google/uuid"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("user: store closed")

const keyPrefix = "user/"

// User holds the persistent data of one player.
type User struct {
	ID   uuid.UUID
	Name string
	// Locale is the locale chosen by the player, such as "en_us". Empty means the client locale.
	Locale string
	// Permissions are the granted permission nodes in sorted order.
	Permissions []string
}

// Has reports if u was granted node. A granted "a.b.*" grants every node below "a.b" and "*" grants
// every node.
func (u User) Has(node string) bool {
	for _, granted := range u.Permissions {
		if Matches(granted, node) {
			return true
		}
	}
	return false
}

// Matches reports if the granted permission covers node.
func Matches(granted, node string) bool {
	granted, node = strings.ToLower(granted), strings.ToLower(node)
	if granted == "*" || granted == node {
		return true
	}
	prefix, ok := strings.CutSuffix(granted, "*")
	return ok && strings.HasSuffix(prefix, ".") && strings.HasPrefix(node, prefix)
}

// Store keeps users in a LevelDB database.
type Store struct {
	log *slog.Logger

	mu     sync.Mutex
	db     *leveldb.DB
	closed bool
}

// Open opens or creates the store in dir.
func Open(dir string, log *slog.Logger) (*Store, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("open user store %s: %w", dir, err)
	}
	return newStore(db, log), nil
}

// OpenMemory opens a store that is not persisted.
func OpenMemory(log *slog.Logger) (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open memory user store: %w", err)
	}
	return newStore(db, log), nil
}

func newStore(db *leveldb.DB, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: db, log: log.With("subsystem", "users")}
}

func key(id uuid.UUID) []byte {
	return []byte(keyPrefix + id.String())
}

// User returns the user with id. Unknown users are returned with only the ID set.
func (s *Store) User(id uuid.UUID) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return User{}, ErrClosed
	}
	b, err := s.db.Get(key(id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return User{ID: id}, nil
	}
	if err != nil {
		return User{}, fmt.Errorf("read user %s: %w", id, err)
	}
	return decode(id, b)
}

// Save stores u, replacing the previous data of the same ID.
func (s *Store) Save(u User) error {
	b, err := encode(u)
	if err != nil {
		return fmt.Errorf("encode user %s: %w", u.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.db.Put(key(u.ID), b, nil); err != nil {
		return fmt.Errorf("write user %s: %w", u.ID, err)
	}
	return nil
}

// Update loads the user with id, applies fn and saves the result.
func (s *Store) Update(id uuid.UUID, fn func(u *User)) error {
	u, err := s.User(id)
	if err != nil {
		return err
	}
	fn(&u)
	u.ID = id
	return s.Save(u)
}

// Delete removes the user with id.
func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.db.Delete(key(id), nil)
}

// SetLocale stores the locale of the user with id.
func (s *Store) SetLocale(id uuid.UUID, locale string) error {
	return s.Update(id, func(u *User) { u.Locale = locale })
}

// Grant adds node to the permissions of the user with id.
func (s *Store) Grant(id uuid.UUID, node string) error {
	node = strings.ToLower(strings.TrimSpace(node))
	if node == "" {
		return fmt.Errorf("grant %s: empty permission", id)
	}
	return s.Update(id, func(u *User) {
		if !slices.Contains(u.Permissions, node) {
			u.Permissions = append(u.Permissions, node)
			slices.Sort(u.Permissions)
		}
	})
}

// Revoke removes node from the permissions of the user with id. Wildcards are only removed when
// node names them exactly.
func (s *Store) Revoke(id uuid.UUID, node string) error {
	node = strings.ToLower(strings.TrimSpace(node))
	return s.Update(id, func(u *User) {
		u.Permissions = slices.DeleteFunc(u.Permissions, func(p string) bool { return p == node })
	})
}

// Has reports if the user with id was granted node. Read errors are logged and deny the permission.
func (s *Store) Has(id uuid.UUID, node string) bool {
	u, err := s.User(id)
	if err != nil {
		s.log.Error("Failed to read user.", "id", id, "err", err)
		return false
	}
	return u.Has(node)
}

// Users returns every stored user.
func (s *Store) Users() ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	it := s.db.NewIterator(util.BytesPrefix([]byte(keyPrefix)), nil)
	defer it.Release()
	var users []User
	for it.Next() {
		id, err := uuid.Parse(strings.TrimPrefix(string(it.Key()), keyPrefix))
		if err != nil {
			s.log.Warn("Skipping malformed user key.", "key", string(it.Key()))
			continue
		}
		u, err := decode(id, slices.Clone(it.Value()))
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, it.Error()
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func encode(u User) ([]byte, error) {
	c, err := tag.NewCompound(func(s *tag.CompoundSpec) {
		s.String("name", u.Name)
		s.String("locale", u.Locale)
		s.List("permissions", func(l *tag.ListSpec) {
			for _, p := range u.Permissions {
				_ = l.String(p)
			}
		})
	})
	if err != nil {
		return nil, err
	}
	return tag.Encode(c, tag.LittleEndian)
}

func decode(id uuid.UUID, b []byte) (User, error) {
	c, err := tag.Decode(b, tag.LittleEndian)
	if err != nil {
		return User{}, fmt.Errorf("decode user %s: %w", id, err)
	}
	u := User{ID: id}
	u.Name, _ = tag.Value[string](c, "name")
	u.Locale, _ = tag.Value[string](c, "locale")
	perms, _ := tag.Value[tag.List](c, "permissions")
	for _, p := range perms {
		if node, ok := p.(string); ok {
			u.Permissions = append(u.Permissions, node)
		}
	}
	return u, nil
}
