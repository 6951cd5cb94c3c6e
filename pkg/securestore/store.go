package securestore

// SecureStorage is a key/value store that encrypts every value with a key
// derived from a password. Values can be read or written only while the
// store is unlocked.
type SecureStorage interface {
	// CreateUnlock sets the password of a fresh store, or unlocks an existing
	// one with it.
	CreateUnlock(password []byte) error
	// Lock flushes the in-memory encryption key.
	Lock()
	IsLocked() bool
	// IsInitialized returns whether a password was ever set.
	IsInitialized() (bool, error)
	// ChangePassword re-encrypts all values with a key derived from newPw.
	ChangePassword(oldPw, newPw []byte) error
	Put(key, value []byte) error
	// Get returns ErrDataNotFound if nothing is stored for key.
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	// Reset wipes every value and the password, leaving the store
	// uninitialized. The store must be unlocked.
	Reset() error
	Close() error
}
