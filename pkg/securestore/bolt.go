package securestore

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/btcsuite/btcwallet/snacl"
	bolt "go.etcd.io/bbolt"
)

const (
	openTimeout = time.Second
)

var (
	// rootBucket holds the encrypted values and the encryption key
	// parameters.
	rootBucket = []byte("root")
	// encryptionKeyID is the key of the marshaled snacl secret key: salt,
	// scrypt params and digest of the derived key.
	encryptionKeyID = []byte("enckey")
)

type boltSecureStorage struct {
	db *bolt.DB

	lock   *sync.RWMutex
	encKey *snacl.SecretKey
}

// NewBoltSecureStorage opens, or creates, the bolt file datadir/filename.
func NewBoltSecureStorage(datadir, filename string) (SecureStorage, error) {
	if err := os.MkdirAll(datadir, 0700); err != nil {
		return nil, err
	}

	db, err := bolt.Open(
		filepath.Join(datadir, filename), 0600,
		&bolt.Options{Timeout: openTimeout},
	)
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &boltSecureStorage{db: db, lock: &sync.RWMutex{}}, nil
}

func (s *boltSecureStorage) IsLocked() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.encKey == nil
}

func (s *boltSecureStorage) Lock() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.lockUnsafe()
}

func (s *boltSecureStorage) IsInitialized() (bool, error) {
	var initialized bool
	err := s.db.View(func(tx *bolt.Tx) error {
		initialized = len(tx.Bucket(rootBucket).Get(encryptionKeyID)) > 0
		return nil
	})
	return initialized, err
}

func (s *boltSecureStorage) CreateUnlock(password []byte) error {
	if len(password) <= 0 {
		return ErrPasswordRequired
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.encKey != nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(rootBucket)

		if dbKey := bucket.Get(encryptionKeyID); len(dbKey) > 0 {
			encKey, err := deriveKey(dbKey, password)
			if err != nil {
				return err
			}
			s.encKey = encKey
			return nil
		}

		encKey, err := snacl.NewSecretKey(
			&password, snacl.DefaultN, snacl.DefaultR, snacl.DefaultP,
		)
		if err != nil {
			return err
		}
		if err := bucket.Put(encryptionKeyID, encKey.Marshal()); err != nil {
			return err
		}
		s.encKey = encKey
		return nil
	})
}

// ChangePassword re-encrypts the whole store in a single bolt transaction,
// so that a failure leaves it readable with the old password.
func (s *boltSecureStorage) ChangePassword(oldPw, newPw []byte) error {
	if len(oldPw) <= 0 || len(newPw) <= 0 {
		return ErrPasswordRequired
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.encKey == nil {
		return ErrStoreLocked
	}

	newKey, err := snacl.NewSecretKey(
		&newPw, snacl.DefaultN, snacl.DefaultR, snacl.DefaultP,
	)
	if err != nil {
		return err
	}

	if err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(rootBucket)

		dbKey := bucket.Get(encryptionKeyID)
		if len(dbKey) <= 0 {
			return ErrEncKeyNotFound
		}
		oldKey, err := deriveKey(dbKey, oldPw)
		if err != nil {
			return err
		}
		defer oldKey.Zero()

		reencrypted := make(map[string][]byte)
		if err := bucket.ForEach(func(k, v []byte) error {
			if bytes.Equal(k, encryptionKeyID) {
				return nil
			}
			plain, err := oldKey.Decrypt(v)
			if err != nil {
				return err
			}
			encrypted, err := newKey.Encrypt(plain)
			if err != nil {
				return err
			}
			reencrypted[string(k)] = encrypted
			return nil
		}); err != nil {
			return err
		}

		for k, v := range reencrypted {
			if err := bucket.Put([]byte(k), v); err != nil {
				return err
			}
		}
		return bucket.Put(encryptionKeyID, newKey.Marshal())
	}); err != nil {
		newKey.Zero()
		return err
	}

	s.lockUnsafe()
	s.encKey = newKey
	return nil
}

func (s *boltSecureStorage) Put(key, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if len(value) <= 0 {
		return ErrMissingData
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.encKey == nil {
		return ErrStoreLocked
	}

	encrypted, err := s.encKey.Encrypt(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(rootBucket).Put(key, encrypted)
	})
}

func (s *boltSecureStorage) Get(key []byte) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.encKey == nil {
		return nil, ErrStoreLocked
	}

	var value []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		encrypted := tx.Bucket(rootBucket).Get(key)
		if len(encrypted) <= 0 {
			return ErrDataNotFound
		}
		v, err := s.encKey.Decrypt(encrypted)
		if err != nil {
			return err
		}
		value = v
		return nil
	}); err != nil {
		return nil, err
	}
	return value, nil
}

func (s *boltSecureStorage) Delete(key []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.encKey == nil {
		return ErrStoreLocked
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(rootBucket).Delete(key)
	})
}

func (s *boltSecureStorage) Reset() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.encKey == nil {
		return ErrStoreLocked
	}

	if err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(rootBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(rootBucket)
		return err
	}); err != nil {
		return err
	}

	s.lockUnsafe()
	return nil
}

// Close zeroes the in-memory encryption key and closes the bolt file.
func (s *boltSecureStorage) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.lockUnsafe()
	return s.db.Close()
}

func (s *boltSecureStorage) lockUnsafe() {
	if s.encKey != nil {
		s.encKey.Zero()
		s.encKey = nil
	}
}

func deriveKey(marshaled, password []byte) (*snacl.SecretKey, error) {
	encKey := &snacl.SecretKey{}
	if err := encKey.Unmarshal(marshaled); err != nil {
		return nil, err
	}
	if err := encKey.DeriveKey(&password); err != nil {
		return nil, ErrInvalidPassword
	}
	return encKey, nil
}

func validateKey(key []byte) error {
	if len(key) <= 0 {
		return ErrMissingDataKey
	}
	if bytes.Equal(key, encryptionKeyID) {
		return ErrForbiddenDataKey
	}
	return nil
}
