package securestore_test

import (
	"testing"

	"github.com/cnwallet/walletd/pkg/securestore"
	"github.com/stretchr/testify/require"
)

var (
	password = []byte("password")
)

func TestCreateUnlock(t *testing.T) {
	store := newTestStore(t)

	initialized, err := store.IsInitialized()
	require.NoError(t, err)
	require.False(t, initialized)
	require.True(t, store.IsLocked())

	_, err = store.Get([]byte("key"))
	require.ErrorIs(t, err, securestore.ErrStoreLocked)

	err = store.CreateUnlock(password)
	require.NoError(t, err)
	require.False(t, store.IsLocked())

	// Unlocking an unlocked store is a no-op.
	err = store.CreateUnlock(password)
	require.NoError(t, err)

	initialized, err = store.IsInitialized()
	require.NoError(t, err)
	require.True(t, initialized)
}

func TestFailingUnlock(t *testing.T) {
	store := newTestStoreUnlocked(t)
	store.Lock()

	tests := []struct {
		name        string
		password    []byte
		expectedErr error
	}{
		{
			name:        "missing password",
			password:    nil,
			expectedErr: securestore.ErrPasswordRequired,
		},
		{
			name:        "wrong password",
			password:    []byte("wrongpassword"),
			expectedErr: securestore.ErrInvalidPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.CreateUnlock(tt.password)
			require.ErrorIs(t, err, tt.expectedErr)
			require.True(t, store.IsLocked())
		})
	}
}

func TestPutGetDelete(t *testing.T) {
	store := newTestStoreUnlocked(t)

	key := []byte("spendkey")
	value := []byte("secret")
	err := store.Put(key, value)
	require.NoError(t, err)

	got, err := store.Get(key)
	require.NoError(t, err)
	require.Equal(t, value, got)

	err = store.Delete(key)
	require.NoError(t, err)

	got, err = store.Get(key)
	require.ErrorIs(t, err, securestore.ErrDataNotFound)
	require.Nil(t, got)
}

func TestFailingPut(t *testing.T) {
	store := newTestStoreUnlocked(t)

	tests := []struct {
		name        string
		key         []byte
		value       []byte
		expectedErr error
	}{
		{
			name:        "missing data key",
			key:         nil,
			value:       []byte("test"),
			expectedErr: securestore.ErrMissingDataKey,
		},
		{
			name:        "forbidden data key",
			key:         []byte("enckey"),
			value:       []byte("test"),
			expectedErr: securestore.ErrForbiddenDataKey,
		},
		{
			name:        "missing data",
			key:         []byte("test"),
			value:       nil,
			expectedErr: securestore.ErrMissingData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Put(tt.key, tt.value)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}

	t.Run("store locked", func(t *testing.T) {
		store.Lock()
		err := store.Put([]byte("test"), []byte("test"))
		require.ErrorIs(t, err, securestore.ErrStoreLocked)
	})
}

func TestChangePassword(t *testing.T) {
	dir := t.TempDir()
	store, err := securestore.NewBoltSecureStorage(dir, "keys.db")
	require.NoError(t, err)

	err = store.CreateUnlock(password)
	require.NoError(t, err)

	key := []byte("spendkey")
	value := []byte("secret")
	err = store.Put(key, value)
	require.NoError(t, err)

	newPassword := []byte("newpassword")

	err = store.ChangePassword([]byte("wrongpassword"), newPassword)
	require.ErrorIs(t, err, securestore.ErrInvalidPassword)

	err = store.ChangePassword(password, newPassword)
	require.NoError(t, err)

	got, err := store.Get(key)
	require.NoError(t, err)
	require.Equal(t, value, got)

	// Values survive a reopen and only the new password unlocks them.
	require.NoError(t, store.Close())
	store, err = securestore.NewBoltSecureStorage(dir, "keys.db")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	err = store.CreateUnlock(password)
	require.ErrorIs(t, err, securestore.ErrInvalidPassword)
	err = store.CreateUnlock(newPassword)
	require.NoError(t, err)

	got, err = store.Get(key)
	require.NoError(t, err)
	require.Equal(t, value, got)
}

func TestFailingChangePassword(t *testing.T) {
	store := newTestStore(t)

	err := store.ChangePassword(password, []byte("newpassword"))
	require.ErrorIs(t, err, securestore.ErrStoreLocked)

	err = store.CreateUnlock(password)
	require.NoError(t, err)

	tests := []struct {
		oldPwd []byte
		newPwd []byte
	}{
		{nil, []byte("test")},
		{[]byte("test"), nil},
		{nil, nil},
	}

	for _, tt := range tests {
		err := store.ChangePassword(tt.oldPwd, tt.newPwd)
		require.ErrorIs(t, err, securestore.ErrPasswordRequired)
	}
}

func TestReset(t *testing.T) {
	store := newTestStore(t)

	err := store.Reset()
	require.ErrorIs(t, err, securestore.ErrStoreLocked)

	err = store.CreateUnlock(password)
	require.NoError(t, err)
	err = store.Put([]byte("spendkey"), []byte("secret"))
	require.NoError(t, err)

	err = store.Reset()
	require.NoError(t, err)
	require.True(t, store.IsLocked())

	initialized, err := store.IsInitialized()
	require.NoError(t, err)
	require.False(t, initialized)

	// Any password initializes the store again, with no data left.
	err = store.CreateUnlock([]byte("anotherpassword"))
	require.NoError(t, err)
	_, err = store.Get([]byte("spendkey"))
	require.ErrorIs(t, err, securestore.ErrDataNotFound)
}

func newTestStoreUnlocked(t *testing.T) securestore.SecureStorage {
	store := newTestStore(t)
	err := store.CreateUnlock(password)
	require.NoError(t, err)
	return store
}

func newTestStore(t *testing.T) securestore.SecureStorage {
	store, err := securestore.NewBoltSecureStorage(t.TempDir(), "test.db")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}
