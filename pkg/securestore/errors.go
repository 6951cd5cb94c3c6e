package securestore

import "errors"

var (
	// ErrStoreLocked ...
	ErrStoreLocked = errors.New("store is locked")
	// ErrPasswordRequired ...
	ErrPasswordRequired = errors.New("password must not be null")
	// ErrInvalidPassword ...
	ErrInvalidPassword = errors.New("password is not valid")
	// ErrEncKeyNotFound is returned when changing the password of a store
	// that was never initialized.
	ErrEncKeyNotFound = errors.New("store encryption key not found")
	// ErrMissingDataKey ...
	ErrMissingDataKey = errors.New("missing data key")
	// ErrForbiddenDataKey is returned for keys clashing with the one holding
	// the encryption key parameters.
	ErrForbiddenDataKey = errors.New("data key is not allowed")
	// ErrMissingData ...
	ErrMissingData = errors.New("missing data to add")
	// ErrDataNotFound ...
	ErrDataNotFound = errors.New("data not found")
)
