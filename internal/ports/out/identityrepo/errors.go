package identityrepo

import "errors"

var (
	// ErrNotFound indicates the requested identity does not exist.
	ErrNotFound = errors.New("identity not found")

	// ErrDuplicateKey indicates a natural key, email, or contact number is
	// already bound to an existing identity of the same role.
	ErrDuplicateKey = errors.New("identity key already in use")

	// ErrHostelNotFound indicates a student referenced a hostel that does not exist.
	ErrHostelNotFound = errors.New("hostel not found")

	// ErrHostelFull indicates the target hostel is at capacity.
	ErrHostelFull = errors.New("hostel full")

	// ErrAlreadyLinked indicates the identity already carries an external
	// provider link.
	ErrAlreadyLinked = errors.New("external provider already linked")
)
