package upload

import "errors"

var (
	// ErrUploadCompleted is returned when data is pushed to a consumer whose
	// session has already been completed. Accepting the data would silently
	// drop it, so the misuse is surfaced instead.
	ErrUploadCompleted = errors.New("upload already completed")

	// ErrUploadAborted is returned when an operation is attempted on a
	// session that was aborted by an earlier failure.
	ErrUploadAborted = errors.New("upload aborted")

	// ErrNoParts is returned when an upload is completed without any bytes
	// ever having been written. The protocol requires at least one part.
	ErrNoParts = errors.New("upload has no parts")

	// ErrUploaderClosed is returned when an uploader is used after Close.
	ErrUploaderClosed = errors.New("uploader is closed")

	// ErrUploadActive is returned by StartNewUpload while the current
	// session is still open.
	ErrUploadActive = errors.New("cannot start new upload while previous upload active")

	// ErrAddressesExhausted is returned when the address iterator of a
	// ForeverUploader runs out of destinations. There is nowhere to write
	// further data, so the uploader becomes permanently unusable.
	ErrAddressesExhausted = errors.New("no more upload addresses")

	// ErrTooManyParts is returned when an upload would exceed the
	// protocol's part count limit.
	ErrTooManyParts = errors.New("part count limit exceeded")
)
