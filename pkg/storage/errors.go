package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	// ErrInvalidConfig is returned by New for a negative size or timeout.
	ErrInvalidConfig = errors.New("storage: invalid configuration")
	// ErrInvalidURL is returned for locations that do not parse.
	ErrInvalidURL = errors.New("storage: invalid URL")
	// ErrUnsupportedScheme is returned for schemes other than file, http(s) and s3,
	// and for s3 locations without a configured client.
	ErrUnsupportedScheme = errors.New("storage: unsupported scheme")
	// ErrOutsideRoot is returned for local paths escaping Config.LocalRoot.
	ErrOutsideRoot = errors.New("storage: path outside of root")

	ErrNotFound       = errors.New("storage: file not found")
	ErrAccessDenied   = errors.New("storage: access denied")
	ErrDownloadFailed = errors.New("storage: download failed")

	ErrEmptyFile    = errors.New("storage: file is empty")
	ErrFileTooLarge = errors.New("storage: file exceeds size limit")
	ErrInvalidMIME  = errors.New("storage: file type not allowed")
)

// wrapS3Error maps S3 failures onto the fetch sentinels. The AWS error is
// formatted, not wrapped, so callers match sentinels only.
func wrapS3Error(err, fallback error) error {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}
	return fmt.Errorf("%w: %v", fallback, err)
}
