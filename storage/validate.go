package storage

import "strings"

const (
	// MaxUploadSize is the largest accepted upload in bytes.
	MaxUploadSize int64 = 4 << 20
	// MultipartThreshold is the size above which drivers are asked to use a
	// chunked transfer.
	MultipartThreshold int64 = 1 << 20
)

// CheckSize rejects uploads larger than MaxUploadSize.
func CheckSize(size int64) error {
	if size > MaxUploadSize {
		return &ValidationError{Reason: TooLarge, Size: size}
	}
	return nil
}

// CheckType rejects declared content types outside image/*. The declared type
// is trusted; the bytes are not sniffed.
func CheckType(contentType string) error {
	if !strings.HasPrefix(contentType, "image/") {
		return &ValidationError{Reason: UnsupportedType, ContentType: contentType}
	}
	return nil
}

// ValidateUpload runs the size check, then the type check.
func ValidateUpload(size int64, contentType string) error {
	if err := CheckSize(size); err != nil {
		return err
	}
	return CheckType(contentType)
}
