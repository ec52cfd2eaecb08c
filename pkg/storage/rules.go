package storage

import "fmt"

// Rule rejects a fetched file before it is attached to an email.
type Rule func(f *File) error

// MaxSize rejects files larger than n bytes. Config.MaxSize already bounds
// every download; MaxSize tightens it for a single fetcher.
func MaxSize(n int64) Rule {
	return func(f *File) error {
		if f.Size() > n {
			return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, f.Name, f.Size(), n)
		}
		return nil
	}
}

// NotEmpty rejects zero-byte files.
func NotEmpty() Rule {
	return func(f *File) error {
		if f.Size() == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyFile, f.Name)
		}
		return nil
	}
}

// AllowedTypes accepts only the listed MIME types. A pattern ending in "/*"
// matches the whole family, as in "image/*".
func AllowedTypes(patterns ...string) Rule {
	return func(f *File) error {
		if !matchesMIME(f.ContentType, patterns) {
			return fmt.Errorf("%w: %s has type %q", ErrInvalidMIME, f.Name, f.ContentType)
		}
		return nil
	}
}

// Attachable accepts the types mail clients open without warnings: images,
// PDF, office documents, plain text, CSV and calendar invites.
func Attachable() Rule {
	return AllowedTypes(attachableTypes...)
}

func check(f *File, rules []Rule) error {
	for _, rule := range rules {
		if err := rule(f); err != nil {
			return err
		}
	}
	return nil
}
