package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/mail"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// ErrNotFound is returned when an outbox entry does not exist.
var ErrNotFound = errors.New("file: outbox entry not found")

// Entry summarizes one email written by the file transport.
type Entry struct {
	Date      time.Time
	Name      string
	Recipient string
	Subject   string
	Raw       bool
}

// Outbox reads the emails the file transport wrote to a directory.
type Outbox struct {
	dir string
}

// NewOutbox returns an outbox over dir.
func NewOutbox(dir string) *Outbox {
	return &Outbox{dir: dir}
}

// Dir returns the outbox directory.
func (o *Outbox) Dir() string {
	return o.dir
}

// List returns entries newest first. A missing directory is an empty outbox.
func (o *Outbox) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(o.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file: read outbox: %w", err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !isOutboxFile(de.Name()) {
			continue
		}
		e, err := o.entry(de.Name())
		if err != nil {
			continue
		}
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return b.Date.Compare(a.Date)
	})
	return entries, nil
}

// Read returns the raw content of an entry.
func (o *Outbox) Read(name string) ([]byte, error) {
	if !isOutboxFile(name) || name != filepath.Base(name) {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(o.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Record decodes a structured entry.
func (o *Outbox) Record(name string) (Record, error) {
	var r Record
	if filepath.Ext(name) != ExtJSON {
		return r, ErrNotFound
	}
	data, err := o.Read(name)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("file: decode %s: %w", name, err)
	}
	return r, nil
}

// Prune removes entries last modified before now minus maxAge and
// reports how many were removed.
func (o *Outbox) Prune(maxAge time.Duration, now time.Time) (int, error) {
	dirEntries, err := os.ReadDir(o.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("file: read outbox: %w", err)
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	var errs []error
	for _, de := range dirEntries {
		if de.IsDir() || !isOutboxFile(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(o.dir, de.Name())); err != nil {
				errs = append(errs, err)
				continue
			}
			removed++
		}
	}
	return removed, errors.Join(errs...)
}

func (o *Outbox) entry(name string) (Entry, error) {
	path := filepath.Join(o.dir, name)
	if filepath.Ext(name) == ExtJSON {
		r, err := o.Record(name)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Name: name, Date: r.Date, Recipient: r.Recipient, Subject: r.Subject}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Entry{}, err
	}
	defer f.Close()

	msg, err := mail.ReadMessage(f)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{Name: name, Raw: true, Recipient: msg.Header.Get("To")}
	dec := new(mime.WordDecoder)
	if subject, err := dec.DecodeHeader(msg.Header.Get("Subject")); err == nil {
		e.Subject = subject
	}
	if date, err := msg.Header.Date(); err == nil {
		e.Date = date
	} else if info, err := f.Stat(); err == nil {
		e.Date = info.ModTime()
	}
	return e, nil
}

func isOutboxFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ExtJSON || ext == ExtRaw
}
