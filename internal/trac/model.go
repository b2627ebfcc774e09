package trac

import "time"

// DefaultSince is the lower bound used when no date is given.
var DefaultSince = time.Date(2004, time.February, 23, 0, 0, 0, 0, time.UTC)

// Page is one wiki page at its latest version.
type Page struct {
	Name        string
	Text        string
	Version     int
	Time        time.Time
	Author      string
	Comment     string
	Attachments []Attachment
}

// Attachment is a file attached to a wiki page.
type Attachment struct {
	Filename    string
	Page        string
	Path        string // location of the stored file inside the environment
	Size        int64
	Time        time.Time
	Description string
}

// FindAttachment returns the page's attachment with the given filename.
func (p *Page) FindAttachment(filename string) (Attachment, bool) {
	for _, a := range p.Attachments {
		if a.Filename == filename {
			return a, true
		}
	}
	return Attachment{}, false
}

// ToTracTime converts t to Trac's microsecond timestamp.
func ToTracTime(t time.Time) int64 {
	return t.UnixMicro()
}

// FromTracTime converts a Trac microsecond timestamp.
func FromTracTime(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}
