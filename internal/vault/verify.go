package vault

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"

	"github.com/SlowSpeedChase/selene-n8n/internal/render"
)

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Report describes the published state of one document across views.
type Report struct {
	Placements []Placement
	Missing    []View
	Checksums  map[View]string
}

// Consistent reports whether every view holds an identical copy.
func (r Report) Consistent() bool {
	if len(r.Missing) > 0 {
		return false
	}
	var first string
	for _, sum := range r.Checksums {
		if first == "" {
			first = sum
		} else if sum != first {
			return false
		}
	}
	return true
}

// Verify reads back every view copy of a document. A note interrupted
// between view writes shows up as missing or mismatched copies.
func (p *Publisher) Verify(r render.Routing) (Report, error) {
	rep := Report{
		Placements: p.Plan(r),
		Checksums:  make(map[View]string),
	}
	for _, pl := range rep.Placements {
		data, err := p.store.Read(pl.Path)
		if errors.Is(err, fs.ErrNotExist) {
			rep.Missing = append(rep.Missing, pl.View)
			continue
		}
		if err != nil {
			return rep, err
		}
		rep.Checksums[pl.View] = Checksum(data)
	}
	return rep, nil
}

// Count returns the number of documents published under a view.
func (p *Publisher) Count(v View) (int, error) {
	files, err := p.store.List(p.folder + "/" + string(v))
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// Hubs lists the concept hub documents.
func (p *Publisher) Hubs() ([]string, error) {
	return p.store.List(p.folder + "/" + HubDir)
}

// Read returns a published file.
func (p *Publisher) Read(path string) ([]byte, error) {
	return p.store.Read(path)
}
