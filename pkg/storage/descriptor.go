package storage

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// URLPrefix starts every file reference URL.
const URLPrefix = "/files/"

const (
	hashLen   = sha1.Size * 2
	maxExtLen = 32
)

var (
	ErrBadPrefix    = errors.New("reference must start with " + URLPrefix)
	ErrBadSegments  = errors.New("reference must have 4 path segments")
	ErrBadWorkspace = errors.New("workspace segment is not a workspace id")
	ErrMissingExt   = errors.New("file segment has no extension separator")
	ErrBadExt       = errors.New("extension must be lowercase alphanumeric")
	ErrBadHash      = errors.New("hash segments are not a lowercase sha1 digest")
)

// ReferenceError reports which part of a file reference failed to parse.
type ReferenceError struct {
	URL     string
	Segment string
	Err     error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("invalid file reference %q at %s: %v", e.URL, e.Segment, e.Err)
}

func (e *ReferenceError) Unwrap() error {
	return e.Err
}

// Descriptor names one stored file.
type Descriptor struct {
	WorkspaceID int64
	Hash        string
	Ext         string
}

// NewDescriptor hashes data and derives the extension from filename.
func NewDescriptor(workspaceID int64, filename string, data []byte) Descriptor {
	sum := sha1.Sum(data)
	return Descriptor{
		WorkspaceID: workspaceID,
		Hash:        hex.EncodeToString(sum[:]),
		Ext:         ExtFromFilename(filename),
	}
}

// ExtFromFilename returns the lowercased last dot segment of the base name,
// or "" when there is no dot or the segment is not [a-z0-9]+.
func ExtFromFilename(filename string) string {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return ""
	}
	ext := strings.ToLower(base[i+1:])
	if !validExt(ext) {
		return ""
	}
	return ext
}

func validExt(ext string) bool {
	if len(ext) > maxExtLen {
		return false
	}
	for i := 0; i < len(ext); i++ {
		c := ext[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func validHash(h string) bool {
	if len(h) != hashLen {
		return false
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Path is the slash separated location relative to the store root.
func (d Descriptor) Path() string {
	return fmt.Sprintf("%d/%s/%s/%s.%s", d.WorkspaceID, d.Hash[0:3], d.Hash[3:6], d.Hash[6:], d.Ext)
}

// URL is the public reference returned to clients.
func (d Descriptor) URL() string {
	return URLPrefix + d.Path()
}

// ParseURL is the inverse of Descriptor.URL.
func ParseURL(ref string) (Descriptor, error) {
	fail := func(segment string, err error) (Descriptor, error) {
		return Descriptor{}, &ReferenceError{URL: ref, Segment: segment, Err: err}
	}

	rest, ok := strings.CutPrefix(ref, URLPrefix)
	if !ok {
		return fail("prefix", ErrBadPrefix)
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 4 {
		return fail("path", ErrBadSegments)
	}

	ws, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || ws < 0 || strconv.FormatInt(ws, 10) != parts[0] {
		return fail("workspace", ErrBadWorkspace)
	}

	tail, ext, ok := cutLast(parts[3], '.')
	if !ok {
		return fail("extension", ErrMissingExt)
	}
	if !validExt(ext) {
		return fail("extension", ErrBadExt)
	}

	if len(parts[1]) != 3 || len(parts[2]) != 3 {
		return fail("hash", ErrBadHash)
	}
	hash := parts[1] + parts[2] + tail
	if !validHash(hash) {
		return fail("hash", ErrBadHash)
	}

	return Descriptor{WorkspaceID: ws, Hash: hash, Ext: ext}, nil
}

func cutLast(s string, sep byte) (before, after string, found bool) {
	i := strings.LastIndexByte(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}
