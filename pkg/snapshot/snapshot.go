// Package snapshot stores the opaque solver state the engine hands back between
// invocations. Blobs are write-once: a handle, once written, always yields the
// same bytes.
package snapshot

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"summarizer-session-be/internal/pkg/apperror"

	"github.com/google/uuid"
)

// ErrSnapshotExists is returned by Put when the handle already holds different bytes.
var ErrSnapshotExists = errors.New("snapshot already exists with different content")

type Store interface {
	// Put writes blob under handle. Writing the same bytes again is a no-op.
	Put(ctx context.Context, handle string, blob []byte) error
	// Get returns the blob, or an error wrapping apperror.ErrNotFound.
	Get(ctx context.Context, handle string) ([]byte, error)
}

type Role string

const (
	RoleInput  Role = "input"
	RoleOutput Role = "output"
	RoleLabels Role = "labels"
)

// Coordinate addresses one artifact of one assignment iteration. Digest, when
// set, tells apart the different blobs written at the same coordinate.
type Coordinate struct {
	UserId       uuid.UUID
	AssignmentId uuid.UUID
	Iteration    int
	Role         Role
	Digest       string
}

// handleDigestLen is how many hex digits of the content digest go into a handle.
const handleDigestLen = 12

func AssignmentHandle(c Coordinate) string {
	h := fmt.Sprintf("%s-%s-%d-%s", c.UserId, c.AssignmentId, c.Iteration, c.Role)
	if c.Digest != "" {
		h = h + "." + c.Digest
	}
	return h
}

// AddressedHandle is the handle blob gets at c.
func AddressedHandle(c Coordinate, blob []byte) string {
	c.Digest = Digest(blob)[:handleDigestLen]
	return AssignmentHandle(c)
}

const templatePrefix = "template-"

func TemplateHandle(templateId uuid.UUID) string {
	return templatePrefix + templateId.String()
}

func IsTemplateHandle(handle string) bool {
	return strings.HasPrefix(handle, templatePrefix) && len(handle) > len(templatePrefix)
}

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,254}$`)

// ValidateHandle rejects handles that could escape a directory or bucket prefix.
func ValidateHandle(handle string) error {
	if !handlePattern.MatchString(handle) {
		return fmt.Errorf("invalid snapshot handle %q", handle)
	}
	return nil
}

func Digest(blob []byte) string {
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}

// CompareExisting is the shared write-once rule for backends that detect an
// existing object: identical bytes are fine, anything else is ErrSnapshotExists.
func CompareExisting(handle string, existing, blob []byte) error {
	if bytes.Equal(existing, blob) {
		return nil
	}
	return fmt.Errorf("%s: %w", handle, ErrSnapshotExists)
}

func NotFound(handle string) error {
	return fmt.Errorf("snapshot %s: %w", handle, apperror.ErrNotFound)
}

// PutAddressed writes blob at c under a handle derived from its content, so a
// replay of the same bytes is a no-op and a blob left behind by a round that
// never committed cannot block a later one. It returns the handle.
func PutAddressed(ctx context.Context, store Store, c Coordinate, blob []byte) (string, error) {
	handle := AddressedHandle(c, blob)
	if err := store.Put(ctx, handle, blob); err != nil {
		return "", err
	}
	return handle, nil
}
