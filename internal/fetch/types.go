// Package fetch implements the artifact acquisition subsystem: HTTP
// download with bounded fixed-delay retries, a cross-run artifact
// cache keyed by (basename, version tag), and SHA-256 checksum
// verification against a direct value or a remote checksum manifest.
//
// Checksum handling is fail-closed: a mismatching artifact is deleted
// and reported as a security-relevant failure, distinct from an
// ordinary network error. A mismatch is never retried against the same
// source without operator intervention.
package fetch

import (
	"errors"
	"time"
)

const (
	// DefaultTimeout bounds a single transfer attempt.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRetries is the number of transfer attempts.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the fixed delay between attempts.
	DefaultRetryDelay = 5 * time.Second
	// DefaultUserAgent is the User-Agent header sent with requests.
	DefaultUserAgent = "benchtop/1.0"
)

var (
	// ErrDownloadFailed indicates all transfer attempts were exhausted.
	ErrDownloadFailed = errors.New("download failed")

	// ErrChecksumMismatch indicates the downloaded artifact does not
	// match its expected SHA-256 digest. The artifact has been deleted.
	// Callers must treat this as a possible MITM or corrupted mirror,
	// not as a transient network failure.
	ErrChecksumMismatch = errors.New("checksum mismatch (possible MITM or corrupted mirror)")

	// ErrManifestUnavailable indicates the checksum manifest could not
	// be fetched or holds no entry for the artifact.
	ErrManifestUnavailable = errors.New("checksum manifest unavailable")

	// ErrSignatureInvalid indicates the artifact's detached signature
	// did not verify against the configured keyring. The artifact has
	// been deleted.
	ErrSignatureInvalid = errors.New("detached signature verification failed")
)

// Request describes one artifact to acquire.
//
// At most one of ChecksumValue and ChecksumManifestURL is meaningful.
// If both are empty the artifact is accepted unverified; that is a
// deliberate trust decision and is logged.
type Request struct {
	URL        string
	TargetPath string

	// ChecksumValue is the expected SHA-256 digest, 64 hex characters.
	ChecksumValue string
	// ChecksumManifestURL points at a remote manifest of
	// "digest  filename" lines to scan for the artifact's basename.
	ChecksumManifestURL string

	// VersionTag keys the cross-run cache. Empty means unversioned;
	// unversioned entries are bypassed whenever a checksum source is
	// present, forcing re-verification.
	VersionTag string

	// SignatureURL, when set, points at a detached GPG signature
	// (armored or binary) over the artifact, checked against the
	// keyring at KeyringPath after checksum verification. Both fields
	// must be set together; signature failures are fail-closed.
	SignatureURL string
	KeyringPath  string

	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// withDefaults returns a copy with zero fields replaced by defaults.
func (r Request) withDefaults() Request {
	if r.Timeout <= 0 {
		r.Timeout = DefaultTimeout
	}
	if r.MaxRetries <= 0 {
		r.MaxRetries = DefaultMaxRetries
	}
	if r.RetryDelay <= 0 {
		r.RetryDelay = DefaultRetryDelay
	}
	return r
}

// hasChecksumSource reports whether any verification was requested.
func (r Request) hasChecksumSource() bool {
	return r.ChecksumValue != "" || r.ChecksumManifestURL != ""
}

// hasSignature reports whether detached-signature verification was
// requested.
func (r Request) hasSignature() bool {
	return r.SignatureURL != ""
}

// expected builds the verifier input for this request.
func (r Request) expected() Expected {
	return Expected{Value: r.ChecksumValue, ManifestURL: r.ChecksumManifestURL}
}

// Result describes a completed acquisition.
type Result struct {
	// Path is the artifact location (always Request.TargetPath).
	Path string
	// Verified is true when a checksum source was requested and the
	// digest matched. False means the artifact was accepted on trust.
	Verified bool
	// SignatureVerified is true when a detached signature was requested
	// and verified.
	SignatureVerified bool
	// FromCache is true when no network transfer was needed.
	FromCache bool
}
