package fetch

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // ProtonMail's maintained fork
	"github.com/go-logr/logr"
)

// manifestTimeout bounds the single checksum-manifest fetch attempt.
// Manifest retrieval is deliberately retry-free: its absence is a
// connectivity problem, not proof of tampering.
const manifestTimeout = 10 * time.Second

// Outcome is the result of a checksum verification.
type Outcome int

const (
	// Match means the digest matched the expected value.
	Match Outcome = iota
	// Mismatch means the digest differed. The caller must delete the file.
	Mismatch
	// Unavailable means no expected digest could be obtained (manifest
	// unreachable or no matching line). The caller proceeds with a
	// warning rather than a failure.
	Unavailable
)

// String returns the lowercase name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Expected identifies the checksum source for a verification.
// Exactly one field should be set.
type Expected struct {
	// Value is a 64-hex-character SHA-256 digest.
	Value string
	// ManifestURL is a remote manifest of "digest  filename" lines.
	ManifestURL string
}

// Verifier validates artifacts against expected SHA-256 digests.
type Verifier struct {
	client *http.Client
	log    logr.Logger
}

// NewVerifier creates a verifier. The internal HTTP client is only
// used for manifest fetches.
func NewVerifier(log logr.Logger) *Verifier {
	return &Verifier{
		client: &http.Client{Timeout: manifestTimeout},
		log:    log,
	}
}

// Verify computes the SHA-256 digest of path and compares it to the
// expected source. Digest computation covers the full file contents.
func (v *Verifier) Verify(ctx context.Context, path string, expected Expected) (Outcome, error) {
	var want string

	switch {
	case expected.Value != "":
		want = strings.ToLower(strings.TrimSpace(expected.Value))
		if !isHexDigest(want) {
			return Mismatch, fmt.Errorf("expected checksum %q is not a 64-char hex SHA-256 digest", expected.Value)
		}

	case expected.ManifestURL != "":
		digest, err := v.manifestDigest(ctx, expected.ManifestURL, filepath.Base(path))
		if err != nil {
			v.log.Info("checksum manifest unavailable", "url", expected.ManifestURL, "reason", err.Error())
			return Unavailable, nil
		}
		want = strings.ToLower(digest)

	default:
		return Mismatch, fmt.Errorf("no checksum source provided")
	}

	got, err := sha256File(path)
	if err != nil {
		return Mismatch, fmt.Errorf("compute digest: %w", err)
	}

	if got != want {
		v.log.Info("checksum mismatch", "file", filepath.Base(path), "expected", want, "actual", got)
		return Mismatch, nil
	}
	return Match, nil
}

// manifestDigest fetches the manifest in a single attempt and scans it
// for the line whose filename token matches filename.
func (v *Verifier) manifestDigest(ctx context.Context, url, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, manifestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch manifest: unexpected status code %d", resp.StatusCode)
	}

	digest, found := findManifestDigest(resp.Body, filename)
	if !found {
		return "", fmt.Errorf("no entry for %s: %w", filename, ErrManifestUnavailable)
	}
	return digest, nil
}

// findManifestDigest scans "digest  filename" lines for filename.
// The filename token is compared exactly first, then by basename to
// handle manifests listing paths.
func findManifestDigest(r io.Reader, filename string) (string, bool) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}
		name := strings.TrimPrefix(parts[1], "*") // BSD-style binary marker
		if name == filename || filepath.Base(name) == filename {
			return parts[0], true
		}
	}
	return "", false
}

// VerifyDetachedSignature checks a detached GPG signature (armored or
// binary) over the artifact against the given keyring.
func VerifyDetachedSignature(artifactPath, signaturePath string, keyring io.Reader) error {
	entities, err := readKeyring(keyring)
	if err != nil {
		return fmt.Errorf("read keyring: %w", err)
	}

	artifact, err := os.Open(artifactPath)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer artifact.Close()

	sig, err := os.Open(signaturePath)
	if err != nil {
		return fmt.Errorf("open signature: %w", err)
	}
	defer sig.Close()

	_, err = openpgp.CheckArmoredDetachedSignature(entities, artifact, sig, nil)
	if err != nil {
		// Retry as a non-armored signature.
		artifact.Seek(0, io.SeekStart)
		sig.Seek(0, io.SeekStart)
		_, err = openpgp.CheckDetachedSignature(entities, artifact, sig, nil)
	}
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}
	return nil
}

func readKeyring(r io.Reader) (openpgp.EntityList, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	entities, err := openpgp.ReadArmoredKeyRing(strings.NewReader(string(data)))
	if err != nil {
		entities, err = openpgp.ReadKeyRing(strings.NewReader(string(data)))
		if err != nil {
			return nil, err
		}
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}
	return entities, nil
}

// sha256File computes the hex SHA-256 digest of the full file contents.
func sha256File(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func isHexDigest(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
