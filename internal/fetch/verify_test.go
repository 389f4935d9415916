package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestVerifyValueMatch(t *testing.T) {
	content := []byte("some artifact bytes")
	path := writeTemp(t, "artifact.bin", content)
	v := NewVerifier(logr.Discard())

	outcome, err := v.Verify(context.Background(), path, Expected{Value: digestOf(content)})
	require.NoError(t, err)
	assert.Equal(t, Match, outcome)
}

func TestVerifyValueMismatch(t *testing.T) {
	path := writeTemp(t, "artifact.bin", []byte("actual bytes"))
	v := NewVerifier(logr.Discard())

	outcome, err := v.Verify(context.Background(), path, Expected{Value: digestOf([]byte("other bytes"))})
	require.NoError(t, err)
	assert.Equal(t, Mismatch, outcome)
}

func TestVerifyIsDeterministic(t *testing.T) {
	content := []byte("stable bytes")
	path := writeTemp(t, "artifact.bin", content)
	v := NewVerifier(logr.Discard())
	expected := Expected{Value: digestOf(content)}

	for i := 0; i < 3; i++ {
		outcome, err := v.Verify(context.Background(), path, expected)
		require.NoError(t, err)
		assert.Equal(t, Match, outcome, "repeated verification of an unchanged file must agree")
	}
}

func TestVerifyNormalizesCase(t *testing.T) {
	content := []byte("case test")
	path := writeTemp(t, "artifact.bin", content)
	v := NewVerifier(logr.Discard())

	upper := strings.ToUpper(digestOf(content))
	outcome, err := v.Verify(context.Background(), path, Expected{Value: upper})
	require.NoError(t, err)
	assert.Equal(t, Match, outcome)
}

func TestVerifyRejectsMalformedExpectedValue(t *testing.T) {
	path := writeTemp(t, "artifact.bin", []byte("data"))
	v := NewVerifier(logr.Discard())

	_, err := v.Verify(context.Background(), path, Expected{Value: "not-a-digest"})
	require.Error(t, err)
}

func TestVerifyManifestMatch(t *testing.T) {
	content := []byte("manifest-covered artifact")
	path := writeTemp(t, "tool-1.0-linux.tar.gz", content)

	manifest := strings.Join([]string{
		digestOf([]byte("other")) + "  tool-1.0-darwin.tar.gz",
		digestOf(content) + "  tool-1.0-linux.tar.gz",
	}, "\n")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(manifest))
	}))
	defer srv.Close()

	v := NewVerifier(logr.Discard())
	outcome, err := v.Verify(context.Background(), path, Expected{ManifestURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, Match, outcome)
}

func TestVerifyManifestMismatch(t *testing.T) {
	path := writeTemp(t, "tool.tar.gz", []byte("actual"))
	manifest := digestOf([]byte("expected")) + "  tool.tar.gz\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(manifest))
	}))
	defer srv.Close()

	v := NewVerifier(logr.Discard())
	outcome, err := v.Verify(context.Background(), path, Expected{ManifestURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, Mismatch, outcome)
}

func TestVerifyManifestUnreachable(t *testing.T) {
	path := writeTemp(t, "tool.tar.gz", []byte("data"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	v := NewVerifier(logr.Discard())
	outcome, err := v.Verify(context.Background(), path, Expected{ManifestURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, Unavailable, outcome)
}

func TestVerifyManifestNoMatchingLine(t *testing.T) {
	path := writeTemp(t, "tool.tar.gz", []byte("data"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(digestOf([]byte("x")) + "  unrelated.tar.gz\n"))
	}))
	defer srv.Close()

	v := NewVerifier(logr.Discard())
	outcome, err := v.Verify(context.Background(), path, Expected{ManifestURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, Unavailable, outcome)
}

func TestFindManifestDigest(t *testing.T) {
	manifest := strings.Join([]string{
		"# comment line",
		"",
		"aaaa  first.bin",
		"bbbb  ./nested/path/second.bin",
		"cccc  *third.bin",
	}, "\n")

	t.Run("exact name", func(t *testing.T) {
		digest, ok := findManifestDigest(strings.NewReader(manifest), "first.bin")
		require.True(t, ok)
		assert.Equal(t, "aaaa", digest)
	})

	t.Run("basename of a path entry", func(t *testing.T) {
		digest, ok := findManifestDigest(strings.NewReader(manifest), "second.bin")
		require.True(t, ok)
		assert.Equal(t, "bbbb", digest)
	})

	t.Run("binary-mode marker stripped", func(t *testing.T) {
		digest, ok := findManifestDigest(strings.NewReader(manifest), "third.bin")
		require.True(t, ok)
		assert.Equal(t, "cccc", digest)
	})

	t.Run("absent entry", func(t *testing.T) {
		_, ok := findManifestDigest(strings.NewReader(manifest), "absent.bin")
		assert.False(t, ok)
	})
}

func TestVerifyDetachedSignatureBadKeyring(t *testing.T) {
	artifact := writeTemp(t, "artifact.bin", []byte("data"))
	sig := writeTemp(t, "artifact.bin.sig", []byte("not a signature"))

	err := VerifyDetachedSignature(artifact, sig, strings.NewReader("garbage keyring"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read keyring")
}

func TestVerifyDetachedSignatureInvalidSignature(t *testing.T) {
	entity, err := openpgp.NewEntity("Release Signer", "", "signer@example.com", nil)
	require.NoError(t, err)

	var pub bytes.Buffer
	aw, err := armor.Encode(&pub, openpgp.PublicKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, entity.Serialize(aw))
	require.NoError(t, aw.Close())

	artifact := writeTemp(t, "artifact.bin", []byte("data"))
	sig := writeTemp(t, "artifact.bin.sig", []byte("definitely not a signature"))

	err = VerifyDetachedSignature(artifact, sig, &pub)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verify signature")
}
