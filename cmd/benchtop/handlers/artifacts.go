package handlers

import (
	"fmt"
	"path/filepath"

	"github.com/benchtop-dev/benchtop/internal/fetch"
	"github.com/benchtop-dev/benchtop/internal/platform"
)

// starshipVersion is the pinned prompt release. Each release asset
// publishes a sibling .sha256 manifest used for verification.
const starshipVersion = "v1.20.1"

const starshipBaseURL = "https://github.com/starship/starship/releases/download"

// starshipTriples maps (os, arch) to the release asset triple.
var starshipTriples = map[string]string{
	"linux/amd64":  "x86_64-unknown-linux-gnu",
	"linux/arm64":  "aarch64-unknown-linux-musl",
	"darwin/amd64": "x86_64-apple-darwin",
	"darwin/arm64": "aarch64-apple-darwin",
}

// justVersion is the pinned command-runner release. Its archive is
// multi-file (binary, man page, shell completions) and the release
// publishes one SHA256SUMS manifest covering every asset.
const justVersion = "1.36.0"

const justBaseURL = "https://github.com/casey/just/releases/download"

var justTriples = map[string]string{
	"linux/amd64":  "x86_64-unknown-linux-musl",
	"linux/arm64":  "aarch64-unknown-linux-musl",
	"darwin/amd64": "x86_64-apple-darwin",
	"darwin/arm64": "aarch64-apple-darwin",
}

// justRequest builds the fetch request for the command-runner archive,
// staged under stageDir and verified against the release manifest.
func justRequest(info *platform.Info, stageDir string) (fetch.Request, error) {
	triple, ok := justTriples[info.OS+"/"+info.Arch]
	if !ok {
		return fetch.Request{}, fmt.Errorf("no just build for %s/%s", info.OS, info.Arch)
	}

	asset := fmt.Sprintf("just-%s-%s.tar.gz", justVersion, triple)
	return fetch.Request{
		URL:                 fmt.Sprintf("%s/%s/%s", justBaseURL, justVersion, asset),
		TargetPath:          filepath.Join(stageDir, asset),
		ChecksumManifestURL: fmt.Sprintf("%s/%s/SHA256SUMS", justBaseURL, justVersion),
		VersionTag:          justVersion,
	}, nil
}

// starshipRequest builds the fetch request for the prompt archive,
// staged under stageDir.
func starshipRequest(info *platform.Info, stageDir string) (fetch.Request, error) {
	triple, ok := starshipTriples[info.OS+"/"+info.Arch]
	if !ok {
		return fetch.Request{}, fmt.Errorf("no starship build for %s/%s", info.OS, info.Arch)
	}

	asset := fmt.Sprintf("starship-%s.tar.gz", triple)
	url := fmt.Sprintf("%s/%s/%s", starshipBaseURL, starshipVersion, asset)

	return fetch.Request{
		URL:                 url,
		TargetPath:          filepath.Join(stageDir, asset),
		ChecksumManifestURL: url + ".sha256",
		VersionTag:          starshipVersion,
	}, nil
}
