// Package update detects how spendlink was installed and checks GitHub for a
// newer release.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// InstallMethod identifies the package manager that installed the binary.
type InstallMethod string

const (
	InstallMethodBrew    InstallMethod = "brew"
	InstallMethodNPM     InstallMethod = "npm"
	InstallMethodPNPM    InstallMethod = "pnpm"
	InstallMethodBun     InstallMethod = "bun"
	InstallMethodUnknown InstallMethod = "unknown"
)

const latestReleaseURL = "https://api.github.com/repos/spendcloudtools/spendlink/releases/latest"

type installMethodRule struct {
	method InstallMethod
	check  func(path string) bool
}

// installMethodRules is evaluated in order; the first matching rule wins.
func installMethodRules() []installMethodRule {
	return []installMethodRule{
		{InstallMethodNPM, pathMatchesNPM},
		{InstallMethodBun, pathMatchesBun},
		{InstallMethodPNPM, pathMatchesPNPM},
		{InstallMethodBrew, pathMatchesHomebrew},
	}
}

func pathMatchesNPM(path string) bool {
	return strings.Contains(path, ".npm") ||
		strings.Contains(path, "node_modules") ||
		strings.Contains(path, "/npm/")
}

func pathMatchesBun(path string) bool {
	return strings.Contains(path, ".bun")
}

func pathMatchesPNPM(path string) bool {
	return strings.Contains(path, "pnpm")
}

func pathMatchesHomebrew(path string) bool {
	return strings.Contains(path, "homebrew") ||
		strings.Contains(path, "linuxbrew") ||
		strings.Contains(path, "Cellar")
}

// DetectInstallMethod inspects the running binary's path to figure out which
// package manager installed it. The path is returned for diagnostics even
// when the method is unknown.
func DetectInstallMethod() (InstallMethod, string) {
	path, err := os.Executable()
	if err != nil {
		return InstallMethodUnknown, ""
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	for _, r := range installMethodRules() {
		if r.check(path) {
			return r.method, path
		}
	}
	return InstallMethodUnknown, path
}

func suggestUpgradeCommandForMethod(method InstallMethod) string {
	switch method {
	case InstallMethodPNPM:
		return "pnpm add -g @spendcloudtools/spendlink@latest"
	case InstallMethodNPM:
		return "npm i -g @spendcloudtools/spendlink@latest"
	case InstallMethodBun:
		return "bun add -g @spendcloudtools/spendlink@latest"
	default:
		return "brew upgrade spendcloudtools/tap/spendlink"
	}
}

// SuggestUpgradeCommand returns the upgrade command for the detected
// installation method.
func SuggestUpgradeCommand() string {
	method, _ := DetectInstallMethod()
	return suggestUpgradeCommandForMethod(method)
}

// FetchLatest asks GitHub for the newest release tag and its release page.
func FetchLatest(ctx context.Context) (tag, releaseURL string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, latestReleaseURL, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("release lookup failed: %s", resp.Status)
	}

	var release struct {
		TagName string `json:"tag_name"`
		HTMLURL string `json:"html_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", "", fmt.Errorf("invalid release response: %w", err)
	}
	return release.TagName, release.HTMLURL, nil
}

// IsNewerVersion reports whether latest is a strictly newer semver than
// current. Leading "v" prefixes are tolerated.
func IsNewerVersion(current, latest string) (bool, error) {
	cur, err := semver.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return false, fmt.Errorf("parse current version %q: %w", current, err)
	}
	lat, err := semver.NewVersion(strings.TrimPrefix(latest, "v"))
	if err != nil {
		return false, fmt.Errorf("parse latest version %q: %w", latest, err)
	}
	return lat.GreaterThan(cur), nil
}
