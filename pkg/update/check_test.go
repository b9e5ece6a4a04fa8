package update

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestUpgradeCommandForMethod(t *testing.T) {
	tests := []struct {
		method   InstallMethod
		expected string
	}{
		{InstallMethodBrew, "brew upgrade spendcloudtools/tap/spendlink"},
		{InstallMethodNPM, "npm i -g @spendcloudtools/spendlink@latest"},
		{InstallMethodPNPM, "pnpm add -g @spendcloudtools/spendlink@latest"},
		{InstallMethodBun, "bun add -g @spendcloudtools/spendlink@latest"},
		{InstallMethodUnknown, "brew upgrade spendcloudtools/tap/spendlink"},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.expected, suggestUpgradeCommandForMethod(tt.method))
		})
	}
}

func TestPathMatchesNPM(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/home/user/.npm-global/bin/spendlink", true},
		{"/home/user/.npm/bin/spendlink", true},
		{"/usr/local/lib/node_modules/.bin/spendlink", true},
		{"/home/user/.local/share/npm/bin/spendlink", true},
		{"/opt/homebrew/bin/spendlink", false},
		{"/home/user/.bun/bin/spendlink", false},
		{"/home/user/.local/share/pnpm/spendlink", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, pathMatchesNPM(tt.path))
		})
	}
}

func TestPathMatchesBun(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/home/user/.bun/bin/spendlink", true},
		{"/home/user/.npm-global/bin/spendlink", false},
		{"/opt/homebrew/bin/spendlink", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, pathMatchesBun(tt.path))
		})
	}
}

func TestPathMatchesPNPM(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/home/user/.local/share/pnpm/spendlink", true},
		{"/home/user/.pnpm/global/spendlink", true},
		{"/home/user/.npm-global/bin/spendlink", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, pathMatchesPNPM(tt.path))
		})
	}
}

func TestPathMatchesHomebrew(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/opt/homebrew/bin/spendlink", true},
		{"/usr/local/Cellar/spendlink/1.0/bin/spendlink", true},
		{"/home/linuxbrew/.linuxbrew/Cellar/spendlink/1.0/bin/spendlink", true},
		{"/home/user/.npm-global/bin/spendlink", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, pathMatchesHomebrew(tt.path))
		})
	}
}

func TestInstallMethodRulesPathPrecedence(t *testing.T) {
	rules := installMethodRules()

	detect := func(path string) InstallMethod {
		for _, r := range rules {
			if r.check(path) {
				return r.method
			}
		}
		return InstallMethodUnknown
	}

	assert.Equal(t, InstallMethodNPM, detect("/home/user/.npm-global/bin/spendlink"))
	assert.Equal(t, InstallMethodBun, detect("/home/user/.bun/bin/spendlink"))
	assert.Equal(t, InstallMethodBrew, detect("/opt/homebrew/bin/spendlink"))
	assert.Equal(t, InstallMethodPNPM, detect("/home/user/.local/share/pnpm/spendlink"))
	assert.Equal(t, InstallMethodUnknown, detect("/usr/local/bin/spendlink"))
}

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		current string
		latest  string
		newer   bool
	}{
		{"1.0.0", "1.0.1", true},
		{"v1.2.0", "v1.2.0", false},
		{"2.0.0", "v1.9.9", false},
		{"0.3.0", "0.10.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.current+"_vs_"+tt.latest, func(t *testing.T) {
			got, err := IsNewerVersion(tt.current, tt.latest)
			assert.NoError(t, err)
			assert.Equal(t, tt.newer, got)
		})
	}
}

func TestIsNewerVersionInvalid(t *testing.T) {
	_, err := IsNewerVersion("dev", "1.0.0")
	assert.Error(t, err)
}
