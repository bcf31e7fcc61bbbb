package rabpdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records commands and replies from a script keyed by the
// command name.
type fakeRunner struct {
	calls   [][]string
	outputs map[string]string
	errs    map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: make(map[string]string),
		errs:    make(map[string]error),
	}
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.outputs[name], r.errs[name]
}

func (r *fakeRunner) commandNames() []string {
	var names []string
	for _, c := range r.calls {
		names = append(names, c[0])
	}
	return names
}

func okFetch(_ context.Context, _, dest string, progress func(int)) error {
	if progress != nil {
		progress(100)
	}
	return os.WriteFile(dest, []byte("installer"), 0o644)
}

func TestResolveDownloadURL(t *testing.T) {
	p := NewProvisioner()

	tests := []struct {
		goos    string
		arch    string
		wantSub string
		wantErr error
	}{
		{goos: "windows", arch: "amd64", wantSub: "Win_x86-64.msi"},
		{goos: "darwin", arch: "arm64", wantSub: "MacOS_aarch64.dmg"},
		{goos: "darwin", arch: "amd64", wantSub: "MacOS_x86-64.dmg"},
		{goos: "linux", arch: "amd64", wantErr: ErrUnsupportedPlatform},
		{goos: "windows", arch: "arm64", wantErr: ErrUnsupportedPlatform},
		{goos: "darwin", arch: "386", wantErr: ErrUnsupportedPlatform},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.arch, func(t *testing.T) {
			url, err := p.ResolveDownloadURL(tt.goos, tt.arch)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, url, tt.wantSub)
		})
	}
}

func TestStatusLinuxProbesVersion(t *testing.T) {
	runner := newFakeRunner()
	runner.outputs["libreoffice"] = "LibreOffice 25.2.5.2"
	p := NewProvisioner(
		WithProvisionerPlatform("linux", "amd64"),
		WithRunner(runner),
	)

	assert.True(t, p.Status().Installed)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"libreoffice", "--version"}, runner.calls[0])

	runner.errs["libreoffice"] = errors.New("exec: not found")
	assert.False(t, p.Status().Installed)
}

func TestResolveDownloadURLReportsUnsupported(t *testing.T) {
	var logged []string
	p := NewProvisioner(
		WithProvisionerLogger(func(m string) { logged = append(logged, m) }),
	)

	_, err := p.ResolveDownloadURL("linux", "amd64")
	require.ErrorIs(t, err, ErrUnsupportedPlatform)
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], "not available")
}

func TestInstallUnsupportedPlatform(t *testing.T) {
	var logged []string
	p := NewProvisioner(
		WithProvisionerPlatform("linux", "amd64"),
		WithProvisionerLogger(func(m string) { logged = append(logged, m) }),
		WithRunner(newFakeRunner()),
	)

	assert.False(t, p.Install(context.Background()))
	// Exactly one explanatory message, from URL resolution.
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], "not available")
}

func TestInstallDarwinAlwaysDetaches(t *testing.T) {
	appDir := t.TempDir()

	tests := []struct {
		name    string
		copyErr error
	}{
		{name: "privileged copy succeeds"},
		{name: "privileged copy fails", copyErr: errors.New("user canceled")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			volume := t.TempDir()
			require.NoError(t, os.Mkdir(filepath.Join(volume, "LibreOffice.app"), 0o755))

			runner := newFakeRunner()
			// The mount point line must contain /Volumes/; a symlink keeps
			// the fake volume readable under that marker.
			mount := filepath.Join(t.TempDir(), "Volumes", "LibreOffice")
			require.NoError(t, os.MkdirAll(filepath.Dir(mount), 0o755))
			require.NoError(t, os.Symlink(volume, mount))
			runner.outputs["hdiutil"] = "/dev/disk4s1\tApple_HFS\t" + mount
			runner.errs["osascript"] = tt.copyErr

			p := NewProvisioner(
				WithProvisionerPlatform("darwin", "arm64"),
				WithRunner(runner),
				WithFetcher(okFetch),
			)
			p.appDir = appDir

			// Verification looks for LibreOffice.app in appDir, which the
			// fake never creates, so the attempt always reports false.
			assert.False(t, p.Install(context.Background()))

			names := runner.commandNames()
			attach, detach := -1, -1
			for i, c := range runner.calls {
				if c[0] != "hdiutil" {
					continue
				}
				switch c[1] {
				case "attach":
					attach = i
				case "detach":
					detach = i
				}
			}
			require.GreaterOrEqual(t, attach, 0, "hdiutil attach not called: %v", names)
			require.Greater(t, detach, attach, "hdiutil detach must follow attach: %v", names)
			if tt.copyErr == nil {
				assert.Contains(t, names, "osascript")
			}
		})
	}
}

func TestInstallWindowsSilentThenInteractive(t *testing.T) {
	runner := newFakeRunner()
	runner.errs["msiexec"] = errors.New("exit status 1603")
	p := NewProvisioner(
		WithProvisionerPlatform("windows", "amd64"),
		WithRunner(runner),
		WithFetcher(okFetch),
	)

	assert.False(t, p.Install(context.Background()))

	names := runner.commandNames()
	assert.Contains(t, names, "msiexec")
	assert.Contains(t, names, "cmd", "interactive fallback not launched: %v", names)
	for _, c := range runner.calls {
		if c[0] == "msiexec" {
			assert.Equal(t, "/i", c[1])
			assert.Equal(t, "/qn", c[3])
		}
	}
}

func TestInstallDownloadFailure(t *testing.T) {
	var logged []string
	p := NewProvisioner(
		WithProvisionerPlatform("darwin", "arm64"),
		WithProvisionerLogger(func(m string) { logged = append(logged, m) }),
		WithRunner(newFakeRunner()),
		WithFetcher(func(context.Context, string, string, func(int)) error {
			return errors.New("connection reset")
		}),
	)

	assert.False(t, p.Install(context.Background()))
	found := false
	for _, m := range logged {
		if strings.Contains(m, "Download failed") {
			found = true
		}
	}
	assert.True(t, found, "download failure not reported: %v", logged)
}

func TestParseMountPoint(t *testing.T) {
	out := "/dev/disk4\tGUID_partition_scheme\t\n" +
		"/dev/disk4s1\tApple_HFS\t/Volumes/LibreOffice\n"
	assert.Equal(t, "/Volumes/LibreOffice", parseMountPoint(out))
	assert.Equal(t, "", parseMountPoint("/dev/disk4\tGUID_partition_scheme\t"))
}
