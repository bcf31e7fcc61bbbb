package rabpdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Chandler-Lu/rabpdf/internal/download"
	"github.com/Chandler-Lu/rabpdf/internal/events"
	"github.com/Chandler-Lu/rabpdf/internal/fileutil"
)

// InstallState is one phase of an installation attempt.
type InstallState string

// Installation states, in order of progression. A fresh Install call
// always starts over from StateResolvingURL; there are no retries within
// a single attempt.
const (
	StateIdle         InstallState = "idle"
	StateResolvingURL InstallState = "resolving-url"
	StateDownloading  InstallState = "downloading"
	StateInstalling   InstallState = "installing"
	StateVerifying    InstallState = "verifying"
	StateInstalled    InstallState = "installed"
	StateFailed       InstallState = "failed"
)

// Installer download URLs by platform and architecture. Combinations
// without an entry are a reported, non-fatal "unsupported platform"
// condition.
var installerURLs = map[[2]string]string{
	{"windows", "amd64"}: "https://pan.yeslu.cn/f/wEH3/LibreOffice_25.2.5_Win_x86-64.msi",
	{"darwin", "arm64"}:  "https://pan.yeslu.cn/f/EnS3/LibreOffice_25.2.5_MacOS_aarch64.dmg",
	{"darwin", "amd64"}:  "https://pan.yeslu.cn/f/qMh4/LibreOffice_25.2.5_MacOS_x86-64.dmg",
}

// libreOfficeBundleName is the macOS application bundle, looked up under
// the applications directory for detection.
const libreOfficeBundleName = "LibreOffice.app"

// Runner executes external commands. The production implementation shells
// out; tests substitute a fake to exercise the install protocol without
// touching the system.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (output string, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}

// Provisioner detects, downloads and installs the headless conversion
// engine (LibreOffice).
type Provisioner struct {
	log    Logger
	bus    *events.Bus
	goos   string
	arch   string
	runner Runner
	fetch  func(ctx context.Context, url, dest string, progress func(int)) error

	// appDir is where macOS application bundles are installed.
	appDir string
}

// ProvisionerOption configures a Provisioner.
type ProvisionerOption func(*Provisioner)

// WithProvisionerLogger sets the diagnostic sink.
func WithProvisionerLogger(log Logger) ProvisionerOption {
	return func(p *Provisioner) { p.log = log }
}

// WithProvisionerEvents sets the event bus for state and progress events.
func WithProvisionerEvents(bus *events.Bus) ProvisionerOption {
	return func(p *Provisioner) { p.bus = bus }
}

// WithProvisionerPlatform overrides platform detection (used by tests).
func WithProvisionerPlatform(goos, arch string) ProvisionerOption {
	return func(p *Provisioner) {
		p.goos = goos
		p.arch = arch
	}
}

// WithRunner substitutes the external command runner (used by tests).
func WithRunner(r Runner) ProvisionerOption {
	return func(p *Provisioner) { p.runner = r }
}

// WithFetcher substitutes the download function (used by tests).
func WithFetcher(fetch func(ctx context.Context, url, dest string, progress func(int)) error) ProvisionerOption {
	return func(p *Provisioner) { p.fetch = fetch }
}

// NewProvisioner creates a Provisioner for the current platform.
func NewProvisioner(opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{
		goos:   runtime.GOOS,
		arch:   runtime.GOARCH,
		runner: execRunner{},
		fetch:  download.Fetch,
		appDir: "/Applications",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Status reports whether LibreOffice is installed. The check is
// recomputed on every call: fixed filesystem paths on macOS and Windows,
// a version-probe subprocess elsewhere.
func (p *Provisioner) Status() DependencyStatus {
	switch p.goos {
	case "darwin":
		info, err := os.Stat(filepath.Join(p.appDir, libreOfficeBundleName))
		return DependencyStatus{Installed: err == nil && info.IsDir()}
	case "windows":
		for _, path := range sofficeWindowsPaths {
			if fileutil.FileExists(path) {
				return DependencyStatus{Installed: true}
			}
		}
		return DependencyStatus{}
	default:
		_, err := p.runner.Run(context.Background(), "libreoffice", "--version")
		return DependencyStatus{Installed: err == nil}
	}
}

// ResolveDownloadURL returns the installer URL for a platform and
// architecture. When no installer exists it logs one explanatory message
// and returns ErrUnsupportedPlatform.
func (p *Provisioner) ResolveDownloadURL(goos, arch string) (string, error) {
	if url, ok := installerURLs[[2]string{goos, arch}]; ok {
		return url, nil
	}
	p.log.printf("Automatic install is not available for %s/%s.", goos, arch)
	return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, arch)
}

// Install downloads and installs LibreOffice. The result is determined
// solely by re-checking Status afterward; the install step's own claimed
// success is not trusted. Install never returns an error: every failure
// is reported through the log sink and reflected in the boolean result.
func (p *Provisioner) Install(ctx context.Context) bool {
	p.setState(StateResolvingURL)
	// ResolveDownloadURL already reported why; do not log twice.
	url, err := p.ResolveDownloadURL(p.goos, p.arch)
	if err != nil {
		p.setState(StateFailed)
		return false
	}

	tmpDir, err := os.MkdirTemp("", "rabpdf-installer-")
	if err != nil {
		p.log.printf("Cannot create download directory: %v", err)
		p.setState(StateFailed)
		return false
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	p.setState(StateDownloading)
	installerPath := filepath.Join(tmpDir, "LibreOffice_installer"+installerExt(p.goos))
	p.log.printf("Downloading installer...")
	err = p.fetch(ctx, url, installerPath, func(percent int) {
		p.log.printf("  download progress: %d%%", percent)
		if p.bus != nil {
			p.bus.Progress(percent)
		}
	})
	if err != nil {
		p.log.printf("Download failed: %v", err)
		p.setState(StateFailed)
		return false
	}
	p.log.printf("Download complete: %s", filepath.Base(installerPath))

	p.setState(StateInstalling)
	switch p.goos {
	case "windows":
		err = p.installWindows(ctx, installerPath)
	case "darwin":
		err = p.installDarwin(ctx, installerPath)
	default:
		// Unreachable: URL resolution already rejected other platforms.
		err = ErrUnsupportedPlatform
	}
	if err != nil {
		p.log.printf("Install failed: %v", err)
	}

	p.setState(StateVerifying)
	installed := p.Status().Installed
	if installed {
		p.log.printf("LibreOffice installed successfully.")
		p.setState(StateInstalled)
	} else {
		p.setState(StateFailed)
	}
	return installed
}

// installWindows performs a silent msiexec install. On failure the
// installer is launched interactively for the user to complete manually,
// and the silent failure is still reported.
func (p *Provisioner) installWindows(ctx context.Context, msiPath string) error {
	p.log.printf("Installing LibreOffice silently... this may take a few minutes.")
	out, err := p.runner.Run(ctx, "msiexec", "/i", msiPath, "/qn")
	if err == nil {
		return nil
	}
	p.log.printf("Silent install failed, opening the installer for manual completion.")
	_, _ = p.runner.Run(ctx, "cmd", "/C", "start", "", msiPath)
	return fmt.Errorf("%w: msiexec: %v: %s", ErrInstallFailed, err, strings.TrimSpace(out))
}

// installDarwin mounts the disk image, copies the application bundle into
// the applications directory with administrator privileges, and always
// detaches the image afterward.
func (p *Provisioner) installDarwin(ctx context.Context, dmgPath string) (err error) {
	p.log.printf("Mounting disk image %s...", filepath.Base(dmgPath))
	out, err := p.runner.Run(ctx, "hdiutil", "attach", dmgPath, "-nobrowse")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMountFailed, err)
	}
	mountPoint := parseMountPoint(out)
	if mountPoint == "" {
		return fmt.Errorf("%w: no mount point in hdiutil output", ErrMountFailed)
	}
	defer func() {
		p.log.printf("Detaching disk image...")
		if _, detachErr := p.runner.Run(ctx, "hdiutil", "detach", mountPoint); detachErr != nil && err == nil {
			err = fmt.Errorf("%w: detach: %v", ErrInstallFailed, detachErr)
		}
	}()
	p.log.printf("Image mounted at %s", mountPoint)

	bundle, err := findAppBundle(mountPoint)
	if err != nil {
		return err
	}

	p.log.printf("Installing %s into %s...", filepath.Base(bundle), p.appDir)
	p.log.printf("You will be prompted for an administrator password.")
	script := fmt.Sprintf(`do shell script "cp -R \"%s\" \"%s/\"" with administrator privileges`, bundle, p.appDir)
	if _, err := p.runner.Run(ctx, "osascript", "-e", script); err != nil {
		return fmt.Errorf("%w: privileged copy: %v", ErrInstallFailed, err)
	}
	return nil
}

// setState reports a state transition through the event bus and log sink.
func (p *Provisioner) setState(s InstallState) {
	if p.bus != nil {
		p.bus.Stage(string(s))
	}
}

// parseMountPoint extracts the mount point from hdiutil attach output.
// The mount point is the last tab-separated field of the line naming a
// /Volumes/ path.
func parseMountPoint(out string) string {
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if !strings.Contains(line, "/Volumes/") {
			continue
		}
		fields := strings.Split(line, "\t")
		return strings.TrimSpace(fields[len(fields)-1])
	}
	return ""
}

// findAppBundle locates the single .app bundle inside a mounted image.
func findAppBundle(mountPoint string) (string, error) {
	entries, err := os.ReadDir(mountPoint)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrBundleNotFound, mountPoint, err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".app") {
			return filepath.Join(mountPoint, e.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: in %s", ErrBundleNotFound, mountPoint)
}

// installerExt returns the installer artifact extension for a platform.
func installerExt(goos string) string {
	if goos == "windows" {
		return ".msi"
	}
	return ".dmg"
}
