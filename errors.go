package rabpdf

import "errors"

// Sentinel errors for library operations.
var (
	// Configuration errors: rejected before any processing starts.
	ErrNoInputFiles  = errors.New("no input files to process")
	ErrNoOutputDir   = errors.New("no output directory specified")
	ErrRunInProgress = errors.New("a batch run is already in progress")
	ErrUnknownMethod = errors.New("unknown conversion method")

	// Per-file conversion errors: isolated to the affected file.
	ErrBackendUnavailable = errors.New("conversion backend not available on this platform")
	ErrEngineNotFound     = errors.New("headless conversion engine not found")
	ErrConversionFailed   = errors.New("document conversion failed")
	ErrOutputMissing      = errors.New("backend reported success but produced no output file")

	// Watermarking errors: isolated to the affected file, original left untouched.
	ErrEmptyDocument    = errors.New("source PDF has no pages")
	ErrFontNotFound     = errors.New("watermark font not available")
	ErrTextNotEncodable = errors.New("watermark text not encodable by the active font")

	// Watermark spec validation errors.
	ErrEmptyWatermarkText = errors.New("watermark text cannot be empty")
	ErrInvalidOpacity     = errors.New("watermark opacity must be in (0, 1]")
	ErrInvalidFontSize    = errors.New("watermark font size must be positive")

	// Provisioning errors: reported, never fatal to the host process.
	ErrUnsupportedPlatform = errors.New("automatic install not supported on this platform")
	ErrDownloadFailed      = errors.New("installer download failed")
	ErrInstallFailed       = errors.New("installer execution failed")
	ErrMountFailed         = errors.New("disk image mount failed")
	ErrBundleNotFound      = errors.New("no application bundle found in disk image")
)
