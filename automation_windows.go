//go:build windows

package rabpdf

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// Export format codes used by the Office automation interfaces.
const (
	wdFormatPDF        = 17 // Word: WdSaveFormat.wdFormatPDF
	ppSaveAsPDF        = 32 // PowerPoint: PpSaveAsFileType.ppSaveAsPDF
	wdDoNotSaveChanges = 0
)

// AutomationBackend drives the installed Word or PowerPoint application
// out-of-process through its COM automation interface. Application and
// document instances are scoped resources: they are closed and quit on
// every exit path, including automation faults.
type AutomationBackend struct {
	Log Logger
}

var _ Backend = (*AutomationBackend)(nil)

// NewAutomationBackend creates the native Office automation backend.
func NewAutomationBackend(log Logger) *AutomationBackend {
	return &AutomationBackend{Log: log}
}

// Name implements Backend.
func (b *AutomationBackend) Name() string { return "office-automation" }

// Available implements Backend. Whether Word or PowerPoint is actually
// installed only surfaces when object creation is attempted; that failure
// is reported as a conversion error so the orchestrator can fall back.
func (b *AutomationBackend) Available() bool { return true }

// Convert implements Backend. Word documents are exported with SaveAs
// format 17, presentations with format 32.
func (b *AutomationBackend) Convert(ctx context.Context, inputPath, outputDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	absIn, err := filepath.Abs(inputPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	absOut, err := filepath.Abs(filepath.Join(outputDir, ConvertedName(inputPath)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}

	// COM requires thread-affine initialization. Errors from CoInitialize
	// other than "already initialized" are fatal to this attempt only.
	if err := ole.CoInitialize(0); err != nil {
		oleCode := err.(*ole.OleError).Code()
		if oleCode != uintptr(ole.S_OK) && oleCode != uintptr(ole.S_FALSE) {
			return fmt.Errorf("%w: COM initialization: %v", ErrConversionFailed, err)
		}
	}
	defer ole.CoUninitialize()

	if IsWordDocument(inputPath) {
		return b.convertWord(absIn, absOut)
	}
	return b.convertPowerPoint(absIn, absOut)
}

func (b *AutomationBackend) convertWord(inputPath, outputPath string) error {
	b.Log.printf("Converting %s with Word...", filepath.Base(inputPath))

	app, err := createObject("Word.Application")
	if err != nil {
		return fmt.Errorf("%w: Word not installed: %v", ErrConversionFailed, err)
	}
	defer func() {
		_, _ = oleutil.CallMethod(app, "Quit")
		app.Release()
	}()
	_, _ = oleutil.PutProperty(app, "Visible", false)

	docs := oleutil.MustGetProperty(app, "Documents").ToIDispatch()
	defer docs.Release()

	docVar, err := oleutil.CallMethod(docs, "Open", inputPath)
	if err != nil {
		return fmt.Errorf("%w: opening document: %v", ErrConversionFailed, err)
	}
	doc := docVar.ToIDispatch()
	defer func() {
		_, _ = oleutil.CallMethod(doc, "Close", wdDoNotSaveChanges)
		doc.Release()
	}()

	if _, err := oleutil.CallMethod(doc, "SaveAs", outputPath, wdFormatPDF); err != nil {
		return fmt.Errorf("%w: PDF export: %v", ErrConversionFailed, err)
	}
	return nil
}

func (b *AutomationBackend) convertPowerPoint(inputPath, outputPath string) error {
	b.Log.printf("Converting %s with PowerPoint...", filepath.Base(inputPath))

	app, err := createObject("Powerpoint.Application")
	if err != nil {
		return fmt.Errorf("%w: PowerPoint not installed: %v", ErrConversionFailed, err)
	}
	defer func() {
		_, _ = oleutil.CallMethod(app, "Quit")
		app.Release()
	}()

	pres := oleutil.MustGetProperty(app, "Presentations").ToIDispatch()
	defer pres.Release()

	presVar, err := oleutil.CallMethod(pres, "Open", inputPath)
	if err != nil {
		return fmt.Errorf("%w: opening presentation: %v", ErrConversionFailed, err)
	}
	presentation := presVar.ToIDispatch()
	defer func() {
		_, _ = oleutil.CallMethod(presentation, "Close")
		presentation.Release()
	}()

	if _, err := oleutil.CallMethod(presentation, "SaveAs", outputPath, ppSaveAsPDF); err != nil {
		return fmt.Errorf("%w: PDF export: %v", ErrConversionFailed, err)
	}
	return nil
}

// createObject instantiates a COM automation object by ProgID.
func createObject(progID string) (*ole.IDispatch, error) {
	unknown, err := oleutil.CreateObject(progID)
	if err != nil {
		return nil, err
	}
	app, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		unknown.Release()
		return nil, err
	}
	unknown.Release()
	return app, nil
}
