// Package rabpdf converts office documents to PDF and overlays tiled text
// watermarks on PDF pages.
//
// # Quick Start
//
// Create a Service, build a run request, and execute it:
//
//	svc, err := rabpdf.NewService(rabpdf.WithLogger(func(msg string) {
//	    fmt.Println(msg)
//	}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := svc.Run(ctx, rabpdf.RunRequest{
//	    Inputs:    []string{"slides.pptx", "report.docx"},
//	    OutputDir: "out",
//	    Method:    rabpdf.MethodAuto,
//	    Watermark: &rabpdf.WatermarkSpec{
//	        Text:     "CONFIDENTIAL",
//	        Opacity:  0.2,
//	        FontSize: 25,
//	        Rotation: 30,
//	    },
//	})
//
// The summary reports per-batch success and failure counts. Each file is
// processed independently; a corrupt document never aborts the batch.
//
// # Processing Pipeline
//
// Each input file passes through these stages:
//
//  1. Admission: only .doc, .docx, .ppt, .pptx and .pdf files are accepted.
//  2. Conversion: office documents are converted to PDF by one of two
//     backends. On Windows the native Word/PowerPoint automation backend is
//     preferred; everywhere the headless LibreOffice engine is available as
//     a subprocess. Under MethodAuto a failed native attempt falls back to
//     LibreOffice exactly once. PDF inputs skip conversion.
//  3. Watermarking (optional): a rotated, semi-transparent text overlay is
//     tiled across every page and merged with the original content.
//
// Output files are named <stem>.pdf and <stem>_watermarked.pdf in the
// chosen output directory.
//
// # Dependency Provisioning
//
// LibreOffice can be detected, downloaded and silently installed through
// the Provisioner:
//
//	prov := rabpdf.NewProvisioner(rabpdf.WithProvisionerLogger(logf))
//	if !prov.Status().Installed {
//	    prov.Install(ctx)
//	}
//
// On Windows the installer runs via msiexec in quiet mode; on macOS the
// downloaded disk image is mounted, the application bundle is copied to
// /Applications with administrator privileges, and the image is always
// detached afterward.
//
// # Events
//
// Long-running operations report progress through an events.Bus, a bounded
// FIFO channel suitable for driving a UI from a background worker. Delivery
// is best-effort: publishing to a full or closed bus is a no-op.
package rabpdf
