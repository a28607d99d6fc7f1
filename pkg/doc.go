// Package pkg provides the core libraries for PanelForge storyboard packaging.
//
// # Overview
//
// PanelForge bundles storyboard artwork and script text into portable
// .pfp containers and renders them as paginated PDF documents. The pkg
// directory is organized into four main areas:
//
//  1. [project] + [assetstore] - The data model (snapshots, asset refs, byte store)
//  2. [archive] + [builtin] - Persistence (zip container, bundled default artwork)
//  3. [layout] + [fonts] + [pdf] + [render] - Rendering (text layout, font
//     embedding, PDF writing, page composition)
//  4. [engine] - The session boundary library callers use
//
// # Architecture
//
// The typical data flow through PanelForge:
//
//	.pfp container (zip)
//	         ↓
//	    [archive] package (manifest decode + asset hydration)
//	         ↓
//	    [project] package (snapshot + asset references)
//	         ↓
//	    [render] package (materialize → paginate → draw)
//	         ↓
//	    [pdf] package (objects, fonts, images, xref)
//	         ↓
//	    PDF output
//
// # Quick Start
//
// Load a package and export it:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/panelforge/panelforge/pkg/engine"
//	)
//
//	func export(path string) error {
//	    s := engine.NewSession(nil)
//	    p, err := s.LoadFile(path)
//	    if err != nil {
//	        return err
//	    }
//	    pdf, err := s.ExportDocument(context.Background(), p)
//	    if err != nil {
//	        return err
//	    }
//	    return os.WriteFile("board.pdf", pdf, 0o644)
//	}
//
// Sessions hold the asset store that archives hydrate into; see the
// engine package for the full API.
package pkg
