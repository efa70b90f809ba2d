// Package assets embeds the default portfolio manifest and any bundled
// images. Files under static/ on disk override the embedded copies.
package assets

import "embed"

// Files holds the manifest and the bundled images.
//
//go:embed manifest.json
var Files embed.FS

// ManifestPath is the manifest's name inside Files.
const ManifestPath = "manifest.json"
