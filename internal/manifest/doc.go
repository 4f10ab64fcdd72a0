// Package manifest builds the validated selection of a backup run.
//
// A build runs in three strictly ordered stages:
//
//  1. files: every regular file under the asset root whose name matches one
//     of the extension patterns, in pattern order then walk order
//  2. directories: every ancestor directory of a selected file, relative to
//     the asset root and excluding the root itself
//  3. metadata: the sidecar (path + ".meta") of every file and directory
//
// # Usage
//
//	b := manifest.NewBuilder(manifest.Options{Workers: 8})
//	m, err := b.Build(ctx, []string{"*.png", "*.fbx"}, "Assets")
//	if errors.Is(err, domain.ErrNoPatternsConfigured) {
//	    // nothing to do
//	}
//
// # Error Handling
//
// Build never returns a partial manifest:
//   - domain.ErrNoPatternsConfigured: no patterns, empty manifest returned
//   - domain.ErrNoFilesFound: patterns matched nothing
//   - *domain.MissingMetadataError: lists every path without a sidecar
//   - domain.ErrOutsideAssetRoot: a file does not live under the asset root
package manifest
