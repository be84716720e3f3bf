// Package naming picks destination paths for converted files.
//
// A destination sits next to its source: the source extension is dropped
// and "_converted.<format>" appended. If that name is taken, "_1", "_2", ...
// are inserted before the extension until a free name is found. Existing
// files are never overwritten.
//
// [ChooseDestination] only checks the filesystem. [ReserveDestination]
// atomically creates an empty placeholder so concurrent jobs cannot pick the
// same name; the transcoder then overwrites its own placeholder.
// [Claims] tracks names handed out within one run without touching disk,
// for dry-run previews.
package naming
