// Package mediatypes maps file names to content types and media classes.
//
// It imports nothing from the rest of the module so that every other package
// can depend on it without creating import cycles.
//
// # Content Types
//
// A Table is built once per extraction worker:
//
//	table, err := mediatypes.NewTable(os.Getenv("MIME_TYPES_FILE"))
//	if err != nil {
//	    // the worker cannot serve items
//	}
//	ct, ok := table.ContentType("holiday.MP4") // "video/mp4", true
//	_, ok = table.ContentType("notes.txt")     // "", false
//
// The optional file uses the mime.types format and adds to (or overrides) the
// built-in MimeTypes map:
//
//	# type            extensions
//	video/mp2t        m2ts mts
//	image/x-canon-cr2 cr2
//
// # Media Classes
//
// FileTypeOf decides which media probe applies to a content type:
//
//	mediatypes.FileTypeOf("video/mp4")       // FileTypeVideo
//	mediatypes.FileTypeOf("image/jpeg")      // FileTypeImage
//	mediatypes.FileTypeOf("application/zip") // FileTypeArchive
package mediatypes
