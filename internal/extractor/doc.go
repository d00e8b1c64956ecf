// Package extractor builds the metadata Document for a single file.
//
// Extraction runs in stages, each timed:
//
//	base      size and change/modification/access times
//	mdls      platform metadata index
//	xattr     extended attribute dump
//	video     container/stream probe (video/* only)
//	image     inspection text plus header dimensions (image/* only)
//	audio     embedded tags (audio/* only)
//	checksum  BLAKE2b-256 of the content (when enabled)
//
// Hidden files and files without a known content type are skipped. A probe
// that fails leaves its field empty or omitted; the Document is still
// produced. A file is only reported as failed when its content cannot be
// read during the checksum stage or a stage panics.
package extractor
