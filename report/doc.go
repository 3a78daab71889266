// Package report builds a palette report from a clustering result and
// stores it through a blobstore.
//
// The object name selects both the codec and the compression:
//
//	palette.json       go-json
//	palette.yaml.zst   yaml, zstd compressed
//	palette.json.lz4   go-json, lz4 compressed
package report
