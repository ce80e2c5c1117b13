// Package loader reads the top-level input document and defines the
// external collaborators (video/image decode, glyph rasterisation,
// encoder ingestion) the render-graph core depends on only by contract
// (spec §1 "Out of scope"; §6 External Interfaces).
package loader

import (
	"bufio"
	"io"
	"os"

	"github.com/cunzhuang123/compositor/engine/timeline"
)

// ReadDocument reads one JSON input document from r in full and decodes
// it via timeline.ParseDocument. Grounded on the stdin-read path in
// `original_source/cpp/Main.cpp` (`std::getline(std::cin, jsonString)`
// then `json::parse`) — a blank read is treated the same as malformed
// JSON, both surfacing as an InputParseError.
func ReadDocument(r io.Reader) (*timeline.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &timeline.InputParseError{Reason: err.Error()}
	}
	if len(data) == 0 {
		return nil, &timeline.InputParseError{Reason: "empty input"}
	}
	return timeline.ParseDocument(data)
}

// ReadDocumentFile opens path and decodes its contents the same way as
// ReadDocument. Used for the debug-file input path (isDebug's local
// `track.json` in the original, the `-input` flag here).
func ReadDocumentFile(path string) (*timeline.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &timeline.InputParseError{Reason: err.Error()}
	}
	defer f.Close()
	return ReadDocument(bufio.NewReader(f))
}
