// Command compositor renders one timeline document to an MP4 file.
// Grounded on original_source/cpp/Main.cpp's process contract: read a
// JSON document (stdin, or a debug file via -input), build the
// renderer graph, play it end to end, and report success or failure as
// a single JSON line — {"result":"ok"} to stdout with exit 0, or
// {"error":"..."} to stderr with exit 1.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/cunzhuang123/compositor/engine"
	"github.com/cunzhuang123/compositor/engine/loader"
	"github.com/cunzhuang123/compositor/engine/renderer/pipeline"
	"github.com/cunzhuang123/compositor/engine/timeline"
)

func main() {
	input := flag.String("input", "", "path to a track document (defaults to stdin)")
	fallbackAdapter := flag.Bool("fallback-adapter", false, "force wgpu's software fallback adapter")
	flag.Parse()

	if err := run(*input, *fallbackAdapter); err != nil {
		emitError(err)
		os.Exit(1)
	}
	emitResult()
}

func run(inputPath string, fallbackAdapter bool) error {
	doc, err := readDocument(inputPath)
	if err != nil {
		return err
	}

	device, err := pipeline.NewWGPUDevice(wgpu.CreateInstance(nil), fallbackAdapter)
	if err != nil {
		return fmt.Errorf("create device: %w", err)
	}

	e := engine.NewEngine(device, newFileSourceFactory(), unconfiguredEncoderFactory{})
	if err := e.UpdateTracks(doc); err != nil {
		return fmt.Errorf("update tracks: %w", err)
	}
	return e.Play()
}

// readDocument mirrors Main.cpp's two input paths: a debug file (there,
// gated on IsDebuggerPresent and a fixed test/track.json path; here, an
// explicit -input flag) and stdin otherwise.
func readDocument(inputPath string) (*timeline.Document, error) {
	if inputPath != "" {
		return loader.ReadDocumentFile(inputPath)
	}
	return loader.ReadDocument(os.Stdin)
}

func emitResult() {
	json.NewEncoder(os.Stdout).Encode(map[string]string{"result": "ok"})
}

func emitError(err error) {
	json.NewEncoder(os.Stderr).Encode(map[string]string{"error": err.Error()})
}
