// Command chaptest generates chapters for a transcript file without a server.
//
// Usage:
//
//	chaptest [-rules file.yaml] [-json] <transcript.json|transcript.srt>
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/chaptermatic/chaptermatic-server/internal/chapters"
	"github.com/chaptermatic/chaptermatic-server/internal/config"
	"github.com/chaptermatic/chaptermatic-server/internal/transcript"
)

type jsonOutput struct {
	Chapters []chapters.Chapter      `json:"chapters"`
	Analysis chapters.AnalysisResult `json:"analysis"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("chaptest", flag.ContinueOnError)
	fs.SetOutput(stderr)
	rulesFile := fs.String("rules", "", "YAML file with segmentation rules")
	asJSON := fs.Bool("json", false, "Print chapters and analysis as JSON")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: chaptest [-rules file.yaml] [-json] <transcript>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	var rules chapters.Rules
	if *rulesFile != "" {
		loaded, err := config.LoadRules(*rulesFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		rules = loaded
	}

	entries, err := transcript.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	result := chapters.NewSegmenter(rules).Generate(entries)
	if len(result) == 0 {
		fmt.Fprintln(stderr, "Error: no chapters could be generated from the transcript")
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(jsonOutput{Chapters: result, Analysis: chapters.AnalyzeChapters(result)}); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Fprintln(stdout, chapters.FormatDescription(result))
	return 0
}
