package transcript

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/chaptermatic/chaptermatic-server/internal/chapters"
	domainerrors "github.com/chaptermatic/chaptermatic-server/internal/errors"
)

var timeRegex = regexp.MustCompile(`(\d{1,2}):(\d{2}):(\d{2})[,\.](\d{3})\s*-->\s*(\d{1,2}):(\d{2}):(\d{2})[,\.](\d{3})`)

// ParseSRT parses SubRip cues. Each cue becomes one entry whose duration
// spans the cue, with its text lines joined by a space.
//
// SRT format:
//
//	1
//	00:00:00,000 --> 00:00:02,500
//	Text here
//
//	2
//	...
func ParseSRT(r io.Reader) ([]chapters.Entry, error) {
	var (
		entries []chapters.Entry
		cue     *srtCue
		lineNum int
		cueNum  int
	)

	flush := func() error {
		if cue == nil {
			return nil
		}
		if !cue.timed {
			return domainerrors.Validationf("invalid srt cue %d: missing timing line", cueNum)
		}
		if len(cue.lines) > 0 {
			entries = append(entries, cue.entry())
		}
		cue = nil
		return nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))

		if line == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			lineNum = 0
			continue
		}

		lineNum++

		switch {
		case lineNum == 1:
			// Index line
			if _, err := strconv.Atoi(line); err != nil {
				return nil, domainerrors.Validationf("invalid srt cue %d: expected index, got %q", cueNum+1, line)
			}
			cueNum++
			cue = &srtCue{}
		case lineNum == 2:
			// Timestamp line
			m := timeRegex.FindStringSubmatch(line)
			if m == nil {
				return nil, domainerrors.Validationf("invalid srt cue %d: bad timing line %q", cueNum, line)
			}
			cue.start = parseTimestamp(m[1:5])
			cue.end = parseTimestamp(m[5:9])
			cue.timed = true
		default:
			cue.lines = append(cue.lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return entries, nil
}

type srtCue struct {
	start, end float64
	timed      bool
	lines      []string
}

func (c *srtCue) entry() chapters.Entry {
	duration := c.end - c.start
	if duration < 0 {
		duration = 0
	}
	return chapters.Entry{
		Start:    c.start,
		Duration: duration,
		Text:     strings.Join(c.lines, " "),
	}
}

// parseTimestamp converts [hh, mm, ss, mmm] into seconds.
func parseTimestamp(parts []string) float64 {
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	s, _ := strconv.Atoi(parts[2])
	ms, _ := strconv.Atoi(parts[3])
	return float64(h*3600+m*60+s) + float64(ms)/1000
}
