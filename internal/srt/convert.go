// Package srt rewrites subtitle cue timings into whole seconds for the planner.
package srt

import (
	"bufio"
	"bytes"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrNoCues = errors.New("subtitle has no timestamp lines")

	cueLine   = regexp.MustCompile(`^\s*(\d+):(\d{1,2}):(\d{1,2})[,.](\d+)\s*-->\s*(\d+):(\d{1,2}):(\d{1,2})[,.](\d+)`)
	italicTag = strings.NewReplacer("<i>", "", "</i>", "", "<I>", "", "</I>", "")
)

// ConvertTimestamps rewrites every "HH:MM:SS,mmm --> HH:MM:SS,mmm" line as
// "S --> E" in whole seconds (milliseconds are dropped) and strips italic
// markup. Other lines are copied unchanged. Line endings are normalized to \n.
func ConvertTimestamps(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	var out bytes.Buffer
	cues := 0
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := italicTag.Replace(strings.TrimRight(sc.Text(), "\r"))
		if m := cueLine.FindStringSubmatch(line); m != nil {
			out.WriteString(strconv.Itoa(seconds(m[1], m[2], m[3])))
			out.WriteString(" --> ")
			out.WriteString(strconv.Itoa(seconds(m[5], m[6], m[7])))
			out.WriteByte('\n')
			cues++
			continue
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if cues == 0 {
		return nil, ErrNoCues
	}
	return out.Bytes(), nil
}

func seconds(h, m, s string) int {
	hh, _ := strconv.Atoi(h)
	mm, _ := strconv.Atoi(m)
	ss, _ := strconv.Atoi(s)
	return hh*3600 + mm*60 + ss
}
