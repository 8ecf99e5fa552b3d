// Package export renders the active timeline to a new video file and
// generates CMX3600 EDLs for handoff to desktop NLEs.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/chatcut/chatcut-agent/internal/timeline"
)

// GenerateEDL writes one event per active segment, in timeline order, with
// record times packed back-to-back.
func GenerateEDL(segments []timeline.Segment, title string, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	recordOffset := 0.0
	event := 0
	for _, seg := range segments {
		if !seg.Active {
			continue
		}
		event++
		srcIn := secondsToTimecode(seg.Start, fps)
		srcOut := secondsToTimecode(seg.End, fps)
		recIn := secondsToTimecode(recordOffset, fps)
		duration := seg.End - seg.Start
		recOut := secondsToTimecode(recordOffset+duration, fps)

		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", event, "AX", "V", srcIn, srcOut, recIn, recOut),
			fmt.Sprintf("* FROM CLIP NAME:  %s", title),
		)
		if seg.Description != "" {
			lines = append(lines, fmt.Sprintf("* COMMENT:  %s", seg.Description))
		}

		recordOffset += duration
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func secondsToTimecode(seconds float64, fps int) string {
	totalFrames := int(math.Round(seconds * float64(fps)))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	secs := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, secs, frames)
}
