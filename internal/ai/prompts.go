package ai

import (
	"fmt"
	"strings"
)

const transcriptPrompt = `Analyze this audio file representing the soundtrack of a video.

Task:
1. Transcribe the spoken content word-for-word.
2. Identify distinct segments including SILENCE, MUSIC, NOISE, or SPEECH.
3. For silence longer than 0.5 seconds, create a separate segment categorized as 'silence'.
4. Return a JSON array of {id, start, end, text, category}.`

const voicePrompt = `Transcribe this audio request exactly as spoken. Return only the text.`

const visualPrompt = `Analyze these keyframes from a video.
Describe the visual content, setting, colors, objects, and action.
Be concise but descriptive.
This description will be used to help edit the video based on visual cues.`

const editSystemPrompt = `You are ChatCut AI, an expert video editor.

Transform the video timeline based on the user's request, the audio transcript,
and the visual context.

Instructions:
- Return a JSON object containing a friendly 'reply' to the user and the 'editedSegments'.
- 'editedSegments' MUST cover the entire duration. Set 'active': false to cut.
- If the user asks to remove silence, use the transcript categories.
- If the user refers to visual elements, correlate the visual context with the transcript timing.
- Precision is key.`

func editPrompt(req ProposalRequest) string {
	var b strings.Builder

	b.WriteString("VISUAL CONTEXT (What happens in the video):\n")
	if req.VisualContext != "" {
		b.WriteString(req.VisualContext)
	} else {
		b.WriteString("No visual analysis available.")
	}

	b.WriteString("\n\nTRANSCRIPT DATA:\n")
	for _, item := range req.Transcript {
		fmt.Fprintf(&b, "{%.2f-%.2f} [%s]: %s\n", item.Start, item.End, item.Category, item.Text)
	}

	b.WriteString("\nCURRENT SEGMENTS:\n")
	for _, seg := range req.Segments {
		fmt.Fprintf(&b, "{%.2f-%.2f} active=%t: %s\n", seg.Start, seg.End, seg.Active, seg.Description)
	}

	fmt.Fprintf(&b, "\nTOTAL DURATION: %.2f\n\nUSER REQUEST:\n%q\n\nProduce the JSON response.", req.Duration, req.Instruction)
	return b.String()
}
