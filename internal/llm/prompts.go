package llm

import (
	"fmt"
	"strings"
)

// PingPrompt is sent by the connectivity check.
const PingPrompt = "Say 'Hello, Gemini is working!'"

// BuildChildPrompt returns the instruction for a children's bedtime story starring childName.
func BuildChildPrompt(childName string, keywords []string) string {
	return fmt.Sprintf(`Write a gentle, soothing bedtime story for children aged 3-8 years old.
The main character should be a child named %[1]s.
The story should include these keywords: %[2]s.

Requirements:
- Keep it under 500 words
- Use simple, comforting language
- Include a positive message or lesson
- Make it suitable for bedtime reading
- Avoid scary or violent content
- Make %[1]s the hero of the story
- Use %[1]s's name naturally throughout the story

Please write the story in a warm, narrative style.`, childName, strings.Join(keywords, ", "))
}

// AdultPrompt holds the inputs of a therapeutic adult bedtime story.
type AdultPrompt struct {
	AdultName    string
	SleepIssue   string // the reason the story addresses
	Memories     []string
	CustomMemory string
}

// BuildAdultPrompt returns the instruction for a therapeutic bedtime story for an adult.
func BuildAdultPrompt(p AdultPrompt) string {
	var memoryText string
	if len(p.Memories) > 0 {
		memoryText += " including these nostalgic elements: " + strings.Join(p.Memories, ", ")
	}
	if p.CustomMemory != "" {
		memoryText += fmt.Sprintf(" and incorporate this personal memory: '%s'", p.CustomMemory)
	}

	return fmt.Sprintf(`Write a gentle, therapeutic bedtime story for an adult named %[1]s who is struggling with: %[2]s.

Requirements:
- Keep it under 600 words
- Use soothing, calming language
- Include therapeutic elements that specifically address: %[2]s
- Incorporate childhood nostalgia and comfort%[3]s
- Make %[1]s the central character
- Include gentle breathing or relaxation cues
- End with a sense of peace and safety
- Use warm, comforting imagery
- Avoid triggering content
- Make it suitable for falling asleep to
- Address the specific concerns mentioned in the sleep issue

The story should feel like a loving parent reading to their child, but adapted for an adult's emotional needs.
Include elements that help the reader feel safe, loved, and ready for sleep.`, p.AdultName, p.SleepIssue, memoryText)
}
