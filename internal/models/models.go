package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for story timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// StoryType tags a story record. Only the constants below are valid.
type StoryType string

const (
	StoryTypeClassic        StoryType = "classic"
	StoryTypeGenerated      StoryType = "generated"
	StoryTypeAdultGenerated StoryType = "adult_generated"
)

// ParseStoryType validates s against the known story types.
func ParseStoryType(s string) (StoryType, error) {
	switch t := StoryType(s); t {
	case StoryTypeClassic, StoryTypeGenerated, StoryTypeAdultGenerated:
		return t, nil
	default:
		return "", fmt.Errorf("unknown story type %q", s)
	}
}

// IsGenerated reports whether records of this type come from the generation service.
func (t StoryType) IsGenerated() bool {
	return t == StoryTypeGenerated || t == StoryTypeAdultGenerated
}

// UnmarshalJSON rejects unknown story types.
func (t *StoryType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseStoryType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Story is a story record. ID is empty for transient (generated) records.
type Story struct {
	ID                string    `json:"id,omitempty" firestore:"-"`
	Title             string    `json:"title" firestore:"title"`
	Content           string    `json:"content" firestore:"content"`
	Keywords          []string  `json:"keywords,omitempty" firestore:"keywords,omitempty"`
	Timestamp         string    `json:"timestamp" firestore:"timestamp"`
	Type              StoryType `json:"type" firestore:"type"`
	ChildName         string    `json:"child_name,omitempty" firestore:"child_name,omitempty"`
	AdultName         string    `json:"adult_name,omitempty" firestore:"adult_name,omitempty"`
	SleepIssue        string    `json:"sleep_issue,omitempty" firestore:"sleep_issue,omitempty"`
	CustomSleepReason string    `json:"custom_sleep_reason,omitempty" firestore:"custom_sleep_reason,omitempty"`
	SleepIssueDisplay string    `json:"sleep_issue_display,omitempty" firestore:"sleep_issue_display,omitempty"`
	Memories          []string  `json:"memories,omitempty" firestore:"memories,omitempty"`
	CustomMemory      string    `json:"custom_memory,omitempty" firestore:"custom_memory,omitempty"`
	Temporary         bool      `json:"temporary,omitempty" firestore:"-"`
}

// MarshalJSON always emits the request echo fields of an adult_generated
// record, with memories as [] when there are none.
func (s Story) MarshalJSON() ([]byte, error) {
	type story Story
	if s.Type != StoryTypeAdultGenerated {
		return json.Marshal(story(s))
	}

	memories := s.Memories
	if memories == nil {
		memories = []string{}
	}
	return json.Marshal(struct {
		story
		AdultName         string   `json:"adult_name"`
		SleepIssue        string   `json:"sleep_issue"`
		CustomSleepReason string   `json:"custom_sleep_reason"`
		SleepIssueDisplay string   `json:"sleep_issue_display"`
		Memories          []string `json:"memories"`
		CustomMemory      string   `json:"custom_memory"`
	}{
		story:             story(s),
		AdultName:         s.AdultName,
		SleepIssue:        s.SleepIssue,
		CustomSleepReason: s.CustomSleepReason,
		SleepIssueDisplay: s.SleepIssueDisplay,
		Memories:          memories,
		CustomMemory:      s.CustomMemory,
	})
}

// Timestamp formats t the way story records store it.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// GenerateStoryRequest is the body of POST /api/generate-story
type GenerateStoryRequest struct {
	Keywords  []string `json:"keywords"`
	ChildName string   `json:"childName"`
}

// GenerateAdultStoryRequest is the body of POST /api/generate-adult-story
type GenerateAdultStoryRequest struct {
	SleepIssue        string   `json:"sleepIssue"`
	CustomSleepReason string   `json:"customSleepReason"`
	Memories          []string `json:"memories"`
	CustomMemory      string   `json:"customMemory"`
	AdultName         string   `json:"adultName"`
}

// TTSRequest is the body of POST /api/tts
type TTSRequest struct {
	Text string `json:"text"`
}

// TTSResponse is returned by POST /api/tts
type TTSResponse struct {
	AudioURL string `json:"audio_url"`
}

// TestGeminiResponse is returned by GET /api/test-gemini
type TestGeminiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SetupClassicsResponse is returned by POST /api/setup-classic-stories
type SetupClassicsResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	TotalStories int    `json:"total_stories"`
}
