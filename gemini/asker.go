// Package gemini implements docbase.Asker using Google Gemini with a
// structured JSON response contract.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/owalsh/docbase"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure Asker implements docbase.Asker at compile time.
var _ docbase.Asker = (*Asker)(nil)

// Asker answers questions from ranked source chunks using Gemini. Its
// output is untrusted until validated with docbase.ValidateAnswer.
type Asker struct {
	client *genai.Client
	model  string
}

// NewAsker creates a new Asker. An empty model selects DefaultModel.
func NewAsker(client *genai.Client, model string) *Asker {
	if model == "" {
		model = DefaultModel
	}
	return &Asker{client: client, model: model}
}

// Ask answers a question using the supplied source chunks.
func (a *Asker) Ask(ctx context.Context, question string, sources []docbase.Chunk) (*docbase.Answer, error) {
	if question == "" {
		return nil, docbase.Errorf(docbase.EINVALID, "question required")
	}
	if len(sources) == 0 {
		return nil, docbase.Errorf(docbase.ENOTFOUND, "no source chunks supplied")
	}

	prompt := BuildUserPrompt(sources, question)

	result, err := a.client.Models.GenerateContent(ctx, a.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, docbase.Errorf(docbase.EINTERNAL, "gemini returned nil result")
	}

	return ParseAnswer(result.Text())
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls. The
// response schema pins the structured answer contract.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.4)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a helpful assistant answering questions about documentation. " +
					"Answer based only on the numbered sources provided. " +
					"Set mode to \"grounded\" when the answer is supported by the sources and cite them " +
					"by their exact title and section; otherwise set mode to \"advisory\" and cite nothing. " +
					"Keep each citation quote under 160 characters.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   answerSchema(),
	}
}

// answerSchema describes the JSON shape expected back from the model.
func answerSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"mode": {
				Type: genai.TypeString,
				Enum: []string{docbase.ModeGrounded, docbase.ModeAdvisory},
			},
			"answer": {Type: genai.TypeString},
			"followUpQuestions": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"citations": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":       {Type: genai.TypeString},
						"section":     {Type: genai.TypeString},
						"sourceIndex": {Type: genai.TypeInteger},
						"quote":       {Type: genai.TypeString},
					},
					Required: []string{"title", "section"},
				},
			},
		},
		Required: []string{"mode", "answer"},
	}
}

// BuildUserPrompt builds the user prompt containing the numbered sources
// and the question.
func BuildUserPrompt(sources []docbase.Chunk, question string) string {
	var sb strings.Builder
	sb.WriteString("<sources>\n")
	for i, src := range sources {
		title := src.Title
		if title == "" {
			title = src.URL
		}
		sb.WriteString("<source>\n")
		fmt.Fprintf(&sb, "<index>%d</index>\n", i+1)
		fmt.Fprintf(&sb, "<title>%s</title>\n", title)
		fmt.Fprintf(&sb, "<section>%s</section>\n", src.Section)
		fmt.Fprintf(&sb, "<url>%s</url>\n", src.URL)
		fmt.Fprintf(&sb, "<content>%s</content>\n", src.Text)
		sb.WriteString("</source>\n")
	}
	sb.WriteString("</sources>\n\n")
	fmt.Fprintf(&sb, "Question: %s", question)
	return sb.String()
}

// answerPayload mirrors the response schema.
type answerPayload struct {
	Mode              string   `json:"mode"`
	Answer            string   `json:"answer"`
	FollowUpQuestions []string `json:"followUpQuestions"`
	Citations         []struct {
		Title       string `json:"title"`
		Section     string `json:"section"`
		SourceIndex int    `json:"sourceIndex"`
		Quote       string `json:"quote"`
	} `json:"citations"`
}

// ParseAnswer decodes the model's JSON response into a docbase.Answer.
// Markdown code fences around the payload are tolerated. Unknown modes
// decode as advisory.
func ParseAnswer(raw string) (*docbase.Answer, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload answerPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, docbase.Errorf(docbase.EINTERNAL, "unparseable model response: %v", err)
	}

	mode := strings.ToLower(strings.TrimSpace(payload.Mode))
	if mode != docbase.ModeGrounded {
		mode = docbase.ModeAdvisory
	}

	ans := &docbase.Answer{
		Mode:      mode,
		Text:      payload.Answer,
		FollowUps: payload.FollowUpQuestions,
	}
	for _, cit := range payload.Citations {
		ans.Citations = append(ans.Citations, docbase.Citation{
			Title:       cit.Title,
			Section:     cit.Section,
			SourceIndex: cit.SourceIndex,
			Quote:       cit.Quote,
		})
	}
	return ans, nil
}
