// Package gemini implements the language model collaborators on Google
// Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/curator"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure Enhancer implements curator.Enhancer at compile time.
var _ curator.Enhancer = (*Enhancer)(nil)

// Enhancer implements curator.Enhancer using Gemini structured output.
type Enhancer struct {
	client *genai.Client
	model  string
}

// NewEnhancer creates a new Enhancer. An empty model selects DefaultModel.
func NewEnhancer(client *genai.Client, model string) *Enhancer {
	if model == "" {
		model = DefaultModel
	}
	return &Enhancer{client: client, model: model}
}

// Enhance asks the model for an improved version of one example.
func (e *Enhancer) Enhance(ctx context.Context, req *curator.EnhanceRequest) (*curator.EnhanceResponse, error) {
	if req == nil || strings.TrimSpace(req.Code) == "" {
		return nil, curator.Errorf(curator.EINVALID, "code required")
	}
	if e.client == nil {
		return nil, curator.Errorf(curator.EUNAVAILABLE, "gemini client not configured")
	}

	result, err := e.client.Models.GenerateContent(ctx, e.model,
		[]*genai.Content{{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: BuildUserPrompt(req)}},
		}},
		BuildConfig(req.Instruction),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, curator.Errorf(curator.EINTERNAL, "gemini returned nil result")
	}

	return ParseResponse(result.Text())
}

// BuildConfig returns the GenerateContentConfig for enhancement calls. An
// empty instruction selects curator.EnhanceInstruction.
func BuildConfig(instruction string) *genai.GenerateContentConfig {
	if instruction == "" {
		instruction = curator.EnhanceInstruction
	}
	temp := float32(0.1)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: instruction}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(),
	}
}

// ResponseSchema describes curator.EnhanceResponse to the model.
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"improved_title":       {Type: genai.TypeString},
			"improved_description": {Type: genai.TypeString},
			"improved_code":        {Type: genai.TypeString},
			"category":             {Type: genai.TypeString},
			"confidence_score":     {Type: genai.TypeNumber},
			"warnings": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"improved_title", "improved_description", "improved_code", "confidence_score"},
	}
}

// BuildUserPrompt renders one example for the model.
func BuildUserPrompt(req *curator.EnhanceRequest) string {
	var sb strings.Builder
	sb.WriteString("<example>\n")
	fmt.Fprintf(&sb, "<package>%s</package>\n", req.Package)
	fmt.Fprintf(&sb, "<title>%s</title>\n", req.Title)
	fmt.Fprintf(&sb, "<source>%s</source>\n", req.SourceURL)
	fmt.Fprintf(&sb, "<description>%s</description>\n", req.Description)
	fmt.Fprintf(&sb, "<code>\n%s\n</code>\n", req.Code)
	sb.WriteString("</example>")
	return sb.String()
}

// ParseResponse decodes and validates the model's JSON output. Models
// sometimes wrap JSON in a markdown fence despite the MIME type, so a
// surrounding fence is tolerated.
func ParseResponse(text string) (*curator.EnhanceResponse, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	var resp curator.EnhanceResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, curator.Errorf(curator.EINVALID, "malformed model response: %v", err)
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return &resp, nil
}
