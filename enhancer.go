package curator

import "context"

// EnhanceInstruction is the fixed improvement instruction sent with every
// example.
const EnhanceInstruction = `Improve this scientific Python code example for a documentation gallery.
Fix obvious errors, add brief explanatory comments, keep the original intent and APIs,
and write a clear title and a one-paragraph description.
Rate your confidence from 0.0 to 1.0 that the improved code is correct and runnable.
List any concerns as warnings.`

// EnhanceRequest is sent to the language model for one example.
type EnhanceRequest struct {
	Package     string
	Title       string
	Description string
	Code        string
	SourceURL   string
	Instruction string
}

// EnhanceResponse is the language model's improved example.
type EnhanceResponse struct {
	Title       string   `json:"improved_title"`
	Description string   `json:"improved_description"`
	Code        string   `json:"improved_code"`
	Category    string   `json:"category"`
	Confidence  float64  `json:"confidence_score"`
	Warnings    []string `json:"warnings"`
}

// Validate returns an error if the response cannot be trusted.
func (r *EnhanceResponse) Validate() error {
	if r.Confidence < 0 || r.Confidence > 1 || r.Confidence != r.Confidence {
		return Errorf(EINVALID, "confidence %v outside [0, 1]", r.Confidence)
	}
	return nil
}

// Enhancer is the external language model collaborator.
type Enhancer interface {
	// Enhance returns a cleaned version of the example with a confidence
	// score. Malformed model output is reported as an error.
	Enhance(ctx context.Context, req *EnhanceRequest) (*EnhanceResponse, error)
}
