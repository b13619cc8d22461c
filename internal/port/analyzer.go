package port

import (
	"context"

	"billaudit/internal/domain"
)

// AnalyzeInput carries the document handed to the text/vision model.
type AnalyzeInput struct {
	FileBytes   []byte
	FileName    string
	ContentType string
	FileType    domain.FileType
	// ExtractedText holds text already pulled from a text-bearing document.
	ExtractedText string
}

// AnalyzeOutput is the model's free-form description of the document.
type AnalyzeOutput struct {
	Text      string
	ModelUsed string
}

// DocumentAnalyzer produces raw analysis text for a submitted document.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeOutput, error)
}
