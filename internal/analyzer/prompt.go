package analyzer

// ImagePrompt asks a vision model for a description of an uploaded image.
const ImagePrompt = "Analyze this image and provide a detailed description of its contents."

// DefaultMaxTextChars caps document text sent to a text model.
const DefaultMaxTextChars = 4000

// BuildTextPrompt returns the summary prompt for document text, keeping at
// most maxChars characters of it. A non-positive maxChars uses the default.
func BuildTextPrompt(text string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxTextChars
	}
	return "Analyze and summarize this document content:\n\n" + truncateRunes(text, maxChars)
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
