package curator

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// Code blocks become fenced blocks carrying their language tag.
	Convert(html string) (string, error)
}
