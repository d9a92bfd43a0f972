package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxPromptLength bounds the text a user may submit for generation.
// Long prompts cost tokens and rarely add signal past this size.
const MaxPromptLength = 4000

// ValidatePrompt validates a natural-language prompt before it is sent to
// a model. It rejects empty and oversized input as well as text carrying
// control characters that would corrupt logs or API payloads.
func ValidatePrompt(prompt string) error {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return New(ErrCodeInvalidPrompt, "prompt cannot be empty")
	}

	if len(prompt) > MaxPromptLength {
		return New(ErrCodeInvalidPrompt, "prompt too long (max %d characters)", MaxPromptLength)
	}

	for _, r := range prompt {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return New(ErrCodeInvalidPrompt, "prompt contains invalid control characters")
		}
	}

	return nil
}

// diagramIDRegex matches the ids the store issues: UUID v4 strings.
var diagramIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateDiagramID validates a stored diagram identifier.
func ValidateDiagramID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidDiagram, "diagram id cannot be empty")
	}

	if !diagramIDRegex.MatchString(id) {
		return New(ErrCodeInvalidDiagram, "invalid diagram id: %q", id)
	}

	return nil
}

// nodeIDRegex matches safe node identifiers for export targets that embed
// ids in structured text (DOT, Mermaid, XML attributes).
var nodeIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateNodeID validates a graph node identifier.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidGraph, "node id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidGraph, "node id too long (max 256 characters)")
	}

	if !nodeIDRegex.MatchString(id) {
		return New(ErrCodeInvalidGraph, "invalid node id: %q", id)
	}

	return nil
}

// ValidatePath validates a file path for output writing.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
