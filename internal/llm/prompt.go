package llm

import (
	"strings"

	"github.com/joseph-ayodele/pa-autofill/internal/schema"
)

// NotFoundSentinel is the value the model reports for fields absent from the
// document. Fields carrying it are omitted from the result.
const NotFoundSentinel = "NOT_FOUND"

// maxContextChars is the point past which document text is no longer sent
// whole; longer documents go through chunked retrieval (see buildContext) and
// writeBounded keeps a hard cap on the assembled context.
const maxContextChars = 24000

// SystemPrompt is the provider-independent system message.
const SystemPrompt = "You are a medical document extraction assistant. " +
	"Extract information accurately from referral package documents and return only valid JSON."

// BuildExtractionPrompt composes the user message embedding the field
// vocabulary and the document text (or an image note for vision calls).
func BuildExtractionPrompt(docText string, tmpl schema.Template, imagesAttached bool) string {
	var b strings.Builder

	b.WriteString("Your task is to extract specific information from a medical referral package document.\n\n")

	if imagesAttached {
		b.WriteString("DOCUMENT CONTENT: provided as the attached page images.\n")
		if t := strings.TrimSpace(docText); t != "" {
			b.WriteString("Partial text extracted from the document:\n")
			writeBounded(&b, buildContext(t, tmpl))
			b.WriteString("\n")
		}
	} else {
		b.WriteString("DOCUMENT CONTENT:\n")
		writeBounded(&b, buildContext(docText, tmpl))
		b.WriteString("\n")
	}

	b.WriteString("\nFIELDS TO EXTRACT (schema ")
	b.WriteString(schema.Version)
	b.WriteString("):\n")
	for _, f := range tmpl.Fields {
		b.WriteString("- ")
		b.WriteString(f.Name)
		if f.Description != "" {
			b.WriteString(": ")
			b.WriteString(f.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString(`
INSTRUCTIONS:
1. Carefully analyze the document content.
2. Extract values for each field listed above.
3. If a field's value is not found in the document, use the value "` + NotFoundSentinel + `".
4. If you are uncertain about a value, report a low confidence.
5. Be precise - only extract information that is explicitly stated. Never fabricate values.

RESPONSE FORMAT:
Return a JSON object of this exact shape:
{
  "extracted_fields": [
    {
      "name": "field_name",
      "value": "extracted value or ` + NotFoundSentinel + `",
      "confidence": 0.0,
      "source_text": "the exact text this was extracted from (if applicable)",
      "page": 1
    }
  ]
}

Return ONLY the JSON object, no additional text.`)

	return b.String()
}

func writeBounded(b *strings.Builder, text string) {
	if len(text) > maxContextChars {
		b.WriteString(truncateRunes(text, maxContextChars))
		b.WriteString("\n...(truncated)")
		return
	}
	b.WriteString(text)
}
