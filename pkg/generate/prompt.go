package generate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	// MaxPromptHTML is the number of characters of markup sent to the model.
	MaxPromptHTML = 50000

	// MaxPreviewHTML is the number of characters of markup shown by the placeholder.
	MaxPreviewHTML = 500

	noInstructions = "None"
	fence          = "```"
)

const promptTemplate = `You are an expert Frontend Developer specialized in React and Tailwind CSS.
Your task is to convert the following raw HTML (scraped from a website) into a high-quality, production-ready React component.

**Instructions:**
1. **Framework:** Use React (functional component) + Tailwind CSS.
2. **Styling:** Use Tailwind utility classes accurately to replicate the look and feel. Make it responsive (mobile-first or desktop-first, just ensure it works).
3. **Icons:** If you see SVG icons or probable icon placeholders, use 'lucide-react' icons. Import them.
4. **Images:** If there are <img> tags, use valid placeholders (like https://placehold.co/600x400) if the original src is relative or broken, otherwise keep the original src. Ensure <img> has alt tags.
5. **Code Structure:**
   - Export default function Component().
   - Keep code clean and readable.
   - Use standard HTML tags (div, section, h1, p, button, etc.).
6. **Interactivity:** If there are obvious interactive elements (dropdowns, mobile menus), implement basic state using ` + "`useState`" + `.
7. **Refinement:** The user provided these specific instructions: "%s". Follow them strictly.

**Input HTML:**
` + fence + `html
%s
` + fence + `

**Output Format:**
Return ONLY the raw code for the component. Do not wrap in markdown code blocks like ` + fence + `tsx ... ` + fence + `. Just the code.
Start with imports.
`

// BuildPrompt renders the generation prompt. Instructions are embedded
// verbatim ("None" when empty) and markup beyond MaxPromptHTML characters is
// dropped.
func BuildPrompt(html, instructions string) string {
	if instructions == "" {
		instructions = noInstructions
	}
	return fmt.Sprintf(promptTemplate, instructions, truncate(html, MaxPromptHTML))
}

var leadingFence = regexp.MustCompile("(?i)^" + fence + "(tsx|jsx|javascript|typescript|react)?")

// Sanitize removes one markdown fence wrapping model output: an opening
// fence with an optional language tag and a closing fence.
func Sanitize(text string) string {
	text = strings.TrimSpace(text)
	text = leadingFence.ReplaceAllString(text, "")
	text = strings.TrimSuffix(text, fence)
	return strings.TrimSpace(text)
}

// RefineInstructions wraps a user's refinement request into generation
// instructions.
func RefineInstructions(user string) string {
	return fmt.Sprintf("Refine the component. %s. Preserve the general structure.", user)
}

const placeholderTemplate = `import React from 'react';
import { AlertCircle } from 'lucide-react';

export default function MockComponent() {
  return (
    <div className="p-8 bg-yellow-50 border border-yellow-200 rounded-xl flex flex-col items-center text-center">
      <AlertCircle className="w-12 h-12 text-yellow-500 mb-4" />
      <h2 className="text-xl font-bold text-yellow-800 mb-2">API Key Missing</h2>
      <p className="text-yellow-700 max-w-md">
        Please set GEMINI_API_KEY on the server to enable real AI generation.
      </p>
      <div className="mt-6 p-4 bg-white rounded shadow-sm text-left w-full max-w-lg overflow-hidden">
         <h3 className="font-bold text-gray-700 mb-2">Scraped HTML Preview:</h3>
         <pre className="text-xs text-gray-500 overflow-x-auto whitespace-pre-wrap">
           {%s}
         </pre>
      </div>
    </div>
  );
}`

// Placeholder returns the component served when the default provider has no
// API key. It previews the first MaxPreviewHTML characters of html as a
// string literal with angle brackets escaped.
func Placeholder(html string) string {
	return fmt.Sprintf(placeholderTemplate, previewLiteral(html))
}

func previewLiteral(html string) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(truncate(html, MaxPreviewHTML) + "...")

	lit := strings.TrimSuffix(b.String(), "\n")
	lit = strings.ReplaceAll(lit, "<", `\u003c`)
	return strings.ReplaceAll(lit, ">", `\u003e`)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
