package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/ask.txt
	promptAsk string
	//go:embed prompts/ask_all.txt
	promptAskAll string
	//go:embed prompts/webclip.txt
	promptWebClip string
	//go:embed prompts/youtube.txt
	promptYouTube string
)

// AskPrompt frames a question about a single document.
func AskPrompt(question, content string) string {
	return render(promptAsk, question, content)
}

// AskAllPrompt frames a question about every document a user owns.
func AskAllPrompt(question, content string) string {
	return render(promptAskAll, question, content)
}

// WebClipPrompt asks for a summary of page text.
func WebClipPrompt(content string) string {
	return render(promptWebClip, "", content)
}

// YouTubePrompt asks for a summary of a transcript.
func YouTubePrompt(content string) string {
	return render(promptYouTube, "", content)
}

// render substitutes in a single pass so user text containing a
// placeholder is left alone.
func render(tmpl, question, content string) string {
	tmpl = strings.TrimSuffix(tmpl, "\n")
	return strings.NewReplacer("{{question}}", question, "{{content}}", content).Replace(tmpl)
}
