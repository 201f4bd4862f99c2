package collocation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MaxCollocations bounds how many entries the prompt asks for.
const MaxCollocations = 10

var ErrNoJSON = errors.New("no JSON found in response")

// BuildPrompt creates the prompt sent to the language model for word.
func BuildPrompt(word string) string {
	return fmt.Sprintf(`You are a corpus linguist helping English learners.

List up to %d words that most frequently co-occur with the word "%s" in natural English text.
For each collocate give a relative frequency score from 1 to 100 and one to three short,
natural example sentences that use both words.

Output ONLY a valid JSON object matching this exact schema:
{
  "collocations": [
    {
      "collocate": "<word>",
      "frequency": <number>,
      "exampleSentences": ["<sentence>", "<sentence>"]
    }
  ]
}

Rules:
- Order collocations from most to least frequent
- If "%s" is not a real word or has no common collocations, return {"collocations": []}
- Output ONLY the JSON, no markdown, no explanations`, MaxCollocations, word, word)
}

type response struct {
	Collocations []Collocation `json:"collocations"`
}

// ParseResponse decodes a model reply into collocations. The reply may wrap
// the JSON in prose or markdown fences; either {"collocations": [...]} or a
// bare array is accepted. Entries without a collocate are dropped.
func ParseResponse(text string) ([]Collocation, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var items []Collocation
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, fmt.Errorf("decode collocations: %w", err)
		}
	} else {
		var resp response
		if err := json.Unmarshal([]byte(raw), &resp); err != nil {
			return nil, fmt.Errorf("decode collocations: %w", err)
		}
		items = resp.Collocations
	}

	out := make([]Collocation, 0, len(items))
	for _, c := range items {
		c.Collocate = strings.TrimSpace(c.Collocate)
		if c.Collocate == "" {
			continue
		}
		sentences := c.ExampleSentences[:0]
		for _, s := range c.ExampleSentences {
			if s = strings.TrimSpace(s); s != "" {
				sentences = append(sentences, s)
			}
		}
		c.ExampleSentences = sentences
		out = append(out, c)
	}
	return out, nil
}

// extractJSON returns the outermost JSON object or array in s.
func extractJSON(s string) (string, error) {
	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return "", ErrNoJSON
	}

	closer := "}"
	if s[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(s, closer)
	if end <= start {
		return "", ErrNoJSON
	}
	return s[start : end+1], nil
}
