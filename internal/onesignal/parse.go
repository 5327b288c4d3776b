package onesignal

import (
	"encoding/json"
	"fmt"
)

// ParseContent decodes a JSON object of the form
// {"en": {"title": "...", "content": "..."}}. Anything that is not an object
// of objects is ErrInvalidFormat. Missing content is left for
// CreateNotification to reject; an empty title is the same as no title.
func ParseContent(raw []byte) (Content, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		return nil, fmt.Errorf("%w: expected an object keyed by language", ErrInvalidFormat)
	}

	content := make(Content, len(entries))
	for lang, entry := range entries {
		var m Message
		if err := json.Unmarshal(entry, &m); err != nil {
			return nil, fmt.Errorf("%w: language %q: %v", ErrInvalidFormat, lang, err)
		}
		content[lang] = m
	}

	return content, nil
}

// ParseOptions decodes a JSON object of delivery options.
func ParseOptions(raw []byte) (Options, error) {
	var opts Options
	if err := json.Unmarshal(raw, &opts); err != nil || opts == nil {
		return nil, ErrInvalidOptions
	}
	return opts, nil
}
