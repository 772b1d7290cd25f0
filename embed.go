package deepthought

import _ "embed"

// SystemPrompt is the Deep Thought persona sent as the system message of every upstream
// completion request.
//
//go:embed prompts/deep_thought.txt
var SystemPrompt string

// DefaultConfig contains the YAML defaults the server decodes before applying the user
// configuration file and environment overrides.
//
//go:embed config.default.yaml
var DefaultConfig []byte
