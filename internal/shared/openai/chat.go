/*
Copyright 2026 The llm-d Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// The file defines the Chat Completions API data structures matching the OpenAI specification.
package openai

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	ResponseFormatJSONObject = "json_object"
)

// https://platform.openai.com/docs/api-reference/chat/create
type ChatCompletionRequest struct {
	// ID of the model to use.
	Model string `json:"model"`

	// A list of messages comprising the conversation so far.
	Messages []ChatMessage `json:"messages"`

	// What sampling temperature to use, between 0 and 2.
	Temperature float64 `json:"temperature"`

	// The maximum number of tokens that can be generated in the chat completion.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Setting to `{ "type": "json_object" }` enables JSON mode.
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ChatMessage struct {
	// The role of the author of this message.
	Role string `json:"role"`

	// The contents of the message.
	Content string `json:"content"`
}

type ResponseFormat struct {
	// The type of response format being defined.
	Type string `json:"type"`
}

// https://platform.openai.com/docs/api-reference/chat/object
type ChatCompletionResponse struct {
	ID string `json:"id"`

	// The object type, which is always `chat.completion`.
	Object string `json:"object"`

	// The Unix timestamp (in seconds) of when the chat completion was created.
	Created int64 `json:"created"`

	// The model used for the chat completion.
	Model string `json:"model"`

	// A list of chat completion choices.
	Choices []ChatCompletionChoice `json:"choices"`

	Usage *CompletionUsage `json:"usage,omitempty"`
}

type ChatCompletionChoice struct {
	// The index of the choice in the list of choices.
	Index int `json:"index"`

	// A chat completion message generated by the model. Content is null for tool calls.
	Message ChatCompletionMessage `json:"message"`

	// The reason the model stopped generating tokens.
	FinishReason string `json:"finish_reason,omitempty"`
}

type ChatCompletionMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

// Text returns the message content, or "" when the service sent null.
func (m ChatCompletionMessage) Text() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

// CompletionUsage - Usage statistics for the completion request.
type CompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ErrorResponse is the body the service returns with non-2xx status codes.
type ErrorResponse struct {
	Error struct {
		Code    any    `json:"code"`
		Type    string `json:"type"`
		Message string `json:"message"`
		Param   string `json:"param"`
	} `json:"error"`
}
