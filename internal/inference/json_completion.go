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

package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/llm-d-incubation/modgen/internal/shared/openai"
)

var errNotJSONObject = errors.New("completion is not a JSON object")

const jsonSystemPrompt = "You are a helpful assistant that always responds in the exact JSON format specified."

const jsonUserPromptTemplate = `
Please provide a response in the following JSON format:
%s

Here is the task:
%s

Remember to:
1. Follow the exact JSON structure shown above.
2. Include all required fields.
3. Use appropriate data types (numbers for scores, strings for text).
4. Ensure the response is valid JSON.
`

// JSONCompletion asks the model for a JSON object shaped like responseFormat and decodes it strictly.
// responseFormat is either the literal example text or a value rendered as indented JSON.
// A completion that is not a JSON object is logged and returned as an error; there is no fallback.
func (c *HTTPClient) JSONCompletion(ctx context.Context, prompt string, responseFormat any, model string, temperature float64) (map[string]any, error) {
	logger := klog.FromContext(ctx)

	format, err := renderResponseFormat(responseFormat)
	if err != nil {
		logger.Error(err, "Failed to render JSON response format")
		return nil, err
	}

	resp, err := c.send(ctx, &openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: jsonSystemPrompt},
			{Role: openai.RoleUser, Content: buildJSONUserPrompt(format, prompt)},
		},
		Temperature:    temperature,
		ResponseFormat: &openai.ResponseFormat{Type: openai.ResponseFormatJSONObject},
	})
	if err != nil {
		return nil, err
	}

	var out map[string]any
	err = json.Unmarshal([]byte(resp.Choices[0].Message.Text()), &out)
	if err == nil && out == nil {
		err = errNotJSONObject
	}
	if err != nil {
		logger.Error(err, "Failed to decode JSON completion", "model", resp.Model)
		return nil, fmt.Errorf("failed to decode JSON completion: %w", err)
	}
	return out, nil
}

func buildJSONUserPrompt(format, prompt string) string {
	return fmt.Sprintf(jsonUserPromptTemplate, format, prompt)
}

func renderResponseFormat(responseFormat any) (string, error) {
	switch v := responseFormat.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	b, err := json.MarshalIndent(responseFormat, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal response format: %w", err)
	}
	return string(b), nil
}
