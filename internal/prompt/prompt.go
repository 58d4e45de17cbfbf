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

// Package prompt assembles completion prompts from ordered instruction modules
// and fills placeholder tags.
package prompt

import (
	"fmt"
	"sort"
	"strings"
)

const responsePlaceholder = "<your response>"

// Module is one instruction step of a prompt. A non-empty Name turns the module into a
// numbered step and adds a field of that name to the requested output format.
type Module struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Instruction string `json:"instruction" yaml:"instruction"`
}

// IsStep reports whether the module is rendered as a numbered step.
func (m Module) IsStep() bool {
	return m.Name != ""
}

// FieldNames returns the lower-cased names of the named modules, in order.
func FieldNames(modules []Module) []string {
	names := make([]string, 0, len(modules))
	for _, m := range modules {
		if m.IsStep() {
			names = append(names, strings.ToLower(m.Name))
		}
	}
	return names
}

// BuildInstructions renders the modules one per line followed by a blank line and the
// output format block.
func BuildInstructions(modules []Module) string {
	var b strings.Builder
	step := 0
	for _, m := range modules {
		if m.IsStep() {
			step++
			fmt.Fprintf(&b, "Step %d (%s): %s\n", step, m.Name, m.Instruction)
		} else {
			b.WriteString(m.Instruction)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(OutputFormat(modules))
	return b.String()
}

// OutputFormat renders the JSON-looking object the model is asked to answer with,
// one "<name>": "<your response>" field per named module.
func OutputFormat(modules []Module) string {
	fields := FieldNames(modules)
	lines := make([]string, 0, len(fields))
	for _, name := range fields {
		lines = append(lines, fmt.Sprintf("    \"%s\": \"%s\"", name, responsePlaceholder))
	}

	var b strings.Builder
	b.WriteString("Output Format:\n{\n")
	if len(lines) > 0 {
		b.WriteString(strings.Join(lines, ",\n"))
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// Tag returns the placeholder tag for key, e.g. "!<NAME>!" for "name".
func Tag(key string) string {
	return "!<" + strings.ToUpper(key) + ">!"
}

// Fill replaces every placeholder tag whose key is present in placeholders with the
// value's default string form. Unknown tags are left as they are. Replacement is a
// single pass, so inserted values are never scanned for tags themselves.
func Fill(prompt string, placeholders map[string]any) string {
	if len(placeholders) == 0 {
		return prompt
	}

	keys := make([]string, 0, len(placeholders))
	for k := range placeholders {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	oldnew := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		oldnew = append(oldnew, Tag(k), fmt.Sprint(placeholders[k]))
	}
	return strings.NewReplacer(oldnew...).Replace(prompt)
}

// Build renders the modules and fills the placeholders in one step.
func Build(modules []Module, placeholders map[string]any) string {
	return Fill(BuildInstructions(modules), placeholders)
}
