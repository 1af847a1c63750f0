package generator

import (
	"bytes"
	"log"
	"strings"
	"text/template"
)

// ---------- system prompts ----------

const groupSystemPrompt = `You are a senior technical writer documenting a software repository.
Write accurate, well-structured Markdown for developers who are new to the codebase.
Describe only what the provided code does. Do not invent APIs that are not shown.
Do not include YAML front matter.`

const fileSystemPrompt = groupSystemPrompt + `
Every file document must contain an "Example" section with at least one fenced code block
showing how the file's exported symbols are used.`

const simplifiedSystemPrompt = `You write short Markdown documentation for source code.
Use headings, a bullet list of the main symbols, and one fenced code block under a heading named "Example".`

func systemPrompt(mode Mode) string {
	if mode == ModeFile {
		return fileSystemPrompt
	}
	return groupSystemPrompt
}

// ---------- user prompts ----------

var groupPromptTmpl = template.Must(template.New("group").Parse(
	`Document the "{{.Title}}" feature of this repository.
It spans {{len .Files}} file(s): {{.FileList}}.

Write the following sections:
## Overview
What the feature is responsible for and how its files fit together.
## Key Components
The most important exported symbols and what each one does.
## How It Works
The main control and data flow across the files.
## Example
A short fenced code block showing typical usage.

Source material:

{{.Content}}`))

var filePromptTmpl = template.Must(template.New("file").Parse(
	`Document the file "{{.Path}}" in the "{{.Category}}" feature.

Write the following sections:
## Purpose
## Exported API
One entry per exported symbol with its role and parameters.
## Example
At least one fenced code block demonstrating usage.

Source material:

{{.Content}}`))

var simplifiedPromptTmpl = template.Must(template.New("simplified").Parse(
	`Write brief documentation for "{{.Title}}".
List what each symbol does in one line, then give one usage Example in a fenced code block.

{{.Content}}`))

// renderPrompt fills the user prompt for unit around content, which the
// caller has already truncated.
func renderPrompt(unit Unit, content string, simplified bool) string {
	data := struct {
		Title    string
		Category string
		Path     string
		Files    []string
		FileList string
		Content  string
	}{
		Title:    unit.Title,
		Category: unit.Category,
		Files:    unit.Paths(),
		FileList: strings.Join(unit.Paths(), ", "),
		Content:  content,
	}
	if len(data.Files) > 0 {
		data.Path = data.Files[0]
	}

	tmpl := groupPromptTmpl
	switch {
	case simplified:
		tmpl = simplifiedPromptTmpl
	case unit.Mode == ModeFile:
		tmpl = filePromptTmpl
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Printf("WARNING: %s prompt rendering failed: %v", tmpl.Name(), err)
		return content
	}
	return buf.String()
}
