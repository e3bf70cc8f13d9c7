package catalog

import (
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiTools builds function declarations for every executable action kind
// so the model can select an action directly instead of describing one in
// prose. Declarations are generated from the same schemas the validator
// uses, so the two can't drift.
func GeminiTools() []*genai.Tool {
	var decls []*genai.FunctionDeclaration
	for _, kind := range kindOrder {
		s := schemas[kind]
		decls = append(decls, functionDeclaration(s))
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func functionDeclaration(s Schema) *genai.FunctionDeclaration {
	props := make(map[string]*genai.Schema, len(s.Params))
	var required []string
	for _, p := range s.Params {
		prop := &genai.Schema{
			Type:        genai.TypeString,
			Description: p.Description,
		}
		if p.Type == ParamChoice && len(p.Choices) > 0 {
			prop.Enum = p.Choices
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return &genai.FunctionDeclaration{
		Name:        string(s.Kind),
		Description: s.Description,
		Parameters: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: props,
			Required:   required,
		},
	}
}

// PromptDescription renders the catalog as plain text for free-form
// prompts, one action per line with its parameters.
func PromptDescription() string {
	var sb strings.Builder
	for _, kind := range kindOrder {
		s := schemas[kind]
		sb.WriteString(fmt.Sprintf("- %s: %s\n", s.Kind, s.Description))
		for _, p := range s.Params {
			req := "optional"
			if p.Required {
				req = "required"
			}
			sb.WriteString(fmt.Sprintf("    %s (%s): %s\n", p.Name, req, p.Description))
		}
	}
	return sb.String()
}

func (t ParamType) String() string {
	switch t {
	case ParamAddress:
		return "address"
	case ParamAmount:
		return "amount"
	case ParamDuration:
		return "duration"
	case ParamText:
		return "text"
	case ParamChoice:
		return "choice"
	default:
		return "unknown"
	}
}
