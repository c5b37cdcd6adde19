// Package policy evaluates an operator-supplied acceptance expression against
// file metadata before any upload I/O happens. The expression is CEL over a
// single `file` variable; an empty expression accepts everything.
package policy

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// FileInput is the metadata a policy expression can inspect
type FileInput struct {
	Filename string
	MimeType string
	Size     int64
	GroupID  string
	Stage    string
}

// Policy is a compiled acceptance expression
type Policy struct {
	prg cel.Program
}

// Compile compiles an acceptance expression once at startup.
// Returns a nil policy for an empty expression.
func Compile(expr string) (*Policy, error) {
	if expr == "" {
		return nil, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("file", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile acceptance policy: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("create CEL program: %w", err)
	}

	return &Policy{prg: prg}, nil
}

// Accept evaluates the policy for one file. A nil policy accepts everything.
func (p *Policy) Accept(file FileInput) (bool, error) {
	if p == nil {
		return true, nil
	}

	out, _, err := p.prg.Eval(map[string]interface{}{
		"file": map[string]interface{}{
			"filename":  file.Filename,
			"mime_type": file.MimeType,
			"size":      file.Size,
			"group_id":  file.GroupID,
			"stage":     file.Stage,
		},
	})
	if err != nil {
		return false, fmt.Errorf("policy evaluation error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("policy did not return boolean, got %T", out.Value())
	}

	return result, nil
}
