package core

import (
	"context"
	"fmt"
	"strings"
)

// FlowContext is shared by every step of one flow run. Steps read Input,
// pass intermediate values through Process and fill Output.
type FlowContext struct {
	Ctx     context.Context
	Input   map[string]any
	Process map[string]any
	Output  map[string]any
}

func NewFlowContext(ctx context.Context, input map[string]any) *FlowContext {
	if input == nil {
		input = make(map[string]any)
	}
	return &FlowContext{
		Ctx:     ctx,
		Input:   input,
		Process: make(map[string]any),
		Output:  make(map[string]any),
	}
}

// ExtractString returns the trimmed string under key, or "" when the key
// is absent or not a string.
func (c *FlowContext) ExtractString(key string) string {
	s, _ := c.Input[key].(string)
	return strings.TrimSpace(s)
}

func (c *FlowContext) RequireString(key string) (string, error) {
	s := c.ExtractString(key)
	if IsMissing(s) {
		return "", MissingParamErr(key)
	}
	return s, nil
}

func IsMissing(str string) bool {
	return len(str) == 0
}

func MissingParamErr(paramName string) error {
	return fmt.Errorf("%w: [%v]", ErrMissingParam, paramName)
}
