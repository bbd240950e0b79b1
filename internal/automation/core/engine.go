package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

const MaxConcurrentFlows = 40

var (
	ErrUnknownFlow  = errors.New("unsupported flow")
	ErrMissingParam = errors.New("required param is missing")
)

type Step struct {
	Name    string
	Execute func(ctx *FlowContext) error
}

func NewStep(name string, execute func(ctx *FlowContext) error) *Step {
	return &Step{
		Name:    name,
		Execute: execute,
	}
}

type Flow interface {
	Name() string
	Steps() []*Step
}

// Engine runs named flows step by step. At most MaxConcurrentFlows run at
// once; callers beyond that wait or give up with their context.
type Engine struct {
	flows   map[string]Flow
	limiter chan struct{}
}

func NewEngine(flows ...Flow) *Engine {
	m := map[string]Flow{}
	for _, f := range flows {
		m[f.Name()] = f
	}
	return &Engine{
		flows:   m,
		limiter: make(chan struct{}, MaxConcurrentFlows),
	}
}

func (e *Engine) Flows() []string {
	names := make([]string, 0, len(e.flows))
	for name := range e.flows {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Run stops at the first failing step. Step errors are wrapped, so callers
// can still match the cause.
func (e *Engine) Run(flowName string, fc *FlowContext) error {
	f, exists := e.flows[flowName]
	if !exists {
		return fmt.Errorf("%w: %v", ErrUnknownFlow, flowName)
	}

	if err := e.acquire(fc.Ctx); err != nil {
		return err
	}
	defer e.release()

	for _, step := range f.Steps() {
		if err := step.Execute(fc); err != nil {
			return fmt.Errorf("%s step failed: %w", step.Name, err)
		}
	}
	return nil
}

func (e *Engine) acquire(ctx context.Context) error {
	select {
	case e.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) release() {
	<-e.limiter
}

// simpleFlow is a Flow built from a name and a fixed step list.
type simpleFlow struct {
	name  string
	steps []*Step
}

func (f *simpleFlow) Name() string   { return f.name }
func (f *simpleFlow) Steps() []*Step { return f.steps }

func NewFlow(name string, steps ...*Step) Flow {
	return &simpleFlow{name: name, steps: steps}
}
