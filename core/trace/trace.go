// Package trace records an opt-in, structured account of every pricing
// step. A nil *Trace is valid and records nothing.
package trace

import (
	"go.uber.org/zap"
)

// Step is one recorded calculation step
type Step struct {
	Stage   string            `json:"stage"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Trace is an ordered list of steps
type Trace struct {
	Steps []Step `json:"steps"`
}

// New creates an empty trace
func New() *Trace {
	return &Trace{}
}

// Record appends a step. kv is a flat list of key/value pairs; a trailing
// key without a value is dropped.
func (t *Trace) Record(stage, message string, kv ...string) {
	if t == nil {
		return
	}
	step := Step{Stage: stage, Message: message}
	if len(kv) >= 2 {
		step.Fields = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			step.Fields[kv[i]] = kv[i+1]
		}
	}
	t.Steps = append(t.Steps, step)
}

// Enabled reports whether steps are being recorded
func (t *Trace) Enabled() bool {
	return t != nil
}

// Stage returns the steps recorded for one stage
func (t *Trace) Stage(stage string) []Step {
	if t == nil {
		return nil
	}
	var out []Step
	for _, s := range t.Steps {
		if s.Stage == stage {
			out = append(out, s)
		}
	}
	return out
}

// Log writes every step to l at debug level
func (t *Trace) Log(l *zap.Logger) {
	if t == nil || l == nil {
		return
	}
	for _, s := range t.Steps {
		fields := make([]zap.Field, 0, len(s.Fields)+1)
		fields = append(fields, zap.String("stage", s.Stage))
		for k, v := range s.Fields {
			fields = append(fields, zap.String(k, v))
		}
		l.Debug(s.Message, fields...)
	}
}
