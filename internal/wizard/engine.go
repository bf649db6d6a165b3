// Package wizard is the multi-step form controller behind the signup
// and patient-creation flows: each step declares its fields, forward
// progress is gated on the current step's validation only, and submit
// re-validates the whole form.
package wizard

// Form is the flat field-name → raw-value map a wizard collects.
type Form map[string]string

// Rule validates one field value. form gives cross-field rules (e.g.
// password confirmation) access to the rest of the input. Rules run
// synchronously and only see field names, never field semantics.
type Rule func(value string, form Form) error

// Field declares one input of a step. Optional fields with an empty
// value never block a transition; their rules only run once a value is
// present.
type Field struct {
	Name     string
	Required bool
	Rules    []Rule
}

// Step is one page of the wizard.
type Step struct {
	Title  string
	Fields []Field
}

// Engine walks steps 0..N-1. The zero step is the initial state, and
// submit is only enabled on the last one. At least one step is
// assumed.
type Engine struct {
	steps  []Step
	step   int
	values Form
	errs   map[string]string
}

func New(steps ...Step) *Engine {
	return &Engine{
		steps:  steps,
		values: make(Form),
		errs:   make(map[string]string),
	}
}

// Step reports the current step index.
func (e *Engine) Step() int { return e.step }

// Steps reports the total step count.
func (e *Engine) Steps() int { return len(e.steps) }

// Current returns the current step's declaration.
func (e *Engine) Current() Step { return e.steps[e.step] }

// Set records a field value and clears any stale error for it.
func (e *Engine) Set(field, value string) {
	e.values[field] = value
	delete(e.errs, field)
}

// Value reads a previously set field value.
func (e *Engine) Value(field string) string { return e.values[field] }

// Errors returns a snapshot of the current field errors.
func (e *Engine) Errors() map[string]string {
	out := make(map[string]string, len(e.errs))
	for k, v := range e.errs {
		out[k] = v
	}
	return out
}

// Next validates only the fields declared for the current step. When
// they all pass the step advances, clamped to the last one, and Next
// reports true. Otherwise the step is unchanged and the failing
// fields' errors are set.
func (e *Engine) Next() bool {
	if !e.validateStep(e.step) {
		return false
	}
	if e.step < len(e.steps)-1 {
		e.step++
	}
	return true
}

// Back moves one step back, clamped to the first. It neither
// re-validates nor clears the errors of the step being left.
func (e *Engine) Back() {
	if e.step > 0 {
		e.step--
	}
}

// Submit is only honored on the last step. It validates every field
// across all steps; on success it hands back the completed form, on
// failure all errors are surfaced and no payload is produced.
func (e *Engine) Submit() (Form, bool) {
	if e.step != len(e.steps)-1 {
		return nil, false
	}

	ok := true
	for i := range e.steps {
		if !e.validateStep(i) {
			ok = false
		}
	}
	if !ok {
		return nil, false
	}

	out := make(Form, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out, true
}

// validateStep runs one step's fields, replacing their previous
// errors. Fields of other steps are never touched.
func (e *Engine) validateStep(i int) bool {
	ok := true
	for _, f := range e.steps[i].Fields {
		delete(e.errs, f.Name)

		value := e.values[f.Name]
		if value == "" {
			if f.Required {
				e.errs[f.Name] = "is required"
				ok = false
			}
			continue
		}

		for _, rule := range f.Rules {
			if err := rule(value, e.values); err != nil {
				e.errs[f.Name] = err.Error()
				ok = false
				break
			}
		}
	}
	return ok
}
