package entity

// Result is the output of a single handler invocation.
type Result struct {
	// Success reports whether the handler considers the dispatch acceptable.
	Success bool `json:"success"`

	// Abort short-circuits remaining handlers and fails the dispatch.
	Abort bool `json:"abort,omitempty"`

	// Message is an optional human-readable note; on abort it becomes the
	// blocking reason shown to the host.
	Message string `json:"message,omitempty"`

	// Err carries the handler's error text when Success is false.
	Err string `json:"error,omitempty"`

	// Data is the optional payload attached by the handler.
	Data *ResultData `json:"data,omitempty"`
}

// ResultData is the structured payload a handler may attach to its result.
type ResultData struct {
	// UpdatedInput, when set on a pre-tool result, replaces the tool input.
	// When several handlers set it, the last non-nil value wins.
	UpdatedInput map[string]interface{} `json:"updated_input,omitempty"`

	// Values carries any other handler-specific output.
	Values map[string]interface{} `json:"values,omitempty"`
}

// OK returns a successful result with no payload.
func OK() *Result {
	return &Result{Success: true}
}

// Block returns an aborting result with the given reason.
func Block(reason string) *Result {
	return &Result{Success: false, Abort: true, Message: reason}
}

// Failed returns a non-aborting failure carrying the error text.
func Failed(err error) *Result {
	r := &Result{Success: false}
	if err != nil {
		r.Err = err.Error()
	}
	return r
}
