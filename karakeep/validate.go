package karakeep

import "encoding/json"

// CallOption adjusts a single operation call.
type CallOption func(*callOptions)

type callOptions struct {
	skipValidation bool
}

// SkipValidation disables response validation for this one call, regardless
// of the client-wide setting.
func SkipValidation() CallOption {
	return func(o *callOptions) {
		o.skipValidation = true
	}
}

func (c *Client) callOptions(opts []CallOption) callOptions {
	co := callOptions{skipValidation: !c.validate}
	for _, opt := range opts {
		opt(&co)
	}
	return co
}

// responseShape is implemented by every typed response so decodeResponse can
// run its required-field check.
type responseShape interface {
	validate() error
}

// decodeResponse parses a response body into v.
//
// With validation enabled any unmarshal failure or missing required field is
// reported as *ValidationError carrying the raw body. With validation
// disabled, decoding is best-effort and never fails: whatever matched is
// populated, and the caller keeps the untouched body (results expose it via
// their Raw field) as the source of truth.
func decodeResponse(body []byte, v responseShape, co callOptions) error {
	if co.skipValidation {
		_ = json.Unmarshal(body, v)
		return nil
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &ValidationError{Raw: body, Err: err}
	}
	if err := v.validate(); err != nil {
		return &ValidationError{Raw: body, Err: err}
	}
	return nil
}
