package util

type Envelope map[string]any

// Fail builds the error envelope every endpoint returns on failure.
func Fail(message string) Envelope {
	return Envelope{"success": false, "message": message}
}

// OK builds a bare success envelope with an optional user-facing message.
func OK(message string) Envelope {
	if message == "" {
		return Envelope{"success": true}
	}
	return Envelope{"success": true, "message": message}
}

// With adds a field to the envelope and returns it for chaining.
func (e Envelope) With(key string, value any) Envelope {
	e[key] = value
	return e
}
