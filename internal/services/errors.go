package services

// ProviderError is returned when the generative provider call fails. Its
// message is the provider's own description, unchanged.
type ProviderError struct {
	Model string
	Err   error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return "provider call failed"
	}
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }
