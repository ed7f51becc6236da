package model

// Setting is a persisted application setting. Settings are stored and
// exported as a collection alongside products and price records; the
// core does not interpret them.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
