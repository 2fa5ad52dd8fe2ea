package agents

import (
	"context"
	"encoding/json"
	"errors"
)

// fakeCompleter unmarshals a canned JSON payload into out, or fails.
type fakeCompleter struct {
	response string
	err      error
	calls    int
	lastUser string
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, _, user string, _ *float64, out any) error {
	f.calls++
	f.lastUser = user
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.response), out)
}

var errDown = errors.New("llm unreachable")
