package pipeline

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Variant fallback states. The ordered variant list is consumed by
// this machine instead of nested conditionals: each rejection loops
// back to trying, the first well-formed response (even an empty one)
// succeeds, and running out of variants exhausts the machine.
const (
	stateTrying    = "trying"
	stateSucceeded = "succeeded"
	stateExhausted = "exhausted"
)

const (
	eventAccept  = "accept"
	eventReject  = "reject"
	eventExhaust = "exhaust"
	eventReset   = "reset"
)

type fallbackContext struct {
	Key string
}

type fallback struct {
	interpreter *statekit.Interpreter[fallbackContext]
}

func newFallback(key string) (*fallback, error) {
	builder := statekit.NewMachine[fallbackContext]("variant-fallback").
		WithInitial(statekit.StateID(stateTrying)).
		WithContext(fallbackContext{Key: key})

	builder.State(stateTrying).
		On(eventAccept).Target(stateSucceeded).
		On(eventReject).Target(stateTrying).
		On(eventExhaust).Target(stateExhausted).
		Done()

	builder.State(stateSucceeded).
		On(eventReset).Target(stateTrying).
		Done()

	builder.State(stateExhausted).
		On(eventReset).Target(stateTrying).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build fallback machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &fallback{interpreter: interpreter}, nil
}

func (f *fallback) send(event string) {
	f.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
}

func (f *fallback) state() string {
	return string(f.interpreter.State().Value)
}
