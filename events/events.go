package events

// Event defines a type that can yield itself as JSON bytes, report whether
// it describes a successful operation, and name the action taken.
type Event interface {
	Yield() []byte
	IsSuccessful() bool
	EventAction() string
}
