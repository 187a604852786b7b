//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"dartboard/domain/dart"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging during supervision.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Sender delivers an outbound message to the chat platform.
type Sender interface {
	Send(ctx context.Context, msg dart.Message) error
}

// Submitter accepts inbound commands for serialized processing.
type Submitter interface {
	Submit(cmd dart.Command) error
}

// IRegistry is the read side of the session registry.
type IRegistry interface {
	Snapshot() []dart.SessionStats
	Len() int
}
