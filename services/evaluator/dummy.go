package evalsvc

import (
	"context"
	"sync"

	"github.com/trezcool/alama/core/eval"
)

type (
	// Call records one Execute invocation for test assertions.
	Call struct {
		Source string
		Secret eval.SecretContext
		Data   eval.DataContext
	}

	// DummyService is a deterministic in-process Evaluator for tests.
	// Fn decides the verdict; when nil every call passes.
	DummyService struct {
		Fn func(source string, data eval.DataContext) (bool, error)

		mu    sync.Mutex
		calls []Call
	}
)

var _ eval.Evaluator = (*DummyService)(nil)

func NewDummyService(fn func(source string, data eval.DataContext) (bool, error)) *DummyService {
	return &DummyService{Fn: fn}
}

func (svc *DummyService) Execute(
	_ context.Context, source string, secret eval.SecretContext, data eval.DataContext,
) (bool, error) {
	svc.mu.Lock()
	svc.calls = append(svc.calls, Call{Source: source, Secret: secret, Data: data})
	svc.mu.Unlock()

	if svc.Fn == nil {
		return true, nil
	}
	return svc.Fn(source, data)
}

func (svc *DummyService) Calls() []Call {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]Call, len(svc.calls))
	copy(out, svc.calls)
	return out
}
