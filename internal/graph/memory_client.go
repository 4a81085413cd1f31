package graph

import (
	"context"
	"maps"
	"strings"
	"sync"
)

// MemoryClient records statements instead of running them. Statements are answered
// from results registered with StubRead/StubWrite; reads fall back to the PushReadResult queue.
type MemoryClient struct {
	mu           sync.Mutex
	writeCalls   []ExecutedQuery
	readCalls    []ExecutedQuery
	readQueue    []Result
	readStubs    []stubbedResult
	writeStubs   []stubbedResult
	err          error
	connectivity error
}

type stubbedResult struct {
	fragment string
	result   Result
}

// ExecutedQuery captures a cypher statement and parameters executed against the graph.
type ExecutedQuery struct {
	Query  string
	Params map[string]any
}

// NewMemoryClient returns an empty client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithError makes every subsequent statement fail with err.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// StubRead answers every read whose cypher contains fragment with res.
func (m *MemoryClient) StubRead(fragment string, res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readStubs = append(m.readStubs, stubbedResult{fragment: fragment, result: res})
}

// StubWrite answers every write whose cypher contains fragment with res.
func (m *MemoryClient) StubWrite(fragment string, res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeStubs = append(m.writeStubs, stubbedResult{fragment: fragment, result: res})
}

// PushReadResult queues a result for the next read that matches no stub.
func (m *MemoryClient) PushReadResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readQueue = append(m.readQueue, res)
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	m.writeCalls = append(m.writeCalls, ExecutedQuery{Query: cypher, Params: maps.Clone(params)})
	return match(m.writeStubs, cypher), nil
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	m.readCalls = append(m.readCalls, ExecutedQuery{Query: cypher, Params: maps.Clone(params)})

	if res, ok := lookup(m.readStubs, cypher); ok {
		return res, nil
	}
	if len(m.readQueue) == 0 {
		return Result{}, nil
	}
	res := m.readQueue[0]
	m.readQueue = m.readQueue[1:]
	return res, nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	return nil
}

// WriteCalls returns a snapshot of executed write queries.
func (m *MemoryClient) WriteCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.writeCalls...)
}

// ReadCalls returns a snapshot of executed read queries.
func (m *MemoryClient) ReadCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.readCalls...)
}

func lookup(stubs []stubbedResult, cypher string) (Result, bool) {
	for _, stub := range stubs {
		if strings.Contains(cypher, stub.fragment) {
			return stub.result, true
		}
	}
	return Result{}, false
}

func match(stubs []stubbedResult, cypher string) Result {
	res, _ := lookup(stubs, cypher)
	return res
}
