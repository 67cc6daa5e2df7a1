package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"poultry-diagnose-be/internal/pkg/logger"
	"poultry-diagnose-be/pkg/embedding/embeddingtest"
	"poultry-diagnose-be/pkg/events"
	"poultry-diagnose-be/pkg/graph"
	"poultry-diagnose-be/pkg/knowledge"
	"poultry-diagnose-be/pkg/kvstore"
	"poultry-diagnose-be/pkg/session"
	"poultry-diagnose-be/pkg/symptom"

	"github.com/stretchr/testify/require"
)

var vocabulary = []string{"咳嗽", "流鼻涕", "呼吸困难", "啰音", "眼睑水肿", "流泪", "鸡冠肿胀"}

func poultryGraph() []graph.MemoryDisease {
	return []graph.MemoryDisease{
		{ID: "d1", Name: "传染性鼻炎", Symptoms: []string{"咳嗽", "流鼻涕"}, Treatment: "磺胺类药物", Prevention: "全进全出"},
		{ID: "d2", Name: "支原体病", Symptoms: []string{"咳嗽", "呼吸困难", "啰音"}, Treatment: "泰乐菌素"},
		{ID: "d3", Name: "禽流感", Symptoms: []string{"眼睑水肿", "流泪", "鸡冠肿胀"}, Prevention: "疫苗接种"},
	}
}

// recordingTransport captures published events
type recordingTransport struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingTransport) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingTransport) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

// blockingTransport holds its first Publish until release is closed
type blockingTransport struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func newBlockingTransport() *blockingTransport {
	return &blockingTransport{entered: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingTransport) Publish(ctx context.Context, _ events.Event) error {
	if b.calls.Add(1) != 1 {
		return nil
	}
	close(b.entered)
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

type fixture struct {
	kv        *kvstore.MemoryHashStore
	embedder  *embeddingtest.Fake
	graph     *graph.MemoryStore
	kb        *knowledge.KnowledgeBase
	index     *symptom.Index
	transport *recordingTransport
	diagnose  IDiagnoseService
}

// newFixture wires the dialogue over in-memory collaborators and records published events.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	transport := &recordingTransport{}
	f := newFixtureWithTransport(t, transport)
	f.transport = transport
	return f
}

// newFixtureWithTransport wires the dialogue over in-memory collaborators. Every vocabulary name
// embeds onto its own axis; any other text embeds onto the diagonal and stays below the match threshold.
func newFixtureWithTransport(t *testing.T, transport Publisher) *fixture {
	t.Helper()
	log := logger.NewNopLogger()

	vectors := make(map[string][]float32, len(vocabulary))
	entries := make([]symptom.Entry, len(vocabulary))
	fallback := make([]float32, len(vocabulary))
	for i, name := range vocabulary {
		v := make([]float32, len(vocabulary))
		v[i] = 1
		vectors[name] = v
		entries[i] = symptom.Entry{ID: name, Name: name, Vector: v}
		fallback[i] = 1
	}
	fake := embeddingtest.NewFake(vectors)
	fake.Fallback = fallback

	index, err := symptom.NewIndex(entries, fake, symptom.DefaultThreshold)
	require.NoError(t, err)

	store := graph.NewMemoryStore(poultryGraph())
	kb := knowledge.New(store, nil, log)
	_, err = kb.Load(context.Background())
	require.NoError(t, err)

	kv := kvstore.NewMemoryHashStore()
	svc := NewDiagnoseService(
		session.NewManager(kv),
		symptom.NewResolver(index),
		kb,
		store,
		NewEventPublisher(transport, log),
		log,
		DiagnoseOptions{},
	)

	return &fixture{
		kv:       kv,
		embedder: fake,
		graph:    store,
		kb:       kb,
		index:    index,
		diagnose: svc,
	}
}
