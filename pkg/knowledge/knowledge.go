package knowledge

import (
	"context"
	"sync"
	"sync/atomic"

	"poultry-diagnose-be/internal/pkg/logger"
	"poultry-diagnose-be/pkg/apperror"
	"poultry-diagnose-be/pkg/graph"
)

const logModule = "KNOWLEDGE"

// Mirror keeps a copy of the profiles outside the graph store so the process can
// start while the graph is unreachable.
type Mirror interface {
	Save(ctx context.Context, profiles map[string]graph.DiseaseProfile) error
	Load(ctx context.Context) (map[string]graph.DiseaseProfile, error)
}

// KnowledgeBase owns the current Snapshot. Readers take the pointer once per
// request and keep using it; refreshes replace the pointer and never touch a
// published snapshot.
type KnowledgeBase struct {
	current atomic.Pointer[Snapshot]
	version atomic.Int64
	refresh sync.Mutex

	source graph.Store
	mirror Mirror
	logger logger.ILogger
}

// New creates an empty knowledge base. mirror may be nil.
func New(source graph.Store, mirror Mirror, log logger.ILogger) *KnowledgeBase {
	return &KnowledgeBase{source: source, mirror: mirror, logger: log}
}

// Current returns the live snapshot, or InconsistentSnapshot before the first load.
func (kb *KnowledgeBase) Current() (*Snapshot, error) {
	snap := kb.current.Load()
	if snap == nil {
		return nil, apperror.Inconsistent("knowledge.Current", "knowledge base not loaded", nil)
	}
	return snap, nil
}

// Refresh reloads every profile from the graph store and swaps the snapshot in.
// On failure the previous snapshot stays live.
func (kb *KnowledgeBase) Refresh(ctx context.Context) (*Snapshot, error) {
	kb.refresh.Lock()
	defer kb.refresh.Unlock()

	profiles, err := kb.source.AllDiseaseProfiles(ctx)
	if err != nil {
		kb.logger.Error(logModule, "Failed to load disease profiles", map[string]interface{}{"error": err.Error()})
		return nil, apperror.Unavailable("graph.AllDiseaseProfiles", err)
	}

	snap, err := kb.install(profiles, SourceGraph)
	if err != nil {
		return nil, err
	}

	if kb.mirror != nil {
		if err := kb.mirror.Save(ctx, snap.Profiles()); err != nil {
			kb.logger.Warn(logModule, "Failed to write knowledge mirror", map[string]interface{}{"error": err.Error()})
		}
	}
	return snap, nil
}

// Load performs the startup load: the graph store first, then the mirror.
// It fails with InconsistentSnapshot when neither yields a valid snapshot.
func (kb *KnowledgeBase) Load(ctx context.Context) (*Snapshot, error) {
	snap, err := kb.Refresh(ctx)
	if err == nil {
		return snap, nil
	}
	if kb.mirror == nil {
		return nil, apperror.Inconsistent("knowledge.Load", "graph load failed and no mirror configured", err)
	}

	kb.logger.Warn(logModule, "Falling back to knowledge mirror", map[string]interface{}{"error": err.Error()})

	kb.refresh.Lock()
	defer kb.refresh.Unlock()

	profiles, mirrorErr := kb.mirror.Load(ctx)
	if mirrorErr != nil {
		return nil, apperror.Inconsistent("knowledge.Load", "graph and mirror both unavailable", mirrorErr)
	}
	return kb.install(profiles, SourceMirror)
}

func (kb *KnowledgeBase) install(profiles map[string]graph.DiseaseProfile, source string) (*Snapshot, error) {
	snap, err := NewSnapshot(profiles, kb.version.Load()+1, source)
	if err != nil {
		kb.logger.Error(logModule, "Rejected knowledge snapshot", map[string]interface{}{
			"source": source,
			"error":  err.Error(),
		})
		return nil, err
	}
	kb.version.Store(snap.Version)
	kb.current.Store(snap)

	kb.logger.Info(logModule, "Knowledge snapshot installed", map[string]interface{}{
		"version":  snap.Version,
		"source":   source,
		"diseases": snap.DiseaseCount(),
		"symptoms": snap.SymptomCount(),
	})
	return snap, nil
}
