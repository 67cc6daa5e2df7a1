package service

import (
	"context"
	"strings"

	"poultry-diagnose-be/internal/dto"
	"poultry-diagnose-be/internal/pkg/logger"
	"poultry-diagnose-be/internal/pkg/serverutils"
	"poultry-diagnose-be/pkg/apperror"
	"poultry-diagnose-be/pkg/diagnosis"
	"poultry-diagnose-be/pkg/events"
	"poultry-diagnose-be/pkg/graph"
	"poultry-diagnose-be/pkg/knowledge"
	"poultry-diagnose-be/pkg/session"
	"poultry-diagnose-be/pkg/store"
	"poultry-diagnose-be/pkg/symptom"
)

const dialogueModule = "DIALOGUE"

// IDiagnoseService runs the clarification and diagnosis dialogue, one turn per call.
type IDiagnoseService interface {
	Diagnose(ctx context.Context, req *dto.DiagnoseRequest) (*dto.DiagnoseResponse, error)
	Session(ctx context.Context, userId, sessionId string) (*store.Session, error)
}

// DiagnoseOptions holds the dialogue tuning knobs
type DiagnoseOptions struct {
	DiagThreshold  float64
	SuggestLimit   int
	BestGuessLimit int
}

func (o DiagnoseOptions) withDefaults() DiagnoseOptions {
	if o.DiagThreshold <= 0 {
		o.DiagThreshold = diagnosis.DefaultThreshold
	}
	if o.SuggestLimit <= 0 {
		o.SuggestLimit = diagnosis.DefaultSuggestLimit
	}
	if o.BestGuessLimit <= 0 {
		o.BestGuessLimit = 3
	}
	return o
}

type diagnoseService struct {
	sessions  *session.Manager
	resolver  *symptom.Resolver
	knowledge *knowledge.KnowledgeBase
	graph     graph.Store
	publisher IEventPublisher
	logger    logger.ILogger
	opts      DiagnoseOptions
}

func NewDiagnoseService(
	sessions *session.Manager,
	resolver *symptom.Resolver,
	kb *knowledge.KnowledgeBase,
	graphStore graph.Store,
	publisher IEventPublisher,
	log logger.ILogger,
	opts DiagnoseOptions,
) IDiagnoseService {
	return &diagnoseService{
		sessions:  sessions,
		resolver:  resolver,
		knowledge: kb,
		graph:     graphStore,
		publisher: publisher,
		logger:    log,
		opts:      opts.withDefaults(),
	}
}

// turnResult is the outcome of the decision step, before persistence
type turnResult struct {
	outcome    dto.Outcome
	reply      string
	symptoms   []string
	findings   []diagnosis.Finding
	candidates []diagnosis.Result
}

// Diagnose processes one turn. The session is locked from the turn increment until the single
// write at the end, so a failure after the increment leaves every other field untouched.
// Events are published after the lock is released.
func (s *diagnoseService) Diagnose(ctx context.Context, req *dto.DiagnoseRequest) (*dto.DiagnoseResponse, error) {
	if err := validateDiagnose(req); err != nil {
		return nil, err
	}
	userId, sessionId := strings.TrimSpace(req.UserId), strings.TrimSpace(req.SessionId)

	snap, err := s.knowledge.Current()
	if err != nil {
		return nil, err
	}

	unlock, err := s.sessions.Lock(ctx, userId, sessionId)
	if err != nil {
		return nil, apperror.Unavailable("session.Lock", err)
	}
	locked := true
	defer func() {
		if locked {
			unlock()
		}
	}()

	turn, err := s.sessions.IncrementTurn(ctx, userId, sessionId)
	if err != nil {
		return nil, s.abort(userId, sessionId, 0, err)
	}

	current, err := s.sessions.Read(ctx, userId, sessionId)
	if err != nil {
		return nil, s.abort(userId, sessionId, turn, err)
	}

	resolution, err := s.resolver.Resolve(ctx, req.Entities)
	if err != nil {
		return nil, s.abort(userId, sessionId, turn, err)
	}

	query := req.Query
	cleared := ""
	patch := store.SessionPatch{
		AddSymptoms: resolution.Confirmed,
		Pending:     &cleared,
		LastQuery:   &query,
	}
	if resolution.Pending != nil {
		patch.Pending = resolution.Pending
	}
	if req.Intent != nil {
		patch.Intent = req.Intent
	}
	merged := patch.Apply(current)

	var result turnResult
	switch {
	case merged.PendingEntity != nil:
		result = turnResult{outcome: dto.OutcomeClarifying, reply: diagnosis.ClarifyMessage(*merged.PendingEntity)}
	default:
		result, err = s.decide(ctx, snap.Corpus(), merged.ConfirmedSymptoms)
		if err != nil {
			return nil, s.abort(userId, sessionId, turn, err)
		}
	}

	if result.outcome == dto.OutcomeDiagnosing {
		diagnosed := true
		patch.Diagnosed = &diagnosed
		patch.AddDiagnosedNames = diseaseNames(result.findings)
	}
	patch.LastMessage = &result.reply

	final, err := s.sessions.MergeWrite(ctx, userId, sessionId, patch)
	if err != nil {
		return nil, s.abort(userId, sessionId, turn, err)
	}
	// the turn is committed; publishing must not hold the session
	unlock()
	locked = false

	s.logger.Info(dialogueModule, "Turn processed", map[string]interface{}{
		"key":       store.Key(userId, sessionId),
		"turn":      final.Turn,
		"outcome":   string(result.outcome),
		"confirmed": len(final.ConfirmedSymptoms),
		"kb":        snap.Version,
	})

	if result.outcome == dto.OutcomeDiagnosing {
		s.publisher.Publish(ctx, events.DiagnosisConfirmed(userId, sessionId, final.Turn,
			diseaseNames(result.findings), final.ConfirmedSymptoms))
	}

	return buildResponse(final, result), nil
}

// decide ranks the accumulated symptoms and picks the diagnosing or suggesting branch.
func (s *diagnoseService) decide(ctx context.Context, corpus *diagnosis.Corpus, observed []string) (turnResult, error) {
	ranked := corpus.Rank(observed)
	qualifying := diagnosis.Qualifying(ranked, s.opts.DiagThreshold)

	if len(qualifying) > 0 {
		findings := make([]diagnosis.Finding, 0, len(qualifying))
		for _, r := range qualifying {
			treatment, err := s.graph.TreatmentFor(ctx, r.DiseaseName)
			if err != nil {
				return turnResult{}, apperror.Unavailable("graph.TreatmentFor", err)
			}
			prevention, err := s.graph.PreventionFor(ctx, r.DiseaseName)
			if err != nil {
				return turnResult{}, apperror.Unavailable("graph.PreventionFor", err)
			}
			findings = append(findings, diagnosis.Finding{Result: r, Treatment: treatment, Prevention: prevention})
		}
		return turnResult{
			outcome:  dto.OutcomeDiagnosing,
			reply:    diagnosis.DiagnosisMessage(observed, findings),
			symptoms: matchedSymptoms(qualifying),
			findings: findings,
		}, nil
	}

	suggestions := corpus.Suggest(corpus.CandidateIDs(ranked), observed, s.opts.SuggestLimit)
	guesses := ranked
	if len(guesses) > s.opts.BestGuessLimit {
		guesses = guesses[:s.opts.BestGuessLimit]
	}
	return turnResult{
		outcome:    dto.OutcomeSuggesting,
		reply:      diagnosis.SuggestionMessage(observed, resultNames(guesses), suggestions),
		symptoms:   suggestions,
		candidates: guesses,
	}, nil
}

// Session returns the stored state without consuming a turn.
func (s *diagnoseService) Session(ctx context.Context, userId, sessionId string) (*store.Session, error) {
	userId, sessionId = strings.TrimSpace(userId), strings.TrimSpace(sessionId)
	if userId == "" || sessionId == "" {
		return nil, apperror.Validation("diagnose.Session", "user_id and session_id are required")
	}
	sess, err := s.sessions.Read(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *diagnoseService) abort(userId, sessionId string, turn int64, err error) error {
	s.logger.Error(dialogueModule, "Turn aborted", map[string]interface{}{
		"key":   store.Key(userId, sessionId),
		"turn":  turn,
		"error": err.Error(),
	})
	return err
}

func validateDiagnose(req *dto.DiagnoseRequest) error {
	if req == nil {
		return apperror.Validation("diagnose.Validate", "request body is required")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if strings.TrimSpace(req.UserId) == "" {
		return apperror.Validation("diagnose.Validate", "user_id is required")
	}
	if strings.TrimSpace(req.SessionId) == "" {
		return apperror.Validation("diagnose.Validate", "session_id is required")
	}
	return nil
}

func buildResponse(final store.Session, result turnResult) *dto.DiagnoseResponse {
	resp := &dto.DiagnoseResponse{
		Reply:        result.reply,
		SessionState: final,
		Outcome:      result.outcome,
		Findings:     result.findings,
		Candidates:   result.candidates,
		Symptoms:     result.symptoms,
	}
	switch result.outcome {
	case dto.OutcomeClarifying:
		resp.NeedClarify = true
	case dto.OutcomeDiagnosing:
		diagnosed := true
		resp.Diagnosed = &diagnosed
		resp.Diseases = diseaseNames(result.findings)
	case dto.OutcomeSuggesting:
		diagnosed := false
		resp.NeedClarify = true
		resp.Diagnosed = &diagnosed
	}
	return resp
}

func diseaseNames(findings []diagnosis.Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.DiseaseName
	}
	return out
}

func resultNames(results []diagnosis.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.DiseaseName
	}
	return out
}

// matchedSymptoms is the union of the observed symptoms each result matched, first-seen order.
func matchedSymptoms(results []diagnosis.Result) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range results {
		for _, m := range r.Matched {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}
