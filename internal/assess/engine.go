// Package assess scores a finished interview from its full transcript
// and persists the result. Assessment failure is fatal to the finalize
// step: mid-interview the conversation must continue on fallbacks, but
// an unscored result is worse than a retryable failure.
package assess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/prompt"
	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/resultstore"
	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/session"

	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/llm"
)

// ErrService is returned when the assessment model call itself fails;
// the whole end-of-session operation aborts and session state is kept.
var ErrService = errors.New("assess: assessment service error")

// responseSchema constrains the model to the three-field result object.
var responseSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"score": {"type": "INTEGER"},
		"feedback": {"type": "STRING"},
		"recommendation": {"type": "STRING", "enum": ["Hire", "Do Not Hire", "Further Interview", "Strong Hire", "Weak Hire", "N/A"]}
	},
	"propertyOrdering": ["score", "feedback", "recommendation"]
}`)

// Result is the parsed assessment. Score is absent when the model did
// not produce a usable one.
type Result struct {
	Score          *int   `json:"score"`
	Feedback       string `json:"feedback"`
	Recommendation string `json:"recommendation"`
}

// StructuredLLM requests schema-constrained output from the model.
type StructuredLLM interface {
	GenerateJSON(ctx context.Context, prompt string, schema json.RawMessage) (string, error)
}

// ResultSink persists the finalized package.
type ResultSink interface {
	Submit(ctx context.Context, pkg resultstore.ResultPackage) error
}

// Archiver stores a copy of the rendered transcript. Best effort only.
type Archiver interface {
	ArchiveTranscript(ctx context.Context, sessionID, transcript string) error
}

const assessTimeout = 30 * time.Second

// Engine drives end-of-session assessment and persistence.
type Engine struct {
	Sessions *session.Manager
	LLM      StructuredLLM
	Results  ResultSink
	Archive  Archiver // optional
	ModelID  string

	now func() time.Time
}

func NewEngine(sessions *session.Manager, model StructuredLLM, results ResultSink, modelID string) *Engine {
	return &Engine{
		Sessions: sessions,
		LLM:      model,
		Results:  results,
		ModelID:  modelID,
		now:      time.Now,
	}
}

// Finalize assesses the active session, persists the result package and
// clears the session. The clear happens only after a successful persist,
// as one atomic commit. If a turn is appended while the assessment is in
// flight the commit is refused with session.ErrTurnInProgress and nothing
// is persisted; the caller retries with the full transcript.
func (e *Engine) Finalize(ctx context.Context, userID string) (resultstore.ResultPackage, error) {
	if userID == "" {
		return resultstore.ResultPackage{}, fmt.Errorf("%w: user id is required", session.ErrInvalidState)
	}
	cfg, ledger, sessionID, err := e.Sessions.FinalizeView()
	if err != nil {
		return resultstore.ResultPackage{}, err
	}

	transcript := prompt.RenderTranscript(ledger)
	assessment := e.assess(ctx, cfg, transcript)
	if assessment.err != nil {
		return resultstore.ResultPackage{}, assessment.err
	}

	interviewID := "N/A"
	if cfg != nil && cfg.ID != "" {
		interviewID = cfg.ID
	}
	pkg := resultstore.ResultPackage{
		UserID:                      userID,
		AIGeneratedContent:          transcript,
		AIModelUsed:                 e.ModelID,
		SourceDataReference:         fmt.Sprintf("Interview ID: %s", interviewID),
		Status:                      "Generated",
		Score:                       assessment.Score,
		Feedback:                    assessment.Feedback,
		Recommendation:              assessment.Recommendation,
		OriginalInterviewDate:       e.now().UTC().Format(time.RFC3339),
		OriginalCandidateIdentifier: "User-" + userID,
	}

	if err := e.Sessions.Commit(len(ledger), func() error {
		return e.Results.Submit(ctx, pkg)
	}); err != nil {
		return resultstore.ResultPackage{}, err
	}

	if e.Archive != nil {
		actx, cancel := context.WithTimeout(context.Background(), assessTimeout)
		defer cancel()
		if err := e.Archive.ArchiveTranscript(actx, sessionID, transcript); err != nil {
			log.Printf("assess: transcript archival failed (ignored): %v", err)
		}
	}
	return pkg, nil
}

type assessed struct {
	Result
	err error
}

// assess calls the model for a structured assessment. A failed call is
// fatal; a successful call with an unusable payload degrades to the
// sentinel result so finalization can continue.
func (e *Engine) assess(ctx context.Context, cfg *session.InterviewConfig, transcript string) assessed {
	ctx, cancel := context.WithTimeout(ctx, assessTimeout)
	defer cancel()

	raw, err := e.LLM.GenerateJSON(ctx, prompt.BuildAssessment(cfg, transcript), responseSchema)
	switch {
	case err == nil:
	case errors.Is(err, llm.ErrNoContent):
		log.Printf("assess: model returned no assessment content")
		return assessed{Result: Result{Feedback: "AI assessment not generated.", Recommendation: "N/A"}}
	default:
		return assessed{err: fmt.Errorf("%w: %v", ErrService, err)}
	}

	var res Result
	if uerr := json.Unmarshal([]byte(raw), &res); uerr != nil {
		log.Printf("assess: could not parse assessment payload: %v", uerr)
		return assessed{Result: Result{Feedback: "AI assessment could not be parsed.", Recommendation: "N/A"}}
	}
	if res.Recommendation == "" {
		res.Recommendation = "N/A"
	}
	return assessed{Result: res}
}
