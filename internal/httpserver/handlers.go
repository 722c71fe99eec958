package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/assess"
	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/audio"
	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/prompt"
	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/resultstore"
	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/session"
	"github.com/Sumeet011/AI-Voice-Interview-Platform/internal/stt"
)

// Replier produces a reply for a built prompt. It never fails: degraded
// modes come back as fallback text.
type Replier interface {
	Reply(ctx context.Context, prompt string) string
}

// Synthesizer turns reply text into a retrievable audio reference.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// Finalizer runs end-of-session assessment and persistence.
type Finalizer interface {
	Finalize(ctx context.Context, userID string) (resultstore.ResultPackage, error)
}

// ArtifactReader serves stored reply audio by reference.
type ArtifactReader interface {
	Read(ref string) ([]byte, error)
}

// Handlers bundles the boundary operations with their dependencies.
type Handlers struct {
	Sessions   *session.Manager
	Normalizer *audio.Normalizer
	Recognizer stt.Recognizer
	LLM        Replier
	Synth      Synthesizer
	Artifacts  ArtifactReader
	Assessor   Finalizer
}

func (h Handlers) Register(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.POST("/select_interview", h.selectInterview)
	e.POST("/upload_audio", h.uploadAudio)
	e.POST("/add_to_transcript", h.addToTranscript)
	e.POST("/get_ai_response", h.getAIResponse)
	e.POST("/play_audio", h.playAudio)
	e.GET("/audio/:name", h.serveAudio)
	e.POST("/end_interview", h.endInterview)
	e.GET("/events", h.events)
}

type selectInterviewRequest struct {
	UserID      string          `json:"userId"`
	InterviewID string          `json:"interview_id"`
	Title       string          `json:"interview_title"`
	Type        string          `json:"interview_type"`
	JobRole     string          `json:"job_role"`
	Difficulty  string          `json:"difficulty"`
	KeySkills   json.RawMessage `json:"key_skills"`
	Duration    string          `json:"duration"`
	Description string          `json:"description"`
}

// parseSkills accepts either a JSON string array or a delimited string.
func parseSkills(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		var out []string
		for _, s := range list {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return prompt.ParseSkills(s)
	}
	return nil
}

func (h Handlers) selectInterview(c echo.Context) error {
	var req selectInterviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	sessionID := h.Sessions.Select(session.InterviewConfig{
		ID:          req.InterviewID,
		Title:       req.Title,
		Type:        req.Type,
		JobRole:     req.JobRole,
		Difficulty:  req.Difficulty,
		KeySkills:   parseSkills(req.KeySkills),
		Duration:    req.Duration,
		Description: req.Description,
	})
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "session_id": sessionID})
}

func (h Handlers) uploadAudio(c echo.Context) error {
	fileHeader, err := c.FormFile("audio_file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"user_text": nil, "error": "No audio file provided"})
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"user_text": nil, "error": "No audio file provided"})
	}
	raw, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"user_text": nil, "error": "Failed to read audio"})
	}

	// One turn at a time: the next utterance may not enter the pipeline
	// until the previous one has been fully processed.
	if err := h.Sessions.BeginTurn(); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"user_text": nil, "error": "A turn is already being processed"})
	}
	defer h.Sessions.EndTurn()

	norm, err := h.Normalizer.Normalize(c.Request().Context(), raw)
	if err != nil {
		if errors.Is(err, audio.ErrUnsupported) {
			return c.JSON(http.StatusBadRequest, echo.Map{"user_text": nil, "error": "Unsupported audio payload"})
		}
		log.Printf("upload_audio: normalize failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"user_text": nil, "error": "Failed to process audio"})
	}
	defer norm.Cleanup()

	if h.Recognizer == nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"user_text": nil, "error": "Transcription is not available"})
	}
	text, err := h.Recognizer.Transcribe(c.Request().Context(), norm.Path, norm.SampleRate)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"user_text": text})
	case errors.Is(err, stt.ErrNoSpeech):
		// Expected outcome: the user should simply try again.
		return c.JSON(http.StatusOK, echo.Map{"user_text": nil})
	default:
		log.Printf("upload_audio: transcription failed: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"user_text": nil, "error": "Transcription service error"})
	}
}

type transcriptRequest struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

func (h Handlers) addToTranscript(c echo.Context) error {
	var req transcriptRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Missing role or text"})
	}
	var role session.Role
	switch req.Role {
	case "user":
		role = session.RoleUser
	case "ai", "assistant":
		role = session.RoleAssistant
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Missing role or text"})
	}
	if err := h.Sessions.Append(role, req.Text); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Missing role or text"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

type aiResponseRequest struct {
	Prompt  string `json:"prompt"`
	Initial bool   `json:"initial"`
}

func (h Handlers) getAIResponse(c echo.Context) error {
	var req aiResponseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"ai_response_text": nil})
	}
	utterance := strings.TrimSpace(req.Prompt)
	if req.Initial || utterance == prompt.InitialGreeting {
		utterance = prompt.InitialGreeting
	}
	if utterance == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"ai_response_text": nil})
	}

	history := h.Sessions.Snapshot()
	// The caller appends the user utterance before asking for a reply;
	// don't repeat it as both history and the current line.
	if n := len(history); n > 0 && history[n-1].Role == session.RoleUser && history[n-1].Text == utterance {
		history = history[:n-1]
	}
	built := prompt.BuildTurn(h.Sessions.Config(), history, utterance)
	reply := h.LLM.Reply(c.Request().Context(), built)
	return c.JSON(http.StatusOK, echo.Map{"ai_response_text": reply})
}

type playAudioRequest struct {
	Text string `json:"text"`
}

func (h Handlers) playAudio(c echo.Context) error {
	var req playAudioRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"audio_url": nil})
	}
	ref, err := h.Synth.Synthesize(c.Request().Context(), req.Text)
	if err != nil {
		log.Printf("play_audio: synthesis failed: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"audio_url": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"audio_url": "/audio/" + ref})
}

func (h Handlers) serveAudio(c echo.Context) error {
	data, err := h.Artifacts.Read(c.Param("name"))
	if err != nil {
		return c.String(http.StatusNotFound, "File not found")
	}
	return c.Blob(http.StatusOK, "audio/wav", data)
}

type endInterviewRequest struct {
	UserID string `json:"userId"`
}

func (h Handlers) endInterview(c echo.Context) error {
	var req endInterviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "User ID is required to save interview results."})
	}
	pkg, err := h.Assessor.Finalize(c.Request().Context(), req.UserID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "Interview result saved successfully!", "result": pkg})
	case errors.Is(err, session.ErrInvalidState):
		msg := "No interview transcript to process."
		if strings.TrimSpace(req.UserID) == "" {
			msg = "User ID is required to save interview results."
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
	case errors.Is(err, session.ErrTurnInProgress):
		return c.JSON(http.StatusConflict, echo.Map{"message": "Interview received new turns while saving. Try again."})
	case errors.Is(err, assess.ErrService):
		log.Printf("end_interview: assessment failed: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "Failed to get assessment from AI."})
	case errors.Is(err, resultstore.ErrPersistence):
		log.Printf("end_interview: persistence failed: %v", err)
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "Failed to save interview result to backend."})
	default:
		log.Printf("end_interview: unexpected error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "An internal error occurred."})
	}
}
