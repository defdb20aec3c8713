// Package agent is the AI calendar advisor behind the bundled task
// service: schedule generation and chat replies via a Gemini-style
// generateContent endpoint, with a rotating API key pool.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/agrimitra/farmcal/internal/task"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash"

	// InactiveReply is returned by ChatReply when no usable key exists.
	InactiveReply = "I'm sorry, but I cannot connect to my AI brain right now. Please check if the API keys are configured correctly."
)

// keyEnvVars is the fixed pool of environment variables scanned for API
// keys. Placeholder values are filtered out like unset ones.
var keyEnvVars = []string{"FARMCAL_API_KEY_1", "FARMCAL_API_KEY_2", "FARMCAL_API_KEY_3"}

// Agent talks to the generation endpoint. A failing key rotates to the
// next in the pool; when every key has failed the agent goes inactive.
type Agent struct {
	keys    []string
	keyIdx  int
	baseURL string
	model   string
	http    *http.Client
	now     func() time.Time
}

// Option customizes Agent construction, mainly for tests.
type Option func(*Agent)

// WithBaseURL points the agent at an alternate endpoint.
func WithBaseURL(u string) Option {
	return func(a *Agent) { a.baseURL = strings.TrimRight(u, "/") }
}

// WithKeys replaces the env-derived key pool.
func WithKeys(keys ...string) Option {
	return func(a *Agent) { a.keys = keys }
}

// WithModel selects an alternate generation model.
func WithModel(model string) Option {
	return func(a *Agent) {
		if model != "" {
			a.model = model
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// New builds an agent from the environment key pool.
func New(opts ...Option) *Agent {
	a := &Agent{
		keys:    keysFromEnv(),
		baseURL: defaultBaseURL,
		model:   defaultModel,
		http:    &http.Client{Timeout: 90 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if len(a.keys) == 0 {
		log.Warn("agent: no valid API keys found, AI features disabled")
	}
	return a
}

func keysFromEnv() []string {
	var keys []string
	for _, name := range keyEnvVars {
		key := strings.TrimSpace(os.Getenv(name))
		if key == "" || strings.HasPrefix(key, "your_") || strings.HasPrefix(key, "PASTE_") {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// Active reports whether at least one usable key remains.
func (a *Agent) Active() bool {
	return len(a.keys) > 0
}

// GenerateSchedule asks the model for a full crop schedule and returns
// the parsed task batch. Tasks dated before today are dropped.
func (a *Agent) GenerateSchedule(ctx context.Context, crop, location, plantingDate string) ([]task.Task, error) {
	if !a.Active() {
		return nil, fmt.Errorf("agent: not active")
	}
	planting, err := task.ParseDay(plantingDate)
	if err != nil {
		return nil, fmt.Errorf("agent: invalid planting date: %w", err)
	}
	today := a.today()
	earliest := today
	if planting.After(earliest) {
		earliest = planting
	}

	prompt := schedulePrompt(crop, location, plantingDate, task.DayString(today), task.DayString(earliest))
	text, err := a.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var tasks []task.Task
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &tasks); err != nil {
		return nil, fmt.Errorf("agent: parse schedule response: %w", err)
	}

	todayStr := task.DayString(today)
	kept := tasks[:0]
	for _, t := range tasks {
		if t.Date < todayStr {
			log.Warnf("agent: filtered past task %q on %s", t.Title, t.Date)
			continue
		}
		kept = append(kept, t.Normalized())
	}
	log.Infof("agent: generated %d future tasks (filtered %d past)", len(kept), len(tasks)-len(kept))
	return kept, nil
}

// ChatReply answers a calendar question with the session history and
// context folded into one prompt. Exhausted keys degrade to a fixed
// in-band message rather than an error.
func (a *Agent) ChatReply(ctx context.Context, message string, contextData map[string]any, history []HistoryMessage) string {
	if !a.Active() {
		return InactiveReply
	}

	var b strings.Builder
	b.WriteString(chatSystemPrompt(contextData, task.DayString(a.today())))
	b.WriteString("\n\n")
	for _, msg := range history {
		role := "Assistant"
		if msg.Role == "user" {
			role = "User"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, msg.Content)
	}
	fmt.Fprintf(&b, "User: %s\nAssistant:", message)

	reply, err := a.generate(ctx, b.String())
	if err != nil {
		log.Errorf("agent: chat generation failed: %v", err)
		return fmt.Sprintf("I am having trouble connecting to the knowledge base. All keys exhausted. Error: %v", err)
	}
	return reply
}

// HistoryMessage is one prior conversation turn as received from the
// chat endpoint.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// generate runs one prompt through the endpoint, rotating keys on
// failure until the pool is exhausted.
func (a *Agent) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("agent: encode request: %w", err)
	}

	attempts := len(a.keys)
	var lastErr error
	for i := 0; i < attempts; i++ {
		key := a.keys[a.keyIdx]
		text, err := a.call(ctx, key, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		log.Errorf("agent: key index %d failed: %v", a.keyIdx, err)
		a.keyIdx = (a.keyIdx + 1) % len(a.keys)
	}
	return "", fmt.Errorf("agent: all keys exhausted: %w", lastErr)
}

func (a *Agent) call(ctx context.Context, key string, body []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", a.baseURL, a.model, url.QueryEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error.Message != "" {
			return "", fmt.Errorf("endpoint error (%d): %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("endpoint error (%d)", resp.StatusCode)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty candidate set")
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}

func (a *Agent) today() time.Time {
	now := a.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// stripCodeFences unwraps a markdown code block if the model returned
// one around the JSON payload.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
	} else if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
	} else {
		return text
	}
	if end := strings.Index(text, "```"); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}
