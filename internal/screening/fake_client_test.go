package screening

import (
	"context"
	"sync"

	"github.com/jonathan/jobfunnel/internal/llm"
	"github.com/jonathan/jobfunnel/internal/prompts"
)

// fakeClient answers each prompt with a canned response and counts calls.
type fakeClient struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     map[string]int
	requests  []llm.Request
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		responses: map[string]string{},
		errs:      map[string]error{},
		calls:     map[string]int{},
	}
}

func (f *fakeClient) respond(key, text string) *fakeClient {
	f.responses[key] = text
	return f
}

func (f *fakeClient) fail(key string, err error) *fakeClient {
	f.errs[key] = err
	return f
}

func (f *fakeClient) keyFor(system string) string {
	for _, key := range []string{
		prompts.KeyCombinedVisaSenior,
		prompts.KeyMatchScreening,
		prompts.KeyStructuredExtraction,
		prompts.KeyManualFullExtraction,
	} {
		if prompts.Screening(key) == system {
			return key
		}
	}
	return "unknown"
}

func (f *fakeClient) generate(req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := f.keyFor(req.System)
	f.calls[key]++
	f.requests = append(f.requests, req)
	if err := f.errs[key]; err != nil {
		return "", err
	}
	return f.responses[key], nil
}

func (f *fakeClient) GenerateContent(_ context.Context, req llm.Request) (string, error) {
	return f.generate(req)
}

func (f *fakeClient) GenerateJSON(_ context.Context, req llm.Request) (string, error) {
	text, err := f.generate(req)
	if err != nil {
		return "", err
	}
	return llm.CleanJSONBlock(text), nil
}

func (f *fakeClient) GetModel(llm.ModelTier) string { return "fake-model" }

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeClient) callsFor(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

const (
	acceptVerdict = "visa_status: ACCEPT\nvisa_reason: No restrictions mentioned\nsenior_status: NOT_SENIOR\nsenior_reason: 2+ years required"
	strongMatch   = "Systems_Fit: 85\nRetrieval_Infra_Fit: 70\nAlgorithmic_ML_Fit: 40\nOverall: 78\nReason:\n- Go microservices\n- Limited ML focus"
	extraction    = "```json\n{\"technical_stack\": [\"Go\", \"Kafka\"], \"key_responsibilities\": [\"Build APIs\", \"Own on-call\"], \"required_experience\": \"2+ years\", \"success_metrics\": \"N/A\", \"salary_range\": \"$140k-$170k\", \"salary_is_estimated\": false}\n```"
)

func passingClient() *fakeClient {
	return newFakeClient().
		respond(prompts.KeyCombinedVisaSenior, acceptVerdict).
		respond(prompts.KeyMatchScreening, strongMatch).
		respond(prompts.KeyStructuredExtraction, extraction)
}
