package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/infra/resilience"
)

var tracer = otel.Tracer("llm")

const promptTemplate = `당신은 대학생을 위한 금융 코치입니다.
아래 %s 분석 결과(JSON)와 기본 메시지를 바탕으로, 숫자는 바꾸지 말고 친근한 한국어로 다시 써 주세요.
반드시 다음 JSON 형식으로만 답하세요:
{"summary": "한 문장 요약", "lines": ["문장", "..."], "extra_suggestion": "추가 제안"}

분석 결과:
%s

기본 메시지:
%s`

// Narrator implements port.Narrator on top of a Generator.
type Narrator struct {
	gen Generator
	cb  *gobreaker.CircuitBreaker
	cfg resilience.Config
}

// NewNarrator creates a new Narrator.
func NewNarrator(gen Generator, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *Narrator {
	return &Narrator{gen: gen, cb: cb, cfg: cfg}
}

// Narrate asks the model to rephrase the deterministic messages of a result.
func (n *Narrator) Narrate(ctx context.Context, req *domain.NarrativeRequest) (*domain.NarrativeResponse, error) {
	ctx, span := tracer.Start(ctx, "Narrator.Narrate")
	defer span.End()
	span.SetAttributes(attribute.String("narrative.kind", string(req.Kind)))

	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	var out *domain.NarrativeResponse
	err = resilience.Call(ctx, n.cb, n.cfg, "gemini", func() error {
		gen, err := n.gen.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		resp, err := ParseResponse(gen.Text)
		if err != nil {
			return resilience.Permanent(err)
		}
		resp.TokensUsed = gen.Usage
		resp.Model = gen.Model
		out = resp
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return out, nil
}

// BuildPrompt renders the request into the model prompt.
func BuildPrompt(req *domain.NarrativeRequest) (string, error) {
	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return "", fmt.Errorf("encoding narrative payload: %w", err)
	}
	return fmt.Sprintf(promptTemplate, req.Kind, payload, strings.Join(req.Messages, "\n")), nil
}

// ParseResponse decodes the model's JSON answer, tolerating a markdown fence.
func ParseResponse(text string) (*domain.NarrativeResponse, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var resp domain.NarrativeResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &resp); err != nil {
		return nil, &domain.ErrMalformedNarrative{Reason: err.Error()}
	}
	if resp.Summary == "" && len(resp.Lines) == 0 {
		return nil, &domain.ErrMalformedNarrative{Reason: "empty summary and lines"}
	}
	return &resp, nil
}
