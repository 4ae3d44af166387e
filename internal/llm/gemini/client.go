package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Wooodyy/mappingdata/constants"
	"github.com/Wooodyy/mappingdata/internal/entity"
	"github.com/Wooodyy/mappingdata/internal/llm"
)

// generate sends one prompt through generateContent and returns the first
// candidate's text.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.generate.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"prompt_len", len(prompt),
	)

	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": prompt}}},
		},
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model, c.cfg.APIKey)

	raw, _, err := llm.SendJSON(ctx, c.http, url, body, nil, c.logger)
	if err != nil {
		c.logger.Error("llm.generate.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var reply struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(reply.Candidates) == 0 || len(reply.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in gemini response")
	}

	text := reply.Candidates[0].Content.Parts[0].Text
	c.logger.Info("llm.generate.done",
		"req_id", rid,
		"reply_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// DetectCurrency implements llm.TextClassifier. Anything that is not a
// three-letter alphabetic code collapses to the USD default.
func (c *Client) DetectCurrency(ctx context.Context, doc string) (string, error) {
	text, err := c.generate(ctx, llm.BuildCurrencyPrompt(doc))
	if err != nil {
		return constants.DefaultCurrency, err
	}
	code := strings.ToUpper(strings.TrimSpace(strings.NewReplacer("\n", "", "\r", "").Replace(text)))
	if len(code) != 3 || !isAlpha(code) {
		return constants.DefaultCurrency, nil
	}
	return code, nil
}

// DetectSender implements llm.TextClassifier.
func (c *Client) DetectSender(ctx context.Context, doc string) (string, error) {
	return c.detectParty(ctx, llm.BuildSenderPrompt(doc))
}

// DetectRecipient implements llm.TextClassifier.
func (c *Client) DetectRecipient(ctx context.Context, doc string) (string, error) {
	return c.detectParty(ctx, llm.BuildRecipientPrompt(doc))
}

func (c *Client) detectParty(ctx context.Context, prompt string) (string, error) {
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return constants.UnknownParty, err
	}
	name := strings.ToUpper(strings.TrimSpace(strings.NewReplacer("\n", "", "\r", "").Replace(text)))
	if name == "" {
		return constants.UnknownParty, nil
	}
	return name, nil
}

// SortContainers implements llm.ContainerAligner. The reply is decoded and
// shape-checked; deeper validation (container-number sets) stays with the
// reconciliation engine, which knows both inputs.
func (c *Client) SortContainers(ctx context.Context, invoice, declaration *entity.ContainerMap) (*llm.AlignedContainers, error) {
	payload, err := json.Marshal(map[string]any{
		"invoice_containers": invoice,
		"xml_containers":     declaration,
	})
	if err != nil {
		return nil, fmt.Errorf("encode containers: %w", err)
	}

	text, err := c.generate(ctx, llm.BuildSortPrompt(string(payload)))
	if err != nil {
		return nil, err
	}
	return llm.DecodeAligned(text)
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
