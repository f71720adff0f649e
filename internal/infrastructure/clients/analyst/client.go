package analyst

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/healthintel/snowbridge/pkg/config"
	apperrors "github.com/healthintel/snowbridge/pkg/errors"
)

const messagePath = "/api/v2/cortex/analyst/message"

// TokenSource mints a fresh bearer assertion for each analyst call.
type TokenSource interface {
	Issue() (string, error)
}

// Client calls the Cortex Analyst endpoint to translate natural-language
// questions into SQL. It never executes SQL itself; generation and
// execution stay independently testable.
type Client struct {
	http              *resty.Client
	tokens            TokenSource
	semanticModelPath string
	timeout           time.Duration
}

// Translation is the analyst's answer: the generated statement and any
// accompanying prose.
type Translation struct {
	SQL            string
	Interpretation string
}

type contentBlock struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Statement string `json:"statement"`
}

type analystResponse struct {
	Message struct {
		Content []contentBlock `json:"content"`
	} `json:"message"`

	// Documented fallback locations for the statement.
	SQL  string `json:"sql"`
	Code string `json:"code"`
}

type analystRequest struct {
	Timeout           int64            `json:"timeout"`
	Messages          []requestMessage `json:"messages"`
	SemanticModelFile string           `json:"semantic_model_file"`
}

type requestMessage struct {
	Role    string           `json:"role"`
	Content []requestContent `json:"content"`
}

type requestContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewClient creates an analyst client from the loaded configuration.
func NewClient(cfg *config.Config, tokens TokenSource) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.AnalystBaseURL()).
		SetTimeout(cfg.Analyst.RequestTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:              httpClient,
		tokens:            tokens,
		semanticModelPath: cfg.SemanticModelPath(),
		timeout:           cfg.Analyst.RequestTimeout,
	}
}

// Translate sends query to the analyst endpoint and extracts the
// generated SQL and interpretation from the response content blocks.
func (c *Client) Translate(ctx context.Context, query string) (*Translation, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.NewQueryTranslationError("query must not be empty", 0, nil)
	}

	token, err := c.tokens.Issue()
	if err != nil {
		return nil, err
	}

	body := analystRequest{
		Timeout: c.timeout.Milliseconds(),
		Messages: []requestMessage{
			{
				Role:    "user",
				Content: []requestContent{{Type: "text", Text: query}},
			},
		},
		SemanticModelFile: c.semanticModelPath,
	}

	var parsed analystResponse
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("X-Snowflake-Authorization-Token-Type", "KEYPAIR_JWT").
		SetBody(body).
		SetResult(&parsed).
		Post(messagePath)

	if err != nil {
		recordAnalystMetric(ctx, 0, time.Since(start), err)
		return nil, apperrors.NewQueryTranslationError("analyst request failed", 0, err)
	}

	recordAnalystMetric(ctx, resp.StatusCode(), time.Since(start), nil)

	if resp.IsError() {
		return nil, apperrors.NewQueryTranslationError(
			fmt.Sprintf("analyst request failed with status %d: %s", resp.StatusCode(), truncate(string(resp.Body()), 2048)),
			resp.StatusCode(), nil)
	}

	return extractTranslation(&parsed)
}

func extractTranslation(resp *analystResponse) (*Translation, error) {
	var sql string
	var prose []string

	for _, block := range resp.Message.Content {
		switch block.Type {
		case "sql":
			if sql == "" {
				sql = block.Statement
			}
		case "text":
			if block.Text != "" {
				prose = append(prose, block.Text)
			}
		}
	}

	if sql == "" {
		sql = resp.SQL
	}
	if sql == "" {
		sql = resp.Code
	}
	if sql == "" {
		return nil, apperrors.NewNoSQLGeneratedError("analyst response contained no SQL statement")
	}

	return &Translation{
		SQL:            sql,
		Interpretation: strings.Join(prose, "\n\n"),
	}, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
