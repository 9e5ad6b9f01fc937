package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/RafieAmandio/Teacher-RAG/pkg/utils/logging"
	"github.com/m-mizutani/gt"
)

func TestFromFallsBackToDefault(t *testing.T) {
	gt.Value(t, logging.From(context.Background())).Equal(logging.Default())
}

func TestWithEmbedsLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)
	ctx := logging.With(context.Background(), logger)

	logging.From(ctx).Info("hello", "job_id", "abc")

	var record map[string]any
	gt.NoError(t, json.Unmarshal(buf.Bytes(), &record)).Required()
	gt.Value(t, record["msg"]).Equal("hello")
	gt.Value(t, record["job_id"]).Equal("abc")
}

func TestJSONLoggerRedactsSecrets(t *testing.T) {
	type Credential struct {
		Provider string
		APIKey   string
	}

	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)
	logger.Info("configured", "llm", Credential{Provider: "openai", APIKey: "sk-very-secret"})

	gt.String(t, buf.String()).Contains("openai")
	gt.Bool(t, bytes.Contains(buf.Bytes(), []byte("sk-very-secret"))).False()
}

func TestSetDefaultIgnoresNil(t *testing.T) {
	before := logging.Default()
	logging.SetDefault(nil)
	gt.Value(t, logging.Default()).Equal(before)
}
