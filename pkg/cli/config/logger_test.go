package config_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/chronicle/pkg/cli/config"
)

type storeCredential struct {
	Project string
	Token   string `masq:"secret"`
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := config.NewLogger(&buf, "info", "json")
	gt.NoError(t, err).Required()

	logger.Debug("hidden")
	logger.Info("sweep done", "events", 3, "store", storeCredential{Project: "chronicle-dev", Token: "s3cr3t-token"})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	gt.Array(t, lines).Length(1).Required()

	var record map[string]any
	gt.NoError(t, json.Unmarshal(lines[0], &record)).Required()
	gt.Value(t, record["msg"]).Equal("sweep done")
	gt.Value(t, record["events"]).Equal(3.0)
	gt.Bool(t, strings.Contains(buf.String(), "s3cr3t-token")).False()
	gt.String(t, buf.String()).Contains("chronicle-dev")
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := config.NewLogger(&buf, "DEBUG", "console")
	gt.NoError(t, err).Required()

	logger.Debug("rehydrated", "events", 10)
	gt.String(t, buf.String()).Contains("rehydrated")
}

func TestNewLogger_Errors(t *testing.T) {
	var buf bytes.Buffer

	_, err := config.NewLogger(&buf, "verbose", "json")
	gt.Value(t, err).NotNil()

	_, err = config.NewLogger(&buf, "info", "xml")
	gt.Value(t, err).NotNil()
}
