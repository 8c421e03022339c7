package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Terryzhang-jp/floorplan-label-maker/config"
	"github.com/Terryzhang-jp/floorplan-label-maker/floorplan"
	"github.com/Terryzhang-jp/floorplan-label-maker/vision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type stubModel struct {
	reply string
}

func (s stubModel) Generate(ctx context.Context, prompt string, img vision.Image) (*vision.Response, error) {
	return &vision.Response{Text: s.reply, Usage: vision.Usage{InputTokens: 100, OutputTokens: 10, TotalTokens: 110}}, nil
}

func (s stubModel) Name() string { return "stub" }

func testAnalyzer(t *testing.T, reply string) *floorplan.Analyzer {
	t.Helper()
	cfg := config.Default()
	cfg.APIKey = "test-key"
	a, err := floorplan.New(cfg, stubModel{reply: reply})
	require.NoError(t, err)
	return a
}

func writePlan(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
	return path
}

const fullReply = `{"interior_design_features": ["open plan living", "butler pantry", "walk-in robe system"], "exterior_design_features": ["double garage setup"]}`

func TestAnalyzeAll_KeepsOrderAndIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	images := []string{
		writePlan(t, dir, "a.png"),
		filepath.Join(dir, "missing.png"),
		writePlan(t, dir, "c.png"),
	}

	outcomes := analyzeAll(context.Background(), testAnalyzer(t, fullReply), images, 3)

	require.Len(t, outcomes, 3)
	for i, o := range outcomes {
		assert.Equal(t, images[i], o.Image)
	}
	assert.NoError(t, outcomes[0].Err)
	assert.ErrorIs(t, outcomes[1].Err, floorplan.ErrImageLoad)
	assert.Nil(t, outcomes[1].Analysis)
	assert.NoError(t, outcomes[2].Err)
	assert.Empty(t, outcomes[2].Issues)
}

func TestAnalyzeAll_QualityIssues(t *testing.T) {
	path := writePlan(t, t.TempDir(), "plan.png")
	outcomes := analyzeAll(context.Background(), testAnalyzer(t, `{"interior_design_features": ["pool zone", "pool zone"]}`), []string{path}, 0)

	require.Len(t, outcomes, 1)
	require.NoError(t, outcomes[0].Err)
	assert.NotEmpty(t, outcomes[0].Issues)

	assert.Equal(t, 0, exitCode(outcomes, false))
	assert.Equal(t, 1, exitCode(outcomes, true))
}

func TestExitCode(t *testing.T) {
	ok := outcome{Analysis: &floorplan.Analysis{}}
	failed := outcome{Err: errors.New("boom")}

	assert.Equal(t, 0, exitCode([]outcome{ok}, true))
	assert.Equal(t, 1, exitCode([]outcome{ok, failed}, false))
	assert.Equal(t, 0, exitCode(nil, true))
}

func sampleOutcomes() []outcome {
	return []outcome{
		{
			Image: "/plans/house.png",
			Analysis: &floorplan.Analysis{
				RequestID: "req-1",
				Model:     "gemini-1.5-flash",
				Result: &floorplan.Result{
					Interior: []string{"open plan living", "butler pantry"},
					Exterior: []string{"double garage setup"},
				},
				Usage: vision.Usage{InputTokens: 100, OutputTokens: 10, TotalTokens: 110, CostUSD: 0.0001},
			},
			Issues: []floorplan.Issue{{Kind: floorplan.IssueTooFewFeatures, Category: floorplan.InteriorFeaturesKey, Message: "interior features should have at least 3 items, got 2"}},
		},
		{
			Image: "/plans/flat.png",
			Analysis: &floorplan.Analysis{
				RequestID: "req-2",
				Model:     "gemini-1.5-flash",
				Result:    &floorplan.Result{Interior: []string{"walk-in robe system"}},
			},
		},
		{
			Image: "/plans/broken.png",
			Err:   errors.New("error analyzing floor plan /plans/broken.png: malformed response"),
		},
	}
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	oldArgs, oldFlags := os.Args, flag.CommandLine
	t.Cleanup(func() {
		os.Args, flag.CommandLine = oldArgs, oldFlags
	})
	os.Args = append([]string{"floorplan-analyzer"}, args...)
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flag.CommandLine.SetOutput(io.Discard)
}

func TestRun_ExitCodes(t *testing.T) {
	for _, k := range []string{"FLOORPLAN_PROVIDER", "GOOGLE_API_KEY", "OPENAI_API_KEY", "FLOORPLAN_MODEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "no images", args: nil, want: 2},
		{name: "unknown format", args: []string{"-format", "xml", "plan.png"}, want: 2},
		{name: "missing credential", args: []string{"plan.png"}, want: 1},
		{name: "missing env file", args: []string{"-env", "nope.env", "plan.png"}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args...)
			assert.Equal(t, tt.want, run())
		})
	}
}

func TestTextPrinter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTextPrinter(&buf).Print(sampleOutcomes()))
	out := buf.String()

	assert.Contains(t, out, "Analyzing floor plan: house.png")
	assert.Contains(t, out, "Interior Features (ranked by uniqueness):\n1. open plan living\n2. butler pantry\n")
	assert.Contains(t, out, "Exterior Features (ranked by uniqueness):\n1. double garage setup\n")
	assert.Contains(t, out, "- interior features should have at least 3 items, got 2")
	assert.Contains(t, out, "Tokens: 100 in / 10 out / 110 total")

	// flat.png has no exterior section
	flat := out[strings.Index(out, "flat.png"):]
	flat = flat[:strings.Index(flat, "broken.png")]
	assert.NotContains(t, flat, "Exterior Features")

	assert.Contains(t, out, "malformed response")
	assert.Contains(t, out, "Analysis failed. Please check the error message above.")
}

func TestJSONPrinter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&jsonPrinter{w: &buf}).Print(sampleOutcomes()))

	var reports []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &reports))
	require.Len(t, reports, 3)

	result := reports[0]["result"].(map[string]any)
	assert.Equal(t, []any{"open plan living", "butler pantry"}, result["interior_design_features"])
	assert.Equal(t, []any{"double garage setup"}, result["exterior_design_features"])

	flat := reports[1]["result"].(map[string]any)
	assert.NotContains(t, flat, "exterior_design_features")

	assert.Contains(t, reports[2]["error"], "malformed response")
	assert.NotContains(t, reports[2], "result")
}

func TestYAMLPrinter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&yamlPrinter{w: &buf}).Print(sampleOutcomes()))

	var reports []report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &reports))
	require.Len(t, reports, 3)

	assert.Equal(t, []string{"open plan living", "butler pantry"}, reports[0].Result.Interior)
	assert.Equal(t, "req-1", reports[0].RequestID)
	assert.Equal(t, int64(110), reports[0].Usage.TotalTokens)
	assert.Nil(t, reports[1].Result.Exterior)
	assert.NotEmpty(t, reports[2].Error)
}

func TestNewPrinter(t *testing.T) {
	for _, format := range []string{"text", "JSON", "yaml", "yml"} {
		p, err := newPrinter(format, &bytes.Buffer{})
		assert.NoError(t, err, format)
		assert.NotNil(t, p, format)
	}

	_, err := newPrinter("xml", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestValidateGeminiKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("key") == "good-key" {
			w.Write([]byte(`{"models": []}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "API key not valid."}}`))
	}))
	defer ts.Close()

	orig := geminiModelsURL
	geminiModelsURL = ts.URL
	t.Cleanup(func() { geminiModelsURL = orig })

	assert.NoError(t, validateAPIKey(context.Background(), config.ProviderGemini, "good-key"))

	err := validateAPIKey(context.Background(), config.ProviderGemini, "bad-key")
	require.Error(t, err)
	assert.Equal(t, "API key not valid.", err.Error())
}

func TestValidateOpenAIKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer sk-good":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data": []}`))
		case "Bearer sk-broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer ts.Close()

	orig := openaiModelsURL
	openaiModelsURL = ts.URL
	t.Cleanup(func() { openaiModelsURL = orig })

	assert.NoError(t, validateAPIKey(context.Background(), config.ProviderOpenAI, "sk-good"))

	err := validateAPIKey(context.Background(), config.ProviderOpenAI, "sk-bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 401")

	err = validateAPIKey(context.Background(), config.ProviderOpenAI, "sk-broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected response (HTTP 500)")
}

func TestCredentialEnvVar(t *testing.T) {
	assert.Equal(t, "GOOGLE_API_KEY", credentialEnvVar(config.ProviderGemini))
	assert.Equal(t, "OPENAI_API_KEY", credentialEnvVar(config.ProviderOpenAI))

	t.Setenv("FLOORPLAN_PROVIDER", " OpenAI ")
	assert.Equal(t, config.ProviderOpenAI, selectedProvider())
}
