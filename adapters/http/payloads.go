package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/artpar/paygate/domain/ledger"
)

// EmbeddingDimensions is the length of vectors returned by /api/v1/embed.
const EmbeddingDimensions = 384

// paidInput is the optional JSON body accepted by priced endpoints.
type paidInput struct {
	Query  string `json:"query"`
	Text   string `json:"text"`
	Prompt string `json:"prompt"`
}

func readInput(r *http.Request) paidInput {
	var in paidInput
	if r.Body == nil {
		return in
	}
	// Bodies are optional and never fail a paid request.
	_ = json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&in)
	return in
}

// GenericData answers POST /api/v1/request.
func GenericData(r *http.Request, e ledger.Entry) any {
	return map[string]any{
		"result":    "success",
		"message":   "This is paid API response data",
		"endpoint":  e.Endpoint,
		"timestamp": timestamp(e.CreatedAt),
	}
}

// PredictData answers POST /api/v1/predict.
func PredictData(r *http.Request, e ledger.Entry) any {
	return map[string]any{
		"prediction": "BULLISH",
		"confidence": 0.75,
		"model":      "predict-v1",
	}
}

// AnalyzeData answers POST /api/v1/analyze.
func AnalyzeData(r *http.Request, e ledger.Entry) any {
	return map[string]any{
		"analysis": map[string]any{
			"sentiment":  "positive",
			"key_themes": []string{"AI", "crypto", "growth"},
			"confidence": 0.82,
		},
	}
}

// SearchData answers POST /api/v1/search.
func SearchData(r *http.Request, e ledger.Entry) any {
	return map[string]any{
		"query": readInput(r).Query,
		"results": []map[string]string{
			{"title": "Result 1", "url": "https://example.com/1"},
			{"title": "Result 2", "url": "https://example.com/2"},
		},
	}
}

// EmbedData answers POST /api/v1/embed.
func EmbedData(r *http.Request, e ledger.Entry) any {
	vec := make([]float64, EmbeddingDimensions)
	for i := range vec {
		vec[i] = 0.1
	}
	return map[string]any{
		"embedding":  vec,
		"dimensions": EmbeddingDimensions,
	}
}

// CompleteData answers POST /api/v1/complete.
func CompleteData(r *http.Request, e ledger.Entry) any {
	return map[string]any{
		"completion": "This is a completion response.",
	}
}

// payloads maps the built-in priced paths to their responses. Paths not
// listed here answer with GenericData.
var payloads = map[string]func(*http.Request, ledger.Entry) any{
	"/api/v1/request":  GenericData,
	"/api/v1/predict":  PredictData,
	"/api/v1/analyze":  AnalyzeData,
	"/api/v1/search":   SearchData,
	"/api/v1/embed":    EmbedData,
	"/api/v1/complete": CompleteData,
}

// PayloadFor returns the response builder for path.
func PayloadFor(path string) func(*http.Request, ledger.Entry) any {
	if fn, ok := payloads[path]; ok {
		return fn
	}
	return GenericData
}
