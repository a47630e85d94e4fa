// Package server exposes the transform pipeline over HTTP: a JSON API for
// automation plus a small embedded UI for pasting dashboards.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/superlinear-space/jsnonet-transformer/pkg/transform"
	"github.com/superlinear-space/jsnonet-transformer/web"
)

const maxBodySize = 10 << 20

// cacheSize bounds the transform result cache. Transforms are pure, so a
// repeated body + options pair can be answered without re-running the
// pipeline.
const cacheSize = 128

type srv struct {
	logger *zap.Logger
	cache  *lru.Cache[uint64, *transform.Result]
}

// Handler returns an http.Handler serving the web UI and the transform API.
func Handler(logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, _ := lru.New[uint64, *transform.Result](cacheSize)
	s := &srv{logger: logger, cache: cache}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/transform", s.handleTransform)
	mux.HandleFunc("GET /", handleIndex)
	return mux
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := web.Content.ReadFile("index.html")
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func (s *srv) handleTransform(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "error reading request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(body) == 0 {
		http.Error(w, "empty request body", http.StatusBadRequest)
		return
	}

	opts, err := optionsFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	key := cacheKey(body, opts)
	result, hit := s.cache.Get(key)
	if !hit {
		result = transform.Transform(r.Context(), body, opts)
		s.cache.Add(key, result)
	}
	s.logger.Info("transform",
		zap.Int("bodyBytes", len(body)),
		zap.Bool("cacheHit", hit),
		zap.Bool("success", result.Success))

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(result)
}

// optionsFromQuery maps query parameters onto transform options; absent
// parameters keep their defaults.
func optionsFromQuery(r *http.Request) (transform.Options, error) {
	opts := transform.DefaultOptions()
	q := r.URL.Query()

	for name, target := range map[string]*bool{
		"validate":  &opts.Validate,
		"extract":   &opts.ExtractRepeated,
		"templates": &opts.CreateTemplates,
		"comments":  &opts.AddComments,
		"imports":   &opts.IncludeImports,
	} {
		if raw := q.Get(name); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return opts, fmt.Errorf("invalid %s parameter: %q", name, raw)
			}
			*target = v
		}
	}
	for name, target := range map[string]*int{
		"minOccurrences": &opts.MinPatternOccurrences,
		"indentSize":     &opts.IndentSize,
		"maxLineLength":  &opts.MaxLineLength,
	} {
		if raw := q.Get(name); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return opts, fmt.Errorf("invalid %s parameter: %q", name, raw)
			}
			*target = v
		}
	}
	return opts, nil
}

func cacheKey(body []byte, opts transform.Options) uint64 {
	digest := xxhash.New()
	digest.Write(body)
	fmt.Fprintf(digest, "|%+v", opts)
	return digest.Sum64()
}
