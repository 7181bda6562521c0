package cli

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/Rishikoli/chaingraph/pkg/chain"
	"github.com/Rishikoli/chaingraph/pkg/pipeline"
)

const defaultServeAddr = "localhost:8321"

// newServeCmd creates the serve command, a local preview server that
// renders chain files on demand. Re-running a render with unchanged inputs
// hits the cache, so refreshing the browser is cheap.
func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [file...]",
		Short: "Serve a live preview of fraud chain files over HTTP",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if addr == "" {
				addr = defaultServeAddr
			}
			return runServe(cmd.Context(), args, cfg, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default localhost:8321)")
	return cmd
}

// previewServer renders the loaded chains per request.
type previewServer struct {
	chains []chain.Chain
	runner *pipeline.Runner
	logger *log.Logger
}

func runServe(ctx context.Context, inputs []string, cfg Config, addr string) error {
	logger := loggerFromContext(ctx)

	chains, err := chain.ReadChainFiles(inputs)
	if err != nil {
		return err
	}

	store, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}

	ps := &previewServer{
		chains: chains,
		runner: pipeline.NewRunner(store, nil, logger),
		logger: logger,
	}
	defer ps.runner.Close()

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Get("/", ps.handleIndex)
	r.Get("/healthz", ps.handleHealth)
	r.Get("/graph.svg", ps.handleGraph(pipeline.FormatSVG, "image/svg+xml"))
	r.Get("/graph.png", ps.handleGraph(pipeline.FormatPNG, "image/png"))
	r.Get("/graph.json", ps.handleGraph(pipeline.FormatJSON, "application/json"))

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	logger.Infof("Preview server listening on http://%s", addr)
	printInfo("Serving %d chain(s) on http://%s", len(chains), addr)
	printNextStep("Open the SVG preview", fmt.Sprintf("open http://%s/graph.svg", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (ps *previewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// indexPage is the preview page: the rendered SVG plus a small search form.
// With controls=0 the chrome is hidden and only the graph remains.
const indexPage = `<!DOCTYPE html>
<html>
<head>
<title>chaingraph preview</title>
<style>
body { font-family: sans-serif; margin: 1rem; background: #fafafa; }
form { margin-bottom: 1rem; }
img { border: 1px solid #ddd; background: #fff; }
</style>
</head>
<body>
%s<img src="/graph.svg%s" alt="fraud chain graph">
</body>
</html>
`

const indexControls = `<form method="get" action="/">
<input type="search" name="q" value="%s" placeholder="highlight query">
<label><input type="checkbox" name="focus" value="1"%s> focus matches</label>
<button type="submit">Render</button>
</form>
`

// handleIndex serves the HTML preview page. The q and focus parameters are
// forwarded to the embedded SVG; controls=0 hides the search form.
func (ps *previewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	focus := boolParam(q.Get("focus"))

	graphQuery := ""
	if query != "" || focus {
		vals := url.Values{}
		if query != "" {
			vals.Set("q", query)
		}
		if focus {
			vals.Set("focus", "1")
		}
		graphQuery = "?" + vals.Encode()
	}

	chrome := ""
	if q.Get("controls") != "0" {
		checked := ""
		if focus {
			checked = " checked"
		}
		chrome = fmt.Sprintf(indexControls, html.EscapeString(query), checked)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w, indexPage, chrome, graphQuery)
}

// boolParam interprets the truthy query parameter values.
func boolParam(v string) bool { return v == "1" || v == "true" }

// handleGraph renders the loaded chains in the given format. Query
// parameters tune the view per request:
//
//	q        free-text highlight query
//	ids      comma-separated reference ids (overrides q)
//	focus    fit the frame to the matched nodes when "1" or "true"
//	strategy force or layered
//	width    frame width in pixels
//	height   frame height in pixels
//	refresh  bypass the cache when "1" or "true"
func (ps *previewServer) handleGraph(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		opts := pipeline.Options{
			Strategy: q.Get("strategy"),
			Query:    q.Get("q"),
			AllowIDs: parseIDs(q.Get("ids")),
			Focus:    boolParam(q.Get("focus")),
			Formats:  []string{format},
			Refresh:  boolParam(q.Get("refresh")),
			Logger:   ps.logger,
		}
		if v, err := strconv.ParseFloat(q.Get("width"), 64); err == nil {
			opts.Width = v
		}
		if v, err := strconv.ParseFloat(q.Get("height"), 64); err == nil {
			opts.Height = v
		}

		result, err := ps.runner.Execute(r.Context(), ps.chains, opts)
		if err != nil {
			ps.logger.Error("render request failed", "format", format, "err", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(result.Artifacts[format])
	}
}
