package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/reactor/docsproxy/client"
	"github.com/reactor/docsproxy/fetch"
	"github.com/reactor/docsproxy/internal/admission"
	"github.com/reactor/docsproxy/internal/core"
	"github.com/reactor/docsproxy/internal/metrics"
	"github.com/reactor/docsproxy/internal/resolve"
)

const (
	coreReadmeURL = "https://github.com/reactor/reactor-core/blob/master/README.md"

	legacyRepository = "https://repo.spring.io/release/io/projectreactor"
	legacyVersion    = "2.0.8.RELEASE"
)

// rewrite redirects to the request URI with every from replaced by to.
func rewrite(from, to string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, strings.ReplaceAll(r.URL.RequestURI(), from, to), http.StatusFound)
	}
}

func redirect(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// extDocs sends the javadoc of the former reactor-addons bundle to the
// module that now owns each package.
func (s *Server) extDocs(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case strings.Contains(path, "/adapter/"):
		rewrite("/ext/docs/", "/docs/adapter/release/")(w, r)
	case strings.Contains(path, "/test/"):
		rewrite("/ext/docs/", "/docs/test/release/")(w, r)
	default:
		s.pageNotFound(w, r)
	}
}

// legacyJavadoc redirects 2.x javadoc requests into the last 2.x javadoc
// archive of the artifact.
func legacyJavadoc(w http.ResponseWriter, r *http.Request) {
	artifact := mux.Vars(r)["module"]
	target := fmt.Sprintf("%s/%s/%s/%s-%s-javadoc.jar!/index.html",
		legacyRepository, artifact, legacyVersion, artifact, legacyVersion)
	http.Redirect(w, r, target, http.StatusFound)
}

// proxy streams the archive entry addressed by the request from upstream.
func (s *Server) proxy(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	moduleName, spec := vars["module"], vars["version"]

	info, err := s.resolver.Resolve(moduleName, spec, r.URL.Path)
	if err != nil {
		label := s.moduleLabel(moduleName)
		switch {
		case errors.Is(err, client.ErrNoKDoc):
			metrics.ObserveResolution(label, metrics.OutcomeNoKDoc)
			s.kdocNotFound(w, r, err)
		case errors.Is(err, fetch.ErrNotFound):
			metrics.ObserveResolution(label, metrics.OutcomeNotFound)
			s.pageNotFound(w, r)
		default:
			metrics.ObserveResolution(label, metrics.OutcomeError)
			s.Logger.Error("resolving documentation", "module", moduleName, "version", spec, "path", r.URL.Path, "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	upstream := info.URL
	if r.URL.RawQuery != "" {
		upstream += "?" + r.URL.RawQuery
	}

	start := time.Now()
	artifact, err := s.Fetcher.FetchWithHeader(r.Context(), upstream, requestHeaders(r.Header))
	metrics.ObserveUpstream(info.Category.String(), time.Since(start))
	if err != nil {
		if errors.Is(err, fetch.ErrNotFound) {
			metrics.ObserveResolution(info.Module.Name, metrics.OutcomeNotFound)
			s.pageNotFound(w, r)
			return
		}
		metrics.ObserveResolution(info.Module.Name, metrics.OutcomeError)
		s.Logger.Warn("upstream fetch failed", "module", info.Module.Name, "version", info.Version, "url", upstream, "err", err)
		writeError(w, http.StatusBadGateway, "Upstream repository unavailable")
		return
	}
	defer func() { _ = artifact.Body.Close() }()

	metrics.ObserveResolution(info.Module.Name, metrics.OutcomeProxied)
	copyResponseHeaders(w.Header(), artifact.Header)
	switch {
	case strings.HasSuffix(r.URL.Path, ".svg"):
		w.Header().Set("Content-Type", "image/svg+xml")
	case strings.HasSuffix(r.URL.Path, ".css"):
		w.Header().Set("Content-Type", "text/css")
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, artifact.Body); err != nil {
		s.Logger.Debug("streaming interrupted", "url", upstream, "err", err)
	}
}

// moduleLabel bounds the module metric label to registered modules.
func (s *Server) moduleLabel(name string) string {
	if len(s.Registry.Lookup(name)) == 0 {
		return "unknown"
	}
	return name
}

// requestHeaders returns the headers forwarded upstream. Headers added by
// the CDN are dropped.
func requestHeaders(in http.Header) http.Header {
	out := make(http.Header, len(in))
	for name, values := range in {
		if strings.HasPrefix(name, "Cf-") {
			continue
		}
		out[name] = values
	}
	return out
}

// copyResponseHeaders copies upstream headers except those describing the
// repository itself or forcing a download.
func copyResponseHeaders(dst, src http.Header) {
	for name, values := range src {
		if strings.HasPrefix(name, "X-Artifactory") ||
			strings.EqualFold(name, "X-Node") ||
			strings.EqualFold(name, "Content-Disposition") {
			continue
		}
		dst[name] = values
	}
}

func (s *Server) pageNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusNotFound)
	_, _ = fmt.Fprintf(w, "The page %s could not be found.\n", r.URL.Path)
}

func (s *Server) kdocNotFound(w http.ResponseWriter, r *http.Request, err error) {
	var kerr *client.KDocUnavailableError
	msg := "Kotlin documentation is not available for this version."
	if errors.As(err, &kerr) {
		msg = fmt.Sprintf("Kotlin documentation is not available for %s %s.", kerr.ArtifactID, kerr.Version)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusNotFound)
	_, _ = fmt.Fprintf(w, "The page %s could not be found.\n%s\n", r.URL.Path, msg)
}

type moduleSummary struct {
	Name       string `json:"name"`
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	PURL       string `json:"purl"`
	Feed       string `json:"feed,omitempty"`
	Count      int    `json:"versionCount"`
}

type versionDetail struct {
	Version    string            `json:"version"`
	PURL       string            `json:"purl"`
	Repository string            `json:"repository"`
	RefDocPath string            `json:"refDocPath,omitempty"`
	HasKDoc    bool              `json:"hasKDoc"`
	URLs       map[string]string `json:"urls"`
}

type moduleDetail struct {
	moduleSummary
	VersionFloor string          `json:"versionFloor,omitempty"`
	BadVersions  []string        `json:"badVersions,omitempty"`
	Versions     []versionDetail `json:"versions"`
}

func summarize(m *core.Module) moduleSummary {
	return moduleSummary{
		Name:       m.Name,
		GroupID:    m.GroupID,
		ArtifactID: m.ArtifactID,
		PURL:       m.PURL(""),
		Feed:       m.Feed,
		Count:      len(m.Versions()),
	}
}

func (s *Server) listModules(w http.ResponseWriter, r *http.Request) {
	modules := s.Registry.Modules()
	out := make([]moduleSummary, 0, len(modules))
	for _, m := range modules {
		out = append(out, summarize(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getModule(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["module"]
	m, ok := s.Registry.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("module %s not found", name))
		return
	}

	a := client.Artifact{Module: m.Name, GroupID: m.GroupID, ArtifactID: m.ArtifactID}
	versions := m.Versions()
	detail := moduleDetail{
		moduleSummary: summarize(m),
		VersionFloor:  m.VersionFloor(),
		BadVersions:   m.BadVersions(),
		Versions:      make([]versionDetail, 0, len(versions)),
	}
	for _, v := range versions {
		repo := resolve.Repository(m, v.String())
		hasKDoc := client.HasKDoc(m.Name, v)
		urls := client.BuildURLs(s.URLs, repo, a, v)
		if !hasKDoc {
			delete(urls, client.KDoc.String())
		}
		detail.Versions = append(detail.Versions, versionDetail{
			Version:    v.String(),
			PURL:       m.PURL(v.String()),
			Repository: repo,
			RefDocPath: client.RefDocPath(m.Name, v),
			HasKDoc:    hasKDoc,
			URLs:       urls,
		})
	}
	writeJSON(w, http.StatusOK, detail)
}

type breakerStater interface {
	GetBreakerState() map[string]string
}

// upstreamStatus reports the circuit breaker state of every upstream host
// contacted so far.
func (s *Server) upstreamStatus(w http.ResponseWriter, r *http.Request) {
	states := map[string]string{}
	if bs, ok := s.Fetcher.(breakerStater); ok {
		states = bs.GetBreakerState()
	}
	writeJSON(w, http.StatusOK, states)
}

type webhookResponse struct {
	Module  string `json:"module"`
	Version string `json:"version"`
	Outcome string `json:"outcome"`
}

// webhook admits a freshly published version of a module.
func (s *Server) webhook(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	moduleName, literal := vars["module"], vars["version"]

	outcome := s.Admitter.Admit(r.Context(), moduleName, literal)
	metrics.ObserveAdmission(outcome.String())

	switch outcome {
	case admission.NoContent:
		w.WriteHeader(http.StatusNoContent)
		return
	case admission.Created:
		if m, ok := s.Registry.Get(moduleName); ok {
			metrics.SetModuleVersions(m.Name, len(m.Versions()))
		}
	}
	writeJSON(w, outcome.StatusCode(), webhookResponse{
		Module:  moduleName,
		Version: literal,
		Outcome: outcome.String(),
	})
}
