package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hedamo/transparency/pkg/question"
	"github.com/hedamo/transparency/pkg/report"
	"github.com/hedamo/transparency/pkg/score"
)

const (
	errScore     = "Failed to calculate transparency score"
	errQuestions = "Failed to generate questions"
	errAnalyze   = "Failed to analyze product"
	errReport    = "Failed to generate PDF report"
)

type errResp struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type scoreRequest struct {
	QAPairs     json.RawMessage `json:"qa_pairs"`
	Answers     json.RawMessage `json:"answers"`
	ProductName string          `json:"product_name"`
	ProductData map[string]any  `json:"product_data"`
}

// pairs prefers qa_pairs and falls back to the legacy answers field.
func (req *scoreRequest) pairs() ([]score.QAPair, error) {
	if len(req.QAPairs) > 0 {
		return score.ParsePairs(req.QAPairs)
	}
	return score.ParsePairs(req.Answers)
}

type productContext struct {
	ProductName     string          `json:"product_name"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	PreviousAnswers json.RawMessage `json:"previous_answers"`
}

type questionsRequest struct {
	Context      productContext `json:"context"`
	NumQuestions int            `json:"num_questions"`
}

type analyzeRequest struct {
	ProductData struct {
		ProductName  string          `json:"productName"`
		Brand        string          `json:"brand"`
		Category     string          `json:"category"`
		Description  string          `json:"description"`
		Concerns     []string        `json:"concerns"`
		Answers      json.RawMessage `json:"answers"`
		NumQuestions int             `json:"numQuestions"`
	} `json:"productData"`
}

type reportRequest struct {
	ProductData struct {
		report.Product
		Answers json.RawMessage `json:"answers"`
	} `json:"productData"`
	AnalysisData struct {
		Score *score.Report `json:"score"`
	} `json:"analysisData"`
}

type productInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Brand      string    `json:"brand"`
	Category   string    `json:"category"`
	AnalyzedAt time.Time `json:"analyzedAt"`
}

type analysisResp struct {
	Success     bool                 `json:"success"`
	Questions   []*question.Question `json:"questions"`
	Score       *score.Report        `json:"score"`
	ProductInfo productInfo          `json:"productInfo"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSON(w, status, errResp{Error: msg, Message: detail})
}

// decode reads a JSON request body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	if !isJSON(r) {
		return fmt.Errorf("unsupported content type: %s", r.Header.Get("Content-Type"))
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": serviceName + " API",
		"version": s.version,
		"status":  "running",
		"endpoints": map[string]string{
			"health":             "/health",
			"transparency_score": "/api/transparency-score",
			"generate_questions": "/api/generate-questions",
			"analyze_product":    "/api/analyze-product",
			"pdf_report":         "/api/generate-pdf-report",
		},
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   serviceName,
		"version":   s.version,
		"model":     s.model,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Seconds(),
	})
}

func (s *Server) transparencyScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errScore, err.Error())
		return
	}

	pairs, err := req.pairs()
	if err != nil {
		writeError(w, http.StatusBadRequest, errScore, err.Error())
		return
	}

	slog.Debug("scoring", "product", req.ProductName, "pairs", len(pairs))
	writeJSON(w, http.StatusOK, score.Score(pairs))
}

func (s *Server) generateQuestions(w http.ResponseWriter, r *http.Request) {
	var req questionsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errQuestions, err.Error())
		return
	}

	prev, err := score.ParsePairs(req.Context.PreviousAnswers)
	if err != nil {
		writeError(w, http.StatusBadRequest, errQuestions, err.Error())
		return
	}

	pc := &question.ProductContext{
		ProductName:     req.Context.ProductName,
		Category:        req.Context.Category,
		Description:     req.Context.Description,
		PreviousAnswers: prev,
	}

	writeJSON(w, http.StatusOK, s.questions(r.Context(), pc, req.NumQuestions))
}

func (s *Server) analyzeProduct(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errAnalyze, err.Error())
		return
	}
	pd := req.ProductData

	pairs, err := score.ParsePairs(pd.Answers)
	if err != nil {
		writeError(w, http.StatusBadRequest, errAnalyze, err.Error())
		return
	}

	desc := pd.Description
	if desc == "" && len(pd.Concerns) > 0 {
		desc = "Consumer concerns: " + strings.Join(pd.Concerns, ", ")
	}

	pc := &question.ProductContext{
		ProductName:     pd.ProductName,
		Category:        pd.Category,
		Description:     desc,
		PreviousAnswers: pairs,
	}

	resp := analysisResp{
		Success:   true,
		Questions: s.questions(r.Context(), pc, pd.NumQuestions).Questions,
		ProductInfo: productInfo{
			ID:         uuid.NewString(),
			Name:       pd.ProductName,
			Brand:      pd.Brand,
			Category:   pd.Category,
			AnalyzedAt: time.Now().UTC(),
		},
	}
	if len(pairs) > 0 {
		resp.Score = score.Score(pairs)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) generateReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errReport, err.Error())
		return
	}
	pd := req.ProductData

	doc := &report.Document{
		Product:     pd.Product,
		Score:       req.AnalysisData.Score,
		GeneratedAt: time.Now().UTC(),
	}
	if doc.Score == nil {
		pairs, err := score.ParsePairs(pd.Answers)
		if err != nil {
			writeError(w, http.StatusBadRequest, errReport, err.Error())
			return
		}
		if len(pairs) > 0 {
			doc.Score = score.Score(pairs)
		}
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, doc); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, report.ErrNoProduct) {
			status = http.StatusBadRequest
		}
		writeError(w, status, errReport, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(pd.Name)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("failed to write PDF response", "error", err)
	}
}

// questions runs the configured generator and falls back to templates on error.
func (s *Server) questions(ctx context.Context, pc *question.ProductContext, n int) *question.Set {
	set, err := s.gen.Generate(ctx, pc, n)
	if err == nil && set != nil {
		return set
	}
	if err == nil {
		err = errors.New("generator returned no questions")
	}
	s.logger.Warn("question generator failed, using templates", "error", err)
	set, _ = question.TemplateGenerator{}.Generate(ctx, pc, n)
	return set
}
