package web

import (
	"net/http"

	"github.com/JonMunkholm/hsclassify/internal/core"
	"github.com/JonMunkholm/hsclassify/internal/hscode"
	"github.com/JonMunkholm/hsclassify/internal/oracle"
)

// maxJSONBody bounds JSON request bodies. Bulk requests are capped by row
// count in the service, this only guards the decoder.
const maxJSONBody = 4 << 20

type classifyRequest struct {
	Description string `json:"description" validate:"max=2000"`
	Country     string `json:"country" validate:"omitempty,max=8"`
}

type classifyResponse struct {
	Description string              `json:"description"`
	Country     hscode.Jurisdiction `json:"country,omitempty"`
	Code        string              `json:"hsc_code"`
	Confidence  float64             `json:"confidence"`
}

type bulkRequest struct {
	Descriptions []string `json:"descriptions" validate:"required,dive,max=2000"`
	Country      string   `json:"country" validate:"omitempty,max=8"`
}

type askRequest struct {
	Question string       `json:"question" validate:"max=2000"`
	Table    []oracle.Row `json:"table" validate:"max=1000"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

type formatRequest struct {
	Code    string `json:"code" validate:"max=64"`
	Country string `json:"country" validate:"omitempty,max=8"`
}

type formatResponse struct {
	Code    string              `json:"code"`
	Country hscode.Jurisdiction `json:"country,omitempty"`
}

type jurisdictionsResponse struct {
	Jurisdictions []hscode.Entry `json:"jurisdictions"`
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "OK"})
}

// handleClassify classifies a single description.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req classifyRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	c, err := s.service.Classify(r.Context(), req.Description, hscode.Jurisdiction(req.Country))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, classifyResponse{
		Description: c.Description,
		Country:     c.Jurisdiction,
		Code:        c.Code,
		Confidence:  c.Confidence,
	})
}

// handleBulkClassify classifies a list of descriptions for one country.
func (s *Server) handleBulkClassify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req bulkRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	items := core.Items(req.Descriptions, hscode.Jurisdiction(req.Country))
	report, err := s.service.ClassifyBatch(r.Context(), items)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, report)
}

// handleAsk answers a question about a table of classified products.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req askRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	answer, err := s.service.Ask(r.Context(), req.Question, req.Table)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, askResponse{Answer: answer})
}

// handleFormat runs the code formatter without calling the oracle.
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req formatRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	j := hscode.Jurisdiction(req.Country).Normalize()
	writeJSON(w, r, formatResponse{
		Code:    s.service.Format(req.Code, j),
		Country: j,
	})
}

// handleListJurisdictions lists the known jurisdictions and code lengths.
func (s *Server) handleListJurisdictions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, jurisdictionsResponse{Jurisdictions: s.service.Table().Entries()})
}

// handleBatchStatus reports batch limiter occupancy.
func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.service.BatchStatus())
}
