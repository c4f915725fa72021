package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talent-search/internal/cv"
)

const maxUploadBytes = 10 << 20

// ResumeUploadResponse describes a stored resume.
type ResumeUploadResponse struct {
	ResumeID         uuid.UUID `json:"resume_id"`
	CandidateID      uuid.UUID `json:"candidate_id"`
	Filename         string    `json:"filename"`
	FileType         string    `json:"file_type"`
	FileSize         int64     `json:"file_size"`
	TextLength       int       `json:"text_length"`
	Skills           []string  `json:"skills"`
	CacheInvalidated int       `json:"cache_entries_invalidated"`
	ProcessingTimeMS int64     `json:"processing_time_ms"`
}

// ResumeUploadHandler stores a new resume for a candidate
// @Summary Upload resume
// @Description Upload a resume (PDF, DOCX, DOC, RTF, ODT or TXT). Text and skills are extracted and stored as a completed resume, and cached results that may mention the candidate are invalidated.
// @Tags candidates
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Candidate ID"
// @Param file formData file true "Resume file"
// @Success 201 {object} ResumeUploadResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /candidates/{id}/resume [post]
func (a *API) ResumeUploadHandler(w http.ResponseWriter, r *http.Request) {
	if a.resumes == nil || a.cvParser == nil {
		a.writeError(w, http.StatusServiceUnavailable, "resume uploads are not configured")
		return
	}

	id, ok := a.candidateID(w, r)
	if !ok {
		return
	}
	startTime := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.writeError(w, http.StatusBadRequest, "file too large or invalid (max 10MB)")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if !cv.SupportedType(header.Filename) {
		a.writeError(w, http.StatusBadRequest, "invalid file type (supported: PDF, DOCX, DOC, RTF, ODT, TXT)")
		return
	}

	_, found, err := a.resumes.FetchCandidateByID(r.Context(), id)
	if err != nil {
		a.logger.Error("candidate lookup failed", zap.Stringer("candidate_id", id), zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !found {
		a.writeError(w, http.StatusNotFound, "candidate not found")
		return
	}

	doc, err := a.cvParser.Parse(header.Filename, file)
	if err != nil {
		if errors.Is(err, cv.ErrUnsupportedFileType) {
			a.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		a.logger.Error("resume parsing failed", zap.String("filename", header.Filename), zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "failed to parse resume")
		return
	}

	skills := a.extractor.Skills(r.Context(), doc.Text)

	resumeID, err := a.resumes.SaveParsedResume(r.Context(), id, doc.Filename, doc.Text, skills)
	if err != nil {
		a.logger.Error("failed to save resume", zap.Stringer("candidate_id", id), zap.Error(err))
		a.writeError(w, http.StatusInternalServerError, "failed to save resume")
		return
	}

	removed := a.searcher.InvalidateCandidate(r.Context(), id)

	resp := ResumeUploadResponse{
		ResumeID:         resumeID,
		CandidateID:      id,
		Filename:         doc.Filename,
		FileType:         doc.FileType,
		FileSize:         doc.FileSize,
		TextLength:       len(doc.Text),
		Skills:           skills,
		CacheInvalidated: removed,
		ProcessingTimeMS: time.Since(startTime).Milliseconds(),
	}
	if resp.Skills == nil {
		resp.Skills = []string{}
	}

	a.logger.Info("resume uploaded",
		zap.Stringer("candidate_id", id),
		zap.Stringer("resume_id", resumeID),
		zap.Int("skills", len(skills)),
		zap.Int64("processing_time_ms", resp.ProcessingTimeMS))
	a.writeJSON(w, http.StatusCreated, resp)
}
