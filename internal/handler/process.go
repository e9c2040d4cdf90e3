package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/knbl-ai/VideScreenShotExtractor/internal/domain"
	"github.com/knbl-ai/VideScreenShotExtractor/internal/middleware"
)

// maxRequestBody bounds the JSON body; a URL never needs more.
const maxRequestBody = 64 << 10

// Processor runs the fetch, extract and publish pipeline for one video URL.
// Satisfied by *pipeline.Pipeline and allows tests to inject a stub.
type Processor interface {
	Process(ctx context.Context, videoURL string) (string, error)
}

// ProcessRequest is the JSON body accepted by POST /process-video.
type ProcessRequest struct {
	VideoURL string `json:"videoUrl"`
}

// ProcessResponse is the JSON body returned on success.
type ProcessResponse struct {
	ImageURL string `json:"imageUrl"`
}

// ErrorResponse is the JSON body returned on any failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewProcessHandler returns an http.HandlerFunc for POST /process-video.
//
// A missing, empty or undecodable videoUrl yields 400. Any pipeline failure
// yields 500 with the failure's own message, so fetch, extraction and publish
// errors are only distinguishable by text.
func NewProcessHandler(p Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		var req ProcessRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
			req.VideoURL = ""
		}
		if req.VideoURL == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: domain.ErrVideoURLRequired.Error()})
			return
		}

		logger := log.WithFields(log.Fields{
			"request_id": middleware.RequestIDFromContext(r.Context()),
			"video_url":  req.VideoURL,
		})
		if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
			logger = logger.WithField("uid", claims.UID)
		}
		logger.Info("Processing video from URL")

		// A started operation runs to completion even if the client goes away;
		// request-scoped values stay visible to the stages.
		imageURL, err := p.Process(context.WithoutCancel(r.Context()), req.VideoURL)
		if err != nil {
			status := http.StatusInternalServerError
			if domain.IsKind(err, domain.KindValidation) {
				status = http.StatusBadRequest
			}
			logger.WithError(err).WithField("kind", domain.KindOf(err)).Error("Error processing video")
			writeJSON(w, status, ErrorResponse{Error: err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, ProcessResponse{ImageURL: imageURL})
	}
}
