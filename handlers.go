package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"dragyocr/pkg/dragy"
	"dragyocr/pkg/metrics"
	"dragyocr/pkg/pipeline"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// videoRunner is the extraction entry point used by the handlers.
type videoRunner interface {
	Run(ctx context.Context, videoPath string, opts ...pipeline.Option) (*dragy.Record, error)
}

var (
	extractor videoRunner
	jobs      *jobStore
	srvLog    = zap.NewNop()
)

// processorResult is the payload returned for one processed video.
type processorResult struct {
	Video      videoInfo        `json:"video"`
	Record     *dragy.Record    `json:"record"`
	Summary    dragy.Summary    `json:"summary"`
	Validation dragy.Validation `json:"validation"`
}

type videoInfo struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
}

// multipartOverhead is the allowance for form fields and part headers on top
// of the video itself.
const multipartOverhead = 1 << 20

// processRequest carries the form fields of an upload.
type processRequest struct {
	videoPath string
	uploadDir string
	video     videoInfo
	summary   dragy.SummaryOptions
	provided  dragy.Provided
}

func setupRoutes(r *gin.Engine) {
	r.GET("/healthz", healthHandler)
	r.GET("/metrics", metrics.Handler())
	api := r.Group("/api/processor")
	api.Use(jwtAuthMiddleware())
	api.POST("/dragy", dragyHandler)
	api.POST("/dragy/async", dragyAsyncHandler)
	api.GET("/dragy/progress/:id", progressHandler)
	api.GET("/dragy/result/:id", resultHandler)
	api.DELETE("/dragy/job/:id", deleteJobHandler)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// dragyHandler processes an uploaded video synchronously.
func dragyHandler(c *gin.Context) {
	req, ok := receiveUpload(c)
	if !ok {
		return
	}
	defer os.RemoveAll(req.uploadDir)

	res, err := process(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": res})
}

// dragyAsyncHandler stores the upload, starts processing in the background
// and returns the job id to poll.
func dragyAsyncHandler(c *gin.Context) {
	req, ok := receiveUpload(c)
	if !ok {
		return
	}
	j := jobs.create()
	go runJob(j.ID, req)
	c.JSON(http.StatusAccepted, gin.H{"success": true, "jobId": j.ID})
}

func runJob(id string, req processRequest) {
	metrics.AsyncJobsActive.Inc()
	defer metrics.AsyncJobsActive.Dec()
	defer os.RemoveAll(req.uploadDir)

	jobs.start(id)
	res, err := process(context.Background(), req, pipeline.WithProgress(func(percent int, stage string) {
		jobs.progress(id, percent, stage)
	}))
	if err != nil {
		srvLog.Warn("async job failed", zap.String("job_id", id), zap.Error(err))
		jobs.fail(id, err.Error())
		return
	}
	jobs.finish(id, res)
}

func progressHandler(c *gin.Context) {
	j, ok := jobs.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Job not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": j.ID, "status": j.Status, "percent": j.Percent, "stage": j.Stage})
}

func resultHandler(c *gin.Context) {
	j, ok := jobs.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Job not found"})
		return
	}
	switch j.Status {
	case jobDone:
		c.JSON(http.StatusOK, gin.H{"success": true, "result": j.Result})
	case jobFailed:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": j.Error})
	default:
		c.JSON(http.StatusAccepted, gin.H{"success": false, "error": "Not ready"})
	}
}

func deleteJobHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": jobs.delete(c.Param("id"))})
}

// receiveUpload validates and stores the multipart video. It writes the error
// response itself and reports false when the request cannot proceed.
func receiveUpload(c *gin.Context) (processRequest, bool) {
	// stop reading once the body cannot hold an acceptable video
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes+multipartOverhead)
	fh, err := c.FormFile("video")
	if errors.Is(err, http.ErrMissingFile) {
		fh, err = c.FormFile("file")
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "file too large"})
			return processRequest{}, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No video uploaded"})
		return processRequest{}, false
	}
	if fh.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "file too large"})
		return processRequest{}, false
	}
	if !isAllowedVideo(fh) {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"success": false, "error": "Unsupported file type"})
		return processRequest{}, false
	}
	dir, path := uploadPath(fh.Filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "mkdir failed"})
		return processRequest{}, false
	}
	if err := c.SaveUploadedFile(fh, path); err != nil {
		_ = os.RemoveAll(dir)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "save failed"})
		return processRequest{}, false
	}
	return processRequest{
		videoPath: path,
		uploadDir: dir,
		video:     videoInfo{Filename: filepath.Base(path), SizeBytes: fh.Size},
		summary: dragy.SummaryOptions{
			VehicleType: c.PostForm("vehicleType"),
			Range:       c.PostForm("range"),
		},
		provided: dragy.Provided{
			Brand: c.PostForm("providedBrand"),
			Year:  c.PostForm("providedYear"),
		},
	}, true
}

// process runs the pipeline and derives the summary and validation.
func process(ctx context.Context, req processRequest, opts ...pipeline.Option) (*processorResult, error) {
	rec, err := extractor.Run(ctx, req.videoPath, opts...)
	if err != nil {
		return nil, err
	}
	summary := dragy.Summarize(*rec, req.summary)
	return &processorResult{
		Video:      req.video,
		Record:     rec,
		Summary:    summary,
		Validation: dragy.Validate(&summary, req.provided),
	}, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrUsage), errors.Is(err, pipeline.ErrFileNotFound):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrFrameRead):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
