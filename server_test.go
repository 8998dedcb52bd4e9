package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"dragyocr/pkg/dragy"
	"dragyocr/pkg/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/smartystreets/goconvey/convey"
)

type stubRunner struct {
	blob string
	err  error
	seen []string
}

func (s *stubRunner) Run(_ context.Context, videoPath string, opts ...pipeline.Option) (*dragy.Record, error) {
	s.seen = append(s.seen, videoPath)
	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("%w: %s", pipeline.ErrFileNotFound, videoPath)
	}
	if s.err != nil {
		return nil, s.err
	}
	rec := dragy.Assemble([]string{s.blob}, s.blob, dragy.ExtractInfo(s.blob))
	return &rec, nil
}

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func videoForm(field, name string, fields map[string]string) (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	w, _ := mw.CreateFormFile(field, name)
	_, _ = w.Write([]byte("FAKE VIDEO BYTES"))
	_ = mw.Close()
	return buf, mw.FormDataContentType()
}

func setupTestServer(t *testing.T, runner videoRunner, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	uploadDir = t.TempDir()
	maxUploadBytes = 1 << 20
	jwtSecret = []byte(secret)
	extractor = runner
	jobs = newJobStore()
	r := gin.New()
	setupRoutes(r)
	return r
}

func decodeBody(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return out
}

func TestProcessorSync(t *testing.T) {
	convey.Convey("Given a processor API with a stub pipeline", t, func() {
		runner := &stubRunner{blob: "2019 Ford Mustang GT 0-60mph 4.2s 1/4 mile 12.8s 100-200km/h 9,5s"}
		r := setupTestServer(t, runner, "")

		convey.Convey("When a video is uploaded", func() {
			body, ct := videoForm("video", "my run.mp4", map[string]string{"range": "100-200", "providedBrand": "audi", "providedYear": "2019"})
			resp := performRequest(r, http.MethodPost, "/api/processor/dragy", body, "", ct)

			convey.Convey("Then the record, summary and validation are returned", func() {
				convey.So(resp.Code, convey.ShouldEqual, http.StatusOK)
				out := decodeBody(resp)
				convey.So(out["success"], convey.ShouldEqual, true)
				result := out["result"].(map[string]any)
				record := result["record"].(map[string]any)
				convey.So(record["year"], convey.ShouldEqual, float64(2019))
				convey.So(record["best_100_200_s"], convey.ShouldEqual, 9.5)
				summary := result["summary"].(map[string]any)
				convey.So(summary["range"], convey.ShouldEqual, dragy.Range100to200kmh)
				convey.So(summary["best_elapsed_ms"], convey.ShouldEqual, float64(9500))
				validation := result["validation"].(map[string]any)
				convey.So(validation["verdict"], convey.ShouldEqual, dragy.VerdictMismatch)
			})

			convey.Convey("Then the upload is removed afterwards", func() {
				convey.So(runner.seen, convey.ShouldHaveLength, 1)
				_, err := os.Stat(runner.seen[0])
				convey.So(os.IsNotExist(err), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the form carries no video", func() {
			resp := performRequest(r, http.MethodPost, "/api/processor/dragy", &bytes.Buffer{}, "", "multipart/form-data; boundary=x")
			convey.So(resp.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("When the body exceeds the upload limit", func() {
			buf := &bytes.Buffer{}
			mw := multipart.NewWriter(buf)
			w, _ := mw.CreateFormFile("video", "huge.mp4")
			_, _ = w.Write(bytes.Repeat([]byte("v"), int(maxUploadBytes+multipartOverhead)+1))
			_ = mw.Close()
			resp := performRequest(r, http.MethodPost, "/api/processor/dragy", buf, "", mw.FormDataContentType())

			convey.So(resp.Code, convey.ShouldEqual, http.StatusRequestEntityTooLarge)
			convey.So(decodeBody(resp)["error"], convey.ShouldEqual, "file too large")
			convey.So(runner.seen, convey.ShouldBeEmpty)
		})

		convey.Convey("When the video alone is over the limit", func() {
			buf := &bytes.Buffer{}
			mw := multipart.NewWriter(buf)
			w, _ := mw.CreateFormFile("file", "big.mp4")
			_, _ = w.Write(bytes.Repeat([]byte("v"), int(maxUploadBytes)+1))
			_ = mw.Close()
			resp := performRequest(r, http.MethodPost, "/api/processor/dragy", buf, "", mw.FormDataContentType())

			convey.So(resp.Code, convey.ShouldEqual, http.StatusRequestEntityTooLarge)
			convey.So(runner.seen, convey.ShouldBeEmpty)
		})

		convey.Convey("When the upload is not a video", func() {
			body, ct := videoForm("file", "notes.txt", nil)
			resp := performRequest(r, http.MethodPost, "/api/processor/dragy", body, "", ct)
			convey.So(resp.Code, convey.ShouldEqual, http.StatusUnsupportedMediaType)
		})
	})
}

func TestProcessorSyncFrameReadError(t *testing.T) {
	convey.Convey("Given a pipeline that cannot decode the video", t, func() {
		runner := &stubRunner{err: fmt.Errorf("%w: cannot read frame 240: truncated", pipeline.ErrFrameRead)}
		r := setupTestServer(t, runner, "")
		body, ct := videoForm("file", "run.mov", nil)
		resp := performRequest(r, http.MethodPost, "/api/processor/dragy", body, "", ct)

		convey.So(resp.Code, convey.ShouldEqual, http.StatusUnprocessableEntity)
		out := decodeBody(resp)
		convey.So(out["success"], convey.ShouldEqual, false)
		convey.So(out["error"], convey.ShouldContainSubstring, "cannot read frame")
	})
}

func TestProcessorAsync(t *testing.T) {
	convey.Convey("Given an async job", t, func() {
		r := setupTestServer(t, &stubRunner{blob: "0-100km/h 3.9s"}, "")
		body, ct := videoForm("video", "run.mp4", nil)
		resp := performRequest(r, http.MethodPost, "/api/processor/dragy/async", body, "", ct)
		convey.So(resp.Code, convey.ShouldEqual, http.StatusAccepted)
		id, _ := decodeBody(resp)["jobId"].(string)
		convey.So(id, convey.ShouldNotBeEmpty)

		convey.Convey("Then the result becomes available", func() {
			var res *httptest.ResponseRecorder
			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) {
				res = performRequest(r, http.MethodGet, "/api/processor/dragy/result/"+id, nil, "", "")
				if res.Code != http.StatusAccepted {
					break
				}
				time.Sleep(10 * time.Millisecond)
			}
			convey.So(res.Code, convey.ShouldEqual, http.StatusOK)
			summary := decodeBody(res)["result"].(map[string]any)["summary"].(map[string]any)
			convey.So(summary["range"], convey.ShouldEqual, dragy.Range0to100kmh)

			prog := performRequest(r, http.MethodGet, "/api/processor/dragy/progress/"+id, nil, "", "")
			convey.So(decodeBody(prog)["status"], convey.ShouldEqual, jobDone)

			del := performRequest(r, http.MethodDelete, "/api/processor/dragy/job/"+id, nil, "", "")
			convey.So(decodeBody(del)["success"], convey.ShouldEqual, true)
			missing := performRequest(r, http.MethodGet, "/api/processor/dragy/progress/"+id, nil, "", "")
			convey.So(missing.Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestProcessorAsyncFailure(t *testing.T) {
	convey.Convey("Given an async job whose recognition fails", t, func() {
		r := setupTestServer(t, &stubRunner{err: errors.Join(pipeline.ErrRecognition, errors.New("no tesseract"))}, "")
		body, ct := videoForm("video", "run.mp4", nil)
		id, _ := decodeBody(performRequest(r, http.MethodPost, "/api/processor/dragy/async", body, "", ct))["jobId"].(string)

		var res *httptest.ResponseRecorder
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			res = performRequest(r, http.MethodGet, "/api/processor/dragy/result/"+id, nil, "", "")
			if res.Code != http.StatusAccepted {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		convey.So(res.Code, convey.ShouldEqual, http.StatusInternalServerError)
		convey.So(decodeBody(res)["error"], convey.ShouldContainSubstring, "no tesseract")
	})
}

func TestProcessorAuth(t *testing.T) {
	convey.Convey("Given a processor API with a JWT secret", t, func() {
		r := setupTestServer(t, &stubRunner{blob: ""}, "test-secret")

		convey.Convey("Requests without a token are rejected", func() {
			resp := performRequest(r, http.MethodGet, "/api/processor/dragy/progress/x", nil, "", "")
			convey.So(resp.Code, convey.ShouldEqual, http.StatusUnauthorized)
		})

		convey.Convey("Requests with a valid token pass", func() {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
				"sub": "user1",
				"exp": time.Now().Add(time.Hour).Unix(),
			})
			signed, err := token.SignedString([]byte("test-secret"))
			convey.So(err, convey.ShouldBeNil)
			resp := performRequest(r, http.MethodGet, "/api/processor/dragy/progress/x", nil, signed, "")
			convey.So(resp.Code, convey.ShouldEqual, http.StatusNotFound)
		})

		convey.Convey("Health stays public", func() {
			resp := performRequest(r, http.MethodGet, "/healthz", nil, "", "")
			convey.So(resp.Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}
