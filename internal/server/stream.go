package server

import (
	"image"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/flashgesture/internal/logger"
)

const (
	streamInterval = 66 * time.Millisecond // ~15 FPS
	streamBoundary = "frame"
)

var captionColor = color.RGBA{R: 40, G: 220, B: 90, A: 255}

// FrameSource is the part of a camera the preview reads from.
type FrameSource interface {
	IsOpen() bool
	ReadFrame() (*gocv.Mat, error)
}

// StreamHandler serves the camera as MJPEG, each frame captioned with the symbol the
// classifier last reported, so the user can see what the pipeline sees.
type StreamHandler struct {
	source  FrameSource
	caption func() string
	log     *logger.Logger
}

// NewStreamHandler creates a preview of source. caption may be nil.
func NewStreamHandler(source FrameSource, caption func() string) *StreamHandler {
	return &StreamHandler{source: source, caption: caption, log: logger.Named("stream")}
}

// ServeHTTP writes one multipart JPEG part per tick until the client goes away.
// Ticks without a frame are skipped.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.source.IsOpen() {
		http.Error(w, "camera is not running", http.StatusServiceUnavailable)
		return
	}

	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(streamBoundary); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+mw.Boundary())
	w.Header().Set("Cache-Control", "no-cache")
	flusher, _ := w.(http.Flusher)

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	sent := 0
	for {
		select {
		case <-r.Context().Done():
			h.log.Debug().Int("frames", sent).Msg("preview closed")
			return
		case <-ticker.C:
		}

		jpeg, err := h.nextJPEG()
		if err != nil {
			continue
		}
		if err := writeJPEGPart(mw, jpeg); err != nil {
			h.log.Debug().Err(err).Int("frames", sent).Msg("preview write")
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		sent++
	}
}

func (h *StreamHandler) nextJPEG() ([]byte, error) {
	frame, err := h.source.ReadFrame()
	if err != nil {
		return nil, err
	}
	defer frame.Close()

	if h.caption != nil {
		if text := h.caption(); text != "" {
			gocv.PutText(frame, text, image.Pt(12, 32), gocv.FontHersheySimplex, 1.0, captionColor, 2)
		}
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, err
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}

func writeJPEGPart(mw *multipart.Writer, jpeg []byte) error {
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":   {"image/jpeg"},
		"Content-Length": {strconv.Itoa(len(jpeg))},
	})
	if err != nil {
		return err
	}
	_, err = part.Write(jpeg)
	return err
}
