package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/df07/go-blackhole-raytracer/pkg/config"
	"github.com/df07/go-blackhole-raytracer/pkg/renderer"
)

// Request limits
const (
	minImageSize = 16
	maxImageSize = 2000
	maxFrames    = 10000
	maxSamples   = 64
)

// RenderRequest holds the query parameters of a render or inspect request.
// Zero values keep the server's base configuration.
type RenderRequest struct {
	Width    int     `form:"width" binding:"omitempty,min=16,max=2000"`
	Height   int     `form:"height" binding:"omitempty,min=16,max=2000"`
	Frames   int     `form:"frames" binding:"omitempty,min=1,max=10000"`
	Samples  int     `form:"samples" binding:"omitempty,min=1,max=64"`
	Features *string `form:"features"` // comma-separated names; empty disables all
	FOV      float32 `form:"fov" binding:"omitempty,gt=0,lt=180"`
	Theta    float32 `form:"theta"` // orbit offset, radians
	Phi      float32 `form:"phi"`   // orbit offset, radians
	Zoom     float32 `form:"zoom"`  // radius offset
}

// ProgressUpdate represents a single progressive update sent via SSE
type ProgressUpdate struct {
	RenderID    string `json:"renderId"`
	Frame       int    `json:"frame"`
	TotalFrames int    `json:"totalFrames"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG
	Stats       Stats  `json:"stats"`
	IsComplete  bool   `json:"isComplete"`
	ElapsedMs   int64  `json:"elapsedMs"`
}

// Stats represents frame statistics
type Stats struct {
	SampleIndex   uint32  `json:"sampleIndex"`
	Absorbed      int     `json:"absorbed"`
	Escaped       int     `json:"escaped"`
	Discarded     int     `json:"discarded"`
	Invalid       int     `json:"invalid"`
	AverageSteps  float64 `json:"averageSteps"`
	MeanLuminance float64 `json:"meanLuminance"`
	FrameMs       int64   `json:"frameMs"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string // "console", "progress", "error", "complete"
	Data string
}

// parseRenderRequest binds the query and applies it over the base config
func (s *Server) parseRenderRequest(c *gin.Context) (*RenderRequest, *config.Config, error) {
	var req RenderRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return nil, nil, fmt.Errorf("invalid request: %w", err)
	}

	cfg := s.base.Clone()
	if req.Width > 0 {
		cfg.Image.Width = req.Width
	}
	if req.Height > 0 {
		cfg.Image.Height = req.Height
	}
	if req.Frames > 0 {
		cfg.Image.Frames = req.Frames
	}
	if req.Samples > 0 {
		cfg.Image.SamplesPerFrame = req.Samples
	}
	if req.FOV > 0 {
		cfg.Camera.FOV = req.FOV
	}
	if req.Features != nil {
		var f config.Features
		if err := f.UnmarshalText([]byte(*req.Features)); err != nil {
			return nil, nil, err
		}
		cfg.Features = f
	}
	cfg.Camera.Orbit(req.Theta, req.Phi)
	cfg.Camera.Zoom(req.Zoom)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return &req, cfg, nil
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
}

// handleRender streams progressive frames as SSE until the requested
// number of frames is done or the client disconnects
func (s *Server) handleRender(c *gin.Context) {
	_, cfg, err := s.parseRenderRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	renderID := uuid.NewString()

	consoleChan := make(chan ConsoleMessage, 50)
	logger := NewConsoleLogger(renderID, s.logger.Handler(), consoleChan)
	pr := renderer.NewProgressiveRenderer(cfg, s.scene, logger, s.metrics)

	events := make(chan SSEEvent, 16)
	go s.runRender(ctx, pr, cfg.Image.Frames, renderID, consoleChan, events)

	setSSEHeaders(c)
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(ev.Type, ev.Data)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// runRender renders frames and converts frames, console messages and
// errors into SSE events. It closes events when done.
func (s *Server) runRender(ctx context.Context, pr *renderer.ProgressiveRenderer, frames int, renderID string,
	consoleChan <-chan ConsoleMessage, events chan<- SSEEvent) {
	defer close(events)
	defer pr.Close()

	send := func(ev SSEEvent) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	start := time.Now()
	frameChan, errChan := pr.RenderProgressive(ctx, frames)

	for frameChan != nil {
		select {
		case msg := <-consoleChan:
			if data, err := json.Marshal(msg); err == nil {
				send(SSEEvent{Type: "console", Data: string(data)})
			}
		case result, ok := <-frameChan:
			if !ok {
				frameChan = nil
				continue
			}
			update, err := newProgressUpdate(renderID, frames, result, start)
			if err != nil {
				send(SSEEvent{Type: "error", Data: err.Error()})
				return
			}
			data, err := json.Marshal(update)
			if err != nil {
				send(SSEEvent{Type: "error", Data: err.Error()})
				return
			}
			send(SSEEvent{Type: "progress", Data: string(data)})
		case <-ctx.Done():
			return
		}
	}

	if err := <-errChan; err != nil {
		s.logger.Warn("render stopped", "render", renderID, "error", err)
		send(SSEEvent{Type: "error", Data: fmt.Sprintf("Render error: %v", err)})
		return
	}
	send(SSEEvent{Type: "complete", Data: "Rendering completed"})
}

func newProgressUpdate(renderID string, totalFrames int, result renderer.FrameResult, start time.Time) (ProgressUpdate, error) {
	imageData, err := imageToBase64PNG(result.Image)
	if err != nil {
		return ProgressUpdate{}, fmt.Errorf("failed to encode image: %w", err)
	}
	fs := result.Stats
	return ProgressUpdate{
		RenderID:    renderID,
		Frame:       fs.Frame,
		TotalFrames: totalFrames,
		ImageData:   imageData,
		Stats: Stats{
			SampleIndex:   fs.SampleIndex,
			Absorbed:      fs.Samples.Absorbed,
			Escaped:       fs.Samples.Escaped,
			Discarded:     fs.Samples.Discarded,
			Invalid:       fs.Samples.Invalid,
			AverageSteps:  fs.Samples.AverageSteps(),
			MeanLuminance: fs.MeanLuminance,
			FrameMs:       fs.Duration.Milliseconds(),
		},
		IsComplete: result.IsLast,
		ElapsedMs:  time.Since(start).Milliseconds(),
	}, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
