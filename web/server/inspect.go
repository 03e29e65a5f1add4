package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/df07/go-blackhole-raytracer/pkg/renderer"
)

// InspectRequest selects the pixel to trace
type InspectRequest struct {
	X int `form:"x" binding:"min=0"`
	Y int `form:"y" binding:"min=0"`
}

// InspectResponse describes the first sample of one pixel
type InspectResponse struct {
	State    string     `json:"state"`
	Steps    int        `json:"steps"`
	Bounces  int        `json:"bounces"`
	Radiance [3]float32 `json:"radiance"`
	Color    [3]float32 `json:"color"` // display-encoded, as accumulated
	Position [3]float32 `json:"position"`
	Velocity [3]float32 `json:"velocity"`
}

// handleInspect traces sample 0 of a single pixel and reports how the
// photon terminated
func (s *Server) handleInspect(c *gin.Context) {
	_, cfg, err := s.parseRenderRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req InspectRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pixel coordinates: " + err.Error()})
		return
	}
	if req.X >= cfg.Image.Width || req.Y >= cfg.Image.Height {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pixel coordinates out of bounds"})
		return
	}

	rc := cfg.RenderConfig(0)
	kernel := renderer.NewKernel(rc, cfg.Image.Width, cfg.Image.Height, cfg.Gamma, s.scene.Sky(rc.Features))
	color, res := kernel.Sample(req.X, req.Y)

	c.JSON(http.StatusOK, InspectResponse{
		State:    res.State.String(),
		Steps:    res.Steps,
		Bounces:  res.Bounces,
		Radiance: res.Radiance,
		Color:    color,
		Position: res.Position,
		Velocity: res.Velocity,
	})
}
