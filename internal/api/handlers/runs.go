package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coinbounce/backend/internal/run"
	"github.com/coinbounce/backend/internal/sim"
	"github.com/coinbounce/backend/internal/ws"
)

// renderRunError maps manager/core errors onto HTTP statuses. Setup problems
// (bad parameters, disks that cannot fit) are the caller's to fix.
func renderRunError(c *gin.Context, err error) {
	if errors.Is(err, run.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	var cfgErr *sim.ConfigError
	var placeErr *sim.PlacementError
	if errors.As(err, &cfgErr) || errors.As(err, &placeErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// CreateRun starts a new simulation run. An empty body uses the server
// defaults.
func CreateRun(rm *run.RunManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params run.CreateParams
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&params); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				return
			}
		}

		state, err := rm.CreateRun(params)
		if err != nil {
			renderRunError(c, err)
			return
		}
		c.JSON(http.StatusCreated, state)
	}
}

// ListRuns returns a snapshot of every live run.
func ListRuns(rm *run.RunManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"runs": rm.ListRuns()})
	}
}

// GetRun returns the disk snapshot and collision count of one run.
func GetRun(rm *run.RunManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := rm.GetState(c.Param("id"))
		if err != nil {
			renderRunError(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

// GetRunStatistics returns the per-bucket cumulative series for charting.
func GetRunStatistics(rm *run.RunManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := rm.Statistics(c.Param("id"))
		if err != nil {
			renderRunError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// SetRunSpeed updates a run's speed factor.
func SetRunSpeed(rm *run.RunManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			SpeedFactor float64 `json:"speed_factor"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		state, err := rm.SetSpeed(c.Param("id"), body.SpeedFactor)
		if err != nil {
			renderRunError(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

// PauseRun pauses a run's step loop.
func PauseRun(rm *run.RunManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := rm.SetPaused(c.Param("id"), true)
		if err != nil {
			renderRunError(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

// ResumeRun resumes a paused run.
func ResumeRun(rm *run.RunManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := rm.SetPaused(c.Param("id"), false)
		if err != nil {
			renderRunError(c, err)
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

// DeleteRun stops a run and notifies its viewers.
func DeleteRun(rm *run.RunManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := rm.StopRun(c.Param("id")); err != nil {
			renderRunError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "stopped"})
	}
}

// HandleRunWebSocket upgrades a viewer onto a run's event stream.
func HandleRunWebSocket(rm *run.RunManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := rm.GetState(id); err != nil {
			renderRunError(c, err)
			return
		}
		if err := ws.RunHub.ServeRun(id, c.Writer, c.Request); err != nil {
			// Upgrade failures already wrote a response.
			return
		}
	}
}
