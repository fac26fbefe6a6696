// Package api exposes the game engine over HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/sentence-dash/server/internal/game"
)

type actionRequest struct {
	Action         string `json:"action" form:"action"`
	Game           string `json:"game" form:"game"`
	IsAdmin        bool   `json:"is_admin" form:"is_admin"`
	Sentence       string `json:"sentence" form:"sentence"`
	Guess          bool   `json:"guess" form:"guess"`
	IsCustomPrompt bool   `json:"is_custom_prompt" form:"is_custom_prompt"`
	CustomPrompt   string `json:"custom_prompt" form:"custom_prompt"`
	CustomAnswer   string `json:"custom_answer" form:"custom_answer"`
}

// NewRouter wires the HTTP surface: one action endpoint plus the status and
// listing polls.
func NewRouter(engine *game.Engine, allowOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		zerologlog.Info().
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("dur", time.Since(start)).
			Msg("http")
	})

	corsCfg := cors.DefaultConfig()
	if len(allowOrigins) == 1 && allowOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowOrigins
	}
	r.Use(cors.New(corsCfg))

	h := &handler{games: engine}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})
	r.POST("/api/action", h.action)
	r.GET("/api/status", h.status)
	r.GET("/api/list", h.list)

	return r
}

type handler struct {
	games *game.Engine
}

func (h *handler) action(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	role := game.RoleFromAdmin(req.IsAdmin)

	switch req.Action {
	case "generate":
		state, err := h.games.Generate(req.IsCustomPrompt, req.CustomPrompt, req.CustomAnswer)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, state)

	case "setcode":
		if err := h.games.SetCode(req.Game); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": req.Game})

	case "submit":
		msg, err := h.games.Submit(req.Game, req.Sentence, role)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": msg})

	case "guess":
		msg, revealed, err := h.games.Guess(req.Game, req.Guess)
		if err != nil {
			fail(c, err)
			return
		}
		resp := gin.H{"message": msg}
		if revealed != nil {
			resp["revealed_answers"] = revealed
		}
		c.JSON(http.StatusOK, resp)

	case "finalize":
		state, err := h.games.Finalize(req.Game, role)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, state)

	case "restart":
		if err := h.games.Restart(req.Game, role); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": nil})

	case "", "refresh":
		state, ok := h.games.State(req.Game)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"exists": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"exists":        true,
			"code":          state.Code,
			"prompt":        state.Prompt,
			"contributions": state.Contributions,
			"finalized":     state.Finalized,
		})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
	}
}

func (h *handler) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.games.Status(c.Query("game")))
}

func (h *handler) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.games.List())
}

func fail(c *gin.Context, err error) {
	c.JSON(httpStatus(err), gin.H{"error": err.Error()})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrGameFinalized):
		return http.StatusConflict
	case errors.Is(err, game.ErrSentenceLength):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrNotModerator):
		return http.StatusForbidden
	case errors.Is(err, game.ErrCodeSpaceFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
