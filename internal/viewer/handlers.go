package viewer

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/danmuck/menuqr/internal/capacity"
	"github.com/danmuck/menuqr/internal/editor"
	"github.com/danmuck/menuqr/internal/link"
	"github.com/danmuck/menuqr/internal/menu"
	"github.com/danmuck/menuqr/internal/observability"
	"github.com/danmuck/menuqr/internal/protocol"
	"github.com/danmuck/menuqr/internal/provenance"
	"github.com/danmuck/menuqr/internal/qr"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Decode results recorded in metrics.
const (
	decodeOK      = "ok"
	decodeCorrupt = "corrupt"
	decodeMissing = "missing"
)

type decodeRequest struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

type envelopeView struct {
	Version string               `json:"version"`
	Menu    menu.Menu            `json:"menu"`
	Meta    *provenance.Metadata `json:"meta,omitempty"`
}

func viewOf(env protocol.Envelope) envelopeView {
	view := envelopeView{Version: env.Version().String(), Menu: env.Menu}
	if !env.Meta.IsZero() {
		meta := env.Meta
		view.Meta = &meta
	}
	return view
}

type encodeResponse struct {
	Token    string `json:"token"`
	URL      string `json:"url"`
	Length   int    `json:"length"`
	Capacity string `json:"capacity"`
	CycleID  string `json:"cycle_id"`
	Message  string `json:"message,omitempty"`
}

func (v *Viewer) handleMenuPage(c *gin.Context) {
	token := c.Query(link.Param)
	if token == "" {
		observability.RecordDecode(decodeMissing)
		v.writePage(c, http.StatusBadRequest, nil, MessageNoData)
		return
	}
	env, err := protocol.Decode(token)
	if err != nil {
		observability.RecordDecode(decodeCorrupt)
		logCorrupt(err, "menu_page")
		v.writePage(c, http.StatusBadRequest, nil, MessageCorrupt)
		return
	}
	observability.RecordDecode(decodeOK)
	v.writePage(c, http.StatusOK, &env.Menu, "")
}

func (v *Viewer) writePage(c *gin.Context, status int, m *menu.Menu, msg string) {
	var (
		body []byte
		err  error
	)
	if m != nil {
		body, err = RenderMenu(*m)
	} else {
		body, err = RenderError(msg)
	}
	if err != nil {
		log.Error().Err(err).Msg("viewer_render_failed")
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	c.Data(status, "text/html; charset=utf-8", body)
}

func (v *Viewer) handleDecode(c *gin.Context) {
	var req decodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		extracted, err := link.Extract(req.URL)
		if err != nil {
			observability.RecordDecode(decodeMissing)
			c.JSON(http.StatusBadRequest, gin.H{"error": link.ErrNoToken.Error()})
			return
		}
		token = extracted
	}
	env, err := protocol.Decode(token)
	if err != nil {
		observability.RecordDecode(decodeCorrupt)
		logCorrupt(err, "api_decode")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": protocol.ErrCorruptLink.Error()})
		return
	}
	observability.RecordDecode(decodeOK)
	c.JSON(http.StatusOK, viewOf(env))
}

func (v *Viewer) handleEncode(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
		return
	}
	m, err := menu.Parse(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stamper := provenance.NewStamper(provenance.StaticResolver(c.ClientIP()))
	res, err := editor.Issue(c.Request.Context(), stamper, editor.PublisherConfig{
		ViewerURL: v.BaseURL,
		Placement: v.Placement,
	}, m)
	if err != nil {
		log.Error().Err(err).Msg("viewer_encode_failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encode failed"})
		return
	}

	length := len([]rune(res.URL))
	observability.RecordEncode(res.Version.String(), length, res.Outcome.String())
	if v.ledger != nil {
		v.ledger.Recorder(c.Request.Context())(res)
	}
	c.JSON(http.StatusOK, encodeResponse{
		Token:    res.Token,
		URL:      res.URL,
		Length:   length,
		Capacity: res.Outcome.String(),
		CycleID:  res.CycleID,
		Message:  res.Outcome.Message(),
	})
}

func (v *Viewer) handlePreviewLoad(c *gin.Context) {
	var msg link.PreviewMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	state, err := v.preview.Load(msg)
	switch {
	case err == nil:
		observability.RecordDecode(decodeOK)
		c.JSON(http.StatusOK, gin.H{"status": "loaded", "url": state.URL, "envelope": viewOf(state.Envelope)})
	case errors.Is(err, link.ErrUnknownMessage):
		c.JSON(http.StatusAccepted, gin.H{"status": "ignored"})
	case errors.Is(err, link.ErrNoToken):
		observability.RecordDecode(decodeMissing)
		c.JSON(http.StatusBadRequest, gin.H{"error": link.ErrNoToken.Error()})
	default:
		observability.RecordDecode(decodeCorrupt)
		logCorrupt(err, "api_preview")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": protocol.ErrCorruptLink.Error()})
	}
}

func (v *Viewer) handlePreviewGet(c *gin.Context) {
	state, ok := v.preview.Current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no menu loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":       state.URL,
		"loaded_at": state.LoadedAt,
		"envelope":  viewOf(state.Envelope),
	})
}

func (v *Viewer) handleQR(c *gin.Context) {
	token := c.Query(link.Param)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": link.ErrNoToken.Error()})
		return
	}
	if _, err := protocol.Decode(token); err != nil {
		logCorrupt(err, "api_qr")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": protocol.ErrCorruptLink.Error()})
		return
	}
	url, err := link.Build(v.BaseURL, token, v.Placement)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	png, err := qr.RenderLink(v.qr, url)
	if err != nil {
		if errors.Is(err, capacity.ErrOversizedPayload) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":  capacity.OverBudget.Message(),
				"length": len([]rune(url)),
			})
			return
		}
		log.Error().Err(err).Msg("viewer_qr_failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "qr render failed"})
		return
	}
	c.Data(http.StatusOK, v.qr.ContentType(), png)
}

func logCorrupt(err error, where string) {
	var cle *protocol.CorruptLinkError
	step := ""
	if errors.As(err, &cle) {
		step = cle.Step
	}
	log.Warn().Err(err).Str("where", where).Str("step", step).Msg("corrupt_link")
}
