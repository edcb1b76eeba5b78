package handler

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hud-govt-nz/hud-automate/internal/card"
	"github.com/hud-govt-nz/hud-automate/internal/common"
	"github.com/hud-govt-nz/hud-automate/internal/orchestrator"
	"github.com/hud-govt-nz/hud-automate/pkg/api"
)

const timestampMaxAge = 300 // seconds

// Handler owns the HTTP surface. The orchestrator it wraps is fully wired
// at startup; each trigger launches one run.
type Handler struct {
	orc    *orchestrator.Orchestrator
	secret string
}

func New(orc *orchestrator.Orchestrator, secret string) *Handler {
	return &Handler{orc: orc, secret: secret}
}

// TriggerRun validates the caller's signature and starts a run in the
// background. The response carries the run UUID for later history lookup.
func (h *Handler) TriggerRun(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		common.Error(c, common.NewErrNo(common.RequestInvalid))
		return
	}
	if !h.verifySignature(c.GetHeader("X-Webhook-Timestamp"), c.GetHeader("X-Webhook-Signature"), body) {
		common.Error(c, common.NewErrNo(common.SignatureInvalid))
		return
	}

	var req api.TriggerRequest
	if err := json.Unmarshal(body, &req); err != nil || req.RunName == "" || req.Project == "" {
		common.Error(c, common.NewErrNo(common.RequestInvalid))
		return
	}

	params := orchestrator.Params{
		RunUUID:       uuid.NewString(),
		RunName:       req.RunName,
		ProjectName:   req.Project,
		UploadFolders: req.Folders,
		Invalidate:    req.Invalidate,
		Forced:        req.Forced,
	}
	for _, t := range req.Targets {
		params.UploadTargets = append(params.UploadTargets, orchestrator.Target{Name: t.Name, Ext: t.Ext})
	}
	for _, p := range req.Ping {
		params.Ping = append(params.Ping, card.Recipient{Name: p.Name, ID: p.ID})
	}

	go func() {
		if err := h.orc.Run(context.Background(), params); err != nil {
			common.GetLogger().Error("triggered run failed",
				zap.String("run_uuid", params.RunUUID), zap.Error(err))
		}
	}()

	common.Success(c, api.TriggerResponse{RunUUID: params.RunUUID})
}

func (h *Handler) verifySignature(timestampStr, signature string, payload []byte) bool {
	if timestampStr == "" || signature == "" {
		return false
	}
	timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return false
	}
	now := time.Now().Unix()
	if now-timestamp > timestampMaxAge || timestamp > now {
		return false
	}

	signatureBase := fmt.Sprintf("%s.%s.%s", timestampStr, string(payload), h.secret)
	hash := sha256.Sum256([]byte(signatureBase))
	computed := hex.EncodeToString(hash[:])
	return subtle.ConstantTimeCompare([]byte(computed), []byte(signature)) == 1
}
