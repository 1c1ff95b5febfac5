package handler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ifcquery/ifcview/internal/net"
	"github.com/ifcquery/ifcview/internal/net/packet"
)

const loadTimeout = 30 * time.Second

// HandleLoadModel processes C_LOAD_MODEL: [key\0]. Progress reaches every
// client through S_MODEL_LOADING; the requester also gets S_ERROR on failure.
func HandleLoadModel(sess *net.Session, r *packet.Reader, deps *Deps) {
	key := r.ReadS()
	if key == "" {
		sendError(sess, "load: missing model key")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	if err := deps.Viewer.LoadModel(ctx, key); err != nil {
		deps.Log.Warn("model load failed", zap.String("key", key), zap.Error(err))
		sendError(sess, "load: "+err.Error())
	}
}

// HandleClearModel processes C_CLEAR_MODEL.
func HandleClearModel(sess *net.Session, _ *packet.Reader, deps *Deps) {
	deps.Viewer.ClearModel()
}
