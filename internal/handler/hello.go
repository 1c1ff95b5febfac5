package handler

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ifcquery/ifcview/internal/net"
	"github.com/ifcquery/ifcview/internal/net/packet"
)

// HandleHello processes C_HELLO: [client name\0].
// Responds with S_HELLO and authenticates at once when no password is set.
func HandleHello(sess *net.Session, r *packet.Reader, deps *Deps) {
	sess.ClientName = r.ReadS()
	deps.Log.Debug("client hello", zap.Uint64("session", sess.ID), zap.String("client", sess.ClientName))

	cfg := deps.Config
	authRequired := cfg.Control.PasswordHash != ""

	w := packet.NewWriterWithOpcode(packet.S_OPCODE_HELLO)
	w.WriteH(packet.ProtocolVersion)
	w.WriteS(cfg.Viewer.Name)
	w.WriteS(packet.Charset())
	w.WriteBool(authRequired)
	w.WriteD(int32(cfg.Viewer.StartTime))
	sess.Send(w.Bytes())

	if !authRequired {
		authenticate(sess, deps)
	}
}

// HandleAuth processes C_AUTH: [password\0].
func HandleAuth(sess *net.Session, r *packet.Reader, deps *Deps) {
	password := r.ReadS()
	hash := deps.Config.Control.PasswordHash
	if hash == "" {
		authenticate(sess, deps)
		return
	}

	if deps.Config.RateLimit.Enabled && !sess.AllowAuth(time.Now()) {
		deps.Log.Warn("auth throttled", zap.Uint64("session", sess.ID), zap.String("ip", sess.IP))
		sendAuthResult(sess, packet.AuthThrottle)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		deps.Log.Info("auth rejected", zap.Uint64("session", sess.ID), zap.String("ip", sess.IP))
		sendAuthResult(sess, packet.AuthRejected)
		return
	}
	authenticate(sess, deps)
}

// HandleQuit processes C_QUIT.
func HandleQuit(sess *net.Session, _ *packet.Reader, deps *Deps) {
	deps.Log.Info("client quit", zap.Uint64("session", sess.ID))
	sess.FlushOutput()
	sess.Close()
}

func authenticate(sess *net.Session, deps *Deps) {
	sess.SetState(packet.StateAuthenticated)
	sendAuthResult(sess, packet.AuthOK)
	sendState(sess, deps)
	deps.Log.Info("client authenticated",
		zap.Uint64("session", sess.ID),
		zap.String("client", sess.ClientName),
		zap.String("ip", sess.IP),
	)
}

func sendAuthResult(sess *net.Session, code byte) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_AUTH_RESULT)
	w.WriteC(code)
	sess.Send(w.Bytes())
}
