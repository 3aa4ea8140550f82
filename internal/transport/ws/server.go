// Package ws serves the SOLVE protocol over websockets. Each connection gets
// one solver goroutine; requests on a connection are answered in order.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"questsolver/internal/config"
	"questsolver/internal/level"
	"questsolver/internal/logging"
	"questsolver/internal/pipeline"
	"questsolver/internal/protocol"
	"questsolver/internal/sim/catalogs"
	"questsolver/internal/sim/program"
	"questsolver/internal/sim/rules"
	"questsolver/internal/sim/search"
	"questsolver/internal/sim/state"
)

const (
	writeWait = 5 * time.Second
	readWait  = 60 * time.Second
)

type Server struct {
	cfg     config.Solver
	rules   rules.Config
	catalog *catalogs.ToolboxCatalog
	rec     *pipeline.Recorder
	log     *zap.Logger

	upgrader websocket.Upgrader
	wg       sync.WaitGroup
}

// NewServer answers SOLVE requests with cfg as the default and upper bound
// for per-request overrides. rec may be nil.
func NewServer(cfg config.Solver, rc rules.Config, cat *catalogs.ToolboxCatalog, rec *pipeline.Recorder, logger *zap.Logger) *Server {
	return &Server{
		cfg:     cfg,
		rules:   rc,
		catalog: cat,
		rec:     rec,
		log:     logging.OrNop(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Wait blocks until every connection handler and its goroutines have
// returned.
func (s *Server) Wait() { s.wg.Wait() }

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		s.wg.Add(1)
		defer s.wg.Done()
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if s.cfg.Server.MaxMessageBytes > 0 {
			conn.SetReadLimit(s.cfg.Server.MaxMessageBytes)
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := make(chan []byte, s.cfg.Server.SendQueue)
		reqs := make(chan []byte, 1)

		// Writer goroutine.
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-ctx.Done():
					// Unblocks the reader when the server shuts down.
					_ = conn.Close()
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Solver goroutine.
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg := <-reqs:
					reply := s.handle(ctx, msg)
					b, err := json.Marshal(reply)
					if err != nil {
						s.log.Error("marshal reply", zap.Error(err))
						continue
					}
					select {
					case out <- b:
					case <-ctx.Done():
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readWait))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			select {
			case reqs <- msg:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}
		cancel()
	}
}

// handle turns one inbound message into a RESULT or ERROR message.
func (s *Server) handle(ctx context.Context, msg []byte) any {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return protocol.NewError("", protocol.ErrProtoBadRequest, "malformed json")
	}
	if base.Type != protocol.TypeSolve {
		return protocol.NewError(base.ReqID, protocol.ErrProtoBadRequest, "unsupported message type "+base.Type)
	}
	if base.ProtocolVersion != protocol.Version {
		return protocol.NewError(base.ReqID, protocol.ErrProtoVersion, "expected protocol_version "+protocol.Version)
	}
	if err := protocol.Validate(protocol.TypeSolve, msg); err != nil {
		return protocol.NewError(base.ReqID, protocol.ErrProtoBadRequest, err.Error())
	}
	var req protocol.SolveMsg
	if err := json.Unmarshal(msg, &req); err != nil {
		return protocol.NewError(base.ReqID, protocol.ErrProtoBadRequest, err.Error())
	}

	doc, err := level.Parse(req.Level)
	if err != nil {
		return protocol.NewError(req.ReqID, protocol.ErrBadLevel, err.Error())
	}
	cfg := s.requestConfig(req)
	opts, err := pipeline.NewOptions(cfg, s.rules, s.catalog)
	if err != nil {
		return protocol.NewError(req.ReqID, protocol.ErrConfig, err.Error())
	}

	rep, runErr := pipeline.Run(ctx, doc, level.Digest(req.Level), opts)
	entry, recErr := s.rec.Record(rep, pipeline.Source{
		Raw:           req.Level,
		Theme:         cfg.Theme,
		ToolboxPreset: cfg.ToolboxPreset,
		MaxExpansions: cfg.MaxExpansions,
	}, runErr)
	if recErr != nil {
		s.log.Warn("record run", zap.String("run_id", entry.RunID), zap.Error(recErr))
	}

	fields := []zap.Field{
		zap.String("run_id", entry.RunID),
		zap.String("level", rep.LevelID),
		zap.String("digest", rep.Digest),
		zap.String("status", rep.Status.String()),
		zap.Int("expanded", rep.Expanded),
		zap.Duration("elapsed", rep.Elapsed),
	}
	switch {
	case runErr != nil:
		s.log.Info("solve failed", append(fields, zap.Error(runErr))...)
		return protocol.NewError(req.ReqID, pipeline.Code(runErr), runErr.Error())
	case rep.Status == search.StatusUnsolvable:
		s.log.Info("solve unsolvable", fields...)
		return protocol.NewError(req.ReqID, protocol.ErrUnsolvable, "no action sequence reaches the goal")
	}
	s.log.Info("solved", append(fields, zap.Int("actions", rep.Lines()), zap.Int("blocks", rep.Blocks))...)
	return resultMsg(req.ReqID, entry.RunID, rep)
}

// requestConfig applies the request's overrides. Limits can only be
// tightened, never raised above the server's.
func (s *Server) requestConfig(req protocol.SolveMsg) config.Solver {
	cfg := s.cfg
	if req.Theme != "" {
		cfg.Theme = req.Theme
	}
	if req.ToolboxPreset != "" {
		cfg.ToolboxPreset = req.ToolboxPreset
	}
	if req.MaxExpansions > 0 && req.MaxExpansions < cfg.MaxExpansions {
		cfg.MaxExpansions = req.MaxExpansions
	}
	if req.TimeoutMs > 0 && req.TimeoutMs < cfg.TimeoutMs {
		cfg.TimeoutMs = req.TimeoutMs
	}
	return cfg
}

func resultMsg(reqID, runID string, rep pipeline.Report) protocol.ResultMsg {
	return protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		ReqID:           reqID,
		RunID:           runID,
		LevelID:         rep.LevelID,
		Digest:          rep.Digest,
		Status:          rep.Status.String(),
		Actions:         rep.Actions,
		Structured:      program.Blockly(rep.Program),
		Listing:         program.Format(rep.Program),
		Blocks:          rep.Blocks,
		Lines:           rep.Lines(),
		Cost:            float64(rep.Cost) / state.CostScale,
		Expanded:        rep.Expanded,
	}
}
