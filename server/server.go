package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"auto_wechat_article_studio/generator"
	"auto_wechat_article_studio/publisher"
	"auto_wechat_article_studio/studio"
)

// 生成+配图可能串多个模型调用，超时放宽到 5 分钟。
const pipelineTimeout = 5 * time.Minute

type Server struct {
	studio *studio.Studio
	pubCfg publisher.Config
	store  *sessionStore
	log    *zap.SugaredLogger
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*generator.Session
}

func newStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*generator.Session)}
}

func (s *sessionStore) set(id string, sess *generator.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

func (s *sessionStore) get(id string) (*generator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func New(st *studio.Studio, pubCfg publisher.Config, log *zap.SugaredLogger) (*Server, error) {
	if st == nil {
		return nil, errors.New("studio pipeline required")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{
		studio: st,
		pubCfg: pubCfg,
		store:  newStore(),
		log:    log,
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", s.handleSessionCreate)
	mux.HandleFunc("/api/sessions/", s.handleSessionByID)
	return s.logMiddleware(mux)
}

// --- Handlers ---

type sessionCreateReq struct {
	Topic       string   `json:"topic"`
	Outline     []string `json:"outline"`
	Tone        string   `json:"tone"`
	Audience    string   `json:"audience"`
	Words       int      `json:"words"`
	Constraints []string `json:"constraints"`
}

type sessionResp struct {
	SessionID string           `json:"session_id"`
	Draft     generator.Draft  `json:"draft"`
	History   []generator.Turn `json:"history"`
}

type reviseReq struct {
	Comment string `json:"comment"`
}

type narrateSegment struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	WAV   string `json:"wav_base64"`
}

type narrateResp struct {
	Segments []narrateSegment `json:"segments"`
}

type publishReq struct {
	Author string `json:"author"`
	Digest string `json:"digest"`
}

type publishResp struct {
	MediaID string `json:"media_id"`
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req sessionCreateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	spec := generator.Spec{
		Topic:       req.Topic,
		Outline:     req.Outline,
		Tone:        req.Tone,
		Audience:    req.Audience,
		Words:       req.Words,
		Constraints: req.Constraints,
	}
	id := uuid.NewString()
	sess := s.studio.NewSession(id, spec)
	ctx, cancel := context.WithTimeout(r.Context(), pipelineTimeout)
	defer cancel()
	draft := s.studio.Propose(ctx, sess)
	s.store.set(id, sess)
	writeJSON(w, sessionResp{SessionID: id, Draft: draft, History: sess.History})
}

func (s *Server) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	id, sub, _ := strings.Cut(rest, "/")
	action, extra, _ := strings.Cut(sub, "/")
	if id == "" || extra != "" {
		http.NotFound(w, r)
		return
	}
	sess, ok := s.store.get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	switch action {
	case "":
		s.handleSession(w, r, sess)
	case "narrate":
		s.handleNarrate(w, r, sess)
	case "publish":
		s.handlePublish(w, r, sess)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, sessionResp{SessionID: sess.ID, Draft: sess.Draft, History: sess.History})
	case http.MethodPost:
		var req reviseReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), pipelineTimeout)
		defer cancel()
		draft, err := s.studio.Revise(ctx, sess, req.Comment)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		writeJSON(w, sessionResp{SessionID: sess.ID, Draft: draft, History: sess.History})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleNarrate(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), pipelineTimeout)
	defer cancel()
	segments := s.studio.Narrate(ctx, sess.Draft.HTML)
	resp := narrateResp{Segments: []narrateSegment{}}
	for _, seg := range segments {
		resp.Segments = append(resp.Segments, narrateSegment{
			Index: seg.Index,
			Text:  seg.Text,
			WAV:   base64.StdEncoding.EncodeToString(seg.WAV),
		})
	}
	writeJSON(w, resp)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req publishReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cover, ok := publisher.FirstEmbeddedImage(sess.Draft.HTML)
	if !ok {
		http.Error(w, "article has no embedded image to use as cover", http.StatusConflict)
		return
	}
	pub, err := publisher.New(s.pubCfg, nil, s.log)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	digest := req.Digest
	if digest == "" {
		digest = sess.Draft.Digest
	}
	ctx, cancel := context.WithTimeout(r.Context(), pipelineTimeout)
	defer cancel()
	mediaID, err := pub.PublishDraft(ctx, publisher.PublishParams{
		Title:      sess.Draft.Title,
		Author:     req.Author,
		Digest:     digest,
		HTML:       sess.Draft.HTML,
		CoverBytes: cover,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, publishResp{MediaID: mediaID})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Infow("http", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}
