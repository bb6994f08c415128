// Package dispatch classifies each chat message and routes it to exactly
// one handler.
//
// Classification is a fixed, ordered list of keyword heuristics evaluated
// first-match-wins: reset, reminder, OCR query, smalltalk, then free-form
// Q&A. The order matters because the categories overlap lexically. Reset and
// smalltalk compare the whole trimmed, lowercased message; OCR intent is a
// substring match.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"EchoVerse/models"
	"EchoVerse/pkg/answer"
	"EchoVerse/pkg/reminder"
	"EchoVerse/pkg/services"
	"EchoVerse/pkg/store"
)

const (
	ReplyEmpty         = "Say something."
	ReplyReset         = "✨ New chat started!"
	ReplySmalltalk     = "Hello! How can I help you?"
	ReplyNoImage       = "Upload an image first."
	ReplyImageNoText   = "Image unreadable."
	reminderReplyShape = "🗓 Reminder added! (due: %s)"
)

var (
	resetPhrases = []string{"new chat", "reset", "clear", "clear chat"}

	smalltalkPhrases = []string{
		"hi", "hello", "hey", "hola", "namaste",
		"how are you", "how r u", "how ru", "how are u",
		"kaise ho", "kya haal hai", "whats up", "what's up",
	}

	ocrKeywords = []string{
		"read text", "read the text", "read text given",
		"text in image", "what is written", "what is the text",
		"what is the text given", "image me", "photo me",
		"ocr", "image text", "image mein", "image ke text",
	}
)

type Request struct {
	Message      string
	Language     string
	Mode         string
	VoiceEnabled bool
}

type Response struct {
	Reply    string  `json:"reply"`
	AudioURL *string `json:"audio_url"`
}

// PostProcessor rewrites and voices replies.
type PostProcessor interface {
	Rewrite(ctx context.Context, text, lang, tone string) string
	RenderAudio(ctx context.Context, text, lang string) *string
}

// outcome is what a handler produced before post-processing.
type outcome struct {
	reply string
	// raw replies skip post-processing and history
	raw bool
}

type rule struct {
	name   string
	match  func(msg string) bool
	handle func(ctx context.Context, req Request) (outcome, error)
}

type Dispatcher struct {
	store        store.Store
	reminders    *reminder.Scheduler
	chain        *answer.Chain
	post         PostProcessor
	historyLimit int
	now          func() time.Time
	log          *zap.Logger
	rules        []rule
}

type Config struct {
	Store        store.Store
	Reminders    *reminder.Scheduler
	Chain        *answer.Chain
	Post         PostProcessor
	HistoryLimit int
	Logger       *zap.Logger
}

func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		store:        cfg.Store,
		reminders:    cfg.Reminders,
		chain:        cfg.Chain,
		post:         cfg.Post,
		historyLimit: cfg.HistoryLimit,
		now:          func() time.Time { return time.Now().UTC() },
		log:          cfg.Logger.With(zap.String("component", "dispatch")),
	}
	if d.historyLimit <= 0 {
		d.historyLimit = 200
	}
	d.rules = []rule{
		{name: "reset", match: IsReset, handle: d.handleReset},
		{name: "reminder", match: reminder.IsCreateRequest, handle: d.handleReminder},
		{name: "ocr", match: IsOCRQuery, handle: d.handleOCR},
		{name: "smalltalk", match: IsSmalltalk, handle: d.handleSmalltalk},
		{name: "qa", match: func(string) bool { return true }, handle: d.handleQuestion},
	}
	return d
}

// WithClock replaces the clock used for history timestamps.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Dispatch handles one message. Any failure, including a panic in a
// handler, is returned as an error and leaves the dispatcher usable.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (resp Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dispatch panic: %v", r)
		}
		if err != nil {
			d.log.Error("chat dispatch failed", zap.String("message", req.Message), zap.String("language", req.Language), zap.Error(err))
		}
	}()

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return Response{Reply: ReplyEmpty}, nil
	}
	req.Message = msg

	for _, r := range d.rules {
		if !r.match(msg) {
			continue
		}
		d.log.Debug("intent classified", zap.String("intent", r.name))
		out, err := r.handle(ctx, req)
		if err != nil {
			return Response{}, fmt.Errorf("%s: %w", r.name, err)
		}
		if out.raw {
			return Response{Reply: out.reply}, nil
		}
		return d.finish(ctx, req, out.reply)
	}
	return Response{}, fmt.Errorf("no rule matched")
}

// finish post-processes the reply and records the exchange.
func (d *Dispatcher) finish(ctx context.Context, req Request, reply string) (Response, error) {
	reply = d.post.Rewrite(ctx, reply, req.Language, req.Mode)
	resp := Response{Reply: reply}
	if req.VoiceEnabled {
		resp.AudioURL = d.post.RenderAudio(ctx, reply, req.Language)
	}
	ts := d.now()
	err := store.AppendHistory(ctx, d.store, d.historyLimit,
		models.Message{Who: models.SenderUser, Text: req.Message, Timestamp: ts},
		models.Message{Who: models.SenderBot, Text: reply, Timestamp: ts},
	)
	if err != nil {
		return Response{}, fmt.Errorf("append history: %w", err)
	}
	return resp, nil
}

func (d *Dispatcher) handleReset(ctx context.Context, req Request) (outcome, error) {
	if err := d.store.Reset(ctx); err != nil {
		return outcome{}, err
	}
	return outcome{reply: ReplyReset, raw: true}, nil
}

func (d *Dispatcher) handleReminder(ctx context.Context, req Request) (outcome, error) {
	r, err := d.reminders.Add(ctx, req.Message, reminder.ParseDelay(req.Message))
	if err != nil {
		return outcome{}, err
	}
	return outcome{reply: fmt.Sprintf(reminderReplyShape, r.DueAt.Format(time.RFC3339))}, nil
}

func (d *Dispatcher) handleOCR(ctx context.Context, req Request) (outcome, error) {
	text, ok, err := d.store.LoadImageText(ctx)
	if err != nil {
		return outcome{}, err
	}
	if !ok {
		return outcome{reply: ReplyNoImage}, nil
	}
	if strings.TrimSpace(text) == "" {
		text = ReplyImageNoText
	}
	return outcome{reply: text}, nil
}

func (d *Dispatcher) handleSmalltalk(ctx context.Context, req Request) (outcome, error) {
	return outcome{reply: ReplySmalltalk}, nil
}

// handleQuestion runs the document-first source chain. The chain already
// ends with an unconstrained completion, so an empty chain means every model
// failed once and the reply degrades without asking them again.
func (d *Dispatcher) handleQuestion(ctx context.Context, req Request) (outcome, error) {
	if text, src, ok := d.chain.Answer(ctx, req.Message); ok {
		d.log.Debug("question answered", zap.String("source", src))
		return outcome{reply: text}, nil
	}
	d.log.Warn("no source answered, degrading")
	return outcome{reply: services.DegradedReply}, nil
}

// IsReset matches a reset phrase exactly (case-insensitive, trimmed).
func IsReset(msg string) bool {
	return exactMatch(msg, resetPhrases)
}

// IsSmalltalk matches a greeting exactly (case-insensitive, trimmed).
func IsSmalltalk(msg string) bool {
	return exactMatch(msg, smalltalkPhrases)
}

// IsOCRQuery reports whether any OCR keyword occurs in msg.
func IsOCRQuery(msg string) bool {
	m := strings.ToLower(msg)
	for _, k := range ocrKeywords {
		if strings.Contains(m, k) {
			return true
		}
	}
	return false
}

func exactMatch(msg string, set []string) bool {
	m := strings.ToLower(strings.TrimSpace(msg))
	for _, p := range set {
		if m == p {
			return true
		}
	}
	return false
}
