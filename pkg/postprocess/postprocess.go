// Package postprocess rewrites replies into the requested language and tone
// and optionally renders them as speech.
package postprocess

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"EchoVerse/pkg/services"
	utils "EchoVerse/pkg/utills"
)

const (
	LangAuto     = "auto"
	LangHinglish = "hinglish"

	DefaultTone = "default"

	// MaxSpeechRunes caps the text sent to the synthesizer.
	MaxSpeechRunes = 4000
)

var languages = map[string]string{
	"en":         "English",
	"hi":         "Hindi",
	LangHinglish: "Hinglish",
	"es":         "Spanish",
	"fr":         "French",
}

var personalities = map[string]string{
	DefaultTone:    "Friendly and natural.",
	"educational":  "Clear teacher tone with examples.",
	"developer":    "Technical and precise. Short and direct.",
	"fun":          "Playful and expressive.",
	"professional": "Formal and concise.",
	"motivational": "Positive and uplifting.",
}

// synthesis locales; hinglish and auto speak with the base locale
var speechLocales = map[string]string{
	"en":         "en",
	"hi":         "hi",
	LangHinglish: "en",
	"es":         "es",
	"fr":         "fr",
	LangAuto:     "en",
}

// Generator is the completion capability the pipeline needs.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AudioSaver persists rendered audio and returns its public URL.
type AudioSaver interface {
	SaveAudio(data []byte, ext string) (string, error)
}

type Pipeline struct {
	llm   Generator
	synth services.Synthesizer
	audio AudioSaver
	log   *zap.Logger
}

// NewPipeline accepts a nil synth or audio; RenderAudio then always
// returns nil.
func NewPipeline(llm Generator, synth services.Synthesizer, audio AudioSaver, log *zap.Logger) *Pipeline {
	return &Pipeline{llm: llm, synth: synth, audio: audio, log: log.With(zap.String("component", "postprocess"))}
}

// NormalizeLanguage lowercases lang and maps unknown codes to auto.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := languages[lang]; ok {
		return lang
	}
	return LangAuto
}

// ToneDescription returns the personality text for tone, or the default.
func ToneDescription(tone string) string {
	if d, ok := personalities[strings.ToLower(strings.TrimSpace(tone))]; ok {
		return d
	}
	return personalities[DefaultTone]
}

// Rewrite translates text into lang using tone. Any failure returns text
// unchanged.
func (p *Pipeline) Rewrite(ctx context.Context, text, lang, tone string) string {
	lang = NormalizeLanguage(lang)
	if lang == LangAuto || strings.TrimSpace(text) == "" {
		return text
	}
	var prompt string
	if lang == LangHinglish {
		prompt = "Convert the following to Hinglish (Hindi in English letters). No Devanagari.\n\nTEXT:\n" + text
	} else {
		prompt = fmt.Sprintf("Translate to %s using tone: %s\n\nTEXT:\n%s", languages[lang], ToneDescription(tone), text)
	}
	out, err := p.llm.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(out) == "" {
		p.log.Warn("rewrite failed, keeping original", zap.String("lang", lang), zap.Error(err))
		return text
	}
	return out
}

// RenderAudio synthesizes text and returns the artifact URL, or nil on any
// failure.
func (p *Pipeline) RenderAudio(ctx context.Context, text, lang string) *string {
	if p.synth == nil || p.audio == nil {
		return nil
	}
	clip := CleanForSpeech(text)
	if !utils.HasLetter(clip) && !utils.HasNumber(clip) {
		return nil
	}
	audio, err := p.synth.Synthesize(ctx, clip, SpeechLocale(lang))
	if err != nil {
		p.log.Warn("speech synthesis failed", zap.Error(err))
		return nil
	}
	url, err := p.audio.SaveAudio(audio, "mp3")
	if err != nil {
		p.log.Warn("saving audio failed", zap.Error(err))
		return nil
	}
	return &url
}

// SpeechLocale maps a language code to a synthesis locale.
func SpeechLocale(lang string) string {
	if l, ok := speechLocales[NormalizeLanguage(lang)]; ok {
		return l
	}
	return "en"
}

var (
	emojiPattern  = regexp.MustCompile("[\U0001F300-\U0001F6FF\U0001F900-\U0001F9FF\U0001FA70-\U0001FAFF\u2700-\u27BF\u2600-\u26FF]+")
	unsafePattern = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s.,!?\-:;'"/()\[\]]`)
	spacePattern  = regexp.MustCompile(`[\s\p{Z}]+`)
)

// CleanForSpeech strips emoji and unsafe symbols, collapses whitespace and
// truncates to MaxSpeechRunes. It never returns an empty string.
func CleanForSpeech(s string) string {
	s = emojiPattern.ReplaceAllString(s, " ")
	s = unsafePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
	s = utils.TruncateRunes(s, MaxSpeechRunes)
	if s == "" {
		return " "
	}
	return s
}
