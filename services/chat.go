package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/gbonee/hustle-vibes-africa-sub000/logger"
	"github.com/gbonee/hustle-vibes-africa-sub000/models"

	"golang.org/x/text/language"
)

const (
	DefaultLanguage      = "pcm"
	DefaultGIFSearchTerm = "nigerian comedy"
	promptHistoryTurns   = 10
	gifCandidates        = 10
)

var languageAliases = map[string]string{
	"pidgin":          "pcm",
	"naija":           "pcm",
	"nigerian-pidgin": "pcm",
	"yoruba":          "yo",
	"hausa":           "ha",
	"igbo":            "ig",
	"english":         "en",
}

var supportedLanguages = map[string]bool{"pcm": true, "yo": true, "ha": true, "ig": true, "en": true}

// NormalizeLanguage maps names and BCP 47 tags ("Yoruba", "yo-NG") onto the
// base codes the coach speaks. Anything else falls back to Pidgin.
func NormalizeLanguage(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "_", "-")
	if alias, ok := languageAliases[s]; ok {
		return alias
	}
	tag, err := language.Parse(s)
	if err != nil {
		return DefaultLanguage
	}
	base, _ := tag.Base()
	if code := base.String(); supportedLanguages[code] {
		return code
	}
	return DefaultLanguage
}

var welcomeLines = map[string]string{
	"pcm": "How far %s! Welcome to %s. I be your coach, anything wey you no understand, just ask me. We go run am together!",
	"yo":  "Ẹ kú àbọ̀ %s! Ẹ kú àbọ̀ sí %s. Èmi ni olùkọ́ yín, ẹ bi mí ní ìbéèrè kankan.",
	"ha":  "Sannu %s! Barka da zuwa %s. Ni ne kocin ka, ka tambaye ni duk abin da kake so.",
	"ig":  "Nnọọ %s! Nnọọ na %s. Abụ m onye nkuzi gị, jụọ m ajụjụ ọ bụla.",
	"en":  "Hey %s! Welcome to %s. I'm your coach, ask me anything about the course and let's get you earning.",
}

var fallbackLines = map[string]string{
	"pcm": "Wahala dey small for my side, abeg try ask me again.",
	"yo":  "Ìṣòro kékeré kan wà, jọ̀wọ́ tún bi mí lẹ́ẹ̀kan sí i.",
	"ha":  "An sami ɗan matsala, don Allah ka sake tambaya.",
	"ig":  "Obere nsogbu dị, biko jụọ m ọzọ.",
	"en":  "Something went wrong on my side, please ask me again.",
}

var languageTones = map[string]string{
	"pcm": "Reply in Nigerian Pidgin English. Keep am playful, use street slang where e fit.",
	"yo":  "Reply in Yoruba. Use simple English words only when there is no common Yoruba word.",
	"ha":  "Reply in Hausa. Keep the tone warm and respectful.",
	"ig":  "Reply in Igbo. Keep the tone lively and encouraging.",
	"en":  "Reply in simple Nigerian English with a friendly, funny tone.",
}

var coursePersonas = map[string]string{
	"digital-marketing": "You are Mama Tee, a sharp Lagos digital marketer who has grown many small shops on Instagram and WhatsApp. You teach digital marketing for small businesses.",
	"pastry-business":   "You are Auntie Bisi, a caterer who turned a home kitchen into a busy small chops business. You teach pastry and small chops as a business.",
	"importation":       "You are Oga Emeka, an experienced mini importer who knows suppliers, shipping and clearing. You teach mini importation.",
}

const defaultPersona = "You are a friendly Nigerian business coach who teaches practical skills for making money."

func WelcomeLine(lang, userName, courseTitle string) string {
	line, ok := welcomeLines[lang]
	if !ok {
		line = welcomeLines[DefaultLanguage]
	}
	if strings.TrimSpace(userName) == "" {
		userName = "my guy"
	}
	return fmt.Sprintf(line, userName, courseTitle)
}

func FallbackLine(lang string) string {
	if line, ok := fallbackLines[lang]; ok {
		return line
	}
	return fallbackLines[DefaultLanguage]
}

// CompletionRequest is the chat proxy input.
type CompletionRequest struct {
	Message          string        `json:"message" validate:"required,max=2000"`
	Course           string        `json:"course" validate:"required"`
	Language         string        `json:"language"`
	UserName         string        `json:"userName"`
	Progress         int           `json:"progress" validate:"gte=0,lte=100"`
	PreviousMessages []ChatMessage `json:"previousMessages"`
}

type CompletionResponse struct {
	Response string  `json:"response"`
	GIF      *string `json:"gif"`
}

type SessionInput struct {
	UserID   string
	CourseID string
	Language string
	UserName string
}

type MessageInput struct {
	SessionInput
	Message string
}

type ChatSession struct {
	Key      string            `json:"key"`
	Language string            `json:"language"`
	Turns    []models.ChatTurn `json:"turns"`
}

type ChatReply struct {
	Turn     models.ChatTurn `json:"turn"`
	Fallback bool            `json:"fallback"`
}

type ChatService struct {
	History    ChatHistoryStore
	Completion CompletionClient
	GIFs       GIFSearcher
	Progress   *ProgressService
	Catalog    *CatalogService
	SearchTerm string
	log        *logger.Logger
	pick       func(n int) int
	now        func() time.Time
}

func NewChatService(history ChatHistoryStore, completion CompletionClient, gifs GIFSearcher,
	progress *ProgressService, catalog *CatalogService, searchTerm string, log *logger.Logger) *ChatService {
	if searchTerm == "" {
		searchTerm = DefaultGIFSearchTerm
	}
	return &ChatService{
		History:    history,
		Completion: completion,
		GIFs:       gifs,
		Progress:   progress,
		Catalog:    catalog,
		SearchTerm: searchTerm,
		log:        log.With("service", "ChatService"),
		pick:       rand.Intn,
		now:        time.Now,
	}
}

func systemPrompt(courseID, lang, userName string, progress int) string {
	persona, ok := coursePersonas[courseID]
	if !ok {
		persona = defaultPersona
	}
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n")
	b.WriteString(languageTones[lang])
	if userName != "" {
		fmt.Fprintf(&b, "\nThe learner's name is %s.", userName)
	}
	fmt.Fprintf(&b, "\nThey have completed %d%% of the course. Keep answers short and practical.", progress)
	return b.String()
}

// randomGIF returns one random search result, or nil when search is off or fails.
func (s *ChatService) randomGIF(ctx context.Context) *string {
	if s.GIFs == nil {
		return nil
	}
	urls, err := s.GIFs.Search(ctx, s.SearchTerm, gifCandidates)
	if err != nil {
		s.log.Warn("[CHAT] gif search failed", "error", err)
		return nil
	}
	if len(urls) == 0 {
		return nil
	}
	u := urls[s.pick(len(urls))]
	return &u
}

// Complete builds the persona prompt for the course and language, asks the
// completion backend for a reply and attaches one random GIF.
func (s *ChatService) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	lang := NormalizeLanguage(req.Language)

	prev := req.PreviousMessages
	if len(prev) > promptHistoryTurns {
		prev = prev[len(prev)-promptHistoryTurns:]
	}
	messages := make([]ChatMessage, 0, len(prev)+2)
	messages = append(messages, ChatMessage{Role: "system", Content: systemPrompt(req.Course, lang, req.UserName, req.Progress)})
	for _, m := range prev {
		if m.Role != models.ChatRoleUser && m.Role != models.ChatRoleAssistant {
			continue
		}
		messages = append(messages, m)
	}
	messages = append(messages, ChatMessage{Role: models.ChatRoleUser, Content: req.Message})

	reply, err := s.Completion.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	return &CompletionResponse{Response: reply, GIF: s.randomGIF(ctx)}, nil
}

func (in SessionInput) validate() error {
	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.CourseID) == "" {
		return fmt.Errorf("%w: user_id and course_id are required", ErrInvalidInput)
	}
	return nil
}

func (s *ChatService) courseTitle(ctx context.Context, courseID string) string {
	if s.Catalog == nil {
		return courseID
	}
	return s.Catalog.CourseTitle(ctx, courseID)
}

// StartSession returns the stored conversation, seeding the welcome line on
// first visit.
func (s *ChatService) StartSession(ctx context.Context, in SessionInput) (*ChatSession, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	lang := NormalizeLanguage(in.Language)
	key := HistoryKey(in.UserID, in.CourseID, lang)

	turns, err := s.History.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(turns) > 0 {
		return &ChatSession{Key: key, Language: lang, Turns: turns}, nil
	}

	welcome := models.ChatTurn{
		Role:      models.ChatRoleAssistant,
		Content:   WelcomeLine(lang, in.UserName, s.courseTitle(ctx, in.CourseID)),
		GIF:       s.randomGIF(ctx),
		CreatedAt: s.now(),
	}
	if err := s.History.Append(ctx, key, welcome); err != nil {
		s.log.Warn("[CHAT] failed to persist welcome line", "key", key, "error", err)
	}
	return &ChatSession{Key: key, Language: lang, Turns: []models.ChatTurn{welcome}}, nil
}

// SendMessage answers one user turn. A failed completion is answered with the
// localized fallback line instead of an error.
func (s *ChatService) SendMessage(ctx context.Context, in MessageInput) (*ChatReply, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	lang := NormalizeLanguage(in.Language)
	key := HistoryKey(in.UserID, in.CourseID, lang)

	history, err := s.History.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	prev := make([]ChatMessage, 0, len(history))
	for _, t := range history {
		prev = append(prev, ChatMessage{Role: t.Role, Content: t.Content})
	}

	progress := 0
	if s.Progress != nil {
		if cp, err := s.Progress.GetCourseProgress(ctx, in.UserID, in.CourseID); err == nil {
			progress = cp.ProgressPercentage
		}
	}

	userTurn := models.ChatTurn{Role: models.ChatRoleUser, Content: in.Message, CreatedAt: s.now()}
	reply := &ChatReply{}
	resp, err := s.Complete(ctx, CompletionRequest{
		Message:          in.Message,
		Course:           in.CourseID,
		Language:         lang,
		UserName:         in.UserName,
		Progress:         progress,
		PreviousMessages: prev,
	})
	if err != nil {
		s.log.Error("[CHAT] completion failed", "user_id", in.UserID, "course_id", in.CourseID, "error", err)
		reply.Turn = models.ChatTurn{Role: models.ChatRoleAssistant, Content: FallbackLine(lang), CreatedAt: s.now()}
		reply.Fallback = true
	} else {
		reply.Turn = models.ChatTurn{Role: models.ChatRoleAssistant, Content: resp.Response, GIF: resp.GIF, CreatedAt: s.now()}
	}

	if err := s.History.Append(ctx, key, userTurn, reply.Turn); err != nil {
		s.log.Warn("[CHAT] failed to persist turns", "key", key, "error", err)
	}
	return reply, nil
}

func (s *ChatService) ClearSession(ctx context.Context, in SessionInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	return s.History.Clear(ctx, HistoryKey(in.UserID, in.CourseID, NormalizeLanguage(in.Language)))
}
