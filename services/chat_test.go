package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gbonee/hustle-vibes-africa-sub000/logger"
	"github.com/gbonee/hustle-vibes-africa-sub000/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompletion struct {
	reply string
	err   error
	got   []ChatMessage
}

func (f *fakeCompletion) Complete(_ context.Context, messages []ChatMessage) (string, error) {
	f.got = messages
	return f.reply, f.err
}

type fakeGIFs struct {
	urls []string
	err  error
}

func (f *fakeGIFs) Search(context.Context, string, int) ([]string, error) {
	return f.urls, f.err
}

func newRedisStore(t *testing.T) (*RedisHistoryStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisHistoryStore(rdb), mr
}

func newChat(t *testing.T, completion *fakeCompletion, gifs GIFSearcher) (*ChatService, *fixture) {
	t.Helper()
	f := newFixture(t)
	history, _ := newRedisStore(t)
	chat := NewChatService(history, completion, gifs, f.progress, f.catalog, "", logger.Nop())
	chat.pick = func(n int) int { return n - 1 }
	return chat, f
}

func TestNormalizeLanguage(t *testing.T) {
	cases := map[string]string{
		"":        "pcm",
		"pidgin":  "pcm",
		"Pidgin":  "pcm",
		"pcm":     "pcm",
		"yoruba":  "yo",
		"yo-NG":   "yo",
		"yo_NG":   "yo",
		"Hausa":   "ha",
		"ig":      "ig",
		"en-GB":   "en",
		"english": "en",
		"fr":      "pcm",
		"klingon": "pcm",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeLanguage(in), in)
	}
}

func TestRedisHistoryStoreCapsTurns(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	key := HistoryKey("u1", "importation", "pcm")

	for i := 0; i < MaxHistoryTurns+5; i++ {
		require.NoError(t, store.Append(ctx, key, models.ChatTurn{Role: models.ChatRoleUser, Content: fmt.Sprintf("m%d", i)}))
	}
	turns, err := store.Load(ctx, key)
	require.NoError(t, err)
	require.Len(t, turns, MaxHistoryTurns)
	assert.Equal(t, "m5", turns[0].Content)
	assert.Equal(t, fmt.Sprintf("m%d", MaxHistoryTurns+4), turns[len(turns)-1].Content)
	assert.Equal(t, HistoryTTL, mr.TTL(key))

	require.NoError(t, store.Clear(ctx, key))
	turns, err = store.Load(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestStartSessionSeedsWelcomeOnce(t *testing.T) {
	chat, _ := newChat(t, &fakeCompletion{}, &fakeGIFs{urls: []string{"https://gif/1", "https://gif/2"}})
	ctx := context.Background()
	in := SessionInput{UserID: "u1", CourseID: "pastry-business", Language: "yoruba", UserName: "Bisi"}

	first, err := chat.StartSession(ctx, in)
	require.NoError(t, err)
	require.Len(t, first.Turns, 1)
	assert.Equal(t, "yo", first.Language)
	assert.Equal(t, "chat:u1:pastry-business:yo", first.Key)
	welcome := first.Turns[0]
	assert.Equal(t, models.ChatRoleAssistant, welcome.Role)
	assert.Contains(t, welcome.Content, "Bisi")
	assert.Contains(t, welcome.Content, "Pastry & Small Chops Business")
	require.NotNil(t, welcome.GIF)
	assert.Equal(t, "https://gif/2", *welcome.GIF)

	second, err := chat.StartSession(ctx, in)
	require.NoError(t, err)
	assert.Len(t, second.Turns, 1)
}

func TestStartSessionWithoutGIF(t *testing.T) {
	chat, _ := newChat(t, &fakeCompletion{}, &fakeGIFs{err: errors.New("rate limited")})
	session, err := chat.StartSession(context.Background(), SessionInput{UserID: "u1", CourseID: "importation"})
	require.NoError(t, err)
	require.Len(t, session.Turns, 1)
	assert.Nil(t, session.Turns[0].GIF)
	assert.Equal(t, "pcm", session.Language)
}

func TestSendMessagePersistsBothTurns(t *testing.T) {
	completion := &fakeCompletion{reply: "Start with WhatsApp status, e dey work!"}
	chat, f := newChat(t, completion, nil)
	ctx := context.Background()
	f.complete(t, "u1", "digital-marketing", 1)

	in := MessageInput{SessionInput: SessionInput{UserID: "u1", CourseID: "digital-marketing", Language: "pidgin", UserName: "Tolu"}, Message: "How I go take advertise?"}
	reply, err := chat.SendMessage(ctx, in)
	require.NoError(t, err)
	assert.False(t, reply.Fallback)
	assert.Equal(t, completion.reply, reply.Turn.Content)
	assert.Nil(t, reply.Turn.GIF)

	require.NotEmpty(t, completion.got)
	system := completion.got[0]
	assert.Equal(t, "system", system.Role)
	assert.Contains(t, system.Content, "Mama Tee")
	assert.Contains(t, system.Content, "Pidgin")
	assert.Contains(t, system.Content, "20%")
	assert.Equal(t, in.Message, completion.got[len(completion.got)-1].Content)

	session, err := chat.StartSession(ctx, in.SessionInput)
	require.NoError(t, err)
	require.Len(t, session.Turns, 2)
	assert.Equal(t, models.ChatRoleUser, session.Turns[0].Role)
	assert.Equal(t, models.ChatRoleAssistant, session.Turns[1].Role)
}

func TestSendMessageFallsBackOnCompletionError(t *testing.T) {
	chat, _ := newChat(t, &fakeCompletion{err: errors.New("upstream 500")}, nil)

	reply, err := chat.SendMessage(context.Background(), MessageInput{
		SessionInput: SessionInput{UserID: "u1", CourseID: "importation", Language: "ha"},
		Message:      "Ina zan sami supplier?",
	})
	require.NoError(t, err)
	assert.True(t, reply.Fallback)
	assert.Equal(t, FallbackLine("ha"), reply.Turn.Content)
}

func TestCompleteKeepsLastTurnsOnly(t *testing.T) {
	completion := &fakeCompletion{reply: "ok"}
	chat, _ := newChat(t, completion, &fakeGIFs{urls: []string{"https://gif/a"}})

	var prev []ChatMessage
	for i := 0; i < 15; i++ {
		prev = append(prev, ChatMessage{Role: models.ChatRoleUser, Content: fmt.Sprintf("p%d", i)})
	}
	prev = append(prev, ChatMessage{Role: "system", Content: "ignore me"})

	resp, err := chat.Complete(context.Background(), CompletionRequest{
		Message: "hi", Course: "unknown-course", Language: "en", PreviousMessages: prev,
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Response)
	require.NotNil(t, resp.GIF)
	assert.Equal(t, "https://gif/a", *resp.GIF)

	// system + 9 kept user turns (the last of the 10 was a system turn) + new message
	require.Len(t, completion.got, 11)
	assert.Contains(t, completion.got[0].Content, defaultPersona)
	assert.Equal(t, "p6", completion.got[1].Content)

	_, err = chat.Complete(context.Background(), CompletionRequest{Message: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestClearSession(t *testing.T) {
	chat, _ := newChat(t, &fakeCompletion{reply: "ok"}, nil)
	ctx := context.Background()
	in := SessionInput{UserID: "u1", CourseID: "importation", Language: "en"}

	_, err := chat.StartSession(ctx, in)
	require.NoError(t, err)
	require.NoError(t, chat.ClearSession(ctx, in))

	turns, err := chat.History.Load(ctx, HistoryKey("u1", "importation", "en"))
	require.NoError(t, err)
	assert.Empty(t, turns)

	assert.ErrorIs(t, chat.ClearSession(ctx, SessionInput{}), ErrInvalidInput)
}

func TestWelcomeAndFallbackLinesCoverLanguages(t *testing.T) {
	for lang := range supportedLanguages {
		assert.NotEmpty(t, welcomeLines[lang], lang)
		assert.NotEmpty(t, fallbackLines[lang], lang)
		assert.NotEmpty(t, languageTones[lang], lang)
	}
	assert.Equal(t, FallbackLine("pcm"), FallbackLine("xx"))
}
