package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/trigtutor/internal/cache"
	"github.com/abhisek/trigtutor/internal/chat"
	"github.com/abhisek/trigtutor/internal/domain"
	"github.com/abhisek/trigtutor/internal/exercises"
	"github.com/abhisek/trigtutor/internal/generate"
	"github.com/abhisek/trigtutor/internal/lessons"
	"github.com/abhisek/trigtutor/internal/llm"
	"github.com/abhisek/trigtutor/internal/quiz"
	"github.com/abhisek/trigtutor/internal/store"
	"github.com/abhisek/trigtutor/internal/topics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	server *Server
	mock   *llm.MockProvider
	store  *store.Store
}

func newTestEnv(t *testing.T, responses ...llm.MockResponse) *testEnv {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mock := llm.NewMockProvider(responses...)
	client := generate.NewClient(mock, cache.New(cache.NewMemoryStore()), nil)
	validator := topics.NewValidator(client, nil)
	lessonSvc := lessons.NewService(client, lessons.DefaultConfig(), nil)

	svc := Services{
		Chat:      chat.NewFlow(validator, lessonSvc, st.RequestLog(), nil),
		Topics:    validator,
		Lessons:   lessonSvc,
		Quiz:      quiz.NewManager(lessonSvc, nil),
		Exercises: exercises.NewGenerator(client, nil),
		Tutor:     exercises.NewTutor(client, nil),
		Users:     st.UserRepo(),
	}
	return &testEnv{
		server: NewServer(svc, Config{SessionSecret: []byte("test-secret-test-secret-test-sec")}, nil),
		mock:   mock,
		store:  st,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func question(i int) domain.QuizQuestion {
	return domain.QuizQuestion{
		Question:           fmt.Sprintf("Pregunta %d", i),
		Options:            []domain.Option{{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"}},
		CorrectAnswerIndex: i % 4,
		Explanation:        "e",
	}
}

func lessonText(t *testing.T) string {
	t.Helper()
	content := domain.GeneratedContent{Body: "# Ley de Cosenos"}
	for i := range domain.LessonQuizSize {
		content.Quiz = append(content.Quiz, question(i))
	}
	b, err := json.Marshal(content)
	require.NoError(t, err)
	return string(b)
}

func exerciseText(t *testing.T, q string) string {
	t.Helper()
	b, err := json.Marshal(domain.ExerciseContent{
		Question:           q,
		Options:            []domain.Option{{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"}},
		CorrectAnswerIndex: 2,
		Explanation:        "e",
	})
	require.NoError(t, err)
	return string(b)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestChat_RelevantTopic(t *testing.T) {
	env := newTestEnv(t,
		llm.Text(`{"is_relevant":true,"suggested_topics":[]}`),
		llm.Text(lessonText(t)),
	)

	w := env.do(t, http.MethodPost, "/api/chat", chatRequest{UserID: "u1", Topic: "Ley de Cosenos"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	reply := decode[chat.Reply](t, w)
	assert.Equal(t, chat.ViewContent, reply.View)
	require.NotNil(t, reply.Content)
	assert.Len(t, reply.Content.Quiz, domain.LessonQuizSize)

	reqs, err := env.store.RequestLog().Recent(t.Context(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "Ley de Cosenos", reqs[0].RequestText)
}

func TestChat_UnreadableValidationFallsBack(t *testing.T) {
	env := newTestEnv(t, llm.Text("no es JSON"))

	w := env.do(t, http.MethodPost, "/api/chat", chatRequest{Topic: "Radianes"})
	require.Equal(t, http.StatusOK, w.Code)

	reply := decode[chat.Reply](t, w)
	assert.Equal(t, chat.ViewChat, reply.View)
	assert.Equal(t, topics.FallbackSuggestions, reply.Suggestions)
}

func TestBadInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		path string
		body any
	}{
		{"blank topic", "/api/topics/validate", topicRequest{Topic: "  "}},
		{"chat without topic", "/api/chat", chatRequest{UserID: "u1"}},
		{"malformed json", "/api/content", "not an object"},
		{"negative batch", "/api/quiz/advance", advanceRequest{Topic: "x", State: quiz.BatchState{BatchIndex: -1}}},
		{"score mismatch", "/api/quiz/score", scoreRequest{Batch: []domain.QuizQuestion{question(0)}, Answers: []int{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Zero(t, env.mock.CallCount())
}

func TestGenerationErrors(t *testing.T) {
	tests := []struct {
		name        string
		resp        llm.MockResponse
		status      int
		rateLimited bool
		message     string
	}{
		{
			name:        "rate limit",
			resp:        llm.Fail(&llm.ErrRateLimit{}),
			status:      http.StatusTooManyRequests,
			rateLimited: true,
			message:     "Límite de solicitudes excedido. Por favor, espera un momento y vuelve a intentarlo.",
		},
		{
			name:    "shape",
			resp:    llm.Text(`{"body":"x","quiz":[]}`),
			status:  http.StatusBadGateway,
			message: "No se pudo generar el contenido. Por favor, inténtalo de nuevo.",
		},
		{
			name:    "transport",
			resp:    llm.Fail(&llm.ErrProviderUnavailable{}),
			status:  http.StatusBadGateway,
			message: "No se pudo generar el contenido. Por favor, inténtalo de nuevo.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.resp)

			w := env.do(t, http.MethodPost, "/api/content", topicRequest{Topic: "Radianes"})
			assert.Equal(t, tt.status, w.Code)
			got := decode[ErrorResponse](t, w)
			assert.Equal(t, tt.rateLimited, got.RateLimited)
			assert.Equal(t, tt.message, got.Error)
		})
	}
}

func TestContentAndQuizFlow(t *testing.T) {
	extra := `{"questions":[` + strings.Repeat(mustJSON(t, question(7))+",", 4) + mustJSON(t, question(7)) + `]}`
	env := newTestEnv(t, llm.Text(lessonText(t)), llm.Text(extra))

	w := env.do(t, http.MethodPost, "/api/content", topicRequest{Topic: "Ley de Cosenos"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	content := decode[contentResponse](t, w)
	assert.Len(t, content.Quiz.CurrentBatch, quiz.BatchSize)

	w = env.do(t, http.MethodPost, "/api/quiz/advance", advanceRequest{Topic: "Ley de Cosenos", State: content.Quiz})
	require.Equal(t, http.StatusOK, w.Code)
	adv := decode[advanceResponse](t, w)
	assert.Equal(t, 1, adv.State.BatchIndex)
	assert.Equal(t, "needs-generation", adv.Next)
	assert.Equal(t, 1, env.mock.CallCount(), "second batch is local")

	w = env.do(t, http.MethodPost, "/api/quiz/advance", advanceRequest{Topic: "Ley de Cosenos", State: adv.State})
	require.Equal(t, http.StatusOK, w.Code)
	adv = decode[advanceResponse](t, w)
	assert.Equal(t, 0, adv.State.BatchIndex)
	assert.Equal(t, 2, env.mock.CallCount())

	w = env.do(t, http.MethodPost, "/api/quiz/score", scoreRequest{Batch: adv.State.CurrentBatch, Answers: []int{3, 3, 0, -1, 3}})
	require.Equal(t, http.StatusOK, w.Code)
	score := decode[map[string]any](t, w)
	assert.EqualValues(t, 3, score["correct"])
	assert.EqualValues(t, 2, score["incorrect"])
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestAdvanceQuiz_HugeBatchIndexGenerates(t *testing.T) {
	extra := `{"questions":[` + strings.Repeat(mustJSON(t, question(7))+",", 4) + mustJSON(t, question(7)) + `]}`
	env := newTestEnv(t, llm.Text(extra))
	pool := make([]domain.QuizQuestion, domain.LessonQuizSize)
	for i := range pool {
		pool[i] = question(i)
	}

	state := quiz.BatchState{AllQuestions: pool, BatchIndex: math.MaxInt/quiz.BatchSize + 1}
	w := env.do(t, http.MethodPost, "/api/quiz/advance", advanceRequest{Topic: "Ley de Cosenos", State: state})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	adv := decode[advanceResponse](t, w)
	assert.Equal(t, 0, adv.State.BatchIndex)
	assert.Len(t, adv.State.CurrentBatch, quiz.BatchSize)
}

func TestExercises_HistoryPerSession(t *testing.T) {
	env := newTestEnv(t,
		llm.Text(exerciseText(t, "Primera")),
		llm.Text(exerciseText(t, "Segunda")),
		llm.Text(exerciseText(t, "Otra sesión")),
	)

	w := env.do(t, http.MethodPost, "/api/exercises", topicRequest{Topic: "Radianes"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "session cookie expected")

	w = env.do(t, http.MethodPost, "/api/exercises", topicRequest{Topic: "Radianes"}, cookies...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, env.mock.User(1), `- "Primera"`)

	w = env.do(t, http.MethodPost, "/api/exercises", topicRequest{Topic: "Radianes"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, env.mock.User(2), "NO REPETIR")
}

func TestClarify(t *testing.T) {
	env := newTestEnv(t, llm.Text("Porque 2π radianes son 360°."))
	ex := decodeExercise(t, exerciseText(t, "¿Cuántos radianes tiene una vuelta?"))

	w := env.do(t, http.MethodPost, "/api/exercises/clarify", clarifyRequest{Exercise: ex, Question: " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, env.mock.CallCount())

	w = env.do(t, http.MethodPost, "/api/exercises/clarify", clarifyRequest{Exercise: ex, Question: "¿Por qué?"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Porque 2π radianes son 360°.", decode[map[string]string](t, w)["answer"])
}

func decodeExercise(t *testing.T, raw string) domain.ExerciseContent {
	t.Helper()
	var ex domain.ExerciseContent
	require.NoError(t, json.Unmarshal([]byte(raw), &ex))
	return ex
}

func TestPractice(t *testing.T) {
	list := `{"exercises":[` + exerciseText(t, "a") + "," + exerciseText(t, "b") + `]}`
	env := newTestEnv(t, llm.Text(list))

	w := env.do(t, http.MethodPost, "/api/practice", topicRequest{Topic: "Radianes"})
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string][]domain.ExerciseContent](t, w)
	assert.Len(t, got["exercises"], 2)
}

func TestUsers(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/users/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, err := env.store.UserRepo().EnsureProfile(t.Context(), "u1", "ana@example.com", "")
	require.NoError(t, err)

	w = env.do(t, http.MethodPost, "/api/users/u1/analytics", analyticsEvent{Kind: "time", View: "chat", Seconds: 42})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	correct := true
	w = env.do(t, http.MethodPost, "/api/users/u1/analytics", analyticsEvent{Kind: "exercise", Correct: &correct})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/api/users/u1/analytics", analyticsEvent{Kind: "time", View: "garden", Seconds: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/users/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode[store.UserData](t, w)
	assert.Equal(t, "u1", user.Profile.ID)
	assert.Equal(t, "ana", user.Profile.Username)
	assert.Equal(t, 42, user.Analytics.TimeSpentInViews.Chat)
	assert.Equal(t, 1, user.Analytics.ExerciseStats.Correct)
}

func TestRoadmapProgress(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.store.UserRepo().EnsureProfile(t.Context(), "u1", "", "Ana")
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/roadmap?user=u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	before := decode[map[string]any](t, w)
	first, ok := before["next"].(string)
	require.True(t, ok)

	w = env.do(t, http.MethodPost, "/api/users/u1/progress", progressRequest{Node: first, Score: 100})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/roadmap?user=u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	after := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, after["completed"])
	assert.NotEqual(t, first, after["next"])

	w = env.do(t, http.MethodPost, "/api/users/u1/progress", progressRequest{Node: "nope", Score: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
