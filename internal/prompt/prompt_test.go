package prompt

import (
	"strings"
	"testing"

	"github.com/abhisek/trigtutor/internal/domain"
	"github.com/abhisek/trigtutor/internal/llm"
)

func TestTopicValidation(t *testing.T) {
	p := TopicValidation("Ley de Cosenos")
	if !p.Cacheable || p.Schema != TopicValidationSchema {
		t.Fatal("topic validation should be cacheable with its schema")
	}
	if p.CacheKey() != "gemini-cache:validarTema:ley de cosenos" {
		t.Fatalf("unexpected cache key %q", p.CacheKey())
	}
	if TopicValidation(" ley DE cosenos ").CacheKey() != p.CacheKey() {
		t.Fatal("normalized topics should share a cache key")
	}
	if !strings.Contains(p.User, `"Ley de Cosenos"`) {
		t.Fatalf("topic missing from prompt: %s", p.User)
	}
}

func TestLesson(t *testing.T) {
	p := Lesson("Identidades Trigonométricas")
	if !p.Cacheable || p.Purpose != "lesson" {
		t.Fatalf("unexpected prompt metadata: %+v", p)
	}
	for _, want := range []string{"Identidades Trigonométricas", Audience, "10 preguntas", "4 opciones", "H1 (#)"} {
		if !strings.Contains(p.User, want) {
			t.Errorf("lesson prompt missing %q", want)
		}
	}

	quiz := p.Schema.Root.Properties["quiz"]
	if *quiz.MinItems != 10 || *quiz.MaxItems != 10 {
		t.Fatalf("quiz must be pinned to 10 items, got %d..%d", *quiz.MinItems, *quiz.MaxItems)
	}
	options := quiz.Items.Properties["options"]
	if *options.MinItems != 4 || *options.MaxItems != 4 {
		t.Fatal("options must be pinned to 4 items")
	}
}

func TestNonCacheablePrompts(t *testing.T) {
	for _, p := range []Prompt{ExtraQuiz("x"), Exercise("x", nil), PracticeSession("x")} {
		if p.Cacheable {
			t.Errorf("%s should not be cacheable", p.Op)
		}
		if p.Schema == nil {
			t.Errorf("%s should carry a schema", p.Op)
		}
	}
}

func TestExercise_HistoryBlock(t *testing.T) {
	empty := Exercise("Radianes", nil)
	if strings.Contains(empty.User, "NO REPETIR") {
		t.Fatal("empty history should not add an exclusion block")
	}

	history := []string{"¿Cuánto es π/2 en grados?", "Convierte 180° a radianes", `Expresa 45° como "fracción" de π`}
	p := Exercise("Radianes", history)

	want := "- \"¿Cuánto es π/2 en grados?\"\n- \"Convierte 180° a radianes\"\n- \"Expresa 45° como \"fracción\" de π\"\n"
	if !strings.Contains(p.User, want) {
		t.Fatalf("history not listed verbatim and in order:\n%s", p.User)
	}
	if !strings.Contains(p.User, "NO REPETIR") {
		t.Fatal("missing exclusion heading")
	}
}

func TestClarification(t *testing.T) {
	ex := domain.ExerciseContent{
		Question:           "¿Cuál es sen(30°)?",
		Options:            []domain.Option{{Text: "1/2"}, {Text: "√3/2"}, {Text: "1"}, {Text: "0"}},
		CorrectAnswerIndex: 0,
		Explanation:        "En un triángulo 30-60-90 el cateto opuesto es la mitad de la hipotenusa.",
	}
	p := Clarification(ex, "¿Por qué no es √3/2?")

	if p.Schema != nil {
		t.Fatal("clarification is plain text and must not carry a schema")
	}
	if !p.Cacheable {
		t.Fatal("clarification should be cacheable")
	}
	for _, want := range []string{"A) 1/2", "B) √3/2", "D) 0", "**Respuesta Correcta (Índice):** 0", ex.Explanation, "¿Por qué no es √3/2?"} {
		if !strings.Contains(p.User, want) {
			t.Errorf("clarification prompt missing %q", want)
		}
	}
	if p.CacheKey() != "gemini-cache:clarification:¿Cuál es sen(30°)?:¿por qué no es √3/2?" {
		t.Fatalf("unexpected cache key %q", p.CacheKey())
	}
}

func TestClarification_KeyKeepsExerciseCase(t *testing.T) {
	upper := Clarification(domain.ExerciseContent{Question: "¿Cuánto es SEN(x)?"}, " ¿Por qué? ")
	lower := Clarification(domain.ExerciseContent{Question: "¿Cuánto es sen(x)?"}, "¿por qué?")
	if upper.CacheKey() == lower.CacheKey() {
		t.Fatalf("exercises differing in case share key %q", upper.CacheKey())
	}

	again := Clarification(domain.ExerciseContent{Question: "¿Cuánto es SEN(x)?"}, "¿POR QUÉ?")
	if upper.CacheKey() != again.CacheKey() {
		t.Fatalf("learner question should be normalized: %q vs %q", upper.CacheKey(), again.CacheKey())
	}
}

func TestRequest(t *testing.T) {
	p := TopicValidation("x")
	p.MaxTokens = 256
	req := p.Request()
	if req.System != p.System || req.User != p.User || req.MaxTokens != 256 || req.Schema != p.Schema {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestSchemasAcceptValidExamples(t *testing.T) {
	q := `{"question":"q","options":[{"text":"a"},{"text":"b"},{"text":"c"},{"text":"d"}],"correctAnswerIndex":1,"explanation":"e"}`
	quiz := "[" + strings.TrimSuffix(strings.Repeat(q+",", 10), ",") + "]"

	tests := []struct {
		name   string
		schema *llm.Schema
		raw    string
	}{
		{"validation", TopicValidationSchema, `{"is_relevant":false,"suggested_topics":["a","b","c"]}`},
		{"lesson", LessonSchema, `{"body":"# T","quiz":` + quiz + `}`},
		{"extra quiz", ExtraQuizSchema, `{"questions":[` + q + `]}`},
		{"exercise", ExerciseSchema, q},
		{"practice", PracticeSessionSchema, `{"exercises":[` + q + `,` + q + `]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := llm.ValidateResponse(tt.schema, tt.raw); err != nil {
				t.Fatalf("valid example rejected: %v", err)
			}
		})
	}
}

func TestSchemasRejectBadExamples(t *testing.T) {
	tests := []struct {
		name   string
		schema *llm.Schema
		raw    string
	}{
		{"index out of range", ExerciseSchema, `{"question":"q","options":[{"text":"a"},{"text":"b"},{"text":"c"},{"text":"d"}],"correctAnswerIndex":4,"explanation":"e"}`},
		{"three options", ExerciseSchema, `{"question":"q","options":[{"text":"a"},{"text":"b"},{"text":"c"}],"correctAnswerIndex":0,"explanation":"e"}`},
		{"html instead of body", LessonSchema, `{"html":"x","quiz":[]}`},
		{"empty practice", PracticeSessionSchema, `{"exercises":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := llm.ValidateResponse(tt.schema, tt.raw); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestOptionLabel(t *testing.T) {
	if OptionLabel(0) != "A" || OptionLabel(3) != "D" {
		t.Fatal("unexpected option labels")
	}
}
