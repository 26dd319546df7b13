package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/trigtutor/internal/analytics"
	"github.com/abhisek/trigtutor/internal/domain"
	"github.com/abhisek/trigtutor/internal/exercises"
	"github.com/abhisek/trigtutor/internal/generate"
	"github.com/abhisek/trigtutor/internal/quiz"
	"github.com/abhisek/trigtutor/internal/roadmap"
	"github.com/abhisek/trigtutor/internal/store"
)

type topicRequest struct {
	Topic string `json:"topic"`
}

// bindTopic decodes a topic request. Blank topics are rejected; the topic is
// otherwise passed on as typed.
func bindTopic(c *gin.Context) (string, bool) {
	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return "", false
	}
	if strings.TrimSpace(req.Topic) == "" {
		badRequest(c, errors.New("topic is required"))
		return "", false
	}
	return req.Topic, true
}

type chatRequest struct {
	UserID string `json:"user_id"`
	Topic  string `json:"topic"`
}

// POST /api/chat
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		badRequest(c, errors.New("topic is required"))
		return
	}

	reply, err := s.svc.Chat.Submit(c.Request.Context(), req.UserID, req.Topic)
	if err != nil {
		s.respondError(c, generate.SurfaceChat, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// POST /api/topics/validate
func (s *Server) handleValidateTopic(c *gin.Context) {
	topic, ok := bindTopic(c)
	if !ok {
		return
	}
	res, err := s.svc.Topics.Validate(c.Request.Context(), topic)
	if err != nil {
		s.respondError(c, generate.SurfaceChat, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type contentResponse struct {
	Content domain.GeneratedContent `json:"content"`
	Quiz    quiz.BatchState         `json:"quiz"`
}

// POST /api/content
func (s *Server) handleContent(c *gin.Context) {
	topic, ok := bindTopic(c)
	if !ok {
		return
	}
	content, err := s.svc.Lessons.Generate(c.Request.Context(), topic)
	if err != nil {
		s.respondError(c, generate.SurfaceLesson, err)
		return
	}
	c.JSON(http.StatusOK, contentResponse{Content: content, Quiz: quiz.Initialize(content)})
}

// POST /api/quiz/extra
func (s *Server) handleExtraQuiz(c *gin.Context) {
	topic, ok := bindTopic(c)
	if !ok {
		return
	}
	questions, err := s.svc.Lessons.ExtraQuestions(c.Request.Context(), topic)
	if err != nil {
		s.respondError(c, generate.SurfaceQuiz, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

type advanceRequest struct {
	Topic string          `json:"topic"`
	State quiz.BatchState `json:"state"`
}

type advanceResponse struct {
	State quiz.BatchState `json:"state"`
	Next  string          `json:"next"`
}

// POST /api/quiz/advance
func (s *Server) handleAdvanceQuiz(c *gin.Context) {
	var req advanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		badRequest(c, errors.New("topic is required"))
		return
	}
	if req.State.BatchIndex < 0 {
		badRequest(c, errors.New("batchIndex must not be negative"))
		return
	}

	state, err := s.svc.Quiz.Advance(c.Request.Context(), req.State, req.Topic)
	if err != nil {
		s.respondError(c, generate.SurfaceQuiz, err)
		return
	}
	c.JSON(http.StatusOK, advanceResponse{State: state, Next: state.State().String()})
}

type scoreRequest struct {
	Batch   []domain.QuizQuestion `json:"batch"`
	Answers []int                 `json:"answers"`
}

// POST /api/quiz/score
func (s *Server) handleScoreQuiz(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := quiz.Score(req.Batch, req.Answers)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"correct":   res.Correct,
		"incorrect": res.Incorrect,
		"verdicts":  res.Verdicts,
	})
}

// POST /api/exercises
func (s *Server) handleExercise(c *gin.Context) {
	topic, ok := bindTopic(c)
	if !ok {
		return
	}
	history, err := s.sessionHistory(c)
	if err != nil {
		s.respondError(c, generate.SurfaceExercise, fmt.Errorf("session: %w", err))
		return
	}

	ex, err := s.svc.Exercises.Next(c.Request.Context(), history, topic)
	if err != nil {
		s.respondError(c, generate.SurfaceExercise, err)
		return
	}
	c.JSON(http.StatusOK, ex)
}

type clarifyRequest struct {
	Exercise domain.ExerciseContent `json:"exercise"`
	Question string                 `json:"question"`
}

// POST /api/exercises/clarify
func (s *Server) handleClarify(c *gin.Context) {
	var req clarifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Exercise.Validate(); err != nil {
		badRequest(c, fmt.Errorf("exercise: %w", err))
		return
	}

	answer, err := s.svc.Tutor.Clarify(c.Request.Context(), req.Exercise, req.Question)
	if errors.Is(err, exercises.ErrEmptyQuestion) {
		badRequest(c, err)
		return
	}
	if err != nil {
		s.respondError(c, generate.SurfaceTutor, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// POST /api/practice
func (s *Server) handlePractice(c *gin.Context) {
	topic, ok := bindTopic(c)
	if !ok {
		return
	}
	list, err := s.svc.Exercises.PracticeSession(c.Request.Context(), topic)
	if err != nil {
		s.respondError(c, generate.SurfacePractice, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exercises": list})
}

type roadmapNode struct {
	roadmap.Node
	Unlocked bool `json:"unlocked"`
	roadmap.NodeProgress
}

type roadmapSection struct {
	Title string        `json:"title"`
	Nodes []roadmapNode `json:"nodes"`
}

// GET /api/roadmap?user=<id>
func (s *Server) handleRoadmap(c *gin.Context) {
	progress := roadmap.Progress{}
	if id := c.Query("user"); id != "" {
		user, err := s.svc.Users.Get(c.Request.Context(), id)
		if err != nil {
			s.respondError(c, generate.SurfaceChat, err)
			return
		}
		if user.Progress != nil {
			progress = user.Progress
		}
	}

	var sections []roadmapSection
	for _, sec := range roadmap.Sections() {
		out := roadmapSection{Title: sec.Title}
		for _, n := range sec.Nodes {
			out.Nodes = append(out.Nodes, roadmapNode{
				Node:         n,
				Unlocked:     roadmap.Unlocked(n, progress),
				NodeProgress: progress[n.ID],
			})
		}
		sections = append(sections, out)
	}

	resp := gin.H{"sections": sections, "completed": roadmap.CompletedCount(progress)}
	if next, ok := roadmap.FirstIncomplete(progress); ok {
		resp["next"] = next.ID
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/users/:id
func (s *Server) handleGetUser(c *gin.Context) {
	user, err := s.svc.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, generate.SurfaceChat, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// analyticsEvent is one tracked learner action. Kind selects which of the
// other fields apply.
type analyticsEvent struct {
	Kind    string `json:"kind"` // time | audio | exercise | quiz
	View    string `json:"view,omitempty"`
	Seconds int    `json:"seconds,omitempty"`
	Audio   string `json:"audio,omitempty"`
	Correct *bool  `json:"correct,omitempty"`
	Right   int    `json:"right,omitempty"`
	Wrong   int    `json:"wrong,omitempty"`
}

func (e analyticsEvent) apply(d *analytics.Data) error {
	switch e.Kind {
	case "time":
		return d.AddTime(analytics.View(e.View), e.Seconds)
	case "audio":
		return d.IncrementAudio(analytics.AudioKind(e.Audio))
	case "exercise":
		if e.Correct == nil {
			return errors.New("correct is required for exercise events")
		}
		d.RecordExercise(*e.Correct)
		return nil
	case "quiz":
		if e.Right < 0 || e.Wrong < 0 {
			return errors.New("quiz counts must not be negative")
		}
		d.RecordQuiz(e.Right, e.Wrong)
		return nil
	default:
		return fmt.Errorf("unknown analytics event kind: %q", e.Kind)
	}
}

// POST /api/users/:id/analytics
func (s *Server) handleAnalytics(c *gin.Context) {
	var ev analyticsEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := s.svc.Users.Get(ctx, c.Param("id"))
	if err != nil {
		s.respondError(c, generate.SurfaceChat, err)
		return
	}
	if err := ev.apply(&user.Analytics); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.svc.Users.Save(ctx, &store.UserData{Profile: user.Profile, Analytics: user.Analytics}); err != nil {
		s.respondError(c, generate.SurfaceChat, err)
		return
	}
	c.JSON(http.StatusOK, user.Analytics)
}

type progressRequest struct {
	Node  string `json:"node"`
	Score int    `json:"score"`
}

// POST /api/users/:id/progress
func (s *Server) handleProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := s.svc.Users.Get(ctx, c.Param("id"))
	if err != nil {
		s.respondError(c, generate.SurfaceChat, err)
		return
	}
	if user.Progress == nil {
		user.Progress = roadmap.Progress{}
	}
	completed, err := roadmap.Complete(user.Progress, req.Node, req.Score)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := s.svc.Users.Save(ctx, user); err != nil {
		s.respondError(c, generate.SurfaceChat, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": completed, "progress": user.Progress})
}
