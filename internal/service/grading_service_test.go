package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lumen-academy/grading-api/internal/dto"
	"github.com/lumen-academy/grading-api/internal/models"
)

// fakeGradeStore implements the grading repositories with in-memory state so
// the policy dispatch can be exercised without a database.
type fakeGradeStore struct {
	spec models.ScoringSpec

	events []models.AnswerEvent

	grades      map[string]*models.QuestionGrade
	nextGradeID uint
	creates     int
	updates     int

	total   *models.Grade
	upserts int

	chatted bool
}

func newFakeGradeStore(spec models.ScoringSpec) *fakeGradeStore {
	return &fakeGradeStore{
		spec:   spec,
		grades: make(map[string]*models.QuestionGrade),
	}
}

func (f *fakeGradeStore) ResolveScoringSpec(ctx context.Context, questionID string, courseID uint, assignmentID *uint) (models.ScoringSpec, error) {
	return f.spec, nil
}

func (f *fakeGradeStore) Record(ctx context.Context, event *models.AnswerEvent) error {
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeGradeStore) ListPrior(ctx context.Context, questionID, event, courseName, username string) ([]models.AnswerEvent, error) {
	var matched []models.AnswerEvent
	for _, stored := range f.events {
		if stored.QuestionID == questionID && stored.Event == event && stored.CourseName == courseName && stored.Username == username {
			matched = append(matched, stored)
		}
	}
	return matched, nil
}

func (f *fakeGradeStore) Get(ctx context.Context, username, courseName, questionID string) (*models.QuestionGrade, error) {
	grade, ok := f.grades[questionID]
	if !ok {
		return nil, nil
	}
	copied := *grade
	return &copied, nil
}

func (f *fakeGradeStore) Create(ctx context.Context, username, courseName, questionID string, score float64) error {
	f.creates++
	f.nextGradeID++
	f.grades[questionID] = &models.QuestionGrade{
		ID:         f.nextGradeID,
		Username:   username,
		CourseName: courseName,
		QuestionID: questionID,
		Score:      score,
		Comment:    models.CommentAutograded,
	}
	return nil
}

func (f *fakeGradeStore) UpdateScore(ctx context.Context, gradeID uint, score float64) error {
	f.updates++
	for _, grade := range f.grades {
		if grade.ID == gradeID {
			grade.Score = score
		}
	}
	return nil
}

func (f *fakeGradeStore) ListForAssignment(ctx context.Context, assignmentID uint, courseName, username string) ([]models.QuestionGrade, error) {
	var rows []models.QuestionGrade
	for _, grade := range f.grades {
		rows = append(rows, *grade)
	}
	return rows, nil
}

type fakeTotalStore struct {
	*fakeGradeStore
}

func (f *fakeGradeStore) GetTotal(ctx context.Context, userID, assignmentID uint) (*models.Grade, error) {
	if f.total == nil {
		return nil, nil
	}
	copied := *f.total
	return &copied, nil
}

func (f fakeTotalStore) Get(ctx context.Context, userID, assignmentID uint) (*models.Grade, error) {
	return f.GetTotal(ctx, userID, assignmentID)
}

func (f fakeTotalStore) Upsert(ctx context.Context, grade *models.Grade) error {
	f.upserts++
	if grade.ID == 0 {
		grade.ID = 1
	}
	copied := *grade
	f.total = &copied
	return nil
}

func (f *fakeGradeStore) Save(ctx context.Context, message *models.ChatMessage) error {
	return nil
}

func (f *fakeGradeStore) HasMessages(ctx context.Context, username, questionID, courseName string) (bool, error) {
	return f.chatted, nil
}

func newTestValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func newTestGrader(store *fakeGradeStore) GradingService {
	return NewGradingService(store, store, store, fakeTotalStore{store}, store, nil, nil, nil, newTestValidator(), zerolog.Nop())
}

func testUser() models.User {
	return models.User{ID: 7, Username: "alice", CourseID: 3, CourseName: "cs101"}
}

func testSubmission(percent float64, correct bool) dto.SubmissionEvent {
	assignmentID := uint(11)
	return dto.SubmissionEvent{
		QuestionID:   "q-42",
		Event:        "mChoice",
		Correct:      correct,
		Percent:      percent,
		CourseName:   "cs101",
		AssignmentID: &assignmentID,
	}
}

func pctCorrectSpec(which models.WhichToGrade) models.ScoringSpec {
	return models.ScoringSpec{
		Assigned:     true,
		QuestionID:   "q-42",
		AssignmentID: 11,
		CourseName:   "cs101",
		MaxScore:     10,
		WhichToGrade: which,
		HowToScore:   models.ScorePctCorrect,
	}
}

func TestGradeSubmissionUnassignedQuestion(t *testing.T) {
	store := newFakeGradeStore(models.ScoringSpec{Assigned: false, QuestionID: "q-42"})
	grader := newTestGrader(store)

	outcome, err := grader.GradeSubmission(context.Background(), testUser(), testSubmission(0.5, false))
	require.NoError(t, err)
	require.Equal(t, dto.OutcomeSkipped, outcome.Status)
	require.Equal(t, dto.SkipNotAssigned, outcome.Reason)
	require.Equal(t, 0, store.creates)
	require.Equal(t, 0, store.updates)
	require.Equal(t, 0, store.upserts)
}

func TestGradeSubmissionFirstAnswerIdempotent(t *testing.T) {
	store := newFakeGradeStore(pctCorrectSpec(models.GradeFirstAnswer))
	grader := newTestGrader(store)

	first, err := grader.GradeSubmission(context.Background(), testUser(), testSubmission(0, true))
	require.NoError(t, err)
	require.Equal(t, dto.OutcomeGraded, first.Status)
	require.Equal(t, 10.0, first.Score)
	require.True(t, first.TotalUpdated)
	require.Equal(t, 1, store.creates)

	second, err := grader.GradeSubmission(context.Background(), testUser(), testSubmission(0, false))
	require.NoError(t, err)
	require.Equal(t, dto.OutcomeSkipped, second.Status)
	require.Equal(t, dto.SkipDuplicateFirstAnswer, second.Reason)
	require.Equal(t, 1, store.creates, "second submission must not create a grade")
	require.Equal(t, 0, store.updates)
	require.Equal(t, 10.0, store.grades["q-42"].Score, "first answer wins")
}

func TestGradeSubmissionLastAnswerKeepsLatest(t *testing.T) {
	store := newFakeGradeStore(pctCorrectSpec(models.GradeLastAnswer))
	grader := newTestGrader(store)

	percents := []float64{0.9, 0.2, 0.6}
	for _, percent := range percents {
		outcome, err := grader.GradeSubmission(context.Background(), testUser(), testSubmission(percent, false))
		require.NoError(t, err)
		require.Equal(t, dto.OutcomeGraded, outcome.Status)
		require.True(t, outcome.TotalUpdated)
	}

	require.Len(t, store.grades, 1, "exactly one grade row after repeated submissions")
	require.Equal(t, 1, store.creates)
	require.Equal(t, 2, store.updates)
	require.Equal(t, 6.0, store.grades["q-42"].Score, "latest submission determines the score")
}

func TestGradeSubmissionBestAnswerMonotonic(t *testing.T) {
	store := newFakeGradeStore(pctCorrectSpec(models.GradeBestAnswer))
	grader := newTestGrader(store)

	for _, percent := range []float64{0.5, 0.8, 0.3} {
		outcome, err := grader.GradeSubmission(context.Background(), testUser(), testSubmission(percent, false))
		require.NoError(t, err)
		require.Equal(t, dto.OutcomeGraded, outcome.Status)
	}

	require.Equal(t, 8.0, store.grades["q-42"].Score, "best score never decreases")
	require.Equal(t, 1, store.creates)
	require.Equal(t, 1, store.updates, "only the improvement writes")
}

func TestGradeSubmissionBestAnswerFrozenByInstructor(t *testing.T) {
	store := newFakeGradeStore(pctCorrectSpec(models.GradeBestAnswer))
	store.nextGradeID = 1
	store.grades["q-42"] = &models.QuestionGrade{
		ID:         1,
		Username:   "alice",
		CourseName: "cs101",
		QuestionID: "q-42",
		Score:      2,
		Comment:    "see me after class",
	}
	grader := newTestGrader(store)

	outcome, err := grader.GradeSubmission(context.Background(), testUser(), testSubmission(0, true))
	require.NoError(t, err)
	require.Equal(t, dto.OutcomeGraded, outcome.Status)
	require.True(t, outcome.Frozen)
	require.Equal(t, 2.0, outcome.Score, "outcome reports the frozen stored score")
	require.False(t, outcome.TotalUpdated)
	require.Equal(t, 0, store.updates)
	require.Equal(t, 0, store.upserts)
	require.Equal(t, 2.0, store.grades["q-42"].Score)
}

func TestGradeSubmissionPeerVotePhases(t *testing.T) {
	spec := pctCorrectSpec(models.GradeAllAnswer)
	spec.HowToScore = models.ScorePeer
	store := newFakeGradeStore(spec)
	grader := newTestGrader(store)

	firstVote := testSubmission(0, false)
	firstVote.Act = "vote1:optionA"
	outcome, err := grader.GradeSubmission(context.Background(), testUser(), firstVote)
	require.NoError(t, err)
	require.Equal(t, dto.OutcomeSkipped, outcome.Status)
	require.Equal(t, dto.SkipAwaitingSecondVote, outcome.Reason)
	require.Equal(t, 0, store.creates)

	secondVote := testSubmission(0, false)
	secondVote.Act = "vote2:optionB"
	outcome, err = grader.GradeSubmission(context.Background(), testUser(), secondVote)
	require.NoError(t, err)
	require.Equal(t, dto.OutcomeGraded, outcome.Status)
	require.Equal(t, 10.0, outcome.Score, "voting itself earns full credit")
	require.True(t, outcome.TotalUpdated)
	require.Equal(t, 1, store.creates)
}

func TestGradeSubmissionPeerChatParticipation(t *testing.T) {
	spec := pctCorrectSpec(models.GradeAllAnswer)
	spec.HowToScore = models.ScorePeerChat

	t.Run("participant earns full credit", func(t *testing.T) {
		store := newFakeGradeStore(spec)
		store.chatted = true
		grader := newTestGrader(store)

		vote := testSubmission(0, false)
		vote.Act = "vote2:optionA"
		outcome, err := grader.GradeSubmission(context.Background(), testUser(), vote)
		require.NoError(t, err)
		require.Equal(t, 10.0, outcome.Score)
	})

	t.Run("silent learner scores zero", func(t *testing.T) {
		store := newFakeGradeStore(spec)
		grader := newTestGrader(store)

		vote := testSubmission(0, false)
		vote.Act = "vote2:optionA"
		outcome, err := grader.GradeSubmission(context.Background(), testUser(), vote)
		require.NoError(t, err)
		require.Equal(t, 0.0, outcome.Score)
		require.Equal(t, 1, store.creates, "a zero grade is still recorded")
	})
}

func TestGradeSubmissionRecomputesTotal(t *testing.T) {
	store := newFakeGradeStore(pctCorrectSpec(models.GradeLastAnswer))
	store.nextGradeID = 2
	store.grades["q-1"] = &models.QuestionGrade{ID: 1, Username: "alice", CourseName: "cs101", QuestionID: "q-1", Score: 4, Comment: models.CommentAutograded}
	store.grades["q-2"] = &models.QuestionGrade{ID: 2, Username: "alice", CourseName: "cs101", QuestionID: "q-2", Score: 8, Comment: models.CommentAutograded}
	grader := newTestGrader(store)

	outcome, err := grader.GradeSubmission(context.Background(), testUser(), testSubmission(0, true))
	require.NoError(t, err)
	require.Equal(t, 10.0, outcome.Score)
	require.True(t, outcome.TotalUpdated)
	require.Equal(t, 22.0, outcome.Total, "total sums all question grades")
	require.Equal(t, 1, store.upserts)
	require.Equal(t, 22.0, store.total.Score)
	require.False(t, store.total.ManualTotal)

	// Regrading the same submission leaves the stored total unchanged.
	outcome, err = grader.GradeSubmission(context.Background(), testUser(), testSubmission(0, true))
	require.NoError(t, err)
	require.Equal(t, 22.0, outcome.Total)
	require.Equal(t, 22.0, store.total.Score)
}

func TestScoreOneAnswerRules(t *testing.T) {
	store := newFakeGradeStore(models.ScoringSpec{})
	grader := newTestGrader(store).(*gradingService)
	ctx := context.Background()
	sub := dto.SubmissionEvent{QuestionID: "q-42", Event: "mChoice", CourseName: "cs101"}

	spec := models.ScoringSpec{MaxScore: 10, HowToScore: models.ScorePctCorrect}

	correct := sub
	correct.Correct = true
	correct.Percent = 0.1
	score, err := grader.scoreOneAnswer(ctx, spec, "alice", correct)
	require.NoError(t, err)
	require.Equal(t, 10.0, score, "full marks when correct regardless of the fraction")

	partial := sub
	partial.Percent = 0.4
	score, err = grader.scoreOneAnswer(ctx, spec, "alice", partial)
	require.NoError(t, err)
	require.Equal(t, 4.0, score)

	spec.HowToScore = models.ScoreAllOrNothing
	score, err = grader.scoreOneAnswer(ctx, spec, "alice", partial)
	require.NoError(t, err)
	require.Equal(t, 0.0, score)

	spec.HowToScore = models.ScoreInteract
	score, err = grader.scoreOneAnswer(ctx, spec, "alice", partial)
	require.NoError(t, err)
	require.Equal(t, 10.0, score)

	spec.HowToScore = models.HowToScore("bogus")
	score, err = grader.scoreOneAnswer(ctx, spec, "alice", partial)
	require.NoError(t, err)
	require.Equal(t, 0.0, score, "unrecognised scoring rules award nothing")
}

func TestGradeSubmissionRejectsInvalidPayload(t *testing.T) {
	store := newFakeGradeStore(pctCorrectSpec(models.GradeLastAnswer))
	grader := newTestGrader(store)

	_, err := grader.GradeSubmission(context.Background(), testUser(), dto.SubmissionEvent{})
	require.Error(t, err)
	require.Equal(t, 0, store.creates)
}
