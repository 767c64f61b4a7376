package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"transflow/model"
	"transflow/repository"

	"github.com/gorilla/mux"
)

// fakeTransitionRepo is an in-memory TransitionRepository.
type fakeTransitionRepo struct {
	transitions map[string]*model.Transition
}

func newFakeTransitionRepo(ts ...*model.Transition) *fakeTransitionRepo {
	m := make(map[string]*model.Transition)
	for _, t := range ts {
		m[t.ID] = t
	}
	return &fakeTransitionRepo{transitions: m}
}

func (f *fakeTransitionRepo) Create(ctx context.Context, t *model.Transition) error {
	f.transitions[t.ID] = t
	return nil
}

func (f *fakeTransitionRepo) GetByID(ctx context.Context, id string) (*model.Transition, error) {
	return f.transitions[id], nil
}

func (f *fakeTransitionRepo) List(ctx context.Context, opts repository.ListOptions) ([]*model.Transition, error) {
	var out []*model.Transition
	for _, t := range f.transitions {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTransitionRepo) ListByUser(ctx context.Context, userID int64) ([]*model.Transition, error) {
	var out []*model.Transition
	for _, t := range f.transitions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTransitionRepo) ListByIDs(ctx context.Context, ids []string) ([]*model.Transition, error) {
	var out []*model.Transition
	for _, id := range ids {
		if t, ok := f.transitions[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTransitionRepo) ListRecent(ctx context.Context, limit int) ([]*model.Transition, error) {
	return f.List(ctx, repository.ListOptions{})
}

func (f *fakeTransitionRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	ts, _ := f.ListByUser(ctx, userID)
	return int64(len(ts)), nil
}

func (f *fakeTransitionRepo) IncrementViews(ctx context.Context, id string) error {
	if t, ok := f.transitions[id]; ok {
		t.ViewsCount++
	}
	return nil
}

// fakeRatingRepo is an in-memory RatingRepository. failWrites makes Upsert
// and Delete fail to exercise the persistence-failure path.
type fakeRatingRepo struct {
	votes      map[string]*model.Rating // key: userID|transitionID
	failWrites bool
	failReads  bool
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{votes: make(map[string]*model.Rating)}
}

func voteKey(userID int64, transitionID string) string {
	return fmt.Sprintf("%d|%s", userID, transitionID)
}

func (f *fakeRatingRepo) Upsert(ctx context.Context, rating *model.Rating) error {
	if f.failWrites {
		return errors.New("store unavailable")
	}
	f.votes[voteKey(rating.UserID, rating.TransitionID)] = rating
	return nil
}

func (f *fakeRatingRepo) Delete(ctx context.Context, userID int64, transitionID string) error {
	if f.failWrites {
		return errors.New("store unavailable")
	}
	delete(f.votes, voteKey(userID, transitionID))
	return nil
}

func (f *fakeRatingRepo) Get(ctx context.Context, userID int64, transitionID string) (*model.Rating, error) {
	return f.votes[voteKey(userID, transitionID)], nil
}

func (f *fakeRatingRepo) ListForTransition(ctx context.Context, transitionID string) ([]*model.Rating, error) {
	if f.failReads {
		return nil, errors.New("store unavailable")
	}
	var out []*model.Rating
	for _, r := range f.votes {
		if r.TransitionID == transitionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRatingRepo) ListForTransitions(ctx context.Context, transitionIDs []string) ([]*model.Rating, error) {
	if f.failReads {
		return nil, errors.New("store unavailable")
	}
	var out []*model.Rating
	for _, id := range transitionIDs {
		rs, _ := f.ListForTransition(ctx, id)
		out = append(out, rs...)
	}
	return out, nil
}

func (f *fakeRatingRepo) ListRatedIDsByUser(ctx context.Context, userID int64) ([]string, error) {
	var out []string
	for _, r := range f.votes {
		if r.UserID == userID {
			out = append(out, r.TransitionID)
		}
	}
	return out, nil
}

func (f *fakeRatingRepo) ListUpvotedByUser(ctx context.Context, userID int64) ([]repository.UpvotedTransition, error) {
	return nil, nil
}

func (f *fakeRatingRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	for _, r := range f.votes {
		if r.UserID == userID {
			count++
		}
	}
	return count, nil
}

func testTransition(id string) *model.Transition {
	return &model.Transition{
		ID:              id,
		UserID:          99,
		Song1ID:         "s1",
		Song1Name:       "One More Time",
		Song1Artist:     "Daft Punk",
		Song2ID:         "s2",
		Song2Name:       "Aerodynamic",
		Song2Artist:     "Daft Punk",
		CrossfadeLength: 8,
		CreatedAt:       time.Now(),
	}
}

func newTestHandler(transitions *fakeTransitionRepo, ratings *fakeRatingRepo) *APIHandler {
	return NewAPIHandler(nil, transitions, ratings, nil, nil, nil, nil)
}

func rateRequest(t *testing.T, userID int64, transitionID string, vote int) *http.Request {
	t.Helper()
	body, _ := json.Marshal(map[string]int{"rating": vote})
	req := httptest.NewRequest(http.MethodPost, "/api/transitions/"+transitionID+"/rating", bytes.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"id": transitionID})
	ctx := context.WithValue(req.Context(), "userID", userID)
	return req.WithContext(ctx)
}

func doRate(t *testing.T, h *APIHandler, userID int64, transitionID string, vote int) (*httptest.ResponseRecorder, RateTransitionResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.RateTransitionHandler(rec, rateRequest(t, userID, transitionID, vote))

	var resp RateTransitionResponse
	if rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return rec, resp
}

func TestRateTransitionHandler(t *testing.T) {
	t.Run("First Vote", func(t *testing.T) {
		h := newTestHandler(newFakeTransitionRepo(testTransition("t1")), newFakeRatingRepo())

		rec, resp := doRate(t, h, 1, "t1", 1)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if resp.UserRating == nil || *resp.UserRating != 1 {
			t.Fatalf("expected user rating +1, got %v", resp.UserRating)
		}
		if resp.Ratings.Upvotes != 1 || resp.Ratings.Score != 1 {
			t.Errorf("unexpected summary %+v", resp.Ratings)
		}
	})

	t.Run("Toggle Off", func(t *testing.T) {
		h := newTestHandler(newFakeTransitionRepo(testTransition("t1")), newFakeRatingRepo())

		doRate(t, h, 1, "t1", 1)
		rec, resp := doRate(t, h, 1, "t1", 1)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if resp.UserRating != nil {
			t.Errorf("expected retracted vote, got %v", *resp.UserRating)
		}
		if resp.Ratings.Upvotes != 0 || resp.Ratings.Score != 0 {
			t.Errorf("expected zero summary after toggle, got %+v", resp.Ratings)
		}
	})

	t.Run("Switch Vote", func(t *testing.T) {
		ratings := newFakeRatingRepo()
		h := newTestHandler(newFakeTransitionRepo(testTransition("t1")), ratings)

		doRate(t, h, 1, "t1", 1)
		rec, resp := doRate(t, h, 1, "t1", -1)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if resp.UserRating == nil || *resp.UserRating != -1 {
			t.Fatalf("expected user rating -1, got %v", resp.UserRating)
		}
		if resp.Ratings.Upvotes != 0 || resp.Ratings.Downvotes != 1 || resp.Ratings.Score != -1 {
			t.Errorf("expected one net downvote, got %+v", resp.Ratings)
		}
		// Exactly one row for the pair, never two.
		if len(ratings.votes) != 1 {
			t.Errorf("expected 1 stored vote, got %d", len(ratings.votes))
		}
	})

	t.Run("Invalid Vote Value", func(t *testing.T) {
		h := newTestHandler(newFakeTransitionRepo(testTransition("t1")), newFakeRatingRepo())

		rec, _ := doRate(t, h, 1, "t1", 2)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("Unknown Transition", func(t *testing.T) {
		h := newTestHandler(newFakeTransitionRepo(), newFakeRatingRepo())

		rec, _ := doRate(t, h, 1, "missing", 1)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		h := newTestHandler(newFakeTransitionRepo(testTransition("t1")), newFakeRatingRepo())

		body, _ := json.Marshal(map[string]int{"rating": 1})
		req := httptest.NewRequest(http.MethodPost, "/api/transitions/t1/rating", bytes.NewReader(body))
		req = mux.SetURLVars(req, map[string]string{"id": "t1"})
		rec := httptest.NewRecorder()
		h.RateTransitionHandler(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("Persistence Failure Leaves State Unchanged", func(t *testing.T) {
		ratings := newFakeRatingRepo()
		h := newTestHandler(newFakeTransitionRepo(testTransition("t1")), ratings)

		ratings.failWrites = true
		rec, _ := doRate(t, h, 1, "t1", 1)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if len(ratings.votes) != 0 {
			t.Errorf("failed write must not leave a vote behind")
		}

		// A later successful vote proceeds from the unrated state.
		ratings.failWrites = false
		_, resp := doRate(t, h, 1, "t1", 1)
		if resp.UserRating == nil || *resp.UserRating != 1 {
			t.Errorf("expected vote to apply after recovery, got %v", resp.UserRating)
		}
	})
}

func TestGetTransitionHandlerDegradation(t *testing.T) {
	t.Run("Ratings Fetch Failure Zero Fills", func(t *testing.T) {
		ratings := newFakeRatingRepo()
		ratings.failReads = true
		h := newTestHandler(newFakeTransitionRepo(testTransition("t1")), ratings)

		req := httptest.NewRequest(http.MethodGet, "/api/transitions/t1", nil)
		req = mux.SetURLVars(req, map[string]string{"id": "t1"})
		rec := httptest.NewRecorder()
		h.GetTransitionHandler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected primary data to render, got %d", rec.Code)
		}

		var resp TransitionResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Ratings.Upvotes != 0 || resp.Ratings.Downvotes != 0 {
			t.Errorf("expected zeroed counts, got %+v", resp.Ratings)
		}
	})

	t.Run("Not Found Is Distinct", func(t *testing.T) {
		h := newTestHandler(newFakeTransitionRepo(), newFakeRatingRepo())

		req := httptest.NewRequest(http.MethodGet, "/api/transitions/missing", nil)
		req = mux.SetURLVars(req, map[string]string{"id": "missing"})
		rec := httptest.NewRecorder()
		h.GetTransitionHandler(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}
