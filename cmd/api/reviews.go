package main

import (
	"fmt"
	"net/http"
	"time"

	"bizreviews/internal/auth"
	"bizreviews/internal/store"

	"github.com/google/uuid"
)

const (
	clientSessionCookie = "review_session"
	csrfHeader          = "X-CSRF-Token"
	csrfTokenBytes      = 32
)

// csrfTokenHandler godoc
//
//	@Summary		Issue the CSRF token for this browser session
//	@Description	Mints a token on first call and returns the same token on every later call in the same session.
//	@Tags			reviews
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Failure		500	{object}	ErrorInternalServerResponse
//	@Router			/csrf [get]
func (app *application) csrfTokenHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := ""
	if cookie, err := r.Cookie(clientSessionCookie); err == nil {
		sessionID = cookie.Value
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
		http.SetCookie(w, &http.Cookie{
			Name:     clientSessionCookie,
			Value:    sessionID,
			Path:     "/",
			HttpOnly: true,
			Secure:   app.config.env == "production",
			SameSite: http.SameSiteLaxMode,
		})
	}

	token, err := auth.GenerateToken(csrfTokenBytes)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// Issue keeps an existing token if the session already has one.
	current, err := app.store.Csrf.Issue(r.Context(), sessionID, token)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, map[string]string{"token": current}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type SubmitReviewPayload struct {
	ReviewerName  string `json:"reviewer_name" validate:"required,min=2,max=100"`
	ReviewerEmail string `json:"reviewer_email" validate:"required,email,max=255"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	ReviewText    string `json:"review_text" validate:"required,min=10,max=5000"`
	BusinessSlug  string `json:"business_slug" validate:"required,slug,max=100"`
	CategorySlug  string `json:"category_slug" validate:"required,slug,max=100"`
}

type SubmitReviewResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// submitReviewHandler godoc
//
//	@Summary		Submit a review
//	@Description	Stores the review as pending moderation. Requires the session CSRF token in X-CSRF-Token.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		SubmitReviewPayload	true	"Review fields"
//	@Success		201		{object}	SubmitReviewResponse
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		403		{object}	ErrorBadRequestResponse
//	@Failure		429		{object}	ErrorBadRequestResponse
//	@Router			/submit [post]
func (app *application) submitReviewHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// CSRF runs before everything else; a forged request must not consume
	// rate-limit quota or touch the store.
	cookie, err := r.Cookie(clientSessionCookie)
	if err != nil || cookie.Value == "" {
		app.forbiddenResponse(w, r, fmt.Errorf("missing client session"))
		return
	}
	presented := r.Header.Get(csrfHeader)
	if presented == "" {
		app.forbiddenResponse(w, r, fmt.Errorf("missing csrf token"))
		return
	}
	stored, err := app.store.Csrf.Get(ctx, cookie.Value)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.forbiddenResponse(w, r, fmt.Errorf("no csrf token issued for session"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}
	if !auth.SecureCompare(stored, presented) {
		app.forbiddenResponse(w, r, fmt.Errorf("csrf token mismatch"))
		return
	}

	// Every attempt past CSRF counts against the window, valid or not.
	ip := sourceIP(r)
	allowed, retryAfter, err := app.rateLimiter.Allow(ctx, ip)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if !allowed {
		app.rateLimitExceededResponse(w, r, retryAfter)
		return
	}

	var payload SubmitReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.validationErrorResponse(w, r, err)
		return
	}

	review := &store.Review{
		ID:            uuid.New().String(),
		BusinessSlug:  payload.BusinessSlug,
		CategorySlug:  payload.CategorySlug,
		ReviewerName:  payload.ReviewerName,
		ReviewerEmail: payload.ReviewerEmail,
		Rating:        payload.Rating,
		Text:          payload.ReviewText,
		Status:        store.StatusPending,
		SourceIP:      ip,
	}

	if err := app.store.Reviews.Create(ctx, review); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.notifyReviewSubmitted(review)

	resp := SubmitReviewResponse{
		Success: true,
		Message: "thanks, your review is awaiting moderation",
	}
	if err := writeJSON(w, http.StatusCreated, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// PublicReview is the redacted projection served to anonymous readers.
type PublicReview struct {
	ID           string `json:"id"`
	ReviewerName string `json:"reviewer_name"`
	Rating       int    `json:"rating"`
	Text         string `json:"text"`
	Date         string `json:"date"`
}

type PublicReviewsResponse struct {
	Reviews []PublicReview `json:"reviews"`
	Count   int            `json:"count"`
}

// getReviewsHandler godoc
//
//	@Summary		Approved reviews for one business
//	@Tags			reviews
//	@Produce		json
//	@Param			business	query		string	true	"Business slug"
//	@Success		200			{object}	PublicReviewsResponse
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Router			/get [get]
func (app *application) getReviewsHandler(w http.ResponseWriter, r *http.Request) {
	business := r.URL.Query().Get("business")
	if business == "" {
		app.badRequestResponse(w, r, fmt.Errorf("missing business parameter"))
		return
	}

	// Visibility is re-evaluated on every query; only approved reviews leave
	// the store, already newest-first.
	reviews, err := app.store.Reviews.List(r.Context(), store.Filter{
		Status:       store.StatusApproved,
		BusinessSlug: business,
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	public := make([]PublicReview, 0, len(reviews))
	for _, review := range reviews {
		public = append(public, PublicReview{
			ID:           review.ID,
			ReviewerName: review.ReviewerName,
			Rating:       review.Rating,
			Text:         review.Text,
			Date:         review.SubmittedAt.Format(time.DateOnly),
		})
	}

	resp := PublicReviewsResponse{Reviews: public, Count: len(public)}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
