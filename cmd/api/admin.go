package main

import (
	"fmt"
	"net/http"

	"bizreviews/internal/auth"
	"bizreviews/internal/store"
)

// ErrorBadRequestResponse represents the standard error format for failed API responses.
//
//	@name			ErrorBadRequestResponse
//	@description	Standard error response format returned by failing endpoints
type ErrorBadRequestResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"reviewer_name must be at least 2 characters"`
	Status  int    `json:"status" example:"400"`
}

// ErrorInternalServerResponse represents the standard error format for internal server API responses.
//
//	@name			ErrorInternalServerResponse
//	@description	Standard error response format returned on internal failures
type ErrorInternalServerResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"the server encountered a problem"`
	Status  int    `json:"status" example:"500"`
}

const sessionTokenBytes = 32

type LoginPayload struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginResponse struct {
	Success    bool   `json:"success"`
	Session    string `json:"session"`
	MustRotate bool   `json:"password_rotation_required,omitempty"`
}

// loginHandler godoc
//
//	@Summary		Admin login
//	@Description	Verifies the admin credential and mints a 24h session token, also set as a cookie.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		LoginPayload	true	"Admin credentials"
//	@Success		200		{object}	LoginResponse
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		401		{object}	ErrorBadRequestResponse
//	@Router			/login [post]
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.validationErrorResponse(w, r, err)
		return
	}

	ctx := r.Context()

	cred, err := app.store.Credentials.Get(ctx)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("no admin credential configured"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if cred.Username != payload.Username {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid credentials"))
		return
	}
	if err := cred.Password.Compare(payload.Password); err != nil {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid credentials"))
		return
	}

	token, err := auth.GenerateToken(sessionTokenBytes)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	session := &store.AdminSession{
		Token:    token,
		Username: cred.Username,
		SourceIP: sourceIP(r),
	}
	if err := app.store.Sessions.Create(ctx, session); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     adminSessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   app.config.env == "production",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(app.config.auth.session.ttl.Seconds()),
	})

	resp := LoginResponse{
		Success:    true,
		Session:    token,
		MustRotate: cred.MustRotate,
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// logoutHandler godoc
//
//	@Summary		Admin logout
//	@Description	Deletes the session record and clears the cookie. Safe to call without a session.
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	map[string]bool
//	@Router			/logout [post]
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if token := adminTokenFromRequest(r); token != "" {
		if err := app.store.Sessions.Delete(r.Context(), token); err != nil && err != store.ErrNotFound {
			app.internalServerError(w, r, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     adminSessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   app.config.env == "production",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	if err := writeJSON(w, http.StatusOK, map[string]bool{"success": true}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type AdminReviewsResponse struct {
	Reviews []store.Review `json:"reviews"`
	Count   int            `json:"count"`
}

// pendingReviewsHandler godoc
//
//	@Summary		Reviews awaiting moderation
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	AdminReviewsResponse
//	@Failure		401	{object}	ErrorBadRequestResponse
//	@Router			/pending [get]
func (app *application) pendingReviewsHandler(w http.ResponseWriter, r *http.Request) {
	reviews, err := app.store.Reviews.List(r.Context(), store.Filter{Status: store.StatusPending})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := AdminReviewsResponse{Reviews: reviews, Count: len(reviews)}
	if resp.Reviews == nil {
		resp.Reviews = []store.Review{}
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listReviewsHandler godoc
//
//	@Summary		Filtered, unredacted review listing
//	@Tags			admin
//	@Produce		json
//	@Param			status		query		string	false	"pending|approved|rejected"
//	@Param			business	query		string	false	"Business slug"
//	@Param			category	query		string	false	"Category slug"
//	@Param			search		query		string	false	"Case-insensitive substring over name, text and business"
//	@Success		200			{object}	AdminReviewsResponse
//	@Failure		400			{object}	ErrorBadRequestResponse
//	@Failure		401			{object}	ErrorBadRequestResponse
//	@Router			/all [get]
func (app *application) listReviewsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if status := q.Get("status"); status != "" && !store.ValidStatus(status) {
		app.badRequestResponse(w, r, fmt.Errorf("unknown status %q", status))
		return
	}

	filter := store.Filter{
		Status:       q.Get("status"),
		BusinessSlug: q.Get("business"),
		CategorySlug: q.Get("category"),
		Search:       q.Get("search"),
	}

	reviews, err := app.store.Reviews.List(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := AdminReviewsResponse{Reviews: reviews, Count: len(reviews)}
	if resp.Reviews == nil {
		resp.Reviews = []store.Review{}
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// statsHandler godoc
//
//	@Summary		Collection-wide review counts
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	store.Stats
//	@Failure		401	{object}	ErrorBadRequestResponse
//	@Router			/stats [get]
func (app *application) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := app.store.Reviews.Stats(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, stats); err != nil {
		app.internalServerError(w, r, err)
	}
}

type ModeratePayload struct {
	ReviewID string `json:"review_id" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=approved rejected"`
}

// moderateReviewHandler godoc
//
//	@Summary		Approve or reject a review
//	@Description	Also permits flipping an earlier approved/rejected decision. Stamps moderated_at.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ModeratePayload	true	"Moderation decision"
//	@Success		200		{object}	SubmitReviewResponse
//	@Failure		400		{object}	ErrorBadRequestResponse
//	@Failure		404		{object}	ErrorBadRequestResponse
//	@Router			/moderate [post]
func (app *application) moderateReviewHandler(w http.ResponseWriter, r *http.Request) {
	var payload ModeratePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.validationErrorResponse(w, r, err)
		return
	}

	err := app.store.Reviews.UpdateStatus(r.Context(), payload.ReviewID, payload.Status)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, fmt.Errorf("review %s not found", payload.ReviewID))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	session := getSessionFromContext(r)
	app.logger.Infow("review moderated", "review_id", payload.ReviewID, "status", payload.Status, "moderator", session.Username)

	resp := SubmitReviewResponse{
		Success: true,
		Message: "review " + payload.Status,
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CheckResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username"`
}

// checkSessionHandler godoc
//
//	@Summary		Report the current admin session
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	CheckResponse
//	@Failure		401	{object}	ErrorBadRequestResponse
//	@Router			/check [get]
func (app *application) checkSessionHandler(w http.ResponseWriter, r *http.Request) {
	session := getSessionFromContext(r)

	resp := CheckResponse{
		Authenticated: true,
		Username:      session.Username,
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
