package controllers

import (
	"log/slog"
	"net/http"

	"communityevents/internal/delivery/http/helpers"
	"communityevents/internal/domain"
)

// CommentRequest is the request body for creating or editing a comment.
type CommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// RatingRequest is the request body for POST /events/{id}/ratings.
type RatingRequest struct {
	Score   int     `json:"score" validate:"required,gte=1,lte=5"`
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}

// FavoriteStatus is the data payload of the favorite endpoints.
type FavoriteStatus struct {
	IsFavorite bool `json:"is_favorite"`
}

// CommentSuccessResponse is the envelope for a single comment.
type CommentSuccessResponse struct {
	Data  *domain.Comment   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CommentListSuccessResponse is the envelope for an event's comments.
type CommentListSuccessResponse struct {
	Data  []*domain.CommentView `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type RatingSuccessResponse struct {
	Data  *domain.Rating    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type RatingListSuccessResponse struct {
	Data  []*domain.Rating  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type RatingSummarySuccessResponse struct {
	Data  *domain.RatingSummary `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type FavoriteStatusSuccessResponse struct {
	Data  FavoriteStatus    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type CategorySuccessResponse struct {
	Data  *domain.Category  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type CategoryListSuccessResponse struct {
	Data  []*domain.Category `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

type CommentController struct {
	Logger  *slog.Logger
	Service domain.CommentService
}

func NewCommentController(logger *slog.Logger, svc domain.CommentService) *CommentController {
	return &CommentController{Logger: logger, Service: svc}
}

// ListComments godoc
// @Summary List comments
// @Description Comments of the event newest first. is_owner is set for the caller's comments when a token is sent.
// @Tags comments
// @Produce json
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} controllers.CommentListSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/comments [get]
func (c *CommentController) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	comments, err := c.Service.List(r.Context(), id, optionalCaller(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comments)
}

// CreateComment godoc
// @Summary Comment on an event
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Param body body CommentRequest true "Comment"
// @Success 201 {object} controllers.CommentSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/comments [post]
func (c *CommentController) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var req CommentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	comment, err := c.Service.Create(r.Context(), userID, id, req.Content)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, comment)
}

// UpdateComment godoc
// @Summary Edit a comment
// @Description Author only.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Param commentId path string true "Comment ID (UUID)"
// @Param body body CommentRequest true "Comment"
// @Success 200 {object} controllers.CommentSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/comments/{commentId} [put]
func (c *CommentController) UpdateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	commentID, ok := helpers.PathUUID(w, r, "commentId", "comment")
	if !ok {
		return
	}
	var req CommentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	comment, err := c.Service.Update(r.Context(), userID, id, commentID, req.Content)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, comment)
}

// DeleteComment godoc
// @Summary Delete a comment
// @Description Author only.
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Param commentId path string true "Comment ID (UUID)"
// @Success 200 {object} helpers.StatusSuccessResponse "status: deleted"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/comments/{commentId} [delete]
func (c *CommentController) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	commentID, ok := helpers.PathUUID(w, r, "commentId", "comment")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), userID, id, commentID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.StatusResponse{Status: "deleted"})
}

type RatingController struct {
	Logger  *slog.Logger
	Service domain.RatingService
}

func NewRatingController(logger *slog.Logger, svc domain.RatingService) *RatingController {
	return &RatingController{Logger: logger, Service: svc}
}

// ListRatings godoc
// @Summary List ratings
// @Tags ratings
// @Produce json
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} controllers.RatingListSuccessResponse "Ratings newest first"
// @Router /events/{id}/ratings [get]
func (c *RatingController) ListRatings(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	ratings, err := c.Service.List(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ratings)
}

// RateEvent godoc
// @Summary Rate an event
// @Description Creates the caller's rating or replaces it. Score is 1 to 5.
// @Tags ratings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Param body body RatingRequest true "Rating"
// @Success 200 {object} controllers.RatingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/ratings [post]
func (c *RatingController) RateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var req RatingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	rating, err := c.Service.Rate(r.Context(), userID, id, req.Score, req.Comment)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rating)
}

// DeleteRating godoc
// @Summary Remove my rating
// @Tags ratings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} helpers.StatusSuccessResponse "status: deleted"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/ratings [delete]
func (c *RatingController) DeleteRating(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), userID, id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, helpers.StatusResponse{Status: "deleted"})
}

// AverageRating godoc
// @Summary Rating summary
// @Tags ratings
// @Produce json
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} controllers.RatingSummarySuccessResponse
// @Router /events/{id}/ratings/average [get]
func (c *RatingController) AverageRating(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	summary, err := c.Service.Summary(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}

type FavoriteController struct {
	Logger  *slog.Logger
	Service domain.FavoriteService
}

func NewFavoriteController(logger *slog.Logger, svc domain.FavoriteService) *FavoriteController {
	return &FavoriteController{Logger: logger, Service: svc}
}

// AddFavorite godoc
// @Summary Add an event to my favorites
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 201 {object} controllers.FavoriteStatusSuccessResponse "is_favorite: true"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already a favorite)"
// @Router /events/{id}/favorite [post]
func (c *FavoriteController) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	if err := c.Service.Add(r.Context(), userID, id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, FavoriteStatus{IsFavorite: true})
}

// RemoveFavorite godoc
// @Summary Remove an event from my favorites
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} controllers.FavoriteStatusSuccessResponse "is_favorite: false"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (not a favorite)"
// @Router /events/{id}/favorite [delete]
func (c *FavoriteController) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	if err := c.Service.Remove(r.Context(), userID, id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, FavoriteStatus{IsFavorite: false})
}

// CheckFavorite godoc
// @Summary Is this event one of my favorites
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} controllers.FavoriteStatusSuccessResponse
// @Router /events/{id}/favorite/check [get]
func (c *FavoriteController) CheckFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	isFavorite, err := c.Service.IsFavorite(r.Context(), userID, id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, FavoriteStatus{IsFavorite: isFavorite})
}

// ListFavorites godoc
// @Summary List my favorite events
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EventListSuccessResponse
// @Router /users/favorites [get]
func (c *FavoriteController) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}
	events, err := c.Service.List(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

type CategoryController struct {
	Logger  *slog.Logger
	Service domain.CategoryService
}

func NewCategoryController(logger *slog.Logger, svc domain.CategoryService) *CategoryController {
	return &CategoryController{Logger: logger, Service: svc}
}

// ListCategories godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {object} controllers.CategoryListSuccessResponse "Categories ordered by name"
// @Router /categories [get]
func (c *CategoryController) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.Service.List(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, categories)
}

// GetCategory godoc
// @Summary Get a category
// @Tags categories
// @Produce json
// @Param id path string true "Category ID (UUID)"
// @Success 200 {object} controllers.CategorySuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /categories/{id} [get]
func (c *CategoryController) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "id", "category")
	if !ok {
		return
	}
	category, err := c.Service.GetByID(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, category)
}
