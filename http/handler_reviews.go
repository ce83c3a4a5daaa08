package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"eventbooking/entity"
)

type postReviewRequest struct {
	Rating     int    `json:"rating"`
	ReviewText string `json:"review_text"`
}

func (s Server) GetReviews(c echo.Context) error {
	ctx := c.Request().Context()

	event, err := s.events.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	reviews, err := s.reviews.ListByEvent(ctx, event.EventID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, reviews)
}

func (s Server) PostReview(c echo.Context) error {
	var request postReviewRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	review, err := entity.NewReview(identity(c), c.Param("id"), request.Rating, request.ReviewText, s.now())
	if err != nil {
		return err
	}

	if err := s.reviews.Store(c.Request().Context(), review); err != nil {
		return err
	}

	s.logActivity(c, "review_submitted", fmt.Sprintf("Reviewed event %s with %d stars", review.EventID, review.Rating))

	return c.JSON(http.StatusCreated, review)
}
