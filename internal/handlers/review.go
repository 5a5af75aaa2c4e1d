package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"wanderlust/internal/service"

	"github.com/gin-gonic/gin"
)

// createReview adds a review authored by the current user to the listing.
func (h *Handler) createReview(c *gin.Context) {
	listingID := c.Param("id")
	user := currentUser(c)

	body := c.PostForm("review[body]")
	rating, _ := strconv.Atoi(c.PostForm("review[rating]"))

	_, err := h.services.Reviews.Add(c.Request.Context(), listingID, user.ID, body, rating)
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			h.flash(c, flashError, msgListingMissing)
			c.Redirect(http.StatusFound, "/listings")
			return
		}
		h.log.Infow("review_create_rejected", "listing_id", listingID, "user_id", user.ID, "err", err)
		h.flash(c, flashError, err.Error())
		c.Redirect(http.StatusFound, "/listings/"+listingID)
		return
	}

	h.flash(c, flashSuccess, "New Review Added")
	c.Redirect(http.StatusFound, "/listings/"+listingID)
}

// deleteReview removes a review after the ownership check. A missing review
// and a non-author requester both flash and redirect back to the listing.
func (h *Handler) deleteReview(c *gin.Context) {
	listingID := c.Param("id")
	reviewID := c.Param("reviewId")
	user := currentUser(c)

	err := h.services.Reviews.Delete(c.Request.Context(), listingID, reviewID, user.ID)
	switch {
	case err == nil:
		h.flash(c, flashSuccess, "Review Deleted")
	case errors.Is(err, service.ErrReviewNotFound):
		h.flash(c, flashError, "This review does not exist")
	case errors.Is(err, service.ErrNotReviewAuthor):
		h.flash(c, flashError, "You do not have permission to delete this review.")
	default:
		h.log.Errorw("review_delete_failed", "review_id", reviewID, "err", err)
		h.renderError(c, http.StatusInternalServerError, "failed to delete review")
		return
	}
	c.Redirect(http.StatusFound, "/listings/"+listingID)
}
