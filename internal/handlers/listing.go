package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"wanderlust/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errLoadListings = "failed to load listings"
	errSaveListing  = "failed to save listing"

	msgListingMissing = "This listing does not exist"
)

// listListings renders the index with every listing. No pagination.
func (h *Handler) listListings(c *gin.Context) {
	listings, err := h.services.Listings.List(c.Request.Context())
	if err != nil {
		h.log.Errorw("listing_list_failed", "err", err)
		h.renderError(c, http.StatusInternalServerError, errLoadListings)
		return
	}
	h.render(c, http.StatusOK, "index.html", gin.H{"Listings": listings})
}

func (h *Handler) newListingForm(c *gin.Context) {
	h.render(c, http.StatusOK, "new.html", nil)
}

// showListing renders one listing with its reviews and their authors.
// A missing id flashes an error and redirects to the index (no 404 status).
func (h *Handler) showListing(c *gin.Context) {
	id := c.Param("id")
	listing, err := h.services.Listings.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			h.flash(c, flashError, msgListingMissing)
			c.Redirect(http.StatusFound, "/listings")
			return
		}
		h.log.Errorw("listing_show_failed", "id", id, "err", err)
		h.renderError(c, http.StatusInternalServerError, errLoadListings)
		return
	}
	h.render(c, http.StatusOK, "show.html", gin.H{"Listing": listing})
}

// createListing accepts the multipart form: listing fields, the uploaded
// image, and the location string to geocode.
func (h *Handler) createListing(c *gin.Context) {
	in, ok := h.bindListingForm(c, "/listings/new")
	if !ok {
		return
	}

	image := formImage(c)
	if image == nil {
		h.flash(c, flashError, "An image is required")
		c.Redirect(http.StatusFound, "/listings/new")
		return
	}

	if _, err := h.services.Listings.Create(c.Request.Context(), in, image); err != nil {
		h.log.Errorw("listing_create_failed", "title", in.Title, "err", err)
		h.flash(c, flashError, err.Error())
		c.Redirect(http.StatusFound, "/listings/new")
		return
	}

	h.flash(c, flashSuccess, "New Listing Created!")
	c.Redirect(http.StatusFound, "/listings")
}

func (h *Handler) editListingForm(c *gin.Context) {
	id := c.Param("id")
	listing, err := h.services.Listings.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			h.flash(c, flashError, msgListingMissing)
			c.Redirect(http.StatusFound, "/listings")
			return
		}
		h.log.Errorw("listing_edit_form_failed", "id", id, "err", err)
		h.renderError(c, http.StatusInternalServerError, errLoadListings)
		return
	}
	h.render(c, http.StatusOK, "edit.html", gin.H{"Listing": listing})
}

// updateListing overwrites the submitted fields; a new file upload replaces
// the image, otherwise the previous image is preserved exactly.
func (h *Handler) updateListing(c *gin.Context) {
	id := c.Param("id")
	in, ok := h.bindListingForm(c, "/listings/"+id+"/edit")
	if !ok {
		return
	}

	if _, err := h.services.Listings.Update(c.Request.Context(), id, in, formImage(c)); err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			h.flash(c, flashError, msgListingMissing)
			c.Redirect(http.StatusFound, "/listings")
			return
		}
		h.log.Errorw("listing_update_failed", "id", id, "err", err)
		h.renderError(c, http.StatusInternalServerError, errSaveListing)
		return
	}

	h.flash(c, flashSuccess, "Listing Updated")
	c.Redirect(http.StatusFound, "/listings/"+id)
}

// deleteListing deletes the listing only; its reviews and stored image are
// left behind.
func (h *Handler) deleteListing(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Listings.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			h.flash(c, flashError, msgListingMissing)
			c.Redirect(http.StatusFound, "/listings")
			return
		}
		h.log.Errorw("listing_delete_failed", "id", id, "err", err)
		h.renderError(c, http.StatusInternalServerError, errSaveListing)
		return
	}

	h.flash(c, flashSuccess, "Listing Deleted")
	c.Redirect(http.StatusFound, "/listings")
}

// bindListingForm extracts the nested listing[...] form fields. On a bad
// price it flashes and redirects back to the given form path.
func (h *Handler) bindListingForm(c *gin.Context, backTo string) (service.ListingInput, bool) {
	in := service.ListingInput{
		Title:       c.PostForm("listing[title]"),
		Description: c.PostForm("listing[description]"),
		Location:    c.PostForm("listing[location]"),
		Country:     c.PostForm("listing[country]"),
	}

	priceRaw := c.PostForm("listing[price]")
	if priceRaw != "" {
		price, err := strconv.ParseFloat(priceRaw, 64)
		if err != nil {
			h.flash(c, flashError, "Price must be a number")
			c.Redirect(http.StatusFound, backTo)
			return service.ListingInput{}, false
		}
		in.Price = price
	}
	return in, true
}

// formImage returns the uploaded listing image header, or nil when the form
// carried no file.
func formImage(c *gin.Context) *multipart.FileHeader {
	fh, err := c.FormFile("listing[image]")
	if err != nil {
		return nil
	}
	return fh
}
